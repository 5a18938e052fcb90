package jwt

import (
	"testing"
	"time"

	"github.com/Lito08/FYPAS/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		QRTokenTTL:      5 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "Admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "Admin" {
		t.Errorf("期望 Role=Admin，实际=%s", claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.Issuer != "fypas" {
		t.Errorf("期望 Issuer=fypas，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-1", "Student")
	if err != nil {
		t.Fatalf("GenerateRefreshToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("期望 TokenType=refresh，实际=%s", claims.TokenType)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("RefreshToken TTL 期望约24h，实际=%v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err == nil {
		t.Error("期望解析无效 token 返回错误")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := m1.GenerateAccessToken("user-1", "Admin")
	_, err := m2.ParseToken(token)
	if err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 1 * time.Millisecond,
	})

	token, _ := m.GenerateAccessToken("user-1", "Admin")
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestCheckInToken_RoundTrip(t *testing.T) {
	m := newTestManager()

	token, expiresAt, err := m.GenerateCheckInToken("section-1", 3)
	if err != nil {
		t.Fatalf("GenerateCheckInToken 失败: %v", err)
	}
	if time.Until(expiresAt) > 5*time.Minute {
		t.Errorf("二维码过期时间超出配置: %v", expiresAt)
	}

	claims, err := m.ParseCheckInToken(token)
	if err != nil {
		t.Fatalf("ParseCheckInToken 失败: %v", err)
	}
	if claims.SectionID != "section-1" || claims.WeekNumber != 3 {
		t.Errorf("声明不匹配: %+v", claims)
	}
}

func TestCheckInToken_NotAcceptedAsAccessToken(t *testing.T) {
	m := newTestManager()

	token, _, _ := m.GenerateCheckInToken("section-1", 1)
	if _, err := m.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("二维码 token 不应作为登录凭证，实际: %v", err)
	}

	access, _ := m.GenerateAccessToken("user-1", "Student")
	if _, err := m.ParseCheckInToken(access); err != ErrTokenInvalid {
		t.Errorf("登录 token 不应作为签到凭证，实际: %v", err)
	}
}
