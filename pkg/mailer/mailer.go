package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Lito08/FYPAS/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	// SendCredentials 向新用户发送登录账号与临时密码
	SendCredentials(ctx context.Context, to, fullName, matricID, tempPassword string) error
}

// sendFunc 与 smtp.SendMail 签名一致，测试时可替换
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg    config.MailConfig
	send   sendFunc
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTP 邮件发送器
// 未配置 SMTP 账号时只记录日志，便于本地开发
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, send: smtp.SendMail, logger: logger}
}

func (m *smtpMailer) SendCredentials(ctx context.Context, to, fullName, matricID, tempPassword string) error {
	if to == "" {
		return nil
	}
	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.logger.Warn("SMTP 未配置，账号邮件未发送",
			zap.String("to", to),
			zap.String("matric_id", matricID),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildCredentialsMessage(m.cfg.From, to, fullName, matricID, tempPassword)
	addr := m.cfg.SMTPHost + ":" + strconv.Itoa(m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.logger.Error("发送账号邮件失败", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	m.logger.Info("账号邮件已发送", zap.String("to", to), zap.String("matric_id", matricID))
	return nil
}

func buildCredentialsMessage(from, to, fullName, matricID, tempPassword string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: Your university account\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", fullName)
	fmt.Fprintf(&b, "Matric ID: %s\r\n", matricID)
	fmt.Fprintf(&b, "Temporary password: %s\r\n\r\n", tempPassword)
	b.WriteString("You will be asked to change the password on first login.\r\n")
	return []byte(b.String())
}
