package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/auth"
	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/user"
)

type UserService struct {
	repo    user.Repository
	jwt     *config.JWTConfig
	revoked *auth.Revocations
	cost    int
}

// NewUserService revoked 可为 nil，此时注销只清 cookie
func NewUserService(repo user.Repository, jwt *config.JWTConfig, revoked *auth.Revocations) *UserService {
	return &UserService{repo: repo, jwt: jwt, revoked: revoked, cost: bcrypt.DefaultCost}
}

// Register 注册，角色为空时默认买家
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (*user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	switch role {
	case "":
		role = user.RoleBuyer
	case user.RoleBuyer, user.RoleDealer:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username %s is taken", ErrValidation, username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, notFound(err, ErrInvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := auth.GenerateToken(s.jwt, u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Logout 注销令牌；无法解析的令牌本就无效，直接忽略
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(s.jwt, token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, token, claims); err != nil {
		GetMonitor().RecordRedisError()
		return err
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return u, nil
}

func (s *UserService) ListByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// DealerProfile 经销商资料，不存在时返回只带 UserID 的空资料
func (s *UserService) DealerProfile(ctx context.Context, userID int64) (*user.DealerProfile, error) {
	p, err := s.repo.GetDealerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &user.DealerProfile{UserID: userID}, nil
		}
		return nil, err
	}
	return p, nil
}

// UpdateDealerProfile 仅经销商可维护公司名与电话
func (s *UserService) UpdateDealerProfile(ctx context.Context, userID int64, company, phone string) (*user.DealerProfile, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsDealer() {
		return nil, ErrForbidden
	}
	p := &user.DealerProfile{
		UserID:      userID,
		CompanyName: strings.TrimSpace(company),
		PhoneNumber: strings.TrimSpace(phone),
	}
	if err := s.repo.SaveDealerProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
