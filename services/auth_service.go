package services

import (
	"context"
	"errors"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceError covers back-office login failures.
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	// One constant for every credential failure: login never reveals
	// whether the account exists.
	ErrInvalidCredentials AuthServiceError = "invalid credentials"
	ErrUserNotFound       AuthServiceError = "user not found"
)

// IAuthService authenticates dashboard users.
type IAuthService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	AuthenticateByPIN(ctx context.Context, pin string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	SetPassword(ctx context.Context, userID uint, password string) error
	SetPIN(ctx context.Context, userID uint, pin string) error
}

type AuthService struct {
	repo repositories.IUserRepository
	now  func() time.Time
}

func NewAuthService() IAuthService {
	return &AuthService{repo: repositories.NewUserRepository(), now: time.Now}
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		configslog.Log.Warn("failed to stamp last login", zap.Uint("userID", user.ID), zap.Error(err))
	}
	configslog.SLog.Infof("user logged in: %s", user.Email)
	return user, nil
}

// AuthenticateByPIN checks the PIN against every PIN-enabled account. The
// staff pool is a handful of rows, so the linear bcrypt scan is fine.
func (s *AuthService) AuthenticateByPIN(ctx context.Context, pin string) (*models.User, error) {
	if len(pin) < 4 {
		return nil, ErrInvalidCredentials
	}
	holders, err := s.repo.FindPINHolders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range holders {
		if bcrypt.CompareHashAndPassword([]byte(holders[i].PINHash), []byte(pin)) == nil {
			user := holders[i]
			if err := s.repo.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
				configslog.Log.Warn("failed to stamp last login", zap.Uint("userID", user.ID), zap.Error(err))
			}
			configslog.SLog.Infof("user logged in via PIN: %s", user.Email)
			return &user, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) SetPassword(ctx context.Context, userID uint, password string) error {
	if len(password) < 8 {
		return ErrInvalidCredentials
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	ctx = models.ContextWithUserID(ctx, userID)
	return s.repo.Update(ctx, user)
}

func (s *AuthService) SetPIN(ctx context.Context, userID uint, pin string) error {
	if len(pin) < 4 || len(pin) > 8 {
		return ErrInvalidCredentials
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PINHash = string(hash)
	ctx = models.ContextWithUserID(ctx, userID)
	return s.repo.Update(ctx, user)
}

var _ IAuthService = (*AuthService)(nil)
