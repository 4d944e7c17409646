package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"

	"gorm.io/gorm"
)

// IUserRepository covers back-office account lookups.
type IUserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindPINHolders(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() IUserRepository {
	return &UserRepository{db: configsdatabase.GetDB()}
}

// NewUserRepositoryTx binds the repository to an open transaction.
func NewUserRepositoryTx(tx *gorm.DB) IUserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var user models.User
	if err := r.getDB(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNotFound
	}
	var user models.User
	if err := r.getDB(ctx).Where("LOWER(email) = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindPINHolders returns every account with PIN login enabled; the PIN form
// has no email field, so login compares against each candidate hash.
func (r *UserRepository) FindPINHolders(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.getDB(ctx).Where("pin_hash <> ''").Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("cannot create nil user")
	}
	return r.getDB(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("cannot update invalid user")
	}
	return r.getDB(ctx).Save(user).Error
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.getDB(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

var _ IUserRepository = (*UserRepository)(nil)
