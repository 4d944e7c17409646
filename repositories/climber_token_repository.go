package repositories

import (
	"context"
	"errors"
	"time"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"

	"gorm.io/gorm"
)

// ErrAlreadyCompleted reports a compare-and-swap loss on a climber slot: the
// details were completed by someone else between read and write.
var ErrAlreadyCompleted = errors.New("climber details already completed")

// IClimberTokenRepository covers detail tokens and the guarded climber
// submission write.
type IClimberTokenRepository interface {
	Create(ctx context.Context, token *models.ClimberDetailToken) error
	FindByCode(ctx context.Context, code string) (*models.ClimberDetailToken, error)
	FindOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) (*models.ClimberDetailToken, error)
	ExpireOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) error
	FindClimber(ctx context.Context, bookingID uint, seatIndex int) (*models.Climber, error)
	CompleteSubmission(ctx context.Context, climber *models.Climber, tokenID uint, now time.Time) error
}

type ClimberTokenRepository struct {
	db *gorm.DB
}

func NewClimberTokenRepository() IClimberTokenRepository {
	return &ClimberTokenRepository{db: configsdatabase.GetDB()}
}

func NewClimberTokenRepositoryTx(tx *gorm.DB) IClimberTokenRepository {
	return &ClimberTokenRepository{db: tx}
}

func (r *ClimberTokenRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *ClimberTokenRepository) Create(ctx context.Context, token *models.ClimberDetailToken) error {
	if token == nil || token.Code == "" || token.BookingID == 0 {
		return errors.New("cannot create invalid climber detail token")
	}
	return r.getDB(ctx).Create(token).Error
}

func (r *ClimberTokenRepository) FindByCode(ctx context.Context, code string) (*models.ClimberDetailToken, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	var token models.ClimberDetailToken
	if err := r.getDB(ctx).Where("code = ?", code).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// FindOpenForSeat returns the newest unconsumed, unexpired token for a seat.
func (r *ClimberTokenRepository) FindOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) (*models.ClimberDetailToken, error) {
	var token models.ClimberDetailToken
	err := r.getDB(ctx).
		Where("booking_id = ? AND seat_index = ?", bookingID, seatIndex).
		Where("completed_at IS NULL AND expires_at > ?", now).
		Order("created_at desc").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// ExpireOpenForSeat force-expires every still-open token for a seat; a fresh
// reissue follows so only one live link exists per seat at a time.
func (r *ClimberTokenRepository) ExpireOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) error {
	return r.getDB(ctx).Model(&models.ClimberDetailToken{}).
		Where("booking_id = ? AND seat_index = ?", bookingID, seatIndex).
		Where("completed_at IS NULL AND expires_at > ?", now).
		Update("expires_at", now).Error
}

func (r *ClimberTokenRepository) FindClimber(ctx context.Context, bookingID uint, seatIndex int) (*models.Climber, error) {
	var climber models.Climber
	err := r.getDB(ctx).
		Where("booking_id = ? AND seat_index = ?", bookingID, seatIndex).
		First(&climber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &climber, nil
}

// CompleteSubmission persists the climber details, flips DetailsComplete and
// consumes the token in one transaction. The flip is a compare-and-swap on
// details_complete = false; losing it returns ErrAlreadyCompleted and leaves
// the winning submission untouched.
func (r *ClimberTokenRepository) CompleteSubmission(ctx context.Context, climber *models.Climber, tokenID uint, now time.Time) error {
	if climber == nil || climber.ID == 0 {
		return errors.New("cannot complete submission for invalid climber")
	}
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Climber{}).
			Where("id = ? AND details_complete = ?", climber.ID, false).
			Updates(map[string]any{
				"full_name":               climber.FullName,
				"email":                   climber.Email,
				"phone":                   climber.Phone,
				"passport_number":         climber.PassportNumber,
				"passport_nationality":    climber.PassportNationality,
				"passport_expiry":         climber.PassportExpiry,
				"date_of_birth":           climber.DateOfBirth,
				"dietary_notes":           climber.DietaryNotes,
				"medical_notes":           climber.MedicalNotes,
				"emergency_contact_name":  climber.EmergencyContactName,
				"emergency_contact_phone": climber.EmergencyContactPhone,
				"details_complete":        true,
				"completed_at":            now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		if tokenID != 0 {
			if err := tx.Model(&models.ClimberDetailToken{}).
				Where("id = ?", tokenID).
				Update("completed_at", now).Error; err != nil {
				return err
			}
		}
		climber.DetailsComplete = true
		climber.CompletedAt = &now
		return nil
	})
}

var _ IClimberTokenRepository = (*ClimberTokenRepository)(nil)
