package repositories

import (
	"context"
	"errors"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCapacityExceeded reports a booking that would overfill its departure.
var ErrCapacityExceeded = errors.New("departure capacity exceeded")

// IBookingRepository covers reservation persistence. Creation goes through
// CreateReservingCapacity so the capacity invariant lives in exactly one
// place, under a row lock.
type IBookingRepository interface {
	CreateReservingCapacity(ctx context.Context, booking *models.Booking, climbers []models.Climber, tokens []models.ClimberDetailToken) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByRef(ctx context.Context, bookingRef string) (*models.Booking, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Booking, int64, error)
	Update(ctx context.Context, booking *models.Booking) error
	UpdateReservingCapacity(ctx context.Context, booking *models.Booking) error
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}

type BookingRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Booking]
}

func NewBookingRepository() IBookingRepository {
	return NewBookingRepositoryTx(configsdatabase.GetDB())
}

func NewBookingRepositoryTx(tx *gorm.DB) IBookingRepository {
	base := NewBaseRepository[models.Booking](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "booking_ref", "lead_name", "status", "total_climbers"})
	return &BookingRepository{db: tx, base: base}
}

func (r *BookingRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// CreateReservingCapacity locks the departure row, re-sums the seats held by
// active bookings and inserts the booking plus its climber rows and detail
// tokens only when the group still fits. The lock closes the window between
// two concurrent bookings racing for the last seats.
func (r *BookingRepository) CreateReservingCapacity(ctx context.Context, booking *models.Booking, climbers []models.Climber, tokens []models.ClimberDetailToken) error {
	if booking == nil || booking.DepartureID == 0 || booking.TotalClimbers <= 0 {
		return errors.New("cannot create invalid booking")
	}

	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var departure models.GroupDeparture
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&departure, booking.DepartureID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var seatsHeld int64
		err = tx.Model(&models.Booking{}).
			Where("departure_id = ?", departure.ID).
			Where("status IN ?", models.ActiveBookingStatuses).
			Select("COALESCE(SUM(total_climbers), 0)").
			Scan(&seatsHeld).Error
		if err != nil {
			return err
		}

		if booking.Status.CountsAgainstCapacity() &&
			seatsHeld+int64(booking.TotalClimbers) > int64(departure.MaxParticipants) {
			return ErrCapacityExceeded
		}

		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		for i := range climbers {
			climbers[i].BookingID = booking.ID
		}
		if len(climbers) > 0 {
			if err := tx.Create(&climbers).Error; err != nil {
				return err
			}
		}

		for i := range tokens {
			tokens[i].BookingID = booking.ID
		}
		if len(tokens) > 0 {
			if err := tx.Create(&tokens).Error; err != nil {
				return err
			}
		}

		// Keep the denormalized counter in step while we hold the lock.
		if booking.Status.CountsAgainstCapacity() {
			newSpots := int(seatsHeld) + booking.TotalClimbers
			if err := tx.Model(&departure).Update("booked_spots", newSpots).Error; err != nil {
				return err
			}
		}

		booking.Climbers = climbers
		booking.Tokens = tokens
		return nil
	})
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var booking models.Booking
	err := r.getDB(ctx).
		Preload("Departure.Route").
		Preload("Climbers", func(q *gorm.DB) *gorm.DB { return q.Order("seat_index asc") }).
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindByRef(ctx context.Context, bookingRef string) (*models.Booking, error) {
	if bookingRef == "" {
		return nil, ErrNotFound
	}
	var booking models.Booking
	err := r.getDB(ctx).
		Preload("Departure.Route").
		Preload("Climbers", func(q *gorm.DB) *gorm.DB { return q.Order("seat_index asc") }).
		Preload("Tokens").
		Where("booking_ref = ?", bookingRef).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Booking, int64, error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(q *gorm.DB) *gorm.DB { return q.Preload("Departure.Route") },
	}
	if params.Status != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", params.Status)
		})
	}
	if params.Name != "" {
		name := "%" + params.Name + "%"
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("lead_name ILIKE ? OR booking_ref ILIKE ?", name, name)
		})
	}
	return r.base.FindAllPaginated(ctx, params, scopes...)
}

func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return errors.New("cannot update invalid booking")
	}
	return r.base.Update(ctx, booking)
}

// UpdateReservingCapacity saves a booking whose status is entering or
// leaving the active set and recounts the departure's held seats in the same
// transaction, under the same row lock as reservation. A booking entering
// the active set must still fit; a breach rolls the whole change back with
// ErrCapacityExceeded.
func (r *BookingRepository) UpdateReservingCapacity(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 || booking.DepartureID == 0 {
		return errors.New("cannot update invalid booking")
	}
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var departure models.GroupDeparture
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&departure, booking.DepartureID).Error
		if err != nil {
			return err
		}

		// Sum the other active bookings; this one's share is decided by the
		// status being written, not the stale row.
		var seatsHeld int64
		err = tx.Model(&models.Booking{}).
			Where("departure_id = ?", departure.ID).
			Where("id <> ?", booking.ID).
			Where("status IN ?", models.ActiveBookingStatuses).
			Select("COALESCE(SUM(total_climbers), 0)").
			Scan(&seatsHeld).Error
		if err != nil {
			return err
		}

		if booking.Status.CountsAgainstCapacity() {
			if seatsHeld+int64(booking.TotalClimbers) > int64(departure.MaxParticipants) {
				return ErrCapacityExceeded
			}
			seatsHeld += int64(booking.TotalClimbers)
		}

		if err := tx.Save(booking).Error; err != nil {
			return err
		}
		return tx.Model(&departure).Update("booked_spots", seatsHeld).Error
	})
}

// CountByStatus powers the dashboard home counters.
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	type row struct {
		Status models.BookingStatus
		Count  int64
	}
	var rows []row
	err := r.getDB(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Status] = rr.Count
	}
	return counts, nil
}

var _ IBookingRepository = (*BookingRepository)(nil)
