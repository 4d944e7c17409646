package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/pkg/randkey"
	"kiliheights.com/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingServiceError covers reservation failures.
type BookingServiceError string

func (e BookingServiceError) Error() string { return string(e) }

const (
	ErrBookingNotFound        BookingServiceError = "booking not found"
	ErrBookingValidation      BookingServiceError = "missing or invalid booking fields"
	ErrBookingCapacity        BookingServiceError = "not enough spots left on this departure"
	ErrBookingDepartureClosed BookingServiceError = "this departure is not open for booking"
	ErrBookingCreationFailed  BookingServiceError = "booking could not be created"
	ErrBookingBadTransition   BookingServiceError = "invalid booking status change"
)

// maxGroupSize bounds a single booking; larger groups go through the office.
const maxGroupSize = 15

// BookingRequest is the public booking form payload.
type BookingRequest struct {
	DepartureID   uint   `json:"departureId" form:"departure_id"`
	LeadName      string `json:"leadName" form:"lead_name"`
	LeadEmail     string `json:"leadEmail" form:"lead_email"`
	LeadPhone     string `json:"leadPhone" form:"lead_phone"`
	LeadCountry   string `json:"leadCountry" form:"lead_country"`
	TotalClimbers int    `json:"totalClimbers" form:"total_climbers"`

	Source      string `json:"source" form:"source"`
	UTMSource   string `json:"utmSource" form:"utm_source"`
	UTMMedium   string `json:"utmMedium" form:"utm_medium"`
	UTMCampaign string `json:"utmCampaign" form:"utm_campaign"`
}

// Validate enforces the public form's required fields.
func (r BookingRequest) Validate() error {
	if r.DepartureID == 0 {
		return ErrBookingValidation
	}
	if strings.TrimSpace(r.LeadName) == "" || strings.TrimSpace(r.LeadEmail) == "" {
		return ErrBookingValidation
	}
	if r.TotalClimbers < 1 || r.TotalClimbers > maxGroupSize {
		return ErrBookingValidation
	}
	return nil
}

// IBookingService covers the public create flow and the admin lifecycle.
type IBookingService interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id uint) (*models.Booking, error)
	GetBookingByRef(ctx context.Context, bookingRef string) (*models.Booking, error)
	ListBookings(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ChangeStatus(ctx context.Context, id uint, updatedByUserID uint, next models.BookingStatus) error
	RecordPayment(ctx context.Context, id uint, updatedByUserID uint, deposit bool) error
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}

type BookingService struct {
	repo          repositories.IBookingRepository
	departureRepo repositories.IDepartureRepository
	now           func() time.Time
	newRef        func() string
	newCode       func() (string, error)
}

func NewBookingService() IBookingService {
	return &BookingService{
		repo:          repositories.NewBookingRepository(),
		departureRepo: repositories.NewDepartureRepository(),
		now:           time.Now,
		newRef:        NewBookingRef,
		newCode:       randkey.NewToken,
	}
}

// NewBookingRef mints a short human-quotable reference, e.g. KH-7F3A2C.
func NewBookingRef() string {
	id := uuid.New()
	return "KH-" + strings.ToUpper(id.String()[:6])
}

// CreateBooking validates the request, prices the group off the departure and
// inserts booking, climber seats and one detail token per seat atomically.
// The capacity invariant is enforced in the repository under a row lock; a
// breach surfaces here as ErrBookingCapacity.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	departure, err := s.departureRepo.FindByID(ctx, req.DepartureID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingValidation
		}
		return nil, err
	}
	if !departure.Status.IsBookable() {
		return nil, ErrBookingDepartureClosed
	}

	now := s.now().UTC()
	booking := &models.Booking{
		BookingRef:     s.newRef(),
		DepartureID:    departure.ID,
		LeadName:       strings.TrimSpace(req.LeadName),
		LeadEmail:      strings.ToLower(strings.TrimSpace(req.LeadEmail)),
		LeadPhone:      strings.TrimSpace(req.LeadPhone),
		LeadCountry:    strings.TrimSpace(req.LeadCountry),
		TotalClimbers:  req.TotalClimbers,
		PricePerPerson: departure.Price,
		TotalPrice:     departure.Price * float64(req.TotalClimbers),
		Currency:       departure.Currency,
		Status:         models.BookingStatusPending,
		Source:         strings.TrimSpace(req.Source),
		UTMSource:      strings.TrimSpace(req.UTMSource),
		UTMMedium:      strings.TrimSpace(req.UTMMedium),
		UTMCampaign:    strings.TrimSpace(req.UTMCampaign),
	}

	// Seat 0 is the lead, pre-filled from the booking contact. The other
	// seats start empty and are completed through their detail tokens.
	climbers := make([]models.Climber, 0, req.TotalClimbers)
	for seat := 0; seat < req.TotalClimbers; seat++ {
		climber := models.Climber{SeatIndex: seat}
		if seat == 0 {
			climber.FullName = booking.LeadName
			climber.Email = booking.LeadEmail
			climber.Phone = booking.LeadPhone
		}
		climbers = append(climbers, climber)
	}

	ttl := TokenTTL()
	tokens := make([]models.ClimberDetailToken, 0, req.TotalClimbers)
	for seat := 0; seat < req.TotalClimbers; seat++ {
		code, err := s.newCode()
		if err != nil {
			return nil, ErrBookingCreationFailed
		}
		tokens = append(tokens, models.ClimberDetailToken{
			Code:      code,
			SeatIndex: seat,
			ExpiresAt: now.Add(ttl),
		})
	}

	if err := s.repo.CreateReservingCapacity(ctx, booking, climbers, tokens); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCapacityExceeded):
			return nil, ErrBookingCapacity
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrBookingValidation
		default:
			configslog.Log.Error("booking creation failed",
				zap.Uint("departureID", req.DepartureID), zap.Error(err))
			return nil, ErrBookingCreationFailed
		}
	}

	configslog.SLog.Infof("booking created: %s on departure %d (%d climbers)",
		booking.BookingRef, departure.ID, booking.TotalClimbers)
	return booking, nil
}

func (s *BookingService) GetBookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetBookingByRef(ctx context.Context, bookingRef string) (*models.Booking, error) {
	booking, err := s.repo.FindByRef(ctx, bookingRef)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	bookings, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(bookings, totalCount, params), nil
}

// ChangeStatus applies an admin status change and keeps the departure's seat
// count honest when the booking enters or leaves the active set.
func (s *BookingService) ChangeStatus(ctx context.Context, id uint, updatedByUserID uint, next models.BookingStatus) error {
	switch next {
	case models.BookingStatusInquiry, models.BookingStatusPending, models.BookingStatusDepositPaid,
		models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusRefunded,
		models.BookingStatusNoShow, models.BookingStatusCompleted:
	default:
		return ErrBookingBadTransition
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	previous := booking.Status
	if previous == next {
		return nil
	}

	booking.Status = next
	ctx = models.ContextWithUserID(ctx, updatedByUserID)

	// Crossing the active-set boundary re-runs the locked capacity check:
	// promoting an inquiry must not overfill the departure, and leaving the
	// set releases its seats.
	if previous.CountsAgainstCapacity() != next.CountsAgainstCapacity() {
		if err := s.repo.UpdateReservingCapacity(ctx, booking); err != nil {
			if errors.Is(err, repositories.ErrCapacityExceeded) {
				return ErrBookingCapacity
			}
			configslog.Log.Error("failed to recount departure capacity",
				zap.Uint("bookingID", booking.ID), zap.Error(err))
			return err
		}
	} else if err := s.repo.Update(ctx, booking); err != nil {
		return err
	}

	configslog.SLog.Infof("booking %s status: %s -> %s (by user %d)",
		booking.BookingRef, previous, next, updatedByUserID)
	return nil
}

// RecordPayment stamps the deposit or balance flag with the current time.
func (s *BookingService) RecordPayment(ctx context.Context, id uint, updatedByUserID uint, deposit bool) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	previous := booking.Status
	now := s.now().UTC()
	if deposit {
		booking.DepositPaid = true
		booking.DepositPaidAt = &now
		if booking.Status == models.BookingStatusPending || booking.Status == models.BookingStatusInquiry {
			booking.Status = models.BookingStatusDepositPaid
		}
	} else {
		booking.BalancePaid = true
		booking.BalancePaidAt = &now
		if booking.Status == models.BookingStatusDepositPaid {
			booking.Status = models.BookingStatusConfirmed
		}
	}

	ctx = models.ContextWithUserID(ctx, updatedByUserID)

	// A deposit can promote an inquiry into the active set, so the group
	// has to claim its seats under the capacity lock like any other entry.
	if previous.CountsAgainstCapacity() != booking.Status.CountsAgainstCapacity() {
		if err := s.repo.UpdateReservingCapacity(ctx, booking); err != nil {
			if errors.Is(err, repositories.ErrCapacityExceeded) {
				return ErrBookingCapacity
			}
			return err
		}
		return nil
	}
	return s.repo.Update(ctx, booking)
}

func (s *BookingService) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	return s.repo.CountByStatus(ctx)
}

var _ IBookingService = (*BookingService)(nil)
