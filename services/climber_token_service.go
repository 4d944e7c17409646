package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/randkey"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
)

// ClimberTokenServiceError covers the token workflow's failure modes. The
// handler layer maps each constant to its own HTTP shape: expired and
// already-completed get dedicated friendly states, never generic errors.
type ClimberTokenServiceError string

func (e ClimberTokenServiceError) Error() string { return string(e) }

const (
	ErrTokenNotFound           ClimberTokenServiceError = "detail link not found"
	ErrTokenExpired            ClimberTokenServiceError = "detail link has expired"
	ErrDetailsAlreadyCompleted ClimberTokenServiceError = "climber details already submitted"
	ErrClimberValidation       ClimberTokenServiceError = "missing required climber details"
	ErrManageForbidden         ClimberTokenServiceError = "could not verify booking access"
	ErrSeatOutOfRange          ClimberTokenServiceError = "no such climber seat on this booking"
)

// defaultTokenTTLDays is the validity window for freshly minted detail
// links; TOKEN_TTL_DAYS overrides it.
const defaultTokenTTLDays = 7

// TokenTTL returns the configured validity window for new detail tokens.
func TokenTTL() time.Duration {
	days := defaultTokenTTLDays
	if raw := os.Getenv("TOKEN_TTL_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

// ClimberDetailsPayload is what a traveler (or the lead on their behalf)
// submits through a detail link.
type ClimberDetailsPayload struct {
	FullName            string     `json:"fullName" form:"full_name"`
	Email               string     `json:"email" form:"email"`
	Phone               string     `json:"phone" form:"phone"`
	PassportNumber      string     `json:"passportNumber" form:"passport_number"`
	PassportNationality string     `json:"passportNationality" form:"passport_nationality"`
	PassportExpiry      *time.Time `json:"passportExpiry" form:"passport_expiry"`
	DateOfBirth         *time.Time `json:"dateOfBirth" form:"date_of_birth"`
	DietaryNotes        string     `json:"dietaryNotes" form:"dietary_notes"`
	MedicalNotes        string     `json:"medicalNotes" form:"medical_notes"`
	EmergencyName       string     `json:"emergencyContactName" form:"emergency_contact_name"`
	EmergencyPhone      string     `json:"emergencyContactPhone" form:"emergency_contact_phone"`
}

// Validate enforces the required fields. Name and email are the minimum the
// office needs to chase the rest by hand.
func (p ClimberDetailsPayload) Validate() error {
	if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.Email) == "" {
		return ErrClimberValidation
	}
	return nil
}

// TripSummary is the display context returned alongside token resolution so
// the form page (and the friendly already-submitted state) can describe the
// trip without further queries.
type TripSummary struct {
	BookingRef  string    `json:"bookingRef"`
	RouteName   string    `json:"routeName"`
	ArrivalDate time.Time `json:"arrivalDate"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	LeadName    string    `json:"leadName"`
}

// ResolvedToken is the success shape of ResolveToken: the pre-filled climber
// record plus trip context.
type ResolvedToken struct {
	Climber   models.Climber `json:"climber"`
	SeatIndex int            `json:"seatIndex"`
	Trip      TripSummary    `json:"trip"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// SeatState is one row of the manage-climbers aggregation.
type SeatState struct {
	SeatIndex       int        `json:"seatIndex"`
	ClimberName     string     `json:"climberName"`
	IsLead          bool       `json:"isLead"`
	DetailsComplete bool       `json:"detailsComplete"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	// TokenCode is only set for incomplete seats that still have a live
	// link; the lead copies it out of this view to share.
	TokenCode      string     `json:"tokenCode,omitempty"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
}

// GroupState is the manage-climbers view model.
type GroupState struct {
	Trip          TripSummary `json:"trip"`
	TotalClimbers int         `json:"totalClimbers"`
	CompleteCount int         `json:"completeCount"`
	Seats         []SeatState `json:"seats"`
}

// IClimberTokenService implements the climber-detail token workflow: token
// resolution, one-shot submission and the lead's group management view.
type IClimberTokenService interface {
	ResolveToken(ctx context.Context, code string) (*ResolvedToken, error)
	SubmitDetails(ctx context.Context, code string, payload ClimberDetailsPayload) (*models.Climber, error)
	GetGroupState(ctx context.Context, bookingRef, leadEmail string) (*GroupState, error)
	LeadUpdateClimber(ctx context.Context, bookingRef, leadEmail string, seatIndex int, payload ClimberDetailsPayload) (*models.Climber, error)
	ReissueToken(ctx context.Context, bookingRef, leadEmail string, seatIndex int) (*models.ClimberDetailToken, error)
}

type ClimberTokenService struct {
	tokenRepo   repositories.IClimberTokenRepository
	bookingRepo repositories.IBookingRepository
	now         func() time.Time
	newCode     func() (string, error)
}

func NewClimberTokenService() IClimberTokenService {
	return &ClimberTokenService{
		tokenRepo:   repositories.NewClimberTokenRepository(),
		bookingRepo: repositories.NewBookingRepository(),
		now:         time.Now,
		newCode:     randkey.NewToken,
	}
}

// ResolveToken checks a detail link and returns exactly one of: the resolved
// context, ErrTokenNotFound, ErrTokenExpired or ErrDetailsAlreadyCompleted.
// The completed case still carries the context so the UI can show who
// already submitted instead of a dead end.
func (s *ClimberTokenService) ResolveToken(ctx context.Context, code string) (*ResolvedToken, error) {
	token, err := s.tokenRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	resolved, err := s.buildResolved(ctx, token)
	if err != nil {
		return nil, err
	}

	// Completed outranks expired: a finished slot reads as "already
	// submitted" even after the link's window has passed.
	if token.IsConsumed() || resolved.Climber.DetailsComplete {
		return resolved, ErrDetailsAlreadyCompleted
	}
	if token.IsExpired(s.now().UTC()) {
		return nil, ErrTokenExpired
	}
	return resolved, nil
}

// SubmitDetails performs the one-shot submission for a detail link. The
// terminal states are re-checked up front (same order as ResolveToken), so a
// second call on a consumed token fails with ErrDetailsAlreadyCompleted and
// never overwrites the first payload.
func (s *ClimberTokenService) SubmitDetails(ctx context.Context, code string, payload ClimberDetailsPayload) (*models.Climber, error) {
	token, err := s.tokenRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if token.IsConsumed() {
		return nil, ErrDetailsAlreadyCompleted
	}
	if token.IsExpired(s.now().UTC()) {
		return nil, ErrTokenExpired
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	climber, err := s.tokenRepo.FindClimber(ctx, token.BookingID, token.SeatIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Error("token points at missing climber slot",
				zap.String("code", token.Code), zap.Uint("bookingID", token.BookingID),
				zap.Int("seatIndex", token.SeatIndex))
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if climber.DetailsComplete {
		return nil, ErrDetailsAlreadyCompleted
	}

	applyPayload(climber, payload)

	if err := s.tokenRepo.CompleteSubmission(ctx, climber, token.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrAlreadyCompleted) {
			// Lost the race against a parallel submission; theirs stands.
			return nil, ErrDetailsAlreadyCompleted
		}
		configslog.Log.Error("climber submission failed",
			zap.String("code", token.Code), zap.Error(err))
		return nil, err
	}

	configslog.SLog.Infof("climber details submitted: booking %d seat %d",
		token.BookingID, token.SeatIndex)
	return climber, nil
}

// GetGroupState verifies the lead's email (a low-assurance check; a
// mismatch gets the same generic error as an unknown booking) and
// returns every seat's completion state plus live token codes.
func (s *ClimberTokenService) GetGroupState(ctx context.Context, bookingRef, leadEmail string) (*GroupState, error) {
	booking, err := s.verifyLead(ctx, bookingRef, leadEmail)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	state := &GroupState{
		Trip:          tripSummaryOf(booking),
		TotalClimbers: booking.TotalClimbers,
		Seats:         make([]SeatState, 0, booking.TotalClimbers),
	}

	climbersBySeat := make(map[int]models.Climber, len(booking.Climbers))
	for _, c := range booking.Climbers {
		climbersBySeat[c.SeatIndex] = c
	}

	for seat := 0; seat < booking.TotalClimbers; seat++ {
		row := SeatState{SeatIndex: seat, IsLead: seat == 0}
		if c, ok := climbersBySeat[seat]; ok {
			row.ClimberName = c.FullName
			row.DetailsComplete = c.DetailsComplete
			row.CompletedAt = c.CompletedAt
		}
		if row.DetailsComplete {
			state.CompleteCount++
		} else if token, err := s.tokenRepo.FindOpenForSeat(ctx, booking.ID, seat, now); err == nil {
			row.TokenCode = token.Code
			expiresAt := token.ExpiresAt
			row.TokenExpiresAt = &expiresAt
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		state.Seats = append(state.Seats, row)
	}
	return state, nil
}

// LeadUpdateClimber lets the lead fill a seat in directly, going through the
// same validation and compare-and-swap path as a token submission.
func (s *ClimberTokenService) LeadUpdateClimber(ctx context.Context, bookingRef, leadEmail string, seatIndex int, payload ClimberDetailsPayload) (*models.Climber, error) {
	booking, err := s.verifyLead(ctx, bookingRef, leadEmail)
	if err != nil {
		return nil, err
	}
	if seatIndex < 0 || seatIndex >= booking.TotalClimbers {
		return nil, ErrSeatOutOfRange
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	climber, err := s.tokenRepo.FindClimber(ctx, booking.ID, seatIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSeatOutOfRange
		}
		return nil, err
	}
	if climber.DetailsComplete {
		return nil, ErrDetailsAlreadyCompleted
	}

	applyPayload(climber, payload)

	// The seat's open token (if any) is consumed alongside: a traveler's
	// link goes dead the moment the lead has filled the seat in.
	var tokenID uint
	if token, err := s.tokenRepo.FindOpenForSeat(ctx, booking.ID, seatIndex, s.now().UTC()); err == nil {
		tokenID = token.ID
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if err := s.tokenRepo.CompleteSubmission(ctx, climber, tokenID, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrAlreadyCompleted) {
			return nil, ErrDetailsAlreadyCompleted
		}
		return nil, err
	}

	configslog.SLog.Infof("lead completed climber details: booking %s seat %d",
		booking.BookingRef, seatIndex)
	return climber, nil
}

// ReissueToken expires any live link for the seat and mints a fresh one.
// Completed seats cannot be reopened this way.
func (s *ClimberTokenService) ReissueToken(ctx context.Context, bookingRef, leadEmail string, seatIndex int) (*models.ClimberDetailToken, error) {
	booking, err := s.verifyLead(ctx, bookingRef, leadEmail)
	if err != nil {
		return nil, err
	}
	if seatIndex < 0 || seatIndex >= booking.TotalClimbers {
		return nil, ErrSeatOutOfRange
	}

	climber, err := s.tokenRepo.FindClimber(ctx, booking.ID, seatIndex)
	if err == nil && climber.DetailsComplete {
		return nil, ErrDetailsAlreadyCompleted
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.tokenRepo.ExpireOpenForSeat(ctx, booking.ID, seatIndex, now); err != nil {
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	token := &models.ClimberDetailToken{
		Code:      code,
		BookingID: booking.ID,
		SeatIndex: seatIndex,
		ExpiresAt: now.Add(TokenTTL()),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		configslog.Log.Error("failed to mint detail token",
			zap.String("bookingRef", booking.BookingRef), zap.Int("seatIndex", seatIndex), zap.Error(err))
		return nil, err
	}

	configslog.SLog.Infof("detail token reissued: booking %s seat %d", booking.BookingRef, seatIndex)
	return token, nil
}

// verifyLead is the whole access-control mechanism for group management: a
// case-insensitive match of the supplied email against the booking's lead
// email. Unknown ref and wrong email return the same error so the endpoint
// does not leak which bookings exist.
func (s *ClimberTokenService) verifyLead(ctx context.Context, bookingRef, leadEmail string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByRef(ctx, strings.TrimSpace(bookingRef))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrManageForbidden
		}
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(leadEmail), booking.LeadEmail) {
		return nil, ErrManageForbidden
	}
	return booking, nil
}

func (s *ClimberTokenService) buildResolved(ctx context.Context, token *models.ClimberDetailToken) (*ResolvedToken, error) {
	booking, err := s.bookingRepo.FindByID(ctx, token.BookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Error("token points at missing booking",
				zap.String("code", token.Code), zap.Uint("bookingID", token.BookingID))
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	resolved := &ResolvedToken{
		SeatIndex: token.SeatIndex,
		Trip:      tripSummaryOf(booking),
		ExpiresAt: token.ExpiresAt,
	}
	for _, c := range booking.Climbers {
		if c.SeatIndex == token.SeatIndex {
			resolved.Climber = c
			break
		}
	}
	return resolved, nil
}

func tripSummaryOf(booking *models.Booking) TripSummary {
	return TripSummary{
		BookingRef:  booking.BookingRef,
		RouteName:   booking.Departure.Route.Name,
		ArrivalDate: booking.Departure.ArrivalDate,
		StartDate:   booking.Departure.StartDate,
		EndDate:     booking.Departure.EndDate,
		LeadName:    booking.LeadName,
	}
}

func applyPayload(climber *models.Climber, p ClimberDetailsPayload) {
	climber.FullName = strings.TrimSpace(p.FullName)
	climber.Email = strings.TrimSpace(p.Email)
	climber.Phone = strings.TrimSpace(p.Phone)
	climber.PassportNumber = strings.TrimSpace(p.PassportNumber)
	climber.PassportNationality = strings.TrimSpace(p.PassportNationality)
	climber.PassportExpiry = p.PassportExpiry
	climber.DateOfBirth = p.DateOfBirth
	climber.DietaryNotes = p.DietaryNotes
	climber.MedicalNotes = p.MedicalNotes
	climber.EmergencyContactName = strings.TrimSpace(p.EmergencyName)
	climber.EmergencyContactPhone = strings.TrimSpace(p.EmergencyPhone)
}

var _ IClimberTokenService = (*ClimberTokenService)(nil)
