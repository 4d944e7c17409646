package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDepartureRepo struct {
	mock.Mock
}

func (m *mockDepartureRepo) Create(ctx context.Context, departure *models.GroupDeparture) error {
	args := m.Called(ctx, departure)
	return args.Error(0)
}

func (m *mockDepartureRepo) CreateBatch(ctx context.Context, departures []models.GroupDeparture) error {
	args := m.Called(ctx, departures)
	return args.Error(0)
}

func (m *mockDepartureRepo) FindByID(ctx context.Context, id uint) (*models.GroupDeparture, error) {
	args := m.Called(ctx, id)
	if departure, ok := args.Get(0).(*models.GroupDeparture); ok {
		return departure, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDepartureRepo) FindUpcomingCandidates(ctx context.Context, now time.Time) ([]models.GroupDeparture, error) {
	args := m.Called(ctx, now)
	departures, _ := args.Get(0).([]models.GroupDeparture)
	return departures, args.Error(1)
}

func (m *mockDepartureRepo) FindFeatured(ctx context.Context) ([]models.GroupDeparture, error) {
	args := m.Called(ctx)
	departures, _ := args.Get(0).([]models.GroupDeparture)
	return departures, args.Error(1)
}

func (m *mockDepartureRepo) FindUpcomingByRoute(ctx context.Context, routeID uint, now time.Time) ([]models.GroupDeparture, error) {
	args := m.Called(ctx, routeID, now)
	departures, _ := args.Get(0).([]models.GroupDeparture)
	return departures, args.Error(1)
}

func (m *mockDepartureRepo) FindPastUnclosed(ctx context.Context, now time.Time) ([]models.GroupDeparture, error) {
	args := m.Called(ctx, now)
	departures, _ := args.Get(0).([]models.GroupDeparture)
	return departures, args.Error(1)
}

func (m *mockDepartureRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.GroupDeparture, int64, error) {
	args := m.Called(ctx, params)
	departures, _ := args.Get(0).([]models.GroupDeparture)
	return departures, args.Get(1).(int64), args.Error(2)
}

func (m *mockDepartureRepo) Update(ctx context.Context, departure *models.GroupDeparture) error {
	args := m.Called(ctx, departure)
	return args.Error(0)
}

func (m *mockDepartureRepo) UpdateStatus(ctx context.Context, id uint, status models.DepartureStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockDepartureRepo) SetFeatured(ctx context.Context, featuredIDs []uint) error {
	args := m.Called(ctx, featuredIDs)
	return args.Error(0)
}

func (m *mockDepartureRepo) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	args := m.Called(ctx, id, deletedByUserID)
	return args.Error(0)
}

var bookingNow = time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

func newBookingService(bookingRepo *mockBookingRepo, departureRepo *mockDepartureRepo) *BookingService {
	codeSeq := 0
	return &BookingService{
		repo:          bookingRepo,
		departureRepo: departureRepo,
		now:           func() time.Time { return bookingNow },
		newRef:        func() string { return "KH-TEST01" },
		newCode: func() (string, error) {
			codeSeq++
			return "code-" + strings.Repeat("x", codeSeq), nil
		},
	}
}

func openDeparture() *models.GroupDeparture {
	d := &models.GroupDeparture{
		RouteID:         3,
		ArrivalDate:     bookingNow.AddDate(0, 2, 0),
		Status:          models.DepartureStatusOpen,
		Price:           2950,
		Currency:        "USD",
		MinParticipants: 2,
		MaxParticipants: 10,
	}
	d.ID = 9
	return d
}

func validRequest() BookingRequest {
	return BookingRequest{
		DepartureID:   9,
		LeadName:      "Asha Mollel",
		LeadEmail:     "Asha@Example.com",
		TotalClimbers: 4,
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	departureRepo := new(mockDepartureRepo)
	service := newBookingService(bookingRepo, departureRepo)

	departureRepo.On("FindByID", mock.Anything, uint(9)).Return(openDeparture(), nil)
	bookingRepo.On("CreateReservingCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := service.CreateBooking(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, "KH-TEST01", booking.BookingRef)
	assert.Equal(t, "asha@example.com", booking.LeadEmail)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, float64(2950*4), booking.TotalPrice)
	bookingRepo.AssertExpectations(t)
}

func TestCreateBookingMintsSeatsAndTokens(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	departureRepo := new(mockDepartureRepo)
	service := newBookingService(bookingRepo, departureRepo)

	departureRepo.On("FindByID", mock.Anything, uint(9)).Return(openDeparture(), nil)

	var gotClimbers []models.Climber
	var gotTokens []models.ClimberDetailToken
	bookingRepo.On("CreateReservingCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotClimbers = args.Get(2).([]models.Climber)
			gotTokens = args.Get(3).([]models.ClimberDetailToken)
		}).Return(nil)

	_, err := service.CreateBooking(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Len(t, gotClimbers, 4)
	assert.Len(t, gotTokens, 4)
	// Seat zero carries the lead's contact details, the rest start empty.
	assert.Equal(t, "Asha Mollel", gotClimbers[0].FullName)
	assert.Empty(t, gotClimbers[1].FullName)
	for seat, token := range gotTokens {
		assert.Equal(t, seat, token.SeatIndex)
		assert.NotEmpty(t, token.Code)
		assert.True(t, token.ExpiresAt.After(bookingNow))
	}
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	departureRepo := new(mockDepartureRepo)
	service := newBookingService(bookingRepo, departureRepo)

	departureRepo.On("FindByID", mock.Anything, uint(9)).Return(openDeparture(), nil)
	bookingRepo.On("CreateReservingCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(repositories.ErrCapacityExceeded)

	_, err := service.CreateBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrBookingCapacity)
}

func TestCreateBookingClosedDeparture(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	departureRepo := new(mockDepartureRepo)
	service := newBookingService(bookingRepo, departureRepo)

	full := openDeparture()
	full.Status = models.DepartureStatusFull
	departureRepo.On("FindByID", mock.Anything, uint(9)).Return(full, nil)

	_, err := service.CreateBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrBookingDepartureClosed)
	bookingRepo.AssertNotCalled(t, "CreateReservingCapacity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingValidation(t *testing.T) {
	service := newBookingService(new(mockBookingRepo), new(mockDepartureRepo))

	cases := []struct {
		name string
		mut  func(*BookingRequest)
	}{
		{"missing departure", func(r *BookingRequest) { r.DepartureID = 0 }},
		{"blank lead name", func(r *BookingRequest) { r.LeadName = "  " }},
		{"blank lead email", func(r *BookingRequest) { r.LeadEmail = "" }},
		{"zero climbers", func(r *BookingRequest) { r.TotalClimbers = 0 }},
		{"oversized group", func(r *BookingRequest) { r.TotalClimbers = 16 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mut(&req)
			_, err := service.CreateBooking(context.Background(), req)
			assert.ErrorIs(t, err, ErrBookingValidation)
		})
	}
}

func TestChangeStatusReleasesCapacityOnCancel(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	booking := &models.Booking{
		BookingRef:    "KH-TEST01",
		DepartureID:   9,
		Status:        models.BookingStatusConfirmed,
		TotalClimbers: 4,
	}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("UpdateReservingCapacity", mock.Anything, mock.Anything).Return(nil)

	err := service.ChangeStatus(context.Background(), 5, 1, models.BookingStatusCancelled)

	assert.NoError(t, err)
	bookingRepo.AssertCalled(t, "UpdateReservingCapacity", mock.Anything, mock.Anything)
	bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangeStatusWithinActiveSetKeepsCapacity(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	booking := &models.Booking{
		BookingRef:    "KH-TEST01",
		DepartureID:   9,
		Status:        models.BookingStatusPending,
		TotalClimbers: 4,
	}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	err := service.ChangeStatus(context.Background(), 5, 1, models.BookingStatusConfirmed)

	assert.NoError(t, err)
	bookingRepo.AssertNotCalled(t, "UpdateReservingCapacity", mock.Anything, mock.Anything)
}

func TestChangeStatusIntoActiveSetChecksCapacity(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	// A 7-climber inquiry on a max-10 departure that already has seats held:
	// promoting it to confirmed must go through the locked capacity check
	// and fail, not slip into the active set unchecked.
	booking := &models.Booking{
		BookingRef:    "KH-TEST01",
		DepartureID:   9,
		Status:        models.BookingStatusInquiry,
		TotalClimbers: 7,
	}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("UpdateReservingCapacity", mock.Anything, mock.Anything).
		Return(repositories.ErrCapacityExceeded)

	err := service.ChangeStatus(context.Background(), 5, 1, models.BookingStatusConfirmed)

	assert.ErrorIs(t, err, ErrBookingCapacity)
	bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangeStatusPromotionClaimsSeats(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	booking := &models.Booking{
		BookingRef:    "KH-TEST01",
		DepartureID:   9,
		Status:        models.BookingStatusInquiry,
		TotalClimbers: 3,
	}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("UpdateReservingCapacity", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.BookingStatusConfirmed
	})).Return(nil)

	err := service.ChangeStatus(context.Background(), 5, 1, models.BookingStatusConfirmed)

	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
}

func TestRecordDepositAdvancesStatus(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	booking := &models.Booking{Status: models.BookingStatusPending}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.DepositPaid && b.Status == models.BookingStatusDepositPaid && b.DepositPaidAt != nil
	})).Return(nil)

	err := service.RecordPayment(context.Background(), 5, 1, true)

	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
}

func TestRecordDepositOnInquiryChecksCapacity(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newBookingService(bookingRepo, new(mockDepartureRepo))

	// An inquiry does not hold seats yet, so a deposit that promotes it
	// into the active set has to claim them under the capacity lock.
	booking := &models.Booking{
		DepartureID:   9,
		Status:        models.BookingStatusInquiry,
		TotalClimbers: 7,
	}
	booking.ID = 5

	bookingRepo.On("FindByID", mock.Anything, uint(5)).Return(booking, nil)
	bookingRepo.On("UpdateReservingCapacity", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.DepositPaid && b.Status == models.BookingStatusDepositPaid
	})).Return(repositories.ErrCapacityExceeded)

	err := service.RecordPayment(context.Background(), 5, 1, true)

	assert.ErrorIs(t, err, ErrBookingCapacity)
	bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestNewBookingRefShape(t *testing.T) {
	ref := NewBookingRef()

	assert.True(t, strings.HasPrefix(ref, "KH-"))
	assert.Len(t, ref, 9)
	assert.Equal(t, strings.ToUpper(ref), ref)
}
