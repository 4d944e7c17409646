package services

import (
	"context"
	"testing"
	"time"

	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *models.ClimberDetailToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) FindByCode(ctx context.Context, code string) (*models.ClimberDetailToken, error) {
	args := m.Called(ctx, code)
	if token, ok := args.Get(0).(*models.ClimberDetailToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenRepo) FindOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) (*models.ClimberDetailToken, error) {
	args := m.Called(ctx, bookingID, seatIndex, now)
	if token, ok := args.Get(0).(*models.ClimberDetailToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenRepo) ExpireOpenForSeat(ctx context.Context, bookingID uint, seatIndex int, now time.Time) error {
	args := m.Called(ctx, bookingID, seatIndex, now)
	return args.Error(0)
}

func (m *mockTokenRepo) FindClimber(ctx context.Context, bookingID uint, seatIndex int) (*models.Climber, error) {
	args := m.Called(ctx, bookingID, seatIndex)
	if climber, ok := args.Get(0).(*models.Climber); ok {
		return climber, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenRepo) CompleteSubmission(ctx context.Context, climber *models.Climber, tokenID uint, now time.Time) error {
	args := m.Called(ctx, climber, tokenID, now)
	return args.Error(0)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateReservingCapacity(ctx context.Context, booking *models.Booking, climbers []models.Climber, tokens []models.ClimberDetailToken) error {
	args := m.Called(ctx, booking, climbers, tokens)
	return args.Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if booking, ok := args.Get(0).(*models.Booking); ok {
		return booking, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindByRef(ctx context.Context, bookingRef string) (*models.Booking, error) {
	args := m.Called(ctx, bookingRef)
	if booking, ok := args.Get(0).(*models.Booking); ok {
		return booking, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Booking, int64, error) {
	args := m.Called(ctx, params)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) UpdateReservingCapacity(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[models.BookingStatus]int64)
	return counts, args.Error(1)
}

var tokenNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTokenService(tokenRepo *mockTokenRepo, bookingRepo *mockBookingRepo) *ClimberTokenService {
	return &ClimberTokenService{
		tokenRepo:   tokenRepo,
		bookingRepo: bookingRepo,
		now:         func() time.Time { return tokenNow },
		newCode:     func() (string, error) { return "fresh-code-123", nil },
	}
}

func testBooking() *models.Booking {
	booking := &models.Booking{
		BookingRef:    "KH-ABC123",
		LeadName:      "Asha Mollel",
		LeadEmail:     "asha@example.com",
		TotalClimbers: 3,
		Departure: models.GroupDeparture{
			ArrivalDate: tokenNow.AddDate(0, 1, 0),
			StartDate:   tokenNow.AddDate(0, 1, 1),
			EndDate:     tokenNow.AddDate(0, 1, 8),
			Route:       models.TrekkingRoute{Name: "Lemosho Route"},
		},
	}
	booking.ID = 42
	booking.Climbers = []models.Climber{
		{BookingID: 42, SeatIndex: 0, FullName: "Asha Mollel", Email: "asha@example.com", DetailsComplete: true},
		{BookingID: 42, SeatIndex: 1},
		{BookingID: 42, SeatIndex: 2},
	}
	return booking
}

func openToken(code string, seatIndex int) *models.ClimberDetailToken {
	token := &models.ClimberDetailToken{
		Code:      code,
		BookingID: 42,
		SeatIndex: seatIndex,
		ExpiresAt: tokenNow.Add(6 * 24 * time.Hour),
	}
	token.ID = 7
	return token
}

func TestResolveTokenSuccess(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	tokenRepo.On("FindByCode", mock.Anything, "abc").Return(openToken("abc", 1), nil)
	bookingRepo.On("FindByID", mock.Anything, uint(42)).Return(testBooking(), nil)

	resolved, err := service.ResolveToken(context.Background(), "abc")

	assert.NoError(t, err)
	assert.Equal(t, 1, resolved.SeatIndex)
	assert.Equal(t, "KH-ABC123", resolved.Trip.BookingRef)
	assert.Equal(t, "Lemosho Route", resolved.Trip.RouteName)
	tokenRepo.AssertExpectations(t)
}

func TestResolveTokenNotFound(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	service := newTokenService(tokenRepo, new(mockBookingRepo))

	tokenRepo.On("FindByCode", mock.Anything, "nope").Return(nil, repositories.ErrNotFound)

	resolved, err := service.ResolveToken(context.Background(), "nope")

	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestResolveTokenExpired(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	token := openToken("old", 1)
	token.ExpiresAt = tokenNow.Add(-24 * time.Hour)
	tokenRepo.On("FindByCode", mock.Anything, "old").Return(token, nil)
	bookingRepo.On("FindByID", mock.Anything, uint(42)).Return(testBooking(), nil)

	resolved, err := service.ResolveToken(context.Background(), "old")

	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestResolveTokenCompletedOutranksExpired(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	// Seat 0 is complete and its token long expired: the caller must see
	// "already submitted", not "expired".
	token := openToken("done", 0)
	token.ExpiresAt = tokenNow.Add(-48 * time.Hour)
	completedAt := tokenNow.Add(-72 * time.Hour)
	token.CompletedAt = &completedAt

	tokenRepo.On("FindByCode", mock.Anything, "done").Return(token, nil)
	bookingRepo.On("FindByID", mock.Anything, uint(42)).Return(testBooking(), nil)

	resolved, err := service.ResolveToken(context.Background(), "done")

	assert.ErrorIs(t, err, ErrDetailsAlreadyCompleted)
	// The resolved context still comes back so the UI can name the climber.
	assert.NotNil(t, resolved)
	assert.Equal(t, "Asha Mollel", resolved.Climber.FullName)
}

func TestSubmitDetailsSuccess(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	service := newTokenService(tokenRepo, new(mockBookingRepo))

	token := openToken("abc", 1)
	tokenRepo.On("FindByCode", mock.Anything, "abc").Return(token, nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 1).
		Return(&models.Climber{BookingID: 42, SeatIndex: 1}, nil)
	tokenRepo.On("CompleteSubmission", mock.Anything, mock.Anything, token.ID, tokenNow).Return(nil)

	climber, err := service.SubmitDetails(context.Background(), "abc", ClimberDetailsPayload{
		FullName: "Jonas Weber",
		Email:    "jonas@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Jonas Weber", climber.FullName)
	tokenRepo.AssertExpectations(t)
}

func TestSubmitDetailsValidation(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	service := newTokenService(tokenRepo, new(mockBookingRepo))

	tokenRepo.On("FindByCode", mock.Anything, "abc").Return(openToken("abc", 1), nil)

	_, err := service.SubmitDetails(context.Background(), "abc", ClimberDetailsPayload{
		FullName: "   ",
		Email:    "jonas@example.com",
	})

	assert.ErrorIs(t, err, ErrClimberValidation)
	tokenRepo.AssertNotCalled(t, "CompleteSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitDetailsSecondSubmissionRejected(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	service := newTokenService(tokenRepo, new(mockBookingRepo))

	token := openToken("abc", 1)
	tokenRepo.On("FindByCode", mock.Anything, "abc").Return(token, nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 1).
		Return(&models.Climber{BookingID: 42, SeatIndex: 1, DetailsComplete: true}, nil)

	_, err := service.SubmitDetails(context.Background(), "abc", ClimberDetailsPayload{
		FullName: "Second Person",
		Email:    "second@example.com",
	})

	assert.ErrorIs(t, err, ErrDetailsAlreadyCompleted)
	tokenRepo.AssertNotCalled(t, "CompleteSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitDetailsLosesRace(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	service := newTokenService(tokenRepo, new(mockBookingRepo))

	token := openToken("abc", 1)
	tokenRepo.On("FindByCode", mock.Anything, "abc").Return(token, nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 1).
		Return(&models.Climber{BookingID: 42, SeatIndex: 1}, nil)
	tokenRepo.On("CompleteSubmission", mock.Anything, mock.Anything, token.ID, tokenNow).
		Return(repositories.ErrAlreadyCompleted)

	_, err := service.SubmitDetails(context.Background(), "abc", ClimberDetailsPayload{
		FullName: "Late Arrival",
		Email:    "late@example.com",
	})

	assert.ErrorIs(t, err, ErrDetailsAlreadyCompleted)
}

func TestGetGroupStateSuccess(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)
	tokenRepo.On("FindOpenForSeat", mock.Anything, uint(42), 1, tokenNow).Return(openToken("seat1", 1), nil)
	tokenRepo.On("FindOpenForSeat", mock.Anything, uint(42), 2, tokenNow).Return(nil, repositories.ErrNotFound)

	state, err := service.GetGroupState(context.Background(), "KH-ABC123", "ASHA@example.com")

	assert.NoError(t, err)
	assert.Equal(t, 3, state.TotalClimbers)
	assert.Equal(t, 1, state.CompleteCount)
	assert.Len(t, state.Seats, 3)
	assert.True(t, state.Seats[0].DetailsComplete)
	assert.Equal(t, "seat1", state.Seats[1].TokenCode)
	assert.Empty(t, state.Seats[2].TokenCode)
}

func TestGetGroupStateWrongEmail(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(new(mockTokenRepo), bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)

	_, err := service.GetGroupState(context.Background(), "KH-ABC123", "intruder@example.com")

	assert.ErrorIs(t, err, ErrManageForbidden)
}

func TestGetGroupStateUnknownRefSameError(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(new(mockTokenRepo), bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-NOPE").Return(nil, repositories.ErrNotFound)

	_, err := service.GetGroupState(context.Background(), "KH-NOPE", "asha@example.com")

	// Unknown ref and wrong email are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrManageForbidden)
}

func TestLeadUpdateClimberSeatOutOfRange(t *testing.T) {
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(new(mockTokenRepo), bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)

	_, err := service.LeadUpdateClimber(context.Background(), "KH-ABC123", "asha@example.com", 5,
		ClimberDetailsPayload{FullName: "X", Email: "x@example.com"})

	assert.ErrorIs(t, err, ErrSeatOutOfRange)
}

func TestLeadUpdateClimberConsumesOpenToken(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	token := openToken("seat2", 2)
	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 2).
		Return(&models.Climber{BookingID: 42, SeatIndex: 2}, nil)
	tokenRepo.On("FindOpenForSeat", mock.Anything, uint(42), 2, tokenNow).Return(token, nil)
	tokenRepo.On("CompleteSubmission", mock.Anything, mock.Anything, token.ID, tokenNow).Return(nil)

	climber, err := service.LeadUpdateClimber(context.Background(), "KH-ABC123", "asha@example.com", 2,
		ClimberDetailsPayload{FullName: "Neema Lyimo", Email: "neema@example.com"})

	assert.NoError(t, err)
	assert.Equal(t, "Neema Lyimo", climber.FullName)
	tokenRepo.AssertExpectations(t)
}

func TestReissueTokenMintsFreshCode(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 1).
		Return(&models.Climber{BookingID: 42, SeatIndex: 1}, nil)
	tokenRepo.On("ExpireOpenForSeat", mock.Anything, uint(42), 1, tokenNow).Return(nil)
	tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(token *models.ClimberDetailToken) bool {
		return token.Code == "fresh-code-123" && token.SeatIndex == 1 && token.BookingID == 42
	})).Return(nil)

	token, err := service.ReissueToken(context.Background(), "KH-ABC123", "asha@example.com", 1)

	assert.NoError(t, err)
	assert.Equal(t, "fresh-code-123", token.Code)
	assert.True(t, token.ExpiresAt.After(tokenNow))
	tokenRepo.AssertExpectations(t)
}

func TestReissueTokenCompletedSeatRejected(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	bookingRepo := new(mockBookingRepo)
	service := newTokenService(tokenRepo, bookingRepo)

	bookingRepo.On("FindByRef", mock.Anything, "KH-ABC123").Return(testBooking(), nil)
	tokenRepo.On("FindClimber", mock.Anything, uint(42), 0).
		Return(&models.Climber{BookingID: 42, SeatIndex: 0, DetailsComplete: true}, nil)

	_, err := service.ReissueToken(context.Background(), "KH-ABC123", "asha@example.com", 0)

	assert.ErrorIs(t, err, ErrDetailsAlreadyCompleted)
	tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
