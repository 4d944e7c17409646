package services

import (
	"context"
	"testing"
	"time"

	"kiliheights.com/models"
	"kiliheights.com/pkg/cache"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRouteRepo struct {
	mock.Mock
}

func (m *mockRouteRepo) Create(ctx context.Context, route *models.TrekkingRoute) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *mockRouteRepo) FindByID(ctx context.Context, id uint) (*models.TrekkingRoute, error) {
	args := m.Called(ctx, id)
	if route, ok := args.Get(0).(*models.TrekkingRoute); ok {
		return route, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRouteRepo) FindBySlug(ctx context.Context, slug string) (*models.TrekkingRoute, error) {
	args := m.Called(ctx, slug)
	if route, ok := args.Get(0).(*models.TrekkingRoute); ok {
		return route, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRouteRepo) FindPublished(ctx context.Context) ([]models.TrekkingRoute, error) {
	args := m.Called(ctx)
	routes, _ := args.Get(0).([]models.TrekkingRoute)
	return routes, args.Error(1)
}

func (m *mockRouteRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.TrekkingRoute, int64, error) {
	args := m.Called(ctx, params)
	routes, _ := args.Get(0).([]models.TrekkingRoute)
	return routes, args.Get(1).(int64), args.Error(2)
}

func (m *mockRouteRepo) Update(ctx context.Context, route *models.TrekkingRoute) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *mockRouteRepo) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	args := m.Called(ctx, id, deletedByUserID)
	return args.Error(0)
}

func (m *mockRouteRepo) CountDepartures(ctx context.Context, routeID uint) (int64, error) {
	args := m.Called(ctx, routeID)
	return args.Get(0).(int64), args.Error(1)
}

var departureNow = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func newDepartureService(repo *mockDepartureRepo, routeRepo *mockRouteRepo) *DepartureService {
	return &DepartureService{
		repo:          repo,
		routeRepo:     routeRepo,
		featuredCache: cache.NewFeaturedCache(nil, time.Minute),
		now:           func() time.Time { return departureNow },
	}
}

func lemosho() *models.TrekkingRoute {
	route := &models.TrekkingRoute{
		Slug:         "lemosho-8-day",
		Name:         "Lemosho Route",
		DurationDays: 8,
		PriceFrom:    2950,
		Currency:     "USD",
	}
	route.ID = 3
	return route
}

func TestGenerateDeparturesOnePerMatchingWeekday(t *testing.T) {
	repo := new(mockDepartureRepo)
	routeRepo := new(mockRouteRepo)
	service := newDepartureService(repo, routeRepo)

	routeRepo.On("FindByID", mock.Anything, uint(3)).Return(lemosho(), nil)

	var created []models.GroupDeparture
	repo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).([]models.GroupDeparture)
		}).Return(nil)

	// June 2026 has four Saturdays between the 1st and the 28th.
	batch, err := service.GenerateDepartures(context.Background(), 1, GenerateRequest{
		RouteID: 3,
		From:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Until:   time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		Weekday: time.Saturday,
	})

	assert.NoError(t, err)
	assert.Len(t, batch, 4)
	assert.Len(t, created, 4)
	for _, d := range created {
		assert.Equal(t, time.Saturday, d.ArrivalDate.Weekday())
		assert.Equal(t, models.DepartureStatusDraft, d.Status)
		// Trek starts the morning after arrival and runs the route length.
		assert.Equal(t, d.ArrivalDate.AddDate(0, 0, 1), d.StartDate)
		assert.Equal(t, d.StartDate.AddDate(0, 0, 8), d.EndDate)
		assert.Equal(t, float64(2950), d.Price)
	}
}

func TestGenerateDeparturesBadRange(t *testing.T) {
	service := newDepartureService(new(mockDepartureRepo), new(mockRouteRepo))

	_, err := service.GenerateDepartures(context.Background(), 1, GenerateRequest{
		RouteID: 3,
		From:    time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		Until:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Weekday: time.Saturday,
	})

	assert.ErrorIs(t, err, ErrGenerateBadRange)
}

func TestGenerateDeparturesUnknownRoute(t *testing.T) {
	repo := new(mockDepartureRepo)
	routeRepo := new(mockRouteRepo)
	service := newDepartureService(repo, routeRepo)

	routeRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, repositories.ErrNotFound)

	_, err := service.GenerateDepartures(context.Background(), 1, GenerateRequest{
		RouteID: 99,
		From:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Until:   time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		Weekday: time.Saturday,
	})

	assert.ErrorIs(t, err, ErrDepartureRouteGone)
}

func TestUpdateDepartureRejectsCapacityBelowBooked(t *testing.T) {
	repo := new(mockDepartureRepo)
	routeRepo := new(mockRouteRepo)
	service := newDepartureService(repo, routeRepo)

	existing := &models.GroupDeparture{
		RouteID:         3,
		BookedSpots:     8,
		MaxParticipants: 12,
		Status:          models.DepartureStatusOpen,
	}
	existing.ID = 4
	repo.On("FindByID", mock.Anything, uint(4)).Return(existing, nil)

	err := service.UpdateDeparture(context.Background(), 4, 1, DepartureInput{
		RouteID:         3,
		ArrivalDate:     departureNow.AddDate(0, 1, 0),
		StartDate:       departureNow.AddDate(0, 1, 1),
		EndDate:         departureNow.AddDate(0, 1, 9),
		MinParticipants: 2,
		MaxParticipants: 6, // below the eight seats already sold
	})

	assert.ErrorIs(t, err, ErrDepartureValidation)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDepartureInputValidate(t *testing.T) {
	valid := DepartureInput{
		RouteID:         3,
		ArrivalDate:     departureNow.AddDate(0, 1, 0),
		StartDate:       departureNow.AddDate(0, 1, 1),
		EndDate:         departureNow.AddDate(0, 1, 9),
		MinParticipants: 2,
		MaxParticipants: 12,
		Price:           2950,
	}
	assert.NoError(t, valid.Validate())

	endBeforeStart := valid
	endBeforeStart.EndDate = valid.StartDate.AddDate(0, 0, -2)
	assert.Error(t, endBeforeStart.Validate())

	minOverMax := valid
	minOverMax.MinParticipants = 15
	assert.Error(t, minOverMax.Validate())

	negativePrice := valid
	negativePrice.Price = -1
	assert.Error(t, negativePrice.Validate())
}
