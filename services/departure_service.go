package services

import (
	"context"
	"errors"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/configs/configsredis"
	"kiliheights.com/models"
	"kiliheights.com/pkg/cache"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
)

// DepartureServiceError covers departure CRUD failures.
type DepartureServiceError string

func (e DepartureServiceError) Error() string { return string(e) }

const (
	ErrDepartureNotFound   DepartureServiceError = "departure not found"
	ErrDepartureValidation DepartureServiceError = "invalid departure fields"
	ErrDepartureRouteGone  DepartureServiceError = "departure route not found"
	ErrGenerateBadRange    DepartureServiceError = "invalid bulk generation range"
)

// maxBulkGeneration bounds one bulk run to roughly two seasons of weekly
// departures.
const maxBulkGeneration = 60

// DepartureInput is the admin create/update payload.
type DepartureInput struct {
	RouteID         uint       `json:"routeId" form:"route_id"`
	ArrivalDate     time.Time  `json:"arrivalDate" form:"arrival_date"`
	StartDate       time.Time  `json:"startDate" form:"start_date"`
	SummitDate      *time.Time `json:"summitDate" form:"summit_date"`
	EndDate         time.Time  `json:"endDate" form:"end_date"`
	Price           float64    `json:"price" form:"price"`
	Currency        string     `json:"currency" form:"currency"`
	MinParticipants int        `json:"minParticipants" form:"min_participants"`
	MaxParticipants int        `json:"maxParticipants" form:"max_participants"`

	Status              models.DepartureStatus `json:"status" form:"status"`
	IsFullMoon          bool                   `json:"isFullMoon" form:"is_full_moon"`
	IsGuaranteed        bool                   `json:"isGuaranteed" form:"is_guaranteed"`
	IsManuallyFeatured  bool                   `json:"isManuallyFeatured" form:"is_manually_featured"`
	ExcludeFromRotation bool                   `json:"excludeFromRotation" form:"exclude_from_rotation"`
	InternalNotes       string                 `json:"internalNotes" form:"internal_notes"`
	PublicNotes         string                 `json:"publicNotes" form:"public_notes"`
}

// Validate enforces the model invariants before anything reaches the DB.
func (in DepartureInput) Validate() error {
	if in.RouteID == 0 || in.ArrivalDate.IsZero() || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return ErrDepartureValidation
	}
	if in.EndDate.Before(in.StartDate) || in.StartDate.Before(in.ArrivalDate) {
		return ErrDepartureValidation
	}
	if in.MinParticipants < 1 || in.MaxParticipants < 1 || in.MinParticipants > in.MaxParticipants {
		return ErrDepartureValidation
	}
	if in.Price < 0 {
		return ErrDepartureValidation
	}
	return nil
}

// GenerateRequest describes a bulk date-range generation: one departure per
// chosen weekday between From and Until, built from the template input.
type GenerateRequest struct {
	RouteID  uint           `json:"routeId" form:"route_id"`
	From     time.Time      `json:"from" form:"from"`
	Until    time.Time      `json:"until" form:"until"`
	Weekday  time.Weekday   `json:"weekday" form:"weekday"`
	Template DepartureInput `json:"template" form:"template"`
}

// IDepartureService covers admin departure management.
type IDepartureService interface {
	CreateDeparture(ctx context.Context, createdByUserID uint, in DepartureInput) (*models.GroupDeparture, error)
	GenerateDepartures(ctx context.Context, createdByUserID uint, req GenerateRequest) ([]models.GroupDeparture, error)
	GetDepartureByID(ctx context.Context, id uint) (*models.GroupDeparture, error)
	ListDepartures(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ListUpcomingByRoute(ctx context.Context, routeID uint) ([]models.GroupDeparture, error)
	UpdateDeparture(ctx context.Context, id uint, updatedByUserID uint, in DepartureInput) error
	DeleteDeparture(ctx context.Context, id uint, deletedByUserID uint) error
}

type DepartureService struct {
	repo          repositories.IDepartureRepository
	routeRepo     repositories.IRouteRepository
	featuredCache *cache.FeaturedCache
	now           func() time.Time
}

func NewDepartureService() IDepartureService {
	return &DepartureService{
		repo:          repositories.NewDepartureRepository(),
		routeRepo:     repositories.NewRouteRepository(),
		featuredCache: cache.NewFeaturedCache(configsredis.GetRedis(), 10*time.Minute),
		now:           time.Now,
	}
}

func (s *DepartureService) CreateDeparture(ctx context.Context, createdByUserID uint, in DepartureInput) (*models.GroupDeparture, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.routeRepo.FindByID(ctx, in.RouteID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartureRouteGone
		}
		return nil, err
	}

	departure := departureFromInput(in)
	ctx = models.ContextWithUserID(ctx, createdByUserID)
	if err := s.repo.Create(ctx, &departure); err != nil {
		configslog.Log.Error("departure creation failed", zap.Uint("routeID", in.RouteID), zap.Error(err))
		return nil, err
	}

	s.invalidateFeatured(ctx)
	configslog.SLog.Infof("departure created: ID %d route %d arriving %s",
		departure.ID, departure.RouteID, departure.ArrivalDate.Format("2006-01-02"))
	return &departure, nil
}

// GenerateDepartures creates one departure per matching weekday in the
// range, carrying the template's trek length onto each start.
func (s *DepartureService) GenerateDepartures(ctx context.Context, createdByUserID uint, req GenerateRequest) ([]models.GroupDeparture, error) {
	if req.RouteID == 0 || req.From.IsZero() || req.Until.IsZero() || req.Until.Before(req.From) {
		return nil, ErrGenerateBadRange
	}
	route, err := s.routeRepo.FindByID(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartureRouteGone
		}
		return nil, err
	}

	tpl := req.Template
	tpl.RouteID = req.RouteID
	if tpl.MinParticipants == 0 {
		tpl.MinParticipants = 2
	}
	if tpl.MaxParticipants == 0 {
		tpl.MaxParticipants = 12
	}
	if tpl.Currency == "" {
		tpl.Currency = route.Currency
	}
	if tpl.Price == 0 {
		tpl.Price = route.PriceFrom
	}
	trekDays := route.DurationDays
	if trekDays < 1 {
		trekDays = 1
	}

	var batch []models.GroupDeparture
	for day := req.From; !day.After(req.Until); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != req.Weekday {
			continue
		}
		if len(batch) >= maxBulkGeneration {
			return nil, ErrGenerateBadRange
		}
		in := tpl
		in.ArrivalDate = day
		in.StartDate = day.AddDate(0, 0, 1) // arrival day, trek starts next morning
		in.EndDate = in.StartDate.AddDate(0, 0, trekDays)
		if err := in.Validate(); err != nil {
			return nil, err
		}
		departure := departureFromInput(in)
		departure.Status = models.DepartureStatusDraft
		batch = append(batch, departure)
	}
	if len(batch) == 0 {
		return nil, ErrGenerateBadRange
	}

	ctx = models.ContextWithUserID(ctx, createdByUserID)
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		configslog.Log.Error("bulk departure generation failed",
			zap.Uint("routeID", req.RouteID), zap.Int("count", len(batch)), zap.Error(err))
		return nil, err
	}

	configslog.SLog.Infof("generated %d departures for route %s", len(batch), route.Slug)
	return batch, nil
}

func (s *DepartureService) GetDepartureByID(ctx context.Context, id uint) (*models.GroupDeparture, error) {
	departure, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartureNotFound
		}
		return nil, err
	}
	return departure, nil
}

func (s *DepartureService) ListDepartures(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	departures, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(departures, totalCount, params), nil
}

func (s *DepartureService) ListUpcomingByRoute(ctx context.Context, routeID uint) ([]models.GroupDeparture, error) {
	return s.repo.FindUpcomingByRoute(ctx, routeID, s.now().UTC())
}

func (s *DepartureService) UpdateDeparture(ctx context.Context, id uint, updatedByUserID uint, in DepartureInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDepartureNotFound
		}
		return err
	}
	if in.MaxParticipants < existing.BookedSpots {
		// Shrinking capacity below seats already sold would break the
		// booking invariant.
		return ErrDepartureValidation
	}

	existing.RouteID = in.RouteID
	existing.ArrivalDate = in.ArrivalDate
	existing.StartDate = in.StartDate
	existing.SummitDate = in.SummitDate
	existing.EndDate = in.EndDate
	existing.Price = in.Price
	if in.Currency != "" {
		existing.Currency = in.Currency
	}
	existing.MinParticipants = in.MinParticipants
	existing.MaxParticipants = in.MaxParticipants
	if in.Status != "" {
		existing.Status = in.Status
	}
	existing.IsFullMoon = in.IsFullMoon
	existing.IsGuaranteed = in.IsGuaranteed
	existing.IsManuallyFeatured = in.IsManuallyFeatured
	existing.ExcludeFromRotation = in.ExcludeFromRotation
	existing.InternalNotes = in.InternalNotes
	existing.PublicNotes = in.PublicNotes

	ctx = models.ContextWithUserID(ctx, updatedByUserID)
	if err := s.repo.Update(ctx, existing); err != nil {
		configslog.Log.Error("departure update failed", zap.Uint("id", id), zap.Error(err))
		return err
	}

	s.invalidateFeatured(ctx)
	configslog.SLog.Infof("departure updated: ID %d (by user %d)", id, updatedByUserID)
	return nil
}

func (s *DepartureService) DeleteDeparture(ctx context.Context, id uint, deletedByUserID uint) error {
	if err := s.repo.Delete(ctx, id, deletedByUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDepartureNotFound
		}
		return err
	}
	s.invalidateFeatured(ctx)
	configslog.SLog.Infof("departure deleted: ID %d (by user %d)", id, deletedByUserID)
	return nil
}

func (s *DepartureService) invalidateFeatured(ctx context.Context) {
	if err := s.featuredCache.Invalidate(ctx); err != nil {
		configslog.Log.Warn("failed to invalidate featured cache", zap.Error(err))
	}
}

func departureFromInput(in DepartureInput) models.GroupDeparture {
	status := in.Status
	if status == "" {
		status = models.DepartureStatusDraft
	}
	return models.GroupDeparture{
		RouteID:             in.RouteID,
		ArrivalDate:         in.ArrivalDate,
		StartDate:           in.StartDate,
		SummitDate:          in.SummitDate,
		EndDate:             in.EndDate,
		Price:               in.Price,
		Currency:            in.Currency,
		MinParticipants:     in.MinParticipants,
		MaxParticipants:     in.MaxParticipants,
		Status:              status,
		IsFullMoon:          in.IsFullMoon,
		IsGuaranteed:        in.IsGuaranteed,
		IsManuallyFeatured:  in.IsManuallyFeatured,
		ExcludeFromRotation: in.ExcludeFromRotation,
		InternalNotes:       in.InternalNotes,
		PublicNotes:         in.PublicNotes,
	}
}

var _ IDepartureService = (*DepartureService)(nil)
