package repositories

import (
	"context"
	"errors"
	"fmt"

	"kiliheights.com/pkg/queryparams"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level miss every service translates into its
// own domain error.
var ErrNotFound = errors.New("record not found")

// IBaseRepository provides the CRUD surface shared by the simple catalog and
// content entities. Entities with real invariants (bookings, tokens,
// departures) get dedicated repositories instead.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint, deletedByUserID uint) error
	Count(ctx context.Context) (int64, error)
}

// BaseRepository implements IBaseRepository on top of a *gorm.DB handle,
// which may be the shared pool or an open transaction.
type BaseRepository[T any] struct {
	db                 *gorm.DB
	allowedSortColumns map[string]bool
	defaultSortColumn  string
}

// NewBaseRepository wraps db for entity T.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{
		db:                 db,
		allowedSortColumns: map[string]bool{"id": true, "created_at": true},
		defaultSortColumn:  "created_at",
	}
}

// SetAllowedSortColumns whitelists sortable columns; anything else falls back
// to the default so query params never reach the ORDER BY raw.
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	r.allowedSortColumns = allowed
}

func (r *BaseRepository[T]) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if entity == nil {
		return errors.New("cannot create nil entity")
	}
	return r.getDB(ctx).Create(entity).Error
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var entity T
	err := r.getDB(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// FindAllPaginated lists entities with optional query scopes (filters,
// preloads) applied before counting and paging.
func (r *BaseRepository[T]) FindAllPaginated(ctx context.Context, params queryparams.ListParams, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var entities []T
	var totalCount int64

	var model T
	query := r.getDB(ctx).Model(&model)
	for _, scope := range scopes {
		query = scope(query)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}
	if totalCount == 0 {
		return entities, 0, nil
	}

	sortColumn := r.defaultSortColumn
	if r.allowedSortColumns[params.SortBy] {
		sortColumn = params.SortBy
	}
	query = query.Order(fmt.Sprintf("%s %s", sortColumn, params.OrderBy))
	query = query.Limit(params.PerPage).Offset(params.CalculateOffset())

	if err := query.Find(&entities).Error; err != nil {
		return nil, totalCount, err
	}
	return entities, totalCount, nil
}

func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	if entity == nil {
		return errors.New("cannot update nil entity")
	}
	return r.getDB(ctx).Save(entity).Error
}

// Delete soft-deletes and records who did it. RowsAffected 0 maps to
// ErrNotFound so double deletes surface as such.
func (r *BaseRepository[T]) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	if id == 0 {
		return ErrNotFound
	}
	var model T
	db := r.getDB(ctx)

	if deletedByUserID != 0 {
		res := db.Model(&model).Where("id = ? AND deleted_at IS NULL", id).
			UpdateColumn("deleted_by", deletedByUserID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
	}

	res := db.Delete(&model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var model T
	var count int64
	err := r.getDB(ctx).Model(&model).Count(&count).Error
	return count, err
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)
