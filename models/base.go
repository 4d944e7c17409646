package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

// CtxUserIDKey carries the acting user's ID through a context so the audit
// hooks below can stamp CreatedBy/UpdatedBy without every call site touching
// the model directly. Public-facing writes (bookings, climber submissions)
// legitimately have no user and leave the audit columns nil.
const CtxUserIDKey contextKey = "audit_user_id"

// ContextWithUserID returns ctx with the acting user attached for the hooks.
func ContextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, CtxUserIDKey, userID)
}

// UserIDFromContext extracts the acting user, ok=false when absent.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(CtxUserIDKey).(uint)
	return id, ok && id != 0
}

// BaseModel is embedded by every persisted model: numeric PK, timestamps,
// soft delete and who-did-it audit columns.
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedBy *uint          `gorm:"index" json:"-"`
	UpdatedBy *uint          `json:"-"`
	DeletedBy *uint          `json:"-"`
}

// BeforeCreate stamps CreatedBy from the statement context when available.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID, ok := UserIDFromContext(tx.Statement.Context); ok {
		b.CreatedBy = &userID
	}
	return nil
}

// BeforeUpdate stamps UpdatedBy from the statement context when available.
func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID, ok := UserIDFromContext(tx.Statement.Context); ok {
		b.UpdatedBy = &userID
	}
	return nil
}
