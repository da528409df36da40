package systemlog

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace-backend/internal/models"

	"gorm.io/gorm"
)

// Actor identifies who triggered a mutation.
type Actor struct {
	AdminID   uint
	AdminName string
	RequestID string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type Entry struct {
	EntityType  string
	EntityID    uint
	Action      models.LogAction
	Description string
	Before      any
	After       any
}

// Write stores e through tx, so the log row commits or rolls back together
// with the change it describes.
func Write(ctx context.Context, tx *gorm.DB, e Entry) error {
	actor := ActorFrom(ctx)

	row := models.SystemLog{
		AdminName:   actor.AdminName,
		RequestID:   actor.RequestID,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
		BeforeData:  marshal(e.Before),
		AfterData:   marshal(e.After),
	}
	if actor.AdminID != 0 {
		id := actor.AdminID
		row.AdminID = &id
	}

	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("could not write system log: %w", err)
	}
	return nil
}

func marshal(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type Filter struct {
	EntityType string
	EntityID   uint
	AdminID    uint
	Limit      int
}

// List returns matching log rows, newest first.
func List(ctx context.Context, db *gorm.DB, f Filter) ([]models.SystemLog, error) {
	q := db.WithContext(ctx).Model(&models.SystemLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.AdminID != 0 {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.SystemLog
	if err := q.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
