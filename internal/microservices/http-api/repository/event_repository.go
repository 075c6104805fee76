package repository

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// EventFilter narrows the public event listing.
type EventFilter struct {
	Page     int
	Limit    int
	Category string
	Status   string
	Search   string
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindSummary(ctx context.Context, id string) (*models.EventSummary, error)
	List(ctx context.Context, filter EventFilter) ([]models.EventSummary, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.EventSummary, error)
	SummariesByIDs(ctx context.Context, ids []string) ([]models.EventSummary, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Event, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	UpdateStatusByOwner(ctx context.Context, ownerID, from, to string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	ListDueForReminder(ctx context.Context, fromDate, toDate string) ([]models.Event, error)
	ClaimReminder(ctx context.Context, id string, at time.Time) (int64, error)
	BannerOwners(ctx context.Context, publicID string) ([]string, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// summaries selects events joined with their creator and subscriber count.
func (r *eventRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("events AS e").
		Select(`e.*,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.event_id = e.id) AS subscriber_count,
			u.id AS creator_id, u.name AS creator_name, u.email AS creator_email, u.role AS creator_role`).
		Joins("LEFT JOIN users u ON u.id = e.created_by")
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", translate(err))
	}
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find event %s: %w", id, translate(err))
	}
	return &event, nil
}

func (r *eventRepository) FindSummary(ctx context.Context, id string) (*models.EventSummary, error) {
	var rows []models.EventSummary
	if err := r.summaries(ctx).Where("e.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find event %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("find event %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.EventSummary, int64, error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			q = q.Where("e.category = ?", filter.Category)
		}
		if filter.Status != "" {
			q = q.Where("e.status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + escapeLike(filter.Search) + "%"
			q = q.Where("(e.title ILIKE ? OR e.description ILIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Table("events AS e")).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	var events []models.EventSummary
	err := where(r.summaries(ctx)).
		Order("e.created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Scan(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := r.summaries(ctx).Where("e.created_by = ?", ownerID).Order("e.created_at DESC").Scan(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events of %s: %w", ownerID, err)
	}
	return events, nil
}

func (r *eventRepository) SummariesByIDs(ctx context.Context, ids []string) ([]models.EventSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []models.EventSummary
	if err := r.summaries(ctx).Where("e.id IN ?", ids).Scan(&events).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Where("created_by = ?", ownerID).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("find events of %s: %w", ownerID, err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update event %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete event %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *eventRepository) UpdateStatusByOwner(ctx context.Context, ownerID, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("created_by = ? AND status = ?", ownerID, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("move events of %s from %s to %s: %w", ownerID, from, to, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *eventRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Where("created_by = ?", ownerID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count events of %s: %w", ownerID, err)
	}
	return count, nil
}

type groupCount struct {
	Name  string
	Count int64
}

func (r *eventRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count events by %s: %w", column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Count
	}
	return out, nil
}

func (r *eventRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "status")
}

func (r *eventRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "category")
}

func (r *eventRepository) ListDueForReminder(ctx context.Context, fromDate, toDate string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_sent_at IS NULL AND date BETWEEN ? AND ?", models.EventStatusActive, fromDate, toDate).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("find events due for reminder: %w", err)
	}
	return events, nil
}

// ClaimReminder stamps reminder_sent_at unless another pass already did.
// It reports the number of rows claimed (0 or 1).
func (r *eventRepository) ClaimReminder(ctx context.Context, id string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		UpdateColumn("reminder_sent_at", at)
	if res.Error != nil {
		return 0, fmt.Errorf("claim reminder for %s: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// BannerOwners returns the distinct creators of events whose banner points at publicID.
func (r *eventRepository) BannerOwners(ctx context.Context, publicID string) ([]string, error) {
	var ids []string
	suffix := "%/" + escapeLike(publicID)
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("banner LIKE ? OR banner LIKE ?", suffix, suffix+".%").
		Distinct().Pluck("created_by", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("find banner owners: %w", err)
	}
	return ids, nil
}
