package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Page   int
	Limit  int
	Search string
	Role   string
	Status string
}

// GrowthPoint is the number of users registered in one calendar month.
type GrowthPoint struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]models.UserWithStats, int64, error)
	CountActiveAdmins(ctx context.Context, excludeID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	GrowthSince(ctx context.Context, since time.Time) ([]GrowthPoint, error)
	AvatarOwners(ctx context.Context, publicID string) ([]string, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error so callers never mistake a zero-value struct for a hit
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", strings.ToLower(email))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.UserWithStats, int64, error) {
	q := r.db.WithContext(ctx).Table("users AS u")
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		q = q.Where("u.name ILIKE ? OR u.email ILIKE ?", like, like)
	}
	if filter.Role != "" {
		q = q.Where("u.role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("u.status = ?", filter.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.UserWithStats
	err := q.Select(`u.*,
		(SELECT COUNT(*) FROM events e WHERE e.created_by = u.id) AS events_created,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.user_id = u.id) AS events_subscribed`).
		Order("u.created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Scan(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// CountActiveAdmins locks the matching admin rows, so inside a transaction two
// concurrent demotions cannot both see the other admin as remaining.
func (r *userRepository) CountActiveAdmins(ctx context.Context, excludeID string) (int64, error) {
	var ids []string
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ? AND status = ?", models.RoleAdmin, models.UserStatusActive)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return int64(len(ids)), nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *userRepository) GrowthSince(ctx context.Context, since time.Time) ([]GrowthPoint, error) {
	var points []GrowthPoint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("year, month").
		Order("year, month").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("user growth: %w", err)
	}
	return points, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// AvatarOwners returns the ids of users whose avatar URL points at the media asset publicID.
func (r *userRepository) AvatarOwners(ctx context.Context, publicID string) ([]string, error) {
	var ids []string
	suffix := "%/" + escapeLike(publicID)
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("avatar LIKE ? OR avatar LIKE ?", suffix, suffix+".%").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("find avatar owners: %w", err)
	}
	return ids, nil
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
