package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type AdminService interface {
	ListUsers(ctx context.Context, caller *models.User, query dto.ListUsersQuery) (*dto.UserList, error)
	GetUser(ctx context.Context, caller *models.User, id string) (*models.User, error)
	UpdateUser(ctx context.Context, caller *models.User, id string, req dto.AdminUpdateUserRequest) (*models.User, error)
	ChangeRole(ctx context.Context, caller *models.User, id string, req dto.RoleRequest) (*dto.RoleChangeResult, error)
	ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.UserStatusRequest) (*dto.UserStatusChangeResult, error)
	DeleteUser(ctx context.Context, caller *models.User, id string) (*dto.UserDeleteResult, error)
	Stats(ctx context.Context, caller *models.User) (*dto.AdminStats, error)
}

type adminService struct {
	store    repository.Store
	notifier *Notifier
	images   ImageRemover
	log      zerolog.Logger
	now      func() time.Time
}

func NewAdminService(store repository.Store, notifier *Notifier, images ImageRemover, log zerolog.Logger) AdminService {
	return &adminService{
		store:    store,
		notifier: notifier,
		images:   images,
		log:      log,
		now:      time.Now,
	}
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// filterValue treats "all" like an absent filter.
func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func (s *adminService) ListUsers(ctx context.Context, caller *models.User, query dto.ListUsersQuery) (*dto.UserList, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	page, limit := repository.Page(query.Page, query.Limit, 10, 100)
	users, total, err := s.store.Users().List(ctx, repository.UserFilter{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(query.Search),
		Role:   filterValue(query.Role),
		Status: filterValue(query.Status),
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserWithStats{}
	}
	return &dto.UserList{Users: users, Pagination: dto.NewPagination(page, limit, total)}, nil
}

func (s *adminService) GetUser(ctx context.Context, caller *models.User, id string) (*models.User, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// changeRole applies a role change inside tx and returns the notifications to stage.
func changeRole(ctx context.Context, tx repository.Store, caller, user *models.User, role string) (*dto.RoleChangeResult, []models.Notification, error) {
	if user.ID == caller.ID {
		return nil, nil, ErrOwnRole
	}
	result := &dto.RoleChangeResult{UserID: user.ID, PreviousRole: user.Role, Role: role}
	if user.Role == role {
		return result, nil, nil
	}

	if user.Role == models.RoleAdmin && role == models.RoleUser {
		others, err := tx.Users().CountActiveAdmins(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
		if others == 0 {
			return nil, nil, ErrLastAdmin
		}
	}

	if err := tx.Users().Update(ctx, user.ID, map[string]any{"role": role}); err != nil {
		return nil, nil, err
	}
	if role == models.RoleAdmin {
		activated, err := tx.Events().UpdateStatusByOwner(ctx, user.ID, models.EventStatusPending, models.EventStatusActive)
		if err != nil {
			return nil, nil, err
		}
		result.EventsActivated = activated
	}

	result.Changed = true
	user.Role = role
	return result, []models.Notification{roleChangeNotification(user.ID, result.PreviousRole, role, result.EventsActivated)}, nil
}

// changeStatus applies an account status change inside tx.
func changeStatus(ctx context.Context, tx repository.Store, caller, user *models.User, status string) (*dto.UserStatusChangeResult, []models.Notification, error) {
	if user.ID == caller.ID {
		return nil, nil, ErrOwnStatus
	}
	result := &dto.UserStatusChangeResult{UserID: user.ID, PreviousStatus: user.Status, Status: status}
	if user.Status == status {
		return result, nil, nil
	}

	if status == models.UserStatusSuspended && user.IsAdmin() {
		others, err := tx.Users().CountActiveAdmins(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
		if others == 0 {
			return nil, nil, ErrLastAdminSuspend
		}
	}

	if err := tx.Users().Update(ctx, user.ID, map[string]any{"status": status}); err != nil {
		return nil, nil, err
	}
	if status == models.UserStatusSuspended {
		// a suspended organizer cannot run live events
		affected, err := tx.Events().UpdateStatusByOwner(ctx, user.ID, models.EventStatusActive, models.EventStatusPending)
		if err != nil {
			return nil, nil, err
		}
		result.EventsAffected = affected
	}

	result.Changed = true
	user.Status = status
	return result, []models.Notification{accountStatusNotification(user.ID, status, result.EventsAffected)}, nil
}

func (s *adminService) ChangeRole(ctx context.Context, caller *models.User, id string, req dto.RoleRequest) (*dto.RoleChangeResult, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	req.Role = strings.TrimSpace(req.Role)
	if err := validate(ctx, req); err != nil {
		if errors.Is(err, ErrMissingFields) {
			return nil, ErrInvalidRole
		}
		return nil, err
	}

	var (
		result *dto.RoleChangeResult
		sent   []models.Notification
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if id == caller.ID {
			return ErrOwnRole
		}
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return userLookupError(err)
		}
		res, notes, err := changeRole(ctx, tx, caller, user, req.Role)
		if err != nil {
			return err
		}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		result, sent = res, notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	if result.Changed {
		s.log.Info().
			Str("user_id", id).
			Str("from", result.PreviousRole).
			Str("role", result.Role).
			Int64("events_activated", result.EventsActivated).
			Msg("user role changed")
	}
	return result, nil
}

func (s *adminService) ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.UserStatusRequest) (*dto.UserStatusChangeResult, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := validate(ctx, req); err != nil {
		if errors.Is(err, ErrMissingFields) {
			return nil, ErrInvalidStatus
		}
		return nil, err
	}

	var (
		result *dto.UserStatusChangeResult
		sent   []models.Notification
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if id == caller.ID {
			return ErrOwnStatus
		}
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return userLookupError(err)
		}
		res, notes, err := changeStatus(ctx, tx, caller, user, req.Status)
		if err != nil {
			return err
		}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		result, sent = res, notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	if result.Changed {
		s.log.Info().
			Str("user_id", id).
			Str("from", result.PreviousStatus).
			Str("status", result.Status).
			Int64("events_affected", result.EventsAffected).
			Msg("user status changed")
	}
	return result, nil
}

// UpdateUser edits profile fields directly; role and status go through the same rules as
// ChangeRole and ChangeStatus, all in one transaction.
func (s *adminService) UpdateUser(ctx context.Context, caller *models.User, id string, req dto.AdminUpdateUserRequest) (*models.User, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	req.Name = trimmed(req.Name)
	req.Email = trimmed(req.Email)
	req.Role = trimmed(req.Role)
	req.Status = trimmed(req.Status)
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	if err := validate(ctx, req); err != nil {
		return nil, err
	}

	var (
		updated *models.User
		sent    []models.Notification
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return userLookupError(err)
		}

		fields := map[string]any{}
		if req.Name != nil && *req.Name != user.Name {
			fields["name"] = plainText(*req.Name)
		}
		if req.Email != nil && *req.Email != user.Email {
			taken, err := tx.Users().EmailTaken(ctx, *req.Email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
			fields["email"] = *req.Email
		}
		if len(fields) > 0 {
			if err := tx.Users().Update(ctx, user.ID, fields); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return ErrEmailTaken
				}
				return err
			}
		}

		var notes []models.Notification
		if req.Role != nil && *req.Role != user.Role {
			_, n, err := changeRole(ctx, tx, caller, user, *req.Role)
			if err != nil {
				return err
			}
			notes = append(notes, n...)
		}
		if req.Status != nil && *req.Status != user.Status {
			_, n, err := changeStatus(ctx, tx, caller, user, *req.Status)
			if err != nil {
				return err
			}
			notes = append(notes, n...)
		}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		sent = notes

		updated, err = tx.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	s.log.Info().Str("user_id", id).Str("admin_id", caller.ID).Msg("user updated")
	return updated, nil
}

// DeleteUser removes the account and everything hanging off it. Subscribers of the user's
// events are told once per event; stored images are removed after commit.
func (s *adminService) DeleteUser(ctx context.Context, caller *models.User, id string) (*dto.UserDeleteResult, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}
	if id == caller.ID {
		return nil, ErrOwnAccount
	}

	var (
		result *dto.UserDeleteResult
		sent   []models.Notification
		images []string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return userLookupError(err)
		}
		if user.IsAdmin() && !user.IsSuspended() {
			others, err := tx.Users().CountActiveAdmins(ctx, user.ID)
			if err != nil {
				return err
			}
			if others == 0 {
				return ErrLastAdminDelete
			}
		}

		events, err := tx.Events().FindByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		notes, err := deleteEvents(ctx, tx, s.notifier, events, true, user.ID)
		if err != nil {
			return err
		}
		if err := tx.Subscriptions().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Notifications().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			return err
		}

		if user.Avatar != nil {
			images = append(images, *user.Avatar)
		}
		for _, ev := range events {
			if ev.Banner != nil {
				images = append(images, *ev.Banner)
			}
		}
		sent = notes
		result = &dto.UserDeleteResult{UserID: user.ID, EventsDeleted: len(events), SubscribersNotified: len(notes)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	if s.images != nil && len(images) > 0 {
		s.images.Remove(images...)
	}
	s.log.Info().
		Str("user_id", id).
		Str("admin_id", caller.ID).
		Int("events_deleted", result.EventsDeleted).
		Int("notified", result.SubscribersNotified).
		Msg("user deleted")
	return result, nil
}

func sortedCounts(m map[string]int64) []dto.KeyCount {
	out := make([]dto.KeyCount, 0, len(m))
	for k, v := range m {
		out = append(out, dto.KeyCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Stats runs the independent dashboard queries concurrently.
func (s *adminService) Stats(ctx context.Context, caller *models.User) (*dto.AdminStats, error) {
	if err := Authorize(caller, "", ActionUserManage); err != nil {
		return nil, err
	}

	var (
		stats      dto.AdminStats
		byStatus   map[string]int64
		byCategory map[string]int64
	)
	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month()-5, 1, 0, 0, 0, 0, time.UTC)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.store.Users().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalEvents, err = s.store.Events().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscriptions, err = s.store.Subscriptions().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.store.Events().CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.store.Events().CountByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.UserGrowth, err = s.store.Users().GrowthSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.ActiveEvents = byStatus[models.EventStatusActive]
	stats.EventsByStatus = sortedCounts(byStatus)
	stats.EventsByCategory = sortedCounts(byCategory)
	if stats.UserGrowth == nil {
		stats.UserGrowth = []repository.GrowthPoint{}
	}
	return &stats, nil
}
