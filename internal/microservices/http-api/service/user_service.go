package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"
	"eventhub/internal/middleware/auth"

	"github.com/rs/zerolog"
)

type UserService interface {
	Profile(ctx context.Context, caller *models.User) (*dto.Profile, error)
	UpdateProfile(ctx context.Context, caller *models.User, req dto.UpdateProfileRequest) (*models.User, error)
	Stats(ctx context.Context, caller *models.User) (*dto.UserStats, error)
}

type userService struct {
	store      repository.Store
	images     ImageRemover
	bcryptCost int
	loc        *time.Location
	log        zerolog.Logger
	now        func() time.Time
}

func NewUserService(store repository.Store, images ImageRemover, bcryptCost int, loc *time.Location, log zerolog.Logger) UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &userService{
		store:      store,
		images:     images,
		bcryptCost: bcryptCost,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

func (s *userService) Profile(ctx context.Context, caller *models.User) (*dto.Profile, error) {
	if caller == nil {
		return nil, ErrNoToken
	}
	created, err := s.store.Events().CountByOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.store.Subscriptions().CountByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &dto.Profile{
		UserSummary: dto.NewUserSummary(caller),
		Stats:       dto.ProfileStats{EventsCreated: created, EventsSubscribed: subscribed},
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller *models.User, req dto.UpdateProfileRequest) (*models.User, error) {
	if caller == nil {
		return nil, ErrNoToken
	}
	req.Name = trimmed(req.Name)
	req.Email = trimmed(req.Email)
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	if err := validate(ctx, req); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil && *req.Name != caller.Name {
		fields["name"] = plainText(*req.Name)
	}
	if req.Email != nil && *req.Email != caller.Email {
		taken, err := s.store.Users().EmailTaken(ctx, *req.Email, caller.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		fields["email"] = *req.Email
	}

	var oldAvatar string
	if req.Avatar != nil {
		avatar := trimmed(req.Avatar)
		if avatar != nil {
			if _, err := validImageURL(avatar, "avatar"); err != nil {
				return nil, err
			}
		}
		current := ""
		if caller.Avatar != nil {
			current = *caller.Avatar
		}
		next := ""
		if avatar != nil {
			next = *avatar
		}
		if next != current {
			fields["avatar"] = avatar
			oldAvatar = current
		}
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" || auth.VerifyPassword(caller.Password, req.CurrentPassword) != nil {
			return nil, ErrWrongPassword
		}
		if len(req.NewPassword) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := auth.HashPassword(req.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = hashed
	}

	if len(fields) == 0 {
		return caller, nil
	}
	if err := s.store.Users().Update(ctx, caller.ID, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, userLookupError(err)
	}

	updated, err := s.store.Users().FindByID(ctx, caller.ID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if oldAvatar != "" && s.images != nil {
		s.images.Remove(oldAvatar)
	}
	s.log.Info().Str("user_id", caller.ID).Int("fields", len(fields)).Msg("profile updated")
	return updated, nil
}

// Stats counts upcoming events among the caller's subscriptions: active and not yet started.
func (s *userService) Stats(ctx context.Context, caller *models.User) (*dto.UserStats, error) {
	if caller == nil {
		return nil, ErrNoToken
	}
	mine, err := s.store.Events().CountByOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.Subscriptions().ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	stats := &dto.UserStats{MyEvents: mine, SubscribedEvents: int64(len(subs))}
	if len(subs) == 0 {
		return stats, nil
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.EventID)
	}
	events, err := s.store.Events().SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range events {
		if events[i].Status != models.EventStatusActive {
			continue
		}
		start, err := events[i].StartsAt(s.loc)
		if err != nil {
			continue
		}
		if start.After(now) {
			stats.UpcomingEvents++
		}
	}
	return stats, nil
}
