package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
)

// ImageRemover deletes stored images without blocking the caller.
type ImageRemover interface {
	Remove(urls ...string)
}

type EventService interface {
	List(ctx context.Context, query dto.ListEventsQuery) (*dto.EventList, error)
	Get(ctx context.Context, id string) (*models.EventSummary, error)
	Create(ctx context.Context, caller *models.User, req dto.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error)
	AdminUpdate(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error)
	Delete(ctx context.Context, caller *models.User, id string) (*dto.DeleteResult, error)
	ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.StatusRequest) (*dto.StatusChangeResult, error)
	AdminGet(ctx context.Context, caller *models.User, id string) (*dto.AdminEventView, error)
	ListOwned(ctx context.Context, caller *models.User) ([]models.EventSummary, error)
	GetOwned(ctx context.Context, caller *models.User, id string) (*models.EventSummary, error)
	// SendReminders notifies subscribers of active events starting within window. It returns the
	// number of notifications created.
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

type eventService struct {
	store    repository.Store
	notifier *Notifier
	images   ImageRemover
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewEventService(store repository.Store, notifier *Notifier, images ImageRemover, loc *time.Location, log zerolog.Logger) EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		store:    store,
		notifier: notifier,
		images:   images,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *eventService) removeImages(urls ...string) {
	if s.images != nil {
		s.images.Remove(urls...)
	}
}

func eventLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *eventService) List(ctx context.Context, query dto.ListEventsQuery) (*dto.EventList, error) {
	page, limit := repository.Page(query.Page, query.Limit, 10, 100)
	events, total, err := s.store.Events().List(ctx, repository.EventFilter{
		Page:     page,
		Limit:    limit,
		Category: filterValue(query.Category),
		Status:   filterValue(query.Status),
		Search:   strings.TrimSpace(query.Search),
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.EventSummary{}
	}
	return &dto.EventList{Events: events, Pagination: dto.NewPagination(page, limit, total)}, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*models.EventSummary, error) {
	event, err := s.store.Events().FindSummary(ctx, id)
	if err != nil {
		return nil, eventLookupError(err)
	}
	return event, nil
}

// Create stores a new event. Admin events go live immediately, everyone else's wait for moderation.
func (s *eventService) Create(ctx context.Context, caller *models.User, req dto.CreateEventRequest) (*models.Event, error) {
	req.Title = plainText(req.Title)
	req.Description = richText(req.Description)
	req.Location = plainText(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Category = strings.TrimSpace(req.Category)

	if err := validate(ctx, req); err != nil {
		return nil, err
	}
	banner, err := validImageURL(req.Banner, "banner")
	if err != nil {
		return nil, err
	}

	start, err := models.ParseStart(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	if !start.After(s.now()) {
		return nil, ErrPastDate
	}

	status := models.EventStatusPending
	if caller.IsAdmin() {
		status = models.EventStatusActive
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    req.Category,
		Status:      status,
		Banner:      banner,
		CreatedBy:   caller.ID,
	}
	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info().Str("event_id", event.ID).Str("user_id", caller.ID).Str("status", status).Msg("event created")
	return event, nil
}

func (s *eventService) Update(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error) {
	return s.update(ctx, caller, id, req, false)
}

// AdminUpdate is Update plus ownership transfer, reserved for moderators.
func (s *eventService) AdminUpdate(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error) {
	if err := Authorize(caller, "", ActionEventModerate); err != nil {
		return nil, err
	}
	return s.update(ctx, caller, id, req, true)
}

func normalizeUpdate(req *dto.UpdateEventRequest) {
	sanitize := func(p *string, fn func(string) string) *string {
		if p = trimmed(p); p == nil {
			return nil
		}
		v := fn(*p)
		if v == "" {
			return nil
		}
		return &v
	}
	req.Title = sanitize(req.Title, plainText)
	req.Description = sanitize(req.Description, richText)
	req.Location = sanitize(req.Location, plainText)
	req.Date = trimmed(req.Date)
	req.Time = trimmed(req.Time)
	req.Category = trimmed(req.Category)
	req.Status = trimmed(req.Status)
	req.CreatedBy = trimmed(req.CreatedBy)
	if req.Banner != nil {
		b := strings.TrimSpace(*req.Banner)
		req.Banner = &b
	}
}

func (s *eventService) update(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest, adminRoute bool) (*dto.UpdateResult, error) {
	normalizeUpdate(&req)
	if err := validate(ctx, req); err != nil {
		return nil, err
	}
	if req.Banner != nil && *req.Banner != "" {
		if _, err := validImageURL(req.Banner, "banner"); err != nil {
			return nil, err
		}
	}

	var (
		result    *dto.UpdateResult
		sent      []models.Notification
		oldBanner string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().FindByID(ctx, id)
		if err != nil {
			return eventLookupError(err)
		}
		if err := Authorize(caller, event.CreatedBy, ActionEventUpdate); err != nil {
			return err
		}

		next := *event
		fields := map[string]any{}
		visible := false // a field subscribers can see changed

		set := func(column string, current *string, value *string, userFacing bool) {
			if value == nil || *value == *current {
				return
			}
			*current = *value
			fields[column] = *value
			if userFacing {
				visible = true
			}
		}
		set("title", &next.Title, req.Title, true)
		set("description", &next.Description, req.Description, true)
		set("location", &next.Location, req.Location, true)
		set("category", &next.Category, req.Category, false)
		set("date", &next.Date, req.Date, true)
		set("time", &next.Time, req.Time, true)
		scheduleChanged := next.Date != event.Date || next.Time != event.Time
		if scheduleChanged {
			fields["reminder_sent_at"] = nil
		}

		if req.Banner != nil {
			current := ""
			if event.Banner != nil {
				current = *event.Banner
			}
			if *req.Banner != current {
				if *req.Banner == "" {
					fields["banner"] = nil
					next.Banner = nil
				} else {
					fields["banner"] = *req.Banner
					next.Banner = req.Banner
				}
				oldBanner = current
			}
		}

		var newOwner string
		if adminRoute && req.CreatedBy != nil && *req.CreatedBy != event.CreatedBy {
			if _, err := tx.Users().FindByID(ctx, *req.CreatedBy); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			newOwner = *req.CreatedBy
			fields["created_by"] = newOwner
			next.CreatedBy = newOwner
		}

		// status
		if req.Status != nil {
			if *req.Status != event.Status {
				if err := Authorize(caller, event.CreatedBy, ActionEventSetStatus); err != nil {
					return err
				}
				if *req.Status == models.EventStatusActive && Authorize(caller, event.CreatedBy, ActionEventActivate) != nil {
					return ErrStatusNotAllowed
				}
			}
			next.Status = *req.Status
		}
		// editing a cancelled event resubmits it for moderation; only an admin may pick another status
		if event.Status == models.EventStatusCancelled && (len(fields) > 0 || next.Status != event.Status) &&
			(req.Status == nil || !caller.IsAdmin()) {
			next.Status = models.EventStatusPending
		}
		statusChanged := next.Status != event.Status

		start, err := next.StartsAt(s.loc)
		if err != nil {
			return ErrInvalidDateTime
		}
		future := start.After(s.now())
		if scheduleChanged && !caller.IsAdmin() && !future {
			return ErrPastDate
		}
		if next.Status == models.EventStatusActive && (statusChanged || scheduleChanged) && !future {
			return ErrPastActivation
		}

		if statusChanged {
			fields["status"] = next.Status
			visible = true
		}

		result = &dto.UpdateResult{EventID: id, StatusChanged: statusChanged}
		if len(fields) == 0 {
			oldBanner = ""
			return nil
		}
		if err := tx.Events().Update(ctx, id, fields); err != nil {
			return err
		}

		var notes []models.Notification
		if visible {
			subscribers, err := tx.Subscriptions().SubscriberIDs(ctx, id)
			if err != nil {
				return err
			}
			byAdmin := caller.IsAdmin() && caller.ID != event.CreatedBy
			for _, uid := range subscribers {
				if statusChanged {
					notes = append(notes, statusChangeNotification(uid, &next, next.Status))
				} else {
					notes = append(notes, eventUpdateNotification(uid, &next, byAdmin))
				}
			}
		}
		if newOwner != "" {
			notes = append(notes, ownershipNotification(newOwner, &next))
		}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		sent = notes
		result.NotificationsCreated = len(notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	if oldBanner != "" {
		s.removeImages(oldBanner)
	}
	s.log.Info().
		Str("event_id", id).
		Str("user_id", caller.ID).
		Bool("status_changed", result.StatusChanged).
		Int("notifications", result.NotificationsCreated).
		Msg("event updated")
	return result, nil
}

func (s *eventService) Delete(ctx context.Context, caller *models.User, id string) (*dto.DeleteResult, error) {
	var (
		result *dto.DeleteResult
		sent   []models.Notification
		banner string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().FindByID(ctx, id)
		if err != nil {
			return eventLookupError(err)
		}
		if err := Authorize(caller, event.CreatedBy, ActionEventDelete); err != nil {
			return err
		}

		byAdmin := caller.IsAdmin() && caller.ID != event.CreatedBy
		notes, err := deleteEvents(ctx, tx, s.notifier, []models.Event{*event}, byAdmin, "")
		if err != nil {
			return err
		}
		sent = notes
		if event.Banner != nil {
			banner = *event.Banner
		}
		result = &dto.DeleteResult{
			EventID:             id,
			EventTitle:          event.Title,
			SubscribersNotified: len(notes),
			ImageDeleted:        banner != "",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	if banner != "" {
		s.removeImages(banner)
	}
	s.log.Info().Str("event_id", id).Str("user_id", caller.ID).Int("notified", len(sent)).Msg("event deleted")
	return result, nil
}

// deleteEvents removes events together with their subscriptions and notifications and stages
// one cancellation notice for every prior subscriber except skipUser. The notices carry no
// event reference so they survive the cascade.
func deleteEvents(ctx context.Context, tx repository.Store, notifier *Notifier, events []models.Event, byAdmin bool, skipUser string) ([]models.Notification, error) {
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(events))
	var notes []models.Notification
	for i := range events {
		ev := &events[i]
		ids = append(ids, ev.ID)
		subscribers, err := tx.Subscriptions().SubscriberIDs(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		for _, uid := range subscribers {
			if uid == skipUser {
				continue
			}
			notes = append(notes, cancellationNotification(uid, ev, byAdmin))
		}
	}

	if err := tx.Notifications().DeleteByEvents(ctx, ids...); err != nil {
		return nil, err
	}
	if err := tx.Subscriptions().DeleteByEvents(ctx, ids...); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := tx.Events().Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := notifier.Stage(ctx, tx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// ChangeStatus is the moderation path: any status, no date check, and every subscriber plus
// the owner hears about it exactly once.
func (s *eventService) ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.StatusRequest) (*dto.StatusChangeResult, error) {
	if err := Authorize(caller, "", ActionEventModerate); err != nil {
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
		result *dto.StatusChangeResult
		sent   []models.Notification
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().FindByID(ctx, id)
		if err != nil {
			return eventLookupError(err)
		}
		result = &dto.StatusChangeResult{EventID: id, PreviousStatus: event.Status, Status: req.Status}
		if event.Status == req.Status {
			return nil
		}

		if err := tx.Events().Update(ctx, id, map[string]any{"status": req.Status}); err != nil {
			return err
		}
		event.Status = req.Status

		subscribers, err := tx.Subscriptions().SubscriberIDs(ctx, id)
		if err != nil {
			return err
		}
		notes := make([]models.Notification, 0, len(subscribers)+1)
		ownerSubscribed := false
		for _, uid := range subscribers {
			if uid == event.CreatedBy {
				ownerSubscribed = true
			}
			notes = append(notes, statusChangeNotification(uid, event, req.Status))
		}
		if !ownerSubscribed {
			notes = append(notes, ownerStatusChangeNotification(event, req.Status))
		}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		sent = notes
		result.NotificationsCreated = len(notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, sent)
	s.log.Info().
		Str("event_id", id).
		Str("from", result.PreviousStatus).
		Str("status", result.Status).
		Int("notifications", result.NotificationsCreated).
		Msg("event status changed")
	return result, nil
}

func (s *eventService) AdminGet(ctx context.Context, caller *models.User, id string) (*dto.AdminEventView, error) {
	if err := Authorize(caller, "", ActionEventModerate); err != nil {
		return nil, err
	}
	event, err := s.store.Events().FindSummary(ctx, id)
	if err != nil {
		return nil, eventLookupError(err)
	}
	subscribers, err := s.store.Subscriptions().ListSubscribers(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscribers == nil {
		subscribers = []models.Subscriber{}
	}
	return &dto.AdminEventView{EventSummary: *event, Subscribers: subscribers}, nil
}

func (s *eventService) ListOwned(ctx context.Context, caller *models.User) ([]models.EventSummary, error) {
	events, err := s.store.Events().ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.EventSummary{}
	}
	return events, nil
}

func (s *eventService) GetOwned(ctx context.Context, caller *models.User, id string) (*models.EventSummary, error) {
	event, err := s.store.Events().FindSummary(ctx, id)
	if err != nil {
		return nil, eventLookupError(err)
	}
	if event.CreatedBy != caller.ID {
		return nil, ErrEventNotOwned
	}
	return event, nil
}

func (s *eventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now().In(s.loc)
	until := now.Add(window)

	events, err := s.store.Events().ListDueForReminder(ctx, now.Format(models.DateLayout), until.Format(models.DateLayout))
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range events {
		ev := &events[i]
		start, err := ev.StartsAt(s.loc)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("skipping reminder for malformed event")
			continue
		}
		if start.Before(now) || start.After(until) {
			continue
		}

		var notes []models.Notification
		err = s.store.WithTx(ctx, func(tx repository.Store) error {
			// another replica or an eventctl run may have claimed it since the scan
			claimed, err := tx.Events().ClaimReminder(ctx, ev.ID, now)
			if err != nil || claimed == 0 {
				return err
			}
			subscribers, err := tx.Subscriptions().SubscriberIDs(ctx, ev.ID)
			if err != nil {
				return err
			}
			for _, uid := range subscribers {
				notes = append(notes, reminderNotification(uid, ev))
			}
			return s.notifier.Stage(ctx, tx, notes)
		})
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to send reminders")
			continue
		}
		s.notifier.Dispatch(ctx, notes)
		total += len(notes)
	}

	if total > 0 {
		s.log.Info().Int("notifications", total).Msg("event reminders sent")
	}
	return total, nil
}
