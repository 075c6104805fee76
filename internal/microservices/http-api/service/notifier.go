package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnreadCache caches per-user unread notification counters.
type UnreadCache interface {
	UnreadCount(ctx context.Context, userID string) (int64, bool, error)
	SetUnreadCount(ctx context.Context, userID string, count int64) error
	InvalidateUnread(ctx context.Context, userIDs ...string) error
}

// NotificationPublisher forwards created notifications to other processes.
type NotificationPublisher interface {
	PublishNotifications(ctx context.Context, notifications []models.Notification) error
}

// FanOut publishes to every publisher in turn and joins their errors.
func FanOut(publishers ...NotificationPublisher) NotificationPublisher {
	return fanOut(publishers)
}

type fanOut []NotificationPublisher

func (f fanOut) PublishNotifications(ctx context.Context, notifications []models.Notification) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishNotifications(ctx, notifications); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notifier writes notifications inside the caller's transaction and announces
// them once that transaction has committed.
type Notifier struct {
	cache     UnreadCache
	publisher NotificationPublisher
	log       zerolog.Logger
}

func NewNotifier(cache UnreadCache, publisher NotificationPublisher, log zerolog.Logger) *Notifier {
	return &Notifier{cache: cache, publisher: publisher, log: log}
}

// Stage inserts notifications through tx.
func (n *Notifier) Stage(ctx context.Context, tx repository.Store, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := tx.Notifications().CreateMany(ctx, notifications); err != nil {
		return fmt.Errorf("stage notifications: %w", err)
	}
	return nil
}

// Dispatch runs the post-commit side effects. Failures are logged only.
func (n *Notifier) Dispatch(ctx context.Context, notifications []models.Notification) {
	if n == nil || len(notifications) == 0 {
		return
	}
	// the request may be cancelled right after the response is written
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if n.cache != nil {
		if err := n.cache.InvalidateUnread(ctx, recipients(notifications)...); err != nil {
			n.log.Warn().Err(err).Msg("failed to invalidate unread counters")
		}
	}
	if n.publisher != nil {
		if err := n.publisher.PublishNotifications(ctx, notifications); err != nil {
			n.log.Warn().Err(err).Int("count", len(notifications)).Msg("failed to publish notifications")
		}
	}
}

func recipients(notifications []models.Notification) []string {
	seen := make(map[string]bool, len(notifications))
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if !seen[n.UserID] {
			seen[n.UserID] = true
			ids = append(ids, n.UserID)
		}
	}
	return ids
}

// titleCase builds a fresh Caser per call; Casers are stateful.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func strPtr(s string) *string { return &s }

func eventNotification(userID string, event *models.Event, kind, title, message string) models.Notification {
	return models.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		EventID:    strPtr(event.ID),
		EventTitle: strPtr(event.Title),
		Type:       kind,
	}
}

func statusChangeNotification(userID string, event *models.Event, status string) models.Notification {
	n := eventNotification(userID, event, models.NotificationStatusChange, "Event Status Changed",
		fmt.Sprintf("The event \"%s\" is now %s.", event.Title, titleCase(status)))
	n.Status = strPtr(status)
	return n
}

func ownerStatusChangeNotification(event *models.Event, status string) models.Notification {
	n := eventNotification(event.CreatedBy, event, models.NotificationStatusChange, "Your Event Status Changed",
		fmt.Sprintf("Your event \"%s\" is now %s.", event.Title, titleCase(status)))
	n.Status = strPtr(status)
	return n
}

func eventUpdateNotification(userID string, event *models.Event, byAdmin bool) models.Notification {
	msg := fmt.Sprintf("The event \"%s\" has been updated. Check out the latest details!", event.Title)
	if byAdmin {
		msg = fmt.Sprintf("The event \"%s\" has been updated by an admin.", event.Title)
	}
	return eventNotification(userID, event, models.NotificationEventUpdate, "Event Updated", msg)
}

func ownershipNotification(userID string, event *models.Event) models.Notification {
	return eventNotification(userID, event, models.NotificationEventUpdate, "Event Ownership Transferred",
		fmt.Sprintf("You are now the organizer of \"%s\".", event.Title))
}

func newSubscriberNotification(event *models.Event, subscriber *models.User) models.Notification {
	return eventNotification(event.CreatedBy, event, models.NotificationNewSubscriber, "New Subscriber",
		fmt.Sprintf("%s subscribed to your event \"%s\"", subscriber.Name, event.Title))
}

// cancellationNotification has no event reference so that it outlives the deleted event.
func cancellationNotification(userID string, event *models.Event, byAdmin bool) models.Notification {
	msg := fmt.Sprintf("The event \"%s\" has been cancelled by the organizer.", event.Title)
	if byAdmin {
		msg = fmt.Sprintf("The event \"%s\" has been cancelled and removed by an admin.", event.Title)
	}
	return models.Notification{
		UserID:     userID,
		Title:      "Event Cancelled",
		Message:    msg,
		EventTitle: strPtr(event.Title),
		Type:       models.NotificationStatusChange,
		Status:     strPtr(models.EventStatusCancelled),
	}
}

func reminderNotification(userID string, event *models.Event) models.Notification {
	return eventNotification(userID, event, models.NotificationEventReminder, "Event Reminder",
		fmt.Sprintf("\"%s\" starts on %s at %s at %s.", event.Title, event.Date, event.Time, event.Location))
}

func roleChangeNotification(userID, from, to string, activated int64) models.Notification {
	msg := fmt.Sprintf("Your role has been changed from %s to %s.", titleCase(from), titleCase(to))
	if activated > 0 {
		msg += fmt.Sprintf(" %d pending event(s) are now active.", activated)
	}
	return models.Notification{
		UserID:  userID,
		Title:   "Role Updated",
		Message: msg,
		Type:    models.NotificationStatusChange,
	}
}

func accountStatusNotification(userID, status string, affected int64) models.Notification {
	n := models.Notification{
		UserID: userID,
		Type:   models.NotificationStatusChange,
	}
	if status == models.UserStatusSuspended {
		n.Title = "Account Suspended"
		n.Message = "Your account has been suspended by an administrator."
		if affected > 0 {
			n.Message += fmt.Sprintf(" %d active event(s) were moved to pending.", affected)
		}
	} else {
		n.Title = "Account Reactivated"
		n.Message = "Your account has been reactivated."
	}
	return n
}
