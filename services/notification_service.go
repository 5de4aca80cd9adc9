package services

import (
	"context"
	"errors"
	"fmt"

	"resqlink/interfaces"
	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const inboxListLimit = 100

// NotificationService resolves the audience for lifecycle events, writes the
// durable per-recipient records and pushes to devices. The whole pipeline is
// best effort: every failure is logged and swallowed so the emergency
// operation that produced the event is never affected.
type NotificationService struct {
	notificationStore interfaces.NotificationStore
	userStore         interfaces.UserStore
	push              *PushService
	sms               interfaces.SMSSender
}

func NewNotificationService(
	notificationStore interfaces.NotificationStore,
	userStore interfaces.UserStore,
	push *PushService,
	sms interfaces.SMSSender,
) *NotificationService {
	return &NotificationService{
		notificationStore: notificationStore,
		userStore:         userStore,
		push:              push,
		sms:               sms,
	}
}

// Deliver fans one event out to its audience. Called from the dispatch
// worker, never from a request goroutine.
func (ns *NotificationService) Deliver(ctx context.Context, event models.NotificationEvent) {
	audience, err := ns.resolveAudience(ctx, event)
	if err != nil {
		logrus.Errorf("Failed to resolve audience for %s event: %v", event.Kind, err)
		return
	}
	if len(audience) == 0 {
		return
	}

	title, message := composeNotification(event)
	emergency := event.Emergency

	records := make([]models.Notification, 0, len(audience))
	tokens := make([]string, 0, len(audience))
	for i := range audience {
		records = append(records, models.Notification{
			UserID:      audience[i].ID,
			Type:        event.Kind,
			Title:       title,
			Message:     message,
			EmergencyID: emergency.ID,
			Data: map[string]interface{}{
				"emergencyId":   emergency.ID.Hex(),
				"emergencyType": emergency.EmergencyType,
				"urgency":       emergency.Urgency,
				"status":        emergency.Status,
			},
		})
		if audience[i].FCMToken != "" {
			tokens = append(tokens, audience[i].FCMToken)
		}
	}

	// Inbox records persist regardless of push outcome.
	if err := ns.notificationStore.CreateMany(ctx, records); err != nil {
		logrus.Errorf("Failed to persist notification records: %v", err)
	}

	result := ns.push.Dispatch(ctx, tokens, utils.PushMessage{
		Title: title,
		Body:  message,
		Data: map[string]string{
			"type":        event.Kind,
			"emergencyId": emergency.ID.Hex(),
		},
	})
	logrus.Debugf("Dispatched %s event: %d sent, %d failed",
		event.Kind, result.SuccessCount, result.FailureCount)

	if event.Kind == models.NotificationNewEmergency && emergency.Urgency == models.UrgencyCritical {
		ns.escalateBySMS(ctx, audience, message)
	}
}

// resolveAudience maps an event kind to the users who should hear about it.
func (ns *NotificationService) resolveAudience(ctx context.Context, event models.NotificationEvent) ([]models.User, error) {
	emergency := event.Emergency

	switch event.Kind {
	case models.NotificationNewEmergency:
		// Every active responder except the reporter.
		return ns.userStore.GetNotifiableResponders(ctx, emergency.UserID.Hex())

	case models.NotificationVolunteerAssigned:
		reporter, err := ns.userStore.GetByID(ctx, emergency.UserID.Hex())
		if err != nil {
			return nil, err
		}
		return []models.User{*reporter}, nil

	case models.NotificationStatusUpdate, models.NotificationEmergencyResolved:
		// The reporter and everyone already working the emergency.
		ids := make([]primitive.ObjectID, 0, len(emergency.AssignedVolunteers)+1)
		ids = append(ids, emergency.UserID)
		ids = append(ids, emergency.AssignedVolunteers...)
		return ns.userStore.GetUsersByIDs(ctx, ids)

	default:
		return nil, fmt.Errorf("unknown notification kind %q", event.Kind)
	}
}

// escalateBySMS texts responders that have a phone number on file. Critical
// emergencies only.
func (ns *NotificationService) escalateBySMS(ctx context.Context, audience []models.User, message string) {
	if ns.sms == nil {
		return
	}

	body := "CRITICAL EMERGENCY: " + message
	for i := range audience {
		if audience[i].ContactNumber == "" {
			continue
		}
		if err := ns.sms.SendSMS(ctx, audience[i].ContactNumber, body); err != nil {
			logrus.Warnf("SMS escalation to %s failed: %v", audience[i].ContactNumber, err)
		}
	}
}

func composeNotification(event models.NotificationEvent) (title, message string) {
	emergency := event.Emergency

	switch event.Kind {
	case models.NotificationNewEmergency:
		title = fmt.Sprintf("New %s Reported", emergency.EmergencyType)
		message = utils.TruncateString(emergency.Description, 120)
		if emergency.Location.Address != "" {
			message = fmt.Sprintf("%s near %s", message, emergency.Location.Address)
		}
	case models.NotificationVolunteerAssigned:
		title = "Volunteer Responding"
		message = fmt.Sprintf("%s is responding to your %s", event.ActorName, emergency.EmergencyType)
	case models.NotificationEmergencyResolved:
		title = "Emergency Resolved"
		message = fmt.Sprintf("The %s has been marked resolved", emergency.EmergencyType)
	default:
		title = "Emergency Update"
		message = fmt.Sprintf("The %s is now %s", emergency.EmergencyType, emergency.Status)
	}

	return title, message
}

// =================== INBOX ===================

func (ns *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, int64, error) {
	notifications, err := ns.notificationStore.ListByUser(ctx, userID, inboxListLimit)
	if err != nil {
		return nil, 0, utils.NewDatabaseError("list notifications", err)
	}

	unread, err := ns.notificationStore.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, utils.NewDatabaseError("count unread notifications", err)
	}

	return notifications, unread, nil
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := ns.notificationStore.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("Failed to count notifications")
	}
	return count, nil
}

func (ns *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	err := ns.notificationStore.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewNotFoundError("Notification")
		}
		return utils.NewDatabaseError("mark notification read", err)
	}
	return nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := ns.notificationStore.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.NewDatabaseError("mark notifications read", err)
	}
	return count, nil
}

func (ns *NotificationService) Delete(ctx context.Context, id, userID string) error {
	err := ns.notificationStore.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewNotFoundError("Notification")
		}
		return utils.NewDatabaseError("delete notification", err)
	}
	return nil
}
