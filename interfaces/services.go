package interfaces

import (
	"context"
	"time"

	"resqlink/models"
	"resqlink/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces consumed by the service layer. The Mongo repositories are
// the production implementations; tests substitute fakes.

type EmergencyStore interface {
	Create(ctx context.Context, emergency *models.Emergency) error
	GetByID(ctx context.Context, id string) (*models.Emergency, error)
	List(ctx context.Context, statuses []string, urgency string, limit int64) ([]models.Emergency, error)
	ListByReporter(ctx context.Context, userID string) ([]models.Emergency, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]models.Emergency, error)
	ListAll(ctx context.Context) ([]models.Emergency, error)
	Nearby(ctx context.Context, longitude, latitude float64, maxDistanceMeters int64, statuses []string, limit int64) ([]models.Emergency, error)

	// AddVolunteer appends the volunteer in a single conditional update; the
	// filter excludes documents that already contain the volunteer.
	AddVolunteer(ctx context.Context, emergencyID, volunteerID string) (*models.Emergency, error)
	PromoteToAssigned(ctx context.Context, emergencyID string) (*models.Emergency, error)
	TransitionStatus(ctx context.Context, id, to string, from []string) (*models.Emergency, error)
	Resolve(ctx context.Context, id string, from []string, resolvedAt time.Time, responseTimeMinutes int64) (*models.Emergency, error)
	AddNote(ctx context.Context, id string, note models.EmergencyNote) (*models.Emergency, error)
	Delete(ctx context.Context, id string) error

	CountByStatuses(ctx context.Context, statuses []string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountResolvedSince(ctx context.Context, since time.Time) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	GroupCounts(ctx context.Context, field string) ([]models.GroupCount, error)
	AverageResponseTime(ctx context.Context) (avg float64, resolved int64, err error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetNotifiableResponders(ctx context.Context, excludeUserID string) ([]models.User, error)
	ListAll(ctx context.Context, userType string) ([]models.User, error)
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
	CountAvailableVolunteers(ctx context.Context) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateMany(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// MulticastSender is the push provider surface the dispatcher relies on.
type MulticastSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg utils.PushMessage) (*models.DispatchResult, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// NotificationDeliverer performs the full fanout for one event: audience
// resolution, durable records, push and SMS delivery.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, event models.NotificationEvent)
}

// NotificationQueue hands fanout work to the background dispatch worker.
// Enqueue must never block the caller; it reports whether the event was
// accepted.
type NotificationQueue interface {
	Enqueue(event models.NotificationEvent) bool
}

// FeedBroadcaster pushes live events to connected responder sockets.
type FeedBroadcaster interface {
	BroadcastEvent(event models.WSEvent)
}
