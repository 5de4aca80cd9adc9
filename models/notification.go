package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is the durable per-recipient record written whenever a push
// is attempted, independent of whether the push itself succeeded.
type Notification struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID     `json:"userId" bson:"userId"`
	Type        string                 `json:"type" bson:"type"`
	Title       string                 `json:"title" bson:"title"`
	Message     string                 `json:"message" bson:"message"`
	EmergencyID primitive.ObjectID     `json:"emergencyId,omitempty" bson:"emergencyId,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	IsRead      bool                   `json:"isRead" bson:"isRead"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
}

// Notification event kinds
const (
	NotificationNewEmergency     = "new_emergency"
	NotificationVolunteerAssigned = "volunteer_assigned"
	NotificationStatusUpdate     = "status_update"
	NotificationEmergencyResolved = "emergency_resolved"
)

// NotificationEvent is the unit of work handed to the dispatch worker after
// the primary mutation has committed.
type NotificationEvent struct {
	Kind      string
	Emergency Emergency
	ActorName string // responding volunteer, when relevant
}

// DispatchResult carries per-token outcome counts from one multicast push.
type DispatchResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}
