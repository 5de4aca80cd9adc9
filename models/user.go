package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"` // never in JSON responses

	UserType      string `json:"userType" bson:"userType"` // user, volunteer, admin
	ContactNumber string `json:"contactNumber,omitempty" bson:"contactNumber,omitempty"`

	// Volunteer availability and push delivery address
	IsAvailable bool   `json:"isAvailable" bson:"isAvailable"`
	FCMToken    string `json:"-" bson:"fcmToken,omitempty"`

	// OAuth
	GoogleID       string `json:"-" bson:"googleId,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`

	IsActive bool       `json:"isActive" bson:"isActive"`
	LastSeen time.Time  `json:"lastSeen" bson:"lastSeen"`
	Location *GeoPoint  `json:"location,omitempty" bson:"location,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// User Type Constants
const (
	UserTypeUser      = "user"
	UserTypeVolunteer = "volunteer"
	UserTypeAdmin     = "admin"
)

// ResponderTypes are the user types eligible for broadcast notifications.
var ResponderTypes = []string{UserTypeVolunteer, UserTypeAdmin}

// IsResponder reports whether the user may claim and work emergencies.
func (u *User) IsResponder() bool {
	return u.UserType == UserTypeVolunteer || u.UserType == UserTypeAdmin
}

// UserSummary is the trimmed view embedded in emergency responses.
type UserSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	ContactNumber string             `json:"contactNumber,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
	}
}

// =================== REQUEST MODELS ===================

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type AdminUpdateUserRequest struct {
	Name          string `json:"name,omitempty"`
	UserType      string `json:"userType,omitempty" validate:"omitempty,oneof=user volunteer admin"`
	ContactNumber string `json:"contactNumber,omitempty" validate:"omitempty,phone"`
	IsAvailable   *bool  `json:"isAvailable,omitempty"`
	IsActive      *bool  `json:"isActive,omitempty"`
}
