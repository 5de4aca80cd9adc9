package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Emergency is the central incident record. Coordinates are always stored
// GeoJSON style as [longitude, latitude].
type Emergency struct {
	ID                 primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID             primitive.ObjectID   `json:"userId" bson:"userId"`
	EmergencyType      string               `json:"emergencyType" bson:"emergencyType"`
	Description        string               `json:"description" bson:"description"`
	Urgency            string               `json:"urgency" bson:"urgency"`
	Location           GeoPoint             `json:"location" bson:"location"`
	ContactNumber      string               `json:"contactNumber,omitempty" bson:"contactNumber,omitempty"`
	Status             string               `json:"status" bson:"status"`
	AssignedVolunteers []primitive.ObjectID `json:"assignedVolunteers" bson:"assignedVolunteers"`
	AIClassification   AIClassification     `json:"aiClassification" bson:"aiClassification"`
	ResponseTime       *int64               `json:"responseTime,omitempty" bson:"responseTime,omitempty"` // minutes
	ResolvedAt         *time.Time           `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	Notes              []EmergencyNote      `json:"notes" bson:"notes"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`

	// Populated summaries, never persisted
	Reporter   *UserSummary  `json:"reporter,omitempty" bson:"-"`
	Volunteers []UserSummary `json:"volunteers,omitempty" bson:"-"`
}

// GeoPoint is a GeoJSON point with an optional human-readable address.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [lng, lat]
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
}

func NewGeoPoint(longitude, latitude float64, address string) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
		Address:     address,
	}
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

type AIClassification struct {
	Category           string   `json:"category" bson:"category"`
	Confidence         float64  `json:"confidence" bson:"confidence"`
	SuggestedResources []string `json:"suggestedResources" bson:"suggestedResources"`
}

type EmergencyNote struct {
	Text    string             `json:"text" bson:"text"`
	AddedBy primitive.ObjectID `json:"addedBy" bson:"addedBy"`
	AddedAt time.Time          `json:"addedAt" bson:"addedAt"`
}

// Emergency Type Constants
const (
	EmergencyTypeMedical          = "Medical Emergency"
	EmergencyTypeAccident         = "Accident"
	EmergencyTypeFlood            = "Flood"
	EmergencyTypeFire             = "Fire"
	EmergencyTypeBuildingCollapse = "Building Collapse"
	EmergencyTypeElderly          = "Elderly Assistance"
	EmergencyTypeOther            = "Other"
)

// Emergency Status Constants
const (
	EmergencyStatusPending    = "pending"
	EmergencyStatusAssigned   = "assigned"
	EmergencyStatusInProgress = "in-progress"
	EmergencyStatusResolved   = "resolved"
	EmergencyStatusCancelled  = "cancelled"
)

// Urgency Constants
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// EmergencyTypes lists every accepted emergency type.
var EmergencyTypes = []string{
	EmergencyTypeMedical,
	EmergencyTypeAccident,
	EmergencyTypeFlood,
	EmergencyTypeFire,
	EmergencyTypeBuildingCollapse,
	EmergencyTypeElderly,
	EmergencyTypeOther,
}

// ActiveStatuses are the statuses shown on the default feed and dashboard.
var ActiveStatuses = []string{
	EmergencyStatusPending,
	EmergencyStatusAssigned,
	EmergencyStatusInProgress,
}

// statusTransitions is the legal status state machine. Resolved and
// cancelled are terminal; cancelled is reachable from any non-terminal state.
var statusTransitions = map[string][]string{
	EmergencyStatusPending:    {EmergencyStatusAssigned, EmergencyStatusCancelled},
	EmergencyStatusAssigned:   {EmergencyStatusInProgress, EmergencyStatusCancelled},
	EmergencyStatusInProgress: {EmergencyStatusResolved, EmergencyStatusCancelled},
	EmergencyStatusResolved:   {},
	EmergencyStatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status from which the given status is
// reachable. Used to build atomic conditional updates.
func TransitionSources(to string) []string {
	var sources []string
	for from, targets := range statusTransitions {
		for _, next := range targets {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// IsValidStatus reports whether s is a known emergency status.
func IsValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminalStatus reports whether no further transition is permitted.
func IsTerminalStatus(s string) bool {
	targets, ok := statusTransitions[s]
	return ok && len(targets) == 0
}

// IsValidEmergencyType reports whether t is one of the accepted types.
func IsValidEmergencyType(t string) bool {
	for _, known := range EmergencyTypes {
		if known == t {
			return true
		}
	}
	return false
}

// suggestedResources maps emergency types to the resources the responder UI
// surfaces. Confidence is fixed; this is a deterministic lookup, not a model.
var suggestedResources = map[string][]string{
	EmergencyTypeMedical:          {"Ambulance", "Paramedics", "Nearby Hospital"},
	EmergencyTypeAccident:         {"Police", "Ambulance", "Fire Department"},
	EmergencyTypeFlood:            {"Rescue Team", "Boats", "Shelter"},
	EmergencyTypeFire:             {"Fire Department", "Ambulance", "Police"},
	EmergencyTypeBuildingCollapse: {"Heavy Equipment", "Rescue Team", "Medical Team"},
	EmergencyTypeElderly:          {"Medical Support", "Social Workers"},
	EmergencyTypeOther:            {"General Support"},
}

const classificationConfidence = 0.85

// ClassifyEmergency returns the classification snapshot stored at creation
// time. Unknown types fall back to the generic category.
func ClassifyEmergency(emergencyType string) AIClassification {
	resources, ok := suggestedResources[emergencyType]
	category := emergencyType
	if !ok {
		resources = suggestedResources[EmergencyTypeOther]
		category = EmergencyTypeOther
	}
	return AIClassification{
		Category:           category,
		Confidence:         classificationConfidence,
		SuggestedResources: resources,
	}
}

// LocationInput accepts either a "latitude, longitude" text pair or a
// structured {coordinates, address} object from the client.
type LocationInput struct {
	Raw         string
	Coordinates []float64 // [lng, lat] when structured
	Address     string
}

func (li *LocationInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		li.Raw = raw
		return nil
	}

	var structured struct {
		Coordinates []float64 `json:"coordinates"`
		Address     string    `json:"address"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return errors.New("location must be a \"lat, lng\" string or a coordinates object")
	}
	li.Coordinates = structured.Coordinates
	li.Address = structured.Address
	return nil
}

func (li LocationInput) IsZero() bool {
	return li.Raw == "" && len(li.Coordinates) == 0
}

// ToGeoPoint normalizes the input to stored [longitude, latitude] order.
// Text input arrives as "latitude, longitude" and is swapped on parse.
func (li LocationInput) ToGeoPoint() (GeoPoint, error) {
	if li.Raw != "" {
		parts := strings.Split(li.Raw, ",")
		if len(parts) != 2 {
			return GeoPoint{}, errors.New("location string must be \"latitude, longitude\"")
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return GeoPoint{}, errors.New("location coordinates must be numbers")
		}
		if !inRange(lat, lng) {
			return GeoPoint{}, errors.New("location coordinates out of range")
		}
		return NewGeoPoint(lng, lat, li.Raw), nil
	}

	if len(li.Coordinates) != 2 {
		return GeoPoint{}, errors.New("coordinates must be [longitude, latitude]")
	}
	lng, lat := li.Coordinates[0], li.Coordinates[1]
	if !inRange(lat, lng) {
		return GeoPoint{}, errors.New("location coordinates out of range")
	}
	return NewGeoPoint(lng, lat, li.Address), nil
}

func inRange(lat, lng float64) bool {
	return isFinite(lat) && isFinite(lng) &&
		lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// =================== REQUEST/RESPONSE MODELS ===================

type CreateEmergencyRequest struct {
	EmergencyType string        `json:"emergencyType" validate:"required,emergency_type"`
	Description   string        `json:"description" validate:"required,min=1,max=500"`
	Urgency       string        `json:"urgency" validate:"omitempty,urgency"`
	Location      LocationInput `json:"location"`
	ContactNumber string        `json:"contactNumber,omitempty" validate:"omitempty,phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AddNoteRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

type ListEmergenciesQuery struct {
	Status  string `form:"status"`
	Urgency string `form:"urgency" validate:"omitempty,urgency"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

type NearbyEmergenciesQuery struct {
	Longitude   float64 `form:"longitude" validate:"coordinate_lng"`
	Latitude    float64 `form:"latitude" validate:"coordinate_lat"`
	MaxDistance int     `form:"maxDistance" validate:"omitempty,min=1"`
}
