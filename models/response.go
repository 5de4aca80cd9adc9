package models

import "time"

// Standard API Response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *MetaData   `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type MetaData struct {
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
}

// Health Check Response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// Dashboard/statistics payloads

type DashboardStats struct {
	ActiveEmergencies   int64 `json:"activeEmergencies"`
	AvailableVolunteers int64 `json:"availableVolunteers"`
	ResolvedToday       int64 `json:"resolvedToday"`
}

type DashboardResponse struct {
	Stats       DashboardStats       `json:"stats"`
	Emergencies []DashboardEmergency `json:"emergencies"`
}

// DashboardEmergency is the flattened feed entry the dashboard renders.
type DashboardEmergency struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Urgency     string    `json:"urgency"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Coordinates []float64 `json:"coordinates"`
}

type PublicStats struct {
	Emergencies       int64   `json:"emergencies"`
	Volunteers        int64   `json:"volunteers"`
	ResponseTime      float64 `json:"responseTime"`
	ActiveEmergencies int64   `json:"activeEmergencies"`
	TotalUsers        int64   `json:"totalUsers"`
}

type AdminStats struct {
	TotalEmergencies     int64        `json:"totalEmergencies"`
	ActiveVolunteers     int64        `json:"activeVolunteers"`
	AvgResponseTime      float64      `json:"avgResponseTime"`
	EmergenciesByStatus  []GroupCount `json:"emergenciesByStatus"`
	EmergenciesByType    []GroupCount `json:"emergenciesByType"`
	EmergenciesByUrgency []GroupCount `json:"emergenciesByUrgency"`
}

// GroupCount is one bucket of a grouped aggregation.
type GroupCount struct {
	ID    string `json:"_id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// WebSocket feed event
type WSEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Error Response Codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeAuthentication    = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization     = "AUTHORIZATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeRateLimit         = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeDependency        = "DEPENDENCY_ERROR"
)
