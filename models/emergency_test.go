package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to assigned", EmergencyStatusPending, EmergencyStatusAssigned, true},
		{"pending to cancelled", EmergencyStatusPending, EmergencyStatusCancelled, true},
		{"pending to in-progress skips assigned", EmergencyStatusPending, EmergencyStatusInProgress, false},
		{"pending to resolved skips everything", EmergencyStatusPending, EmergencyStatusResolved, false},
		{"assigned to in-progress", EmergencyStatusAssigned, EmergencyStatusInProgress, true},
		{"assigned to cancelled", EmergencyStatusAssigned, EmergencyStatusCancelled, true},
		{"assigned to resolved skips in-progress", EmergencyStatusAssigned, EmergencyStatusResolved, false},
		{"in-progress to resolved", EmergencyStatusInProgress, EmergencyStatusResolved, true},
		{"in-progress to cancelled", EmergencyStatusInProgress, EmergencyStatusCancelled, true},
		{"in-progress back to assigned", EmergencyStatusInProgress, EmergencyStatusAssigned, false},
		{"resolved is terminal", EmergencyStatusResolved, EmergencyStatusCancelled, false},
		{"cancelled is terminal", EmergencyStatusCancelled, EmergencyStatusAssigned, false},
		{"unknown source", "bogus", EmergencyStatusAssigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionSources(t *testing.T) {
	assert.ElementsMatch(t, []string{EmergencyStatusInProgress}, TransitionSources(EmergencyStatusResolved))
	assert.ElementsMatch(t, []string{EmergencyStatusPending}, TransitionSources(EmergencyStatusAssigned))
	assert.ElementsMatch(t,
		[]string{EmergencyStatusPending, EmergencyStatusAssigned, EmergencyStatusInProgress},
		TransitionSources(EmergencyStatusCancelled))
	assert.Empty(t, TransitionSources(EmergencyStatusPending))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(EmergencyStatusResolved))
	assert.True(t, IsTerminalStatus(EmergencyStatusCancelled))
	assert.False(t, IsTerminalStatus(EmergencyStatusPending))
	assert.False(t, IsTerminalStatus(EmergencyStatusAssigned))
	assert.False(t, IsTerminalStatus(EmergencyStatusInProgress))
}

func TestClassifyEmergency(t *testing.T) {
	medical := ClassifyEmergency(EmergencyTypeMedical)
	assert.Equal(t, EmergencyTypeMedical, medical.Category)
	assert.Equal(t, 0.85, medical.Confidence)
	assert.Contains(t, medical.SuggestedResources, "Ambulance")

	unknown := ClassifyEmergency("Alien Invasion")
	assert.Equal(t, EmergencyTypeOther, unknown.Category)
	assert.Equal(t, 0.85, unknown.Confidence)
	assert.Contains(t, unknown.SuggestedResources, "General Support")
}

func TestLocationInput_TextCoordinates(t *testing.T) {
	var req CreateEmergencyRequest
	body := `{
		"emergencyType": "Fire",
		"description": "Kitchen fire spreading",
		"location": "12.9716, 77.5946"
	}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	point, err := req.Location.ToGeoPoint()
	require.NoError(t, err)

	// Input is "lat, lng" but storage is GeoJSON [lng, lat].
	assert.Equal(t, "Point", point.Type)
	assert.Equal(t, 77.5946, point.Longitude())
	assert.Equal(t, 12.9716, point.Latitude())
	assert.Equal(t, "12.9716, 77.5946", point.Address)
}

func TestLocationInput_ObjectForm(t *testing.T) {
	var req CreateEmergencyRequest
	body := `{
		"emergencyType": "Flood",
		"description": "Water rising fast",
		"location": {"coordinates": [77.61, 12.93], "address": "Koramangala"}
	}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	point, err := req.Location.ToGeoPoint()
	require.NoError(t, err)
	assert.Equal(t, 77.61, point.Longitude())
	assert.Equal(t, 12.93, point.Latitude())
	assert.Equal(t, "Koramangala", point.Address)
}

func TestLocationInput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not coordinates", "somewhere in the city"},
		{"single value", "12.9716"},
		{"latitude out of range", "99.0, 77.5946"},
		{"longitude out of range", "12.9716, 199.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := LocationInput{Raw: tt.text}
			_, err := li.ToGeoPoint()
			assert.Error(t, err)
		})
	}
}

func TestNewGeoPoint(t *testing.T) {
	point := NewGeoPoint(77.5946, 12.9716, "MG Road")
	assert.Equal(t, "Point", point.Type)
	assert.Equal(t, []float64{77.5946, 12.9716}, point.Coordinates)
	assert.Equal(t, "MG Road", point.Address)
}
