package services

import (
	"context"
	"time"

	"resqlink/interfaces"
	"resqlink/models"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
)

// publicResponseTimeFallback is shown on the landing page before any
// emergency has been resolved.
const publicResponseTimeFallback = 4.2

const dashboardFeedLimit = 10

// DashboardService is the read side: aggregate statistics and the flattened
// feed for the operations dashboard.
type DashboardService struct {
	emergencyStore interfaces.EmergencyStore
	userStore      interfaces.UserStore
}

func NewDashboardService(emergencyStore interfaces.EmergencyStore, userStore interfaces.UserStore) *DashboardService {
	return &DashboardService{
		emergencyStore: emergencyStore,
		userStore:      userStore,
	}
}

// GetDashboard returns the live counters plus the active emergency feed with
// relative timestamps.
func (ds *DashboardService) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	active, err := ds.emergencyStore.CountByStatuses(ctx, models.ActiveStatuses)
	if err != nil {
		return nil, utils.NewDatabaseError("count active emergencies", err)
	}

	volunteers, err := ds.userStore.CountAvailableVolunteers(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count volunteers", err)
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	resolvedToday, err := ds.emergencyStore.CountResolvedSince(ctx, startOfDay)
	if err != nil {
		return nil, utils.NewDatabaseError("count resolved emergencies", err)
	}

	emergencies, err := ds.emergencyStore.List(ctx, models.ActiveStatuses, "", dashboardFeedLimit)
	if err != nil {
		return nil, utils.NewDatabaseError("list emergencies", err)
	}

	feed := make([]models.DashboardEmergency, 0, len(emergencies))
	for i := range emergencies {
		feed = append(feed, flattenEmergency(&emergencies[i]))
	}

	return &models.DashboardResponse{
		Stats: models.DashboardStats{
			ActiveEmergencies:   active,
			AvailableVolunteers: volunteers,
			ResolvedToday:       resolvedToday,
		},
		Emergencies: feed,
	}, nil
}

// GetPublicStats returns the unauthenticated landing-page numbers. The
// response-time figure falls back to a static value until real resolutions
// exist.
func (ds *DashboardService) GetPublicStats(ctx context.Context) (*models.PublicStats, error) {
	total, err := ds.emergencyStore.CountAll(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count emergencies", err)
	}

	volunteers, err := ds.userStore.CountAvailableVolunteers(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count volunteers", err)
	}

	active, err := ds.emergencyStore.CountByStatuses(ctx, models.ActiveStatuses)
	if err != nil {
		return nil, utils.NewDatabaseError("count active emergencies", err)
	}

	totalUsers, err := ds.userStore.CountAll(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count users", err)
	}

	responseTime := publicResponseTimeFallback
	avg, resolved, err := ds.emergencyStore.AverageResponseTime(ctx)
	if err != nil {
		logrus.Warnf("Failed to compute average response time: %v", err)
	} else if resolved > 0 {
		responseTime = utils.RoundToDecimalPlaces(avg, 1)
	}

	return &models.PublicStats{
		Emergencies:       total,
		Volunteers:        volunteers,
		ResponseTime:      responseTime,
		ActiveEmergencies: active,
		TotalUsers:        totalUsers,
	}, nil
}

// flattenEmergency shapes one emergency for the dashboard feed.
func flattenEmergency(e *models.Emergency) models.DashboardEmergency {
	location := e.Location.Address
	if location == "" {
		location = "Unknown location"
	}

	return models.DashboardEmergency{
		ID:          e.ID.Hex(),
		Type:        e.EmergencyType,
		Location:    location,
		Urgency:     e.Urgency,
		Time:        utils.TimeAgo(e.CreatedAt),
		Status:      e.Status,
		Description: utils.TruncateString(e.Description, 150),
		Coordinates: e.Location.Coordinates,
	}
}
