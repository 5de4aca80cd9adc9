package services

import (
	"context"
	"errors"

	"resqlink/interfaces"
	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// AdminService backs the administration console: platform statistics, user
// management and emergency oversight.
type AdminService struct {
	emergencyStore interfaces.EmergencyStore
	userStore      interfaces.UserStore
}

func NewAdminService(emergencyStore interfaces.EmergencyStore, userStore interfaces.UserStore) *AdminService {
	return &AdminService{
		emergencyStore: emergencyStore,
		userStore:      userStore,
	}
}

// GetStats aggregates the admin overview. The average response time reports
// zero until at least one emergency has been resolved.
func (s *AdminService) GetStats(ctx context.Context) (*models.AdminStats, error) {
	total, err := s.emergencyStore.CountAll(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count emergencies", err)
	}

	volunteers, err := s.userStore.CountAvailableVolunteers(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("count volunteers", err)
	}

	byStatus, err := s.emergencyStore.GroupCounts(ctx, "status")
	if err != nil {
		return nil, utils.NewDatabaseError("group by status", err)
	}
	byType, err := s.emergencyStore.GroupCounts(ctx, "emergencyType")
	if err != nil {
		return nil, utils.NewDatabaseError("group by type", err)
	}
	byUrgency, err := s.emergencyStore.GroupCounts(ctx, "urgency")
	if err != nil {
		return nil, utils.NewDatabaseError("group by urgency", err)
	}

	var avgResponseTime float64
	avg, resolved, err := s.emergencyStore.AverageResponseTime(ctx)
	if err != nil {
		logrus.Warnf("Failed to compute average response time: %v", err)
	} else if resolved > 0 {
		avgResponseTime = utils.RoundToDecimalPlaces(avg, 1)
	}

	return &models.AdminStats{
		TotalEmergencies:     total,
		ActiveVolunteers:     volunteers,
		AvgResponseTime:      avgResponseTime,
		EmergenciesByStatus:  byStatus,
		EmergenciesByType:    byType,
		EmergenciesByUrgency: byUrgency,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, userType string) ([]models.User, error) {
	users, err := s.userStore.ListAll(ctx, userType)
	if err != nil {
		return nil, utils.NewDatabaseError("list users", err)
	}
	return users, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, userID string, req *models.AdminUpdateUserRequest) (*models.User, error) {
	updates := bson.M{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.UserType != "" {
		updates["userType"] = req.UserType
	}
	if req.ContactNumber != "" {
		updates["contactNumber"] = req.ContactNumber
	}
	if req.IsAvailable != nil {
		updates["isAvailable"] = *req.IsAvailable
	}
	if req.IsActive != nil {
		updates["isActive"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, utils.NewValidationError("no fields to update")
	}

	if err := s.userStore.Update(ctx, userID, updates); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewUserNotFoundError()
		}
		return nil, utils.NewDatabaseError("update user", err)
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewDatabaseError("get user", err)
	}
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	err := s.userStore.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewUserNotFoundError()
		}
		return utils.NewDatabaseError("delete user", err)
	}

	logrus.Infof("User %s deleted", userID)
	return nil
}

func (s *AdminService) ListAllEmergencies(ctx context.Context) ([]models.Emergency, error) {
	emergencies, err := s.emergencyStore.ListAll(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("list emergencies", err)
	}
	return emergencies, nil
}

func (s *AdminService) DeleteEmergency(ctx context.Context, emergencyID string) error {
	err := s.emergencyStore.Delete(ctx, emergencyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewEmergencyNotFoundError()
		}
		return utils.NewDatabaseError("delete emergency", err)
	}

	logrus.Infof("Emergency %s deleted by admin", emergencyID)
	return nil
}
