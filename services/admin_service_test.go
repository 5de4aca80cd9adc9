package services

import (
	"context"
	"testing"

	"resqlink/models"
	"resqlink/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdminService_DeleteUser(t *testing.T) {
	volunteer := newTestVolunteer()
	users := newFakeUserStore(volunteer)
	svc := NewAdminService(newFakeEmergencyStore(), users)

	require.NoError(t, svc.DeleteUser(context.Background(), volunteer.ID.Hex()))

	_, err := users.GetByID(context.Background(), volunteer.ID.Hex())
	assert.Error(t, err, "the record is removed, not deactivated")

	err = svc.DeleteUser(context.Background(), volunteer.ID.Hex())
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 404, serviceErr.StatusCode)
}

func TestAdminService_ListUsersFiltersByType(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()
	svc := NewAdminService(newFakeEmergencyStore(), newFakeUserStore(reporter, volunteer))

	all, err := svc.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	volunteers, err := svc.ListUsers(context.Background(), models.UserTypeVolunteer)
	require.NoError(t, err)
	require.Len(t, volunteers, 1)
	assert.Equal(t, volunteer.ID, volunteers[0].ID)
}

func TestAdminService_UpdateUser(t *testing.T) {
	volunteer := newTestVolunteer()
	users := newFakeUserStore(volunteer)
	svc := NewAdminService(newFakeEmergencyStore(), users)

	inactive := false
	updated, err := svc.UpdateUser(context.Background(), volunteer.ID.Hex(), &models.AdminUpdateUserRequest{
		Name:     "Vik Renamed",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Vik Renamed", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateUser(context.Background(), volunteer.ID.Hex(), &models.AdminUpdateUserRequest{})
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, serviceErr.Code)

	_, err = svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), &models.AdminUpdateUserRequest{Name: "x"})
	serviceErr, ok = utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 404, serviceErr.StatusCode)
}
