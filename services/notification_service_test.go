package services

import (
	"context"
	"testing"

	"resqlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationService_NewEmergencyFanout(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()
	admin := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ada Admin",
		UserType: models.UserTypeAdmin,
		IsActive: true,
		FCMToken: "admin-token",
	}
	// Inactive responders and responders without tokens are excluded.
	inactive := &models.User{
		ID:       primitive.NewObjectID(),
		UserType: models.UserTypeVolunteer,
		FCMToken: "dead-token",
	}

	store := &fakeNotificationStore{}
	users := newFakeUserStore(reporter, volunteer, admin, inactive)
	sender := &fakeSender{}
	svc := NewNotificationService(store, users, NewPushService(sender), nil)

	emergency := models.Emergency{
		ID:            primitive.NewObjectID(),
		UserID:        reporter.ID,
		EmergencyType: models.EmergencyTypeFire,
		Description:   "Warehouse fire",
		Urgency:       models.UrgencyHigh,
		Status:        models.EmergencyStatusPending,
	}

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind:      models.NotificationNewEmergency,
		Emergency: emergency,
	})

	assert.Len(t, store.created, 2, "one inbox record per responder")
	for _, record := range store.created {
		assert.Equal(t, models.NotificationNewEmergency, record.Type)
		assert.Equal(t, emergency.ID, record.EmergencyID)
		assert.NotEqual(t, reporter.ID, record.UserID, "reporter is excluded from the broadcast")
	}

	require.Len(t, sender.calls, 1)
	assert.ElementsMatch(t, []string{"volunteer-token", "admin-token"}, sender.calls[0])
}

func TestNotificationService_VolunteerAssignedGoesToReporter(t *testing.T) {
	reporter := newTestReporter()
	reporter.FCMToken = "reporter-token"
	volunteer := newTestVolunteer()

	store := &fakeNotificationStore{}
	sender := &fakeSender{}
	svc := NewNotificationService(store, newFakeUserStore(reporter, volunteer), NewPushService(sender), nil)

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind: models.NotificationVolunteerAssigned,
		Emergency: models.Emergency{
			ID:            primitive.NewObjectID(),
			UserID:        reporter.ID,
			EmergencyType: models.EmergencyTypeMedical,
		},
		ActorName: volunteer.Name,
	})

	require.Len(t, store.created, 1)
	assert.Equal(t, reporter.ID, store.created[0].UserID)
	assert.Contains(t, store.created[0].Message, volunteer.Name)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, []string{"reporter-token"}, sender.calls[0])
}

func TestNotificationService_ResolvedGoesToReporterAndVolunteers(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()

	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, newFakeUserStore(reporter, volunteer), NewPushService(&fakeSender{}), nil)

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind: models.NotificationEmergencyResolved,
		Emergency: models.Emergency{
			ID:                 primitive.NewObjectID(),
			UserID:             reporter.ID,
			EmergencyType:      models.EmergencyTypeFlood,
			Status:             models.EmergencyStatusResolved,
			AssignedVolunteers: []primitive.ObjectID{volunteer.ID},
		},
	})

	require.Len(t, store.created, 2)
	recipients := []primitive.ObjectID{store.created[0].UserID, store.created[1].UserID}
	assert.ElementsMatch(t, []primitive.ObjectID{reporter.ID, volunteer.ID}, recipients)
}

func TestNotificationService_RecordsPersistWhenPushFails(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()

	store := &fakeNotificationStore{}
	sender := &fakeSender{err: errStoreDown}
	svc := NewNotificationService(store, newFakeUserStore(reporter, volunteer), NewPushService(sender), nil)

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind: models.NotificationNewEmergency,
		Emergency: models.Emergency{
			ID:     primitive.NewObjectID(),
			UserID: reporter.ID,
		},
	})

	assert.Len(t, store.created, 1, "inbox records persist regardless of push outcome")
}

func TestNotificationService_CriticalEscalatesBySMS(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()
	volunteer.ContactNumber = "+15550100200"

	sms := &fakeSMS{}
	svc := NewNotificationService(&fakeNotificationStore{}, newFakeUserStore(reporter, volunteer), NewPushService(&fakeSender{}), sms)

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind: models.NotificationNewEmergency,
		Emergency: models.Emergency{
			ID:            primitive.NewObjectID(),
			UserID:        reporter.ID,
			EmergencyType: models.EmergencyTypeFlood,
			Description:   "Dam breach",
			Urgency:       models.UrgencyCritical,
		},
	})

	assert.Equal(t, []string{"+15550100200"}, sms.sent)
}

func TestNotificationService_NonCriticalSkipsSMS(t *testing.T) {
	reporter := newTestReporter()
	volunteer := newTestVolunteer()
	volunteer.ContactNumber = "+15550100200"

	sms := &fakeSMS{}
	svc := NewNotificationService(&fakeNotificationStore{}, newFakeUserStore(reporter, volunteer), NewPushService(&fakeSender{}), sms)

	svc.Deliver(context.Background(), models.NotificationEvent{
		Kind: models.NotificationNewEmergency,
		Emergency: models.Emergency{
			ID:      primitive.NewObjectID(),
			UserID:  reporter.ID,
			Urgency: models.UrgencyHigh,
		},
	})

	assert.Empty(t, sms.sent)
}
