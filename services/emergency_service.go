package services

import (
	"context"
	"errors"
	"time"

	"resqlink/interfaces"
	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultListLimit      = 50
	defaultNearbyLimit    = 20
	defaultNearbyDistance = 5000 // meters
)

// EmergencyService owns the emergency lifecycle: reporting, volunteer
// response, status transitions and notes. Every mutation commits first, then
// hands a notification event to the dispatch queue; delivery failures never
// affect the primary operation.
type EmergencyService struct {
	emergencyStore interfaces.EmergencyStore
	userStore      interfaces.UserStore
	queue          interfaces.NotificationQueue
	broadcaster    interfaces.FeedBroadcaster
}

func NewEmergencyService(
	emergencyStore interfaces.EmergencyStore,
	userStore interfaces.UserStore,
	queue interfaces.NotificationQueue,
	broadcaster interfaces.FeedBroadcaster,
) *EmergencyService {
	return &EmergencyService{
		emergencyStore: emergencyStore,
		userStore:      userStore,
		queue:          queue,
		broadcaster:    broadcaster,
	}
}

// AttachQueue wires the dispatch queue after construction. The worker that
// implements the queue delivers through the notification service, which is
// built from the same repositories, so the two sides are connected once both
// exist.
func (es *EmergencyService) AttachQueue(queue interfaces.NotificationQueue) {
	es.queue = queue
}

func (es *EmergencyService) Create(ctx context.Context, userID string, req *models.CreateEmergencyRequest) (*models.Emergency, error) {
	if req.Location.IsZero() {
		return nil, utils.NewValidationError("location is required")
	}
	location, err := req.Location.ToGeoPoint()
	if err != nil {
		return nil, utils.NewValidationError(err.Error())
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewUserNotFoundError()
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}

	contactNumber := req.ContactNumber
	if contactNumber == "" {
		if reporter, rerr := es.userStore.GetByID(ctx, userID); rerr == nil {
			contactNumber = reporter.ContactNumber
		}
	}

	emergency := &models.Emergency{
		UserID:           userObjectID,
		EmergencyType:    req.EmergencyType,
		Description:      req.Description,
		Urgency:          urgency,
		Location:         location,
		ContactNumber:    contactNumber,
		Status:           models.EmergencyStatusPending,
		AIClassification: models.ClassifyEmergency(req.EmergencyType),
	}

	if err := es.emergencyStore.Create(ctx, emergency); err != nil {
		return nil, utils.NewDatabaseError("create emergency", err)
	}

	es.notify(models.NotificationEvent{
		Kind:      models.NotificationNewEmergency,
		Emergency: *emergency,
	})
	es.broadcast("new_emergency", emergency)

	return emergency, nil
}

func (es *EmergencyService) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	emergency, err := es.emergencyStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewEmergencyNotFoundError()
		}
		return nil, utils.NewDatabaseError("get emergency", err)
	}

	es.populate(ctx, emergency)
	return emergency, nil
}

// List returns the emergency feed, defaulting to active statuses when no
// status filter is given.
func (es *EmergencyService) List(ctx context.Context, query *models.ListEmergenciesQuery) ([]models.Emergency, error) {
	statuses := models.ActiveStatuses
	if query.Status != "" {
		if !models.IsValidStatus(query.Status) {
			return nil, utils.NewValidationError("invalid status filter")
		}
		statuses = []string{query.Status}
	}

	limit := int64(query.Limit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	emergencies, err := es.emergencyStore.List(ctx, statuses, query.Urgency, limit)
	if err != nil {
		return nil, utils.NewDatabaseError("list emergencies", err)
	}

	es.populateAll(ctx, emergencies)
	return emergencies, nil
}

// Nearby returns open emergencies within the given radius of the caller,
// closest first.
func (es *EmergencyService) Nearby(ctx context.Context, query *models.NearbyEmergenciesQuery) ([]models.Emergency, error) {
	if !utils.IsValidCoordinate(query.Latitude, query.Longitude) {
		return nil, utils.NewValidationError("invalid coordinates")
	}

	maxDistance := int64(query.MaxDistance)
	if maxDistance <= 0 {
		maxDistance = defaultNearbyDistance
	}

	statuses := []string{models.EmergencyStatusPending, models.EmergencyStatusAssigned}
	emergencies, err := es.emergencyStore.Nearby(ctx, query.Longitude, query.Latitude, maxDistance, statuses, defaultNearbyLimit)
	if err != nil {
		return nil, utils.NewDatabaseError("nearby emergencies", err)
	}

	es.populateAll(ctx, emergencies)
	return emergencies, nil
}

// Respond claims an emergency for a volunteer. The claim is one conditional
// update, so two volunteers racing for the same emergency both land exactly
// once and a duplicate claim surfaces as a conflict.
func (es *EmergencyService) Respond(ctx context.Context, emergencyID, volunteerID string) (*models.Emergency, error) {
	volunteer, err := es.userStore.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewUserNotFoundError()
		}
		return nil, utils.NewDatabaseError("get volunteer", err)
	}
	if !volunteer.IsResponder() {
		return nil, utils.NewForbiddenError("Only volunteers can respond to emergencies")
	}

	emergency, err := es.emergencyStore.AddVolunteer(ctx, emergencyID, volunteerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, es.classifyRespondFailure(ctx, emergencyID, volunteerID)
		}
		return nil, utils.NewDatabaseError("assign volunteer", err)
	}

	// First responder moves the emergency out of pending. Losing this race
	// is fine, someone else already promoted it.
	if emergency.Status == models.EmergencyStatusPending {
		if promoted, perr := es.emergencyStore.PromoteToAssigned(ctx, emergencyID); perr == nil {
			emergency = promoted
		}
	}

	es.notify(models.NotificationEvent{
		Kind:      models.NotificationVolunteerAssigned,
		Emergency: *emergency,
		ActorName: volunteer.Name,
	})
	es.broadcast("volunteer_assigned", emergency)

	es.populate(ctx, emergency)
	return emergency, nil
}

// classifyRespondFailure re-reads the emergency to turn an unmatched claim
// into the right API error.
func (es *EmergencyService) classifyRespondFailure(ctx context.Context, emergencyID, volunteerID string) error {
	emergency, err := es.emergencyStore.GetByID(ctx, emergencyID)
	if err != nil {
		return utils.NewEmergencyNotFoundError()
	}

	volunteerObjectID, err := primitive.ObjectIDFromHex(volunteerID)
	if err == nil {
		for _, assigned := range emergency.AssignedVolunteers {
			if assigned == volunteerObjectID {
				return utils.NewAlreadyAssignedError()
			}
		}
	}

	return utils.NewConflictError("Emergency is no longer open for responders")
}

// UpdateStatus advances the emergency through its state machine. Illegal
// jumps are rejected, and the transition check and the write are a single
// conditional update so concurrent updates cannot double-apply.
func (es *EmergencyService) UpdateStatus(ctx context.Context, emergencyID, actorID, newStatus string) (*models.Emergency, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, utils.NewValidationError("invalid status")
	}

	from := models.TransitionSources(newStatus)
	if len(from) == 0 {
		// Nothing transitions into pending.
		current, err := es.emergencyStore.GetByID(ctx, emergencyID)
		if err != nil {
			return nil, utils.NewEmergencyNotFoundError()
		}
		return nil, utils.NewInvalidTransitionError(current.Status, newStatus)
	}

	var emergency *models.Emergency
	var err error

	if newStatus == models.EmergencyStatusResolved {
		emergency, err = es.resolve(ctx, emergencyID, from)
	} else {
		emergency, err = es.emergencyStore.TransitionStatus(ctx, emergencyID, newStatus, from)
	}

	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			current, gerr := es.emergencyStore.GetByID(ctx, emergencyID)
			if gerr != nil {
				return nil, utils.NewEmergencyNotFoundError()
			}
			return nil, utils.NewInvalidTransitionError(current.Status, newStatus)
		}
		return nil, utils.NewDatabaseError("update status", err)
	}

	// Only resolution and the start of work are worth interrupting the
	// reporter for. Cancellations and claim promotions stay silent.
	switch newStatus {
	case models.EmergencyStatusResolved:
		es.notify(models.NotificationEvent{Kind: models.NotificationEmergencyResolved, Emergency: *emergency})
	case models.EmergencyStatusInProgress:
		es.notify(models.NotificationEvent{Kind: models.NotificationStatusUpdate, Emergency: *emergency})
	}
	es.broadcast("status_update", emergency)

	es.populate(ctx, emergency)
	return emergency, nil
}

// resolve computes the response-time metric from the original report time
// and stamps it together with the terminal status. The conditional filter
// guarantees the metric is written exactly once.
func (es *EmergencyService) resolve(ctx context.Context, emergencyID string, from []string) (*models.Emergency, error) {
	current, err := es.emergencyStore.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	resolvedAt := time.Now()
	minutes := int64(resolvedAt.Sub(current.CreatedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	return es.emergencyStore.Resolve(ctx, emergencyID, from, resolvedAt, minutes)
}

func (es *EmergencyService) AddNote(ctx context.Context, emergencyID, actorID, text string) (*models.Emergency, error) {
	actorObjectID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, utils.NewUserNotFoundError()
	}

	note := models.EmergencyNote{
		Text:    text,
		AddedBy: actorObjectID,
		AddedAt: time.Now(),
	}

	emergency, err := es.emergencyStore.AddNote(ctx, emergencyID, note)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewEmergencyNotFoundError()
		}
		return nil, utils.NewDatabaseError("add note", err)
	}

	es.populate(ctx, emergency)
	return emergency, nil
}

func (es *EmergencyService) ListByReporter(ctx context.Context, userID string) ([]models.Emergency, error) {
	emergencies, err := es.emergencyStore.ListByReporter(ctx, userID)
	if err != nil {
		return nil, utils.NewDatabaseError("list reported emergencies", err)
	}

	es.populateAll(ctx, emergencies)
	return emergencies, nil
}

func (es *EmergencyService) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.Emergency, error) {
	emergencies, err := es.emergencyStore.ListByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, utils.NewDatabaseError("list assigned emergencies", err)
	}

	es.populateAll(ctx, emergencies)
	return emergencies, nil
}

// =================== INTERNAL ===================

// notify hands the event to the dispatch worker without blocking. A full
// queue drops the event; delivery is best effort.
func (es *EmergencyService) notify(event models.NotificationEvent) {
	if es.queue == nil {
		return
	}
	if !es.queue.Enqueue(event) {
		logrus.Warnf("Notification queue full, dropping %s event for emergency %s",
			event.Kind, event.Emergency.ID.Hex())
	}
}

func (es *EmergencyService) broadcast(eventType string, emergency *models.Emergency) {
	if es.broadcaster == nil {
		return
	}
	es.broadcaster.BroadcastEvent(models.WSEvent{
		Type:      eventType,
		Data:      emergency,
		Timestamp: time.Now(),
	})
}

// populate fills the reporter and volunteer summaries on a single emergency.
func (es *EmergencyService) populate(ctx context.Context, emergency *models.Emergency) {
	if emergency == nil {
		return
	}
	emergencies := []models.Emergency{*emergency}
	es.populateAll(ctx, emergencies)
	*emergency = emergencies[0]
}

// populateAll batch-loads every referenced user once and attaches summaries.
// Lookup failures are logged and leave the summaries empty; the emergency
// payload itself is already complete.
func (es *EmergencyService) populateAll(ctx context.Context, emergencies []models.Emergency) {
	if len(emergencies) == 0 {
		return
	}

	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0, len(emergencies)*2)
	for i := range emergencies {
		if !seen[emergencies[i].UserID] {
			seen[emergencies[i].UserID] = true
			ids = append(ids, emergencies[i].UserID)
		}
		for _, vid := range emergencies[i].AssignedVolunteers {
			if !seen[vid] {
				seen[vid] = true
				ids = append(ids, vid)
			}
		}
	}

	users, err := es.userStore.GetUsersByIDs(ctx, ids)
	if err != nil {
		logrus.Warnf("Failed to populate emergency users: %v", err)
		return
	}

	summaries := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		summaries[users[i].ID] = users[i].Summary()
	}

	for i := range emergencies {
		if summary, ok := summaries[emergencies[i].UserID]; ok {
			emergencies[i].Reporter = &summary
		}
		volunteers := make([]models.UserSummary, 0, len(emergencies[i].AssignedVolunteers))
		for _, vid := range emergencies[i].AssignedVolunteers {
			if summary, ok := summaries[vid]; ok {
				volunteers = append(volunteers, summary)
			}
		}
		emergencies[i].Volunteers = volunteers
	}
}
