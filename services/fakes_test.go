package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"resqlink/models"
	"resqlink/repositories"
	"resqlink/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEmergencyStore is an in-memory store mirroring the conditional-update
// semantics of the Mongo repository.
type fakeEmergencyStore struct {
	mu          sync.Mutex
	emergencies map[primitive.ObjectID]*models.Emergency

	avgResponseTime float64
	resolvedCount   int64
	failAll         error
}

func newFakeEmergencyStore() *fakeEmergencyStore {
	return &fakeEmergencyStore{
		emergencies: make(map[primitive.ObjectID]*models.Emergency),
	}
}

func (f *fakeEmergencyStore) Create(ctx context.Context, e *models.Emergency) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	if e.Status == "" {
		e.Status = models.EmergencyStatusPending
	}
	if e.AssignedVolunteers == nil {
		e.AssignedVolunteers = []primitive.ObjectID{}
	}
	copy := *e
	f.emergencies[e.ID] = &copy
	return nil
}

func (f *fakeEmergencyStore) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getLocked(id)
}

func (f *fakeEmergencyStore) getLocked(id string) (*models.Emergency, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	e, ok := f.emergencies[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) List(ctx context.Context, statuses []string, urgency string, limit int64) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []models.Emergency
	for _, e := range f.emergencies {
		if !utils.StringSliceContains(statuses, e.Status) {
			continue
		}
		if urgency != "" && e.Urgency != urgency {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEmergencyStore) ListByReporter(ctx context.Context, userID string) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(userID)
	var out []models.Emergency
	for _, e := range f.emergencies {
		if e.UserID == oid {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmergencyStore) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(volunteerID)
	var out []models.Emergency
	for _, e := range f.emergencies {
		for _, v := range e.AssignedVolunteers {
			if v == oid {
				out = append(out, *e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeEmergencyStore) ListAll(ctx context.Context) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Emergency
	for _, e := range f.emergencies {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEmergencyStore) Nearby(ctx context.Context, longitude, latitude float64, maxDistanceMeters int64, statuses []string, limit int64) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Emergency
	for _, e := range f.emergencies {
		if !utils.StringSliceContains(statuses, e.Status) {
			continue
		}
		meters := utils.CalculateDistance(latitude, longitude, e.Location.Latitude(), e.Location.Longitude())
		if int64(meters) <= maxDistanceMeters {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmergencyStore) AddVolunteer(ctx context.Context, emergencyID, volunteerID string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oid, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	vid, err := primitive.ObjectIDFromHex(volunteerID)
	if err != nil {
		return nil, repositories.ErrNotFound
	}

	e, ok := f.emergencies[oid]
	if !ok || !utils.StringSliceContains(models.ActiveStatuses, e.Status) {
		return nil, repositories.ErrNotFound
	}
	for _, existing := range e.AssignedVolunteers {
		if existing == vid {
			return nil, repositories.ErrNotFound
		}
	}

	e.AssignedVolunteers = append(e.AssignedVolunteers, vid)
	e.UpdatedAt = time.Now()
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) PromoteToAssigned(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oid, _ := primitive.ObjectIDFromHex(emergencyID)
	e, ok := f.emergencies[oid]
	if !ok || e.Status != models.EmergencyStatusPending {
		return nil, repositories.ErrNotFound
	}
	e.Status = models.EmergencyStatusAssigned
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) TransitionStatus(ctx context.Context, id, to string, from []string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oid, _ := primitive.ObjectIDFromHex(id)
	e, ok := f.emergencies[oid]
	if !ok || !utils.StringSliceContains(from, e.Status) {
		return nil, repositories.ErrNotFound
	}
	e.Status = to
	e.UpdatedAt = time.Now()
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) Resolve(ctx context.Context, id string, from []string, resolvedAt time.Time, responseTimeMinutes int64) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oid, _ := primitive.ObjectIDFromHex(id)
	e, ok := f.emergencies[oid]
	if !ok || !utils.StringSliceContains(from, e.Status) {
		return nil, repositories.ErrNotFound
	}
	e.Status = models.EmergencyStatusResolved
	e.ResolvedAt = &resolvedAt
	rt := responseTimeMinutes
	e.ResponseTime = &rt
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) AddNote(ctx context.Context, id string, note models.EmergencyNote) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oid, _ := primitive.ObjectIDFromHex(id)
	e, ok := f.emergencies[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	e.Notes = append(e.Notes, note)
	copy := *e
	return &copy, nil
}

func (f *fakeEmergencyStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(id)
	if _, ok := f.emergencies[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.emergencies, oid)
	return nil
}

func (f *fakeEmergencyStore) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.emergencies {
		if utils.StringSliceContains(statuses, e.Status) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEmergencyStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	return f.CountByStatuses(ctx, []string{status})
}

func (f *fakeEmergencyStore) CountResolvedSince(ctx context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.emergencies {
		if e.Status == models.EmergencyStatusResolved && e.ResolvedAt != nil && e.ResolvedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEmergencyStore) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.emergencies)), nil
}

func (f *fakeEmergencyStore) GroupCounts(ctx context.Context, field string) ([]models.GroupCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range f.emergencies {
		switch field {
		case "status":
			counts[e.Status]++
		case "emergencyType":
			counts[e.EmergencyType]++
		case "urgency":
			counts[e.Urgency]++
		}
	}
	var out []models.GroupCount
	for id, n := range counts {
		out = append(out, models.GroupCount{ID: id, Count: n})
	}
	return out, nil
}

func (f *fakeEmergencyStore) AverageResponseTime(ctx context.Context) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avgResponseTime, f.resolvedCount, nil
}

// fakeUserStore serves a fixed user set.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	availableVolunteers int64
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	u, ok := f.users[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) GetNotifiableResponders(ctx context.Context, excludeUserID string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.ID.Hex() == excludeUserID {
			continue
		}
		if u.IsActive && u.FCMToken != "" && (u.UserType == models.UserTypeVolunteer || u.UserType == models.UserTypeAdmin) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) ListAll(ctx context.Context, userType string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if userType != "" && u.UserType != userType {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id string, updates bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	u, ok := f.users[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		u.Name = name
	}
	if userType, ok := updates["userType"].(string); ok {
		u.UserType = userType
	}
	if contact, ok := updates["contactNumber"].(string); ok {
		u.ContactNumber = contact
	}
	if avail, ok := updates["isAvailable"].(bool); ok {
		u.IsAvailable = avail
	}
	if active, ok := updates["isActive"].(bool); ok {
		u.IsActive = active
	}
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	if _, ok := f.users[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.users, oid)
	return nil
}

func (f *fakeUserStore) CountAvailableVolunteers(ctx context.Context) (int64, error) {
	return f.availableVolunteers, nil
}

func (f *fakeUserStore) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// fakeNotificationStore records writes.
type fakeNotificationStore struct {
	mu      sync.Mutex
	created []models.Notification
	failAll error
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return f.CreateMany(ctx, []models.Notification{*n})
}

func (f *fakeNotificationStore) CreateMany(ctx context.Context, ns []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.created = append(f.created, ns...)
	return nil
}

func (f *fakeNotificationStore) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(userID)
	var out []models.Notification
	for _, n := range f.created {
		if n.UserID == oid {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	notifications, _ := f.ListByUser(ctx, userID, 0)
	var n int64
	for _, record := range notifications {
		if !record.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	return repositories.ErrNotFound
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) Delete(ctx context.Context, id, userID string) error {
	return repositories.ErrNotFound
}

// fakeQueue captures enqueued events synchronously.
type fakeQueue struct {
	mu     sync.Mutex
	events []models.NotificationEvent
	full   bool
}

func (f *fakeQueue) Enqueue(event models.NotificationEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeQueue) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

// fakeBroadcaster captures websocket events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []models.WSEvent
}

func (f *fakeBroadcaster) BroadcastEvent(event models.WSEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// fakeSender is a scriptable push provider.
type fakeSender struct {
	mu     sync.Mutex
	calls  [][]string
	err    error
	result *models.DispatchResult
}

func (f *fakeSender) SendMulticast(ctx context.Context, tokens []string, msg utils.PushMessage) (*models.DispatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokens)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.DispatchResult{SuccessCount: len(tokens)}, nil
}

// fakeSMS records outbound texts.
type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

var errStoreDown = errors.New("store down")
