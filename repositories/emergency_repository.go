package repositories

import (
	"context"
	"errors"
	"time"

	"resqlink/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup or conditional update matched no
// document. Services translate it into the API error taxonomy.
var ErrNotFound = errors.New("not found")

type EmergencyRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRepository(database *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{
		collection: database.Collection("emergencies"),
	}
}

func (er *EmergencyRepository) Create(ctx context.Context, emergency *models.Emergency) error {
	emergency.ID = primitive.NewObjectID()
	emergency.CreatedAt = time.Now()
	emergency.UpdatedAt = emergency.CreatedAt

	if emergency.Status == "" {
		emergency.Status = models.EmergencyStatusPending
	}
	if emergency.AssignedVolunteers == nil {
		emergency.AssignedVolunteers = []primitive.ObjectID{}
	}
	if emergency.Notes == nil {
		emergency.Notes = []models.EmergencyNote{}
	}

	_, err := er.collection.InsertOne(ctx, emergency)
	if err != nil {
		logrus.Errorf("Failed to create emergency: %v", err)
		return err
	}

	return nil
}

func (er *EmergencyRepository) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var emergency models.Emergency
	err = er.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		logrus.Errorf("Failed to get emergency by ID: %v", err)
		return nil, err
	}

	return &emergency, nil
}

func (er *EmergencyRepository) List(ctx context.Context, statuses []string, urgency string, limit int64) ([]models.Emergency, error) {
	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	if urgency != "" {
		filter["urgency"] = urgency
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	return er.find(ctx, filter, opts)
}

func (er *EmergencyRepository) ListByReporter(ctx context.Context, userID string) ([]models.Emergency, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return er.find(ctx, bson.M{"userId": userObjectID}, opts)
}

func (er *EmergencyRepository) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.Emergency, error) {
	volunteerObjectID, err := primitive.ObjectIDFromHex(volunteerID)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return er.find(ctx, bson.M{"assignedVolunteers": volunteerObjectID}, opts)
}

func (er *EmergencyRepository) ListAll(ctx context.Context) ([]models.Emergency, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return er.find(ctx, bson.M{}, opts)
}

// Nearby runs the $near proximity query; results come back ascending by
// distance from the 2dsphere index.
func (er *EmergencyRepository) Nearby(ctx context.Context, longitude, latitude float64, maxDistanceMeters int64, statuses []string, limit int64) ([]models.Emergency, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{longitude, latitude},
				},
				"$maxDistance": maxDistanceMeters,
			},
		},
		"status": bson.M{"$in": statuses},
	}

	opts := options.Find().SetLimit(limit)
	return er.find(ctx, filter, opts)
}

// AddVolunteer appends the volunteer in one conditional update. The filter
// excludes closed emergencies and documents that already contain the
// volunteer, so the append and the duplicate check are a single atomic
// operation.
func (er *EmergencyRepository) AddVolunteer(ctx context.Context, emergencyID, volunteerID string) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		return nil, ErrNotFound
	}
	volunteerObjectID, err := primitive.ObjectIDFromHex(volunteerID)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{
		"_id":                objectID,
		"status":             bson.M{"$in": models.ActiveStatuses},
		"assignedVolunteers": bson.M{"$ne": volunteerObjectID},
	}
	update := bson.M{
		"$addToSet": bson.M{"assignedVolunteers": volunteerObjectID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	return er.findOneAndUpdate(ctx, filter, update)
}

// PromoteToAssigned advances a still-pending emergency to assigned. A no-op
// when the status has already moved on.
func (er *EmergencyRepository) PromoteToAssigned(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{
		"_id":    objectID,
		"status": models.EmergencyStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.EmergencyStatusAssigned,
			"updatedAt": time.Now(),
		},
	}

	return er.findOneAndUpdate(ctx, filter, update)
}

// TransitionStatus moves the emergency to the target status only when its
// current status is one of the allowed sources, as a single conditional
// update.
func (er *EmergencyRepository) TransitionStatus(ctx context.Context, id, to string, from []string) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$in": from},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    to,
			"updatedAt": time.Now(),
		},
	}

	return er.findOneAndUpdate(ctx, filter, update)
}

// Resolve is TransitionStatus into resolved, additionally stamping
// resolvedAt and the response-time metric. The status filter makes the
// set-once guarantee hold: resolved is terminal, so the filter can never
// match an already-resolved document.
func (er *EmergencyRepository) Resolve(ctx context.Context, id string, from []string, resolvedAt time.Time, responseTimeMinutes int64) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$in": from},
	}
	update := bson.M{
		"$set": bson.M{
			"status":       models.EmergencyStatusResolved,
			"resolvedAt":   resolvedAt,
			"responseTime": responseTimeMinutes,
			"updatedAt":    time.Now(),
		},
	}

	return er.findOneAndUpdate(ctx, filter, update)
}

func (er *EmergencyRepository) AddNote(ctx context.Context, id string, note models.EmergencyNote) (*models.Emergency, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	return er.findOneAndUpdate(ctx, filter, update)
}

func (er *EmergencyRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := er.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		logrus.Errorf("Failed to delete emergency: %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// =================== AGGREGATES ===================

func (er *EmergencyRepository) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	return er.collection.CountDocuments(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

func (er *EmergencyRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return er.collection.CountDocuments(ctx, bson.M{"status": status})
}

func (er *EmergencyRepository) CountResolvedSince(ctx context.Context, since time.Time) (int64, error) {
	return er.collection.CountDocuments(ctx, bson.M{
		"status":     models.EmergencyStatusResolved,
		"resolvedAt": bson.M{"$gte": since},
	})
}

func (er *EmergencyRepository) CountAll(ctx context.Context) (int64, error) {
	return er.collection.CountDocuments(ctx, bson.M{})
}

// GroupCounts groups all emergencies by the given field and counts each
// bucket.
func (er *EmergencyRepository) GroupCounts(ctx context.Context, field string) ([]models.GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := er.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.Errorf("Failed to aggregate emergencies by %s: %v", field, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.GroupCount
	if err = cursor.All(ctx, &counts); err != nil {
		logrus.Errorf("Failed to decode %s aggregation: %v", field, err)
		return nil, err
	}

	return counts, nil
}

// AverageResponseTime averages responseTime over resolved emergencies that
// carry the field, returning the number of documents that contributed.
func (er *EmergencyRepository) AverageResponseTime(ctx context.Context) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":       models.EmergencyStatusResolved,
			"responseTime": bson.M{"$exists": true},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$responseTime"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := er.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.Errorf("Failed to aggregate response time: %v", err)
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].Avg, results[0].Count, nil
}

// =================== INTERNAL ===================

func (er *EmergencyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Emergency, error) {
	cursor, err := er.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to query emergencies: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var emergencies []models.Emergency
	if err = cursor.All(ctx, &emergencies); err != nil {
		logrus.Errorf("Failed to decode emergencies: %v", err)
		return nil, err
	}

	return emergencies, nil
}

func (er *EmergencyRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Emergency, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var emergency models.Emergency
	err := er.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		logrus.Errorf("Failed to update emergency: %v", err)
		return nil, err
	}

	return &emergency, nil
}
