package repositories

import (
	"context"
	"time"

	"resqlink/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(database *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: database.Collection("notifications"),
	}
}

func (nr *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()

	_, err := nr.collection.InsertOne(ctx, notification)
	if err != nil {
		logrus.Errorf("Failed to create notification: %v", err)
		return err
	}

	return nil
}

func (nr *NotificationRepository) CreateMany(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now()
	documents := make([]interface{}, 0, len(notifications))
	for i := range notifications {
		notifications[i].ID = primitive.NewObjectID()
		notifications[i].CreatedAt = now
		documents = append(documents, notifications[i])
	}

	_, err := nr.collection.InsertMany(ctx, documents)
	if err != nil {
		logrus.Errorf("Failed to create notifications: %v", err)
		return err
	}

	return nil
}

func (nr *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := nr.collection.Find(ctx, bson.M{"userId": userObjectID}, opts)
	if err != nil {
		logrus.Errorf("Failed to list notifications: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (nr *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrNotFound
	}

	return nr.collection.CountDocuments(ctx, bson.M{
		"userId": userObjectID,
		"isRead": false,
	})
}

// MarkRead flips a single notification owned by the user.
func (nr *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}

	result, err := nr.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "userId": userObjectID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		logrus.Errorf("Failed to mark notification read: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (nr *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrNotFound
	}

	result, err := nr.collection.UpdateMany(ctx,
		bson.M{"userId": userObjectID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		logrus.Errorf("Failed to mark notifications read: %v", err)
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (nr *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}

	result, err := nr.collection.DeleteOne(ctx, bson.M{"_id": objectID, "userId": userObjectID})
	if err != nil {
		logrus.Errorf("Failed to delete notification: %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
