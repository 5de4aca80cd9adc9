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

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: database.Collection("users"),
	}
}

func (ur *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true

	_, err := ur.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.Errorf("Failed to create user: %v", err)
		return err
	}

	return nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err = ur.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		logrus.Errorf("Failed to get user by ID: %v", err)
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := ur.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		logrus.Errorf("Failed to get user by email: %v", err)
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := ur.collection.FindOne(ctx, bson.M{"googleId": googleID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		logrus.Errorf("Failed to get user by Google ID: %v", err)
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	cursor, err := ur.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		logrus.Errorf("Failed to get users by IDs: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// GetNotifiableResponders returns active volunteers and admins that carry an
// FCM token, excluding the given user. This is the push audience for a new
// emergency.
func (ur *UserRepository) GetNotifiableResponders(ctx context.Context, excludeUserID string) ([]models.User, error) {
	filter := bson.M{
		"userType": bson.M{"$in": models.ResponderTypes},
		"isActive": true,
		"fcmToken": bson.M{"$exists": true, "$ne": ""},
	}
	if excludeUserID != "" {
		if excludeObjectID, err := primitive.ObjectIDFromHex(excludeUserID); err == nil {
			filter["_id"] = bson.M{"$ne": excludeObjectID}
		}
	}

	cursor, err := ur.collection.Find(ctx, filter)
	if err != nil {
		logrus.Errorf("Failed to get notifiable responders: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *UserRepository) ListAll(ctx context.Context, userType string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	filter := bson.M{}
	if userType != "" {
		filter["userType"] = userType
	}

	cursor, err := ur.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to list users: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *UserRepository) Update(ctx context.Context, id string, updates bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	updates["updatedAt"] = time.Now()

	result, err := ur.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updates})
	if err != nil {
		logrus.Errorf("Failed to update user: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (ur *UserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	return ur.Update(ctx, id, bson.M{"fcmToken": token})
}

func (ur *UserRepository) UpdateAvailability(ctx context.Context, id string, isAvailable bool) error {
	return ur.Update(ctx, id, bson.M{"isAvailable": isAvailable})
}

func (ur *UserRepository) UpdateLastSeen(ctx context.Context, id string) error {
	return ur.Update(ctx, id, bson.M{"lastSeen": time.Now()})
}

func (ur *UserRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := ur.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		logrus.Errorf("Failed to delete user: %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (ur *UserRepository) CountAvailableVolunteers(ctx context.Context) (int64, error) {
	return ur.collection.CountDocuments(ctx, bson.M{
		"userType":    models.UserTypeVolunteer,
		"isActive":    true,
		"isAvailable": true,
	})
}

func (ur *UserRepository) CountAll(ctx context.Context) (int64, error) {
	return ur.collection.CountDocuments(ctx, bson.M{})
}
