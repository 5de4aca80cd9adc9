package database

import (
	"context"
	"time"

	"resqlink/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Seeder represents a database seeder
type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

var seeders = []Seeder{
	{
		Name:        "demo_users",
		Description: "Create demo accounts for development",
		Seed:        seedDemoUsers,
	},
	{
		Name:        "demo_emergencies",
		Description: "Create demo emergencies for development",
		Seed:        seedDemoEmergencies,
	},
}

// RunSeeders executes all database seeders once.
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedersCol := db.Collection("seeders")
	count, err := seedersCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		logrus.Info("Seeders already run, skipping")
		return nil
	}

	for _, seeder := range seeders {
		logrus.Infof("Running seeder: %s", seeder.Name)
		if err := seeder.Seed(db); err != nil {
			return err
		}
		if _, err := seedersCol.InsertOne(ctx, bson.M{
			"name":     seeder.Name,
			"seededAt": time.Now(),
		}); err != nil {
			return err
		}
	}

	return nil
}

func seedDemoUsers(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	users := []interface{}{
		models.User{
			ID:        primitive.NewObjectID(),
			Name:      "Demo Reporter",
			Email:     "reporter@resqlink.dev",
			Password:  string(password),
			UserType:  models.UserTypeUser,
			IsActive:  true,
			LastSeen:  now,
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.User{
			ID:            primitive.NewObjectID(),
			Name:          "Demo Volunteer",
			Email:         "volunteer@resqlink.dev",
			Password:      string(password),
			UserType:      models.UserTypeVolunteer,
			ContactNumber: "+15550100200",
			IsAvailable:   true,
			IsActive:      true,
			LastSeen:      now,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		models.User{
			ID:        primitive.NewObjectID(),
			Name:      "Demo Admin",
			Email:     "admin@resqlink.dev",
			Password:  string(password),
			UserType:  models.UserTypeAdmin,
			IsActive:  true,
			LastSeen:  now,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	_, err = db.Collection("users").InsertMany(ctx, users)
	return err
}

func seedDemoEmergencies(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reporter models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"userType": models.UserTypeUser}).Decode(&reporter)
	if err != nil {
		return err
	}

	now := time.Now()
	emergencies := []interface{}{
		models.Emergency{
			ID:                 primitive.NewObjectID(),
			UserID:             reporter.ID,
			EmergencyType:      models.EmergencyTypeMedical,
			Description:        "Elderly neighbor collapsed, conscious but weak",
			Urgency:            models.UrgencyHigh,
			Location:           models.NewGeoPoint(77.5946, 12.9716, "MG Road, Bengaluru"),
			Status:             models.EmergencyStatusPending,
			AssignedVolunteers: []primitive.ObjectID{},
			AIClassification:   models.ClassifyEmergency(models.EmergencyTypeMedical),
			Notes:              []models.EmergencyNote{},
			CreatedAt:          now.Add(-30 * time.Minute),
			UpdatedAt:          now.Add(-30 * time.Minute),
		},
		models.Emergency{
			ID:                 primitive.NewObjectID(),
			UserID:             reporter.ID,
			EmergencyType:      models.EmergencyTypeFlood,
			Description:        "Street flooding, water entering ground floor homes",
			Urgency:            models.UrgencyCritical,
			Location:           models.NewGeoPoint(77.6101, 12.9352, "Koramangala, Bengaluru"),
			Status:             models.EmergencyStatusPending,
			AssignedVolunteers: []primitive.ObjectID{},
			AIClassification:   models.ClassifyEmergency(models.EmergencyTypeFlood),
			Notes:              []models.EmergencyNote{},
			CreatedAt:          now.Add(-2 * time.Hour),
			UpdatedAt:          now.Add(-2 * time.Hour),
		},
	}

	_, err = db.Collection("emergencies").InsertMany(ctx, emergencies)
	return err
}
