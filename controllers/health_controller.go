// controllers/health_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"resqlink/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthController struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	startTime   time.Time
	version     string
}

func NewHealthController(mongoClient *mongo.Client, redisClient *redis.Client, version string) *HealthController {
	return &HealthController{
		mongoClient: mongoClient,
		redisClient: redisClient,
		startTime:   time.Now(),
		version:     version,
	}
}

// Health reports service liveness and the state of each backing store.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{}
	status := "healthy"

	if err := hc.mongoClient.Ping(ctx, nil); err != nil {
		services["mongodb"] = "unhealthy"
		status = "degraded"
	} else {
		services["mongodb"] = "healthy"
	}

	if hc.redisClient != nil {
		if err := hc.redisClient.Ping(ctx).Err(); err != nil {
			services["redis"] = "unhealthy"
			status = "degraded"
		} else {
			services["redis"] = "healthy"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   hc.version,
		Uptime:    time.Since(hc.startTime).Round(time.Second).String(),
	})
}
