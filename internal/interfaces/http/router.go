package http

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/infrastructure/config"
	"github.com/connecthub/connecthub/internal/shared/logger"

	_ "github.com/connecthub/connecthub/docs"
)

// Router owns the gin engine and the wired container behind it.
type Router struct {
	*Container
}

// NewRouter wires all dependencies. Call SetupRoutes before serving.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, redisClient, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}
