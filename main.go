package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub/config"
	"eventhub/db"
	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/routes"
	"eventhub/utils"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	utils.Configure(cfg.JWTSecret, cfg.JWTTTL)

	// Postgres: users + registrations
	sqldb, err := db.Open(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init failed")
	}
	defer sqldb.Close()

	// Mongo: events
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mg, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	if err := mg.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("mongo ping failed")
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()

	eventsCol := mg.Database("eventhub").Collection("events")

	// Redis: response cache + quotas
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	inv := utils.NewCacheInvalidator(rdb)

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestLogger(log.Logger))
	server.Use(middlewares.ResponseCache(rdb, cfg.CacheTTL))

	routes.RegisterRoutes(server,
		models.NewSQLUserRepository(sqldb),
		models.NewSQLRegistrationRepository(sqldb),
		models.NewMongoEventRepository(eventsCol),
		rdb, inv)

	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := server.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
