package main

import (
	"log"

	"event-ticketing/cmd"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/usecase"
	"event-ticketing/internal/wire"
	"event-ticketing/pkg/cache"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/events"
	"event-ticketing/pkg/qrcode"
	"event-ticketing/pkg/storage"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	media, err := storage.NewLocalStore(config.Media.Root, config.Media.URL)
	if err != nil {
		logger.Fatal("Failed to prepare media directory", zap.Error(err))
	}

	deps := usecase.Dependencies{
		QR:    qrcode.NewEncoder(),
		Media: media,
	}

	// Redis optional, tanpa REDIS_URL status dibaca langsung dari database
	if config.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(config.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, status cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			deps.Cache = cache.NewRedisStatusCache(rdb, config.Redis.StatusCacheTTL)
			logger.Info("Order status cache enabled", zap.Duration("ttl", config.Redis.StatusCacheTTL))
		}
	}

	if len(config.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(config.Kafka.Brokers, config.Kafka.Topic, config.App.Name, logger)
		defer publisher.Close()
		deps.Publisher = publisher
		logger.Info("Domain events enabled",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.Topic))
	}

	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger, deps)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
