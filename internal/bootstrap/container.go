package bootstrap

import (
	"context"
	"log"
	"time"

	"notevault-be/internal/config"
	"notevault-be/internal/controller"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/internal/service"
	"notevault-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SyncController     controller.ISyncController
	PasswordController controller.IPasswordController
	CategoryController controller.ICategoryController
	NoteController     controller.INoteController

	// Background Services (Exposed for main.go to run)
	JobService      service.IJobService
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// Redis is optional; without it the hub fans out locally only.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, service.SyncEventsTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		service.SyncEventsTopic,
		wsHub,
		sysLogger,
	)

	jobTTL := time.Duration(cfg.Backup.JobTTLMinutes) * time.Minute
	jobService := service.NewJobService(publisherService, jobTTL, sysLogger)

	syncService := service.NewSyncService(uowFactory, jobService, cfg.Backup.Dir, sysLogger)
	passwordService := service.NewPasswordService(uowFactory, jobService, sysLogger)
	categoryService := service.NewCategoryService(uowFactory, sysLogger)
	noteService := service.NewNoteService(uowFactory, sysLogger)

	// 5. Controllers
	return &Container{
		SyncController:     controller.NewSyncController(syncService, jobService),
		PasswordController: controller.NewPasswordController(passwordService),
		CategoryController: controller.NewCategoryController(categoryService),
		NoteController:     controller.NewNoteController(noteService),

		JobService:      jobService,
		ConsumerService: consumerService,

		WebSocketHub: wsHub,
	}
}
