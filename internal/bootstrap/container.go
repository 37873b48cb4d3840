package bootstrap

import (
	"context"
	"log"

	"highlighter-be/internal/config"
	"highlighter-be/internal/controller"
	"highlighter-be/internal/handler"
	"highlighter-be/internal/pkg/logger"
	"highlighter-be/internal/repository/memory"
	"highlighter-be/internal/repository/unitofwork"
	"highlighter-be/internal/service"
	"highlighter-be/internal/websocket"
	"highlighter-be/pkg/highlight"
	pktNats "highlighter-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	HighlightController controller.IHighlightController
	DocumentController  controller.IDocumentController
	PaletteController   controller.IPaletteController
	HealthController    controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	// closers release connections in reverse order of opening.
	closers []func()
}

// Close releases the bus and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewContainer wires the application. db may be nil, in which case
// anchors and palettes are kept in memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// Event Bus
	var closers []func()

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	closers = append(closers, func() { _ = pubSub.Close() })

	// NATS
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		closers = append(closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	} else {
		closers = append(closers, natsSub.Close)
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	notifService := service.NewNotificationService(eventPublisher, natsSub, wsHub, wsLogger)

	// Anchor persistence
	var anchors highlight.Store
	if uowFactory != nil {
		anchors = service.NewAnchorStore(uowFactory, rdb, cfg.Highlight.AnchorCacheTTL, sysLogger)
	} else {
		log.Println("[INFO] No database configured, keeping highlights in memory")
		anchors = memory.NewAnchorStore()
	}

	defaultPalette := highlight.DefaultPalette()
	if cfg.Highlight.PaletteFile != "" {
		p, err := service.LoadPaletteFile(cfg.Highlight.PaletteFile)
		if err != nil {
			log.Printf("[WARN] %v, using the built-in palette", err)
		} else {
			defaultPalette = p
		}
	}

	publisherService := service.NewPublisherService(cfg.Keys.PaletteTopic, pubSub)
	paletteService := service.NewPaletteService(uowFactory, defaultPalette, publisherService, sysLogger)

	sessionRepo := memory.NewSessionRepository(cfg.Highlight.SessionTTL)
	documentService := service.NewDocumentService(
		anchors,
		paletteService,
		sessionRepo,
		notifService,
		cfg.Highlight.ContextLength,
		sysLogger,
	)
	highlightService := service.NewHighlightService(anchors, paletteService, cfg.Highlight.ContextLength)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.PaletteTopic,
		documentService,
		notifService,
		sysLogger,
	)

	return &Container{
		HighlightController: controller.NewHighlightController(highlightService, documentService),
		DocumentController:  controller.NewDocumentController(documentService),
		PaletteController:   controller.NewPaletteController(paletteService),
		HealthController:    controller.NewHealthController(db != nil, sessionRepo.Count),

		ConsumerService:     consumerService,
		NotificationService: notifService,

		NotificationHandler: handler.NewNotificationHandler(wsHub, wsLogger),
		WebSocketHub:        wsHub,

		Logger: sysLogger,

		closers: closers,
	}
}

// newRedisClient returns nil when Redis is unreachable so callers fall
// back to single-instance behaviour.
func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
