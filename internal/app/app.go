// Package app wires configuration, infrastructure and services together for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"eventhub/database"
	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/media"
	"eventhub/internal/messaging"
	"eventhub/internal/microservices/http-api/handler"
	"eventhub/internal/microservices/http-api/middleware"
	"eventhub/internal/microservices/http-api/repository"
	"eventhub/internal/microservices/http-api/service"
	"eventhub/internal/microservices/websocket"
	"eventhub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Services struct {
	Auth          service.AuthService
	Events        service.EventService
	Subscriptions service.SubscriptionService
	Notifications service.NotificationService
	Users         service.UserService
	Admin         service.AdminService
	Uploads       service.UploadService
}

// App owns every long-lived dependency of a process.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	DB       *gorm.DB
	Store    repository.Store
	Services Services

	cache     *cache.Cache
	publisher *messaging.Publisher
	remover   *media.Remover
	hub       *websocket.Hub
	stopHub   context.CancelFunc
}

type Options struct {
	// LiveNotifications starts the websocket hub that pushes new notifications
	// to connected browsers. Only the API server needs it.
	LiveNotifications bool
}

// New connects to the database and the optional backends. Redis, RabbitMQ and
// Cloudinary are skipped, with a warning, when unconfigured or unreachable.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolConfig(), log)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, DB: db, Store: repository.NewStore(db)}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache")
		} else {
			a.cache = cache.New(rdb, cfg.CacheTTL)
			log.Info().Msg("connected to redis")
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := messaging.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, notifications stay local")
		} else {
			a.publisher = pub
		}
	}

	// a typed nil would defeat the nil check in the upload service
	var host media.Host
	if cfg.MediaEnabled() {
		cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn().Err(err).Msg("cloudinary misconfigured, uploads disabled")
		} else {
			host = cld
		}
	} else {
		log.Warn().Msg("cloudinary not configured, uploads disabled")
	}
	a.remover = media.NewRemover(host, log)

	if opts.LiveNotifications {
		hubCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.hub, a.stopHub = websocket.NewHub(log), cancel
		go a.hub.Run(hubCtx)
	}

	a.Services = a.buildServices(host)
	return a, nil
}

func (a *App) buildServices(host media.Host) Services {
	cfg, log := a.Config, a.Log
	loc := cfg.Location()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	var publisher service.NotificationPublisher = a.publisher
	if a.hub != nil {
		publisher = service.FanOut(a.publisher, a.hub)
	}
	notifier := service.NewNotifier(a.cache, publisher, log.With().Str("component", "notifier").Logger())

	return Services{
		Auth:          service.NewAuthService(a.Store.Users(), tokens, a.cache, cfg.BcryptCost, log),
		Events:        service.NewEventService(a.Store, notifier, a.remover, loc, log),
		Subscriptions: service.NewSubscriptionService(a.Store, notifier, log),
		Notifications: service.NewNotificationService(a.Store.Notifications(), a.cache, log),
		Users:         service.NewUserService(a.Store, a.remover, cfg.BcryptCost, loc, log),
		Admin:         service.NewAdminService(a.Store, notifier, a.remover, log),
		Uploads:       service.NewUploadService(host, a.Store, log),
	}
}

// Router builds the HTTP API on top of the services.
func (a *App) Router() *gin.Engine {
	cfg, s := a.Config, a.Services
	var live gin.HandlerFunc
	if a.hub != nil {
		live = websocket.Handler(a.hub, websocket.NewUpgrader(cfg.CORSOrigins))
	}
	return handler.NewRouter(handler.RouterConfig{
		Log:           a.Log,
		CORSOrigins:   cfg.CORSOrigins,
		CookieName:    cfg.AuthCookieName,
		Authenticator: s.Auth,
		LoginLimiter:  middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		Health:        database.Ping(a.DB),
		Auth:          handler.NewAuthHandler(s.Auth, cfg.AuthCookieName, cfg.IsProduction()),
		Events:        handler.NewEventHandler(s.Events, s.Subscriptions),
		Users:         handler.NewUserHandler(s.Users, s.Events, s.Subscriptions),
		Admin:         handler.NewAdminHandler(s.Admin, s.Events),
		Notifications: handler.NewNotificationHandler(s.Notifications),
		Uploads:       handler.NewUploadHandler(s.Uploads, cfg.UploadMaxBytes),
		Live:          live,
	})
}

// Close waits for background image removals and releases every connection.
func (a *App) Close() error {
	if a.stopHub != nil {
		a.stopHub()
	}
	a.remover.Wait()
	a.publisher.Close()

	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
