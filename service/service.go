package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"walletpass/config"
	"walletpass/db"
	"walletpass/db/catalog"
	"walletpass/db/datalake"
	"walletpass/db/orders"
	"walletpass/db/passes"
	"walletpass/db/settings"
	"walletpass/diagnostics"
	"walletpass/entity"
	"walletpass/extractor"
	"walletpass/http"
	"walletpass/locks"
	passService "walletpass/passes"
	"walletpass/pubsub"
	"walletpass/pubsub/bus"
	"walletpass/pubsub/event"
	"walletpass/pubsub/outbox"
	"walletpass/pubsub/scheduler"
	"walletpass/render"
)

func init() {
	log.Init(logrus.InfoLevel)
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	scheduler       *scheduler.RecheckScheduler
	settingsRepo    *settings.PostgresRepository
	settingsSeed    entity.Settings
}

func New(
	cfg config.Config,
	db *sqlx.DB,
	redisClient *redis.Client,
	passSource passService.Gateway,
) Service {
	catalogRepo := catalog.NewPostgresRepository(db)
	ordersRepo := orders.NewPostgresRepository(db)
	passesRepo := passes.NewPostgresRepository(db)
	settingsRepo := settings.NewPostgresRepository(db)
	dataLake := datalake.NewDataLake(db)

	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher, err := pubsub.NewRedisPublisher(redisClient, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create redis publisher: %w", err))
	}

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	ticketExtractor := extractor.NewExtractor(ordersRepo, catalogRepo)
	locker := locks.NewRedisLocker(redisClient, cfg.PassLockTTL)
	passesService := passService.NewService(passSource, passesRepo, locker, cfg.OrganizationName)
	recheckScheduler := scheduler.NewRecheckScheduler(redisClient, eventBus, cfg.SchedulerPollInterval)
	renderer := render.NewRenderer(cfg.AssetsBaseURL)

	eventsHandler := event.NewHandler(
		eventBus,
		ticketExtractor,
		ordersRepo,
		settingsRepo,
		passesService,
		recheckScheduler,
		cfg.RecheckDelay,
	)

	postgresSubscriber, err := outbox.NewPostgresSubscriber(db, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create postgres subscriber: %w", err))
	}

	splitterSubscriber, err := pubsub.NewRedisSubscriber(redisClient, "svc-walletpass.events_splitter", watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create redis subscriber: %w", err))
	}

	dataLakeSubscriber, err := pubsub.NewRedisSubscriber(redisClient, "svc-walletpass.store_to_data_lake", watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create redis subscriber: %w", err))
	}

	watermillRouter, err := pubsub.NewWatermillRouter(
		postgresSubscriber,
		redisPublisher,
		splitterSubscriber,
		dataLakeSubscriber,
		event.NewProcessorConfig(redisClient, watermillLogger),
		eventsHandler,
		dataLake,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(
		cfg.HTTPAddr,
		eventBus,
		catalogRepo,
		ordersRepo,
		passesRepo,
		settingsRepo,
		renderer,
		diagnostics.New(settingsRepo, passesService, ordersRepo, ticketExtractor, passesRepo, renderer),
	)

	return Service{
		db:              db,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		scheduler:       recheckScheduler,
		settingsRepo:    settingsRepo,
		settingsSeed: entity.Settings{
			ClientHash:   cfg.PassSource.ClientHash,
			TemplateHash: cfg.PassSource.TemplateHash,
		},
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	if err := s.settingsRepo.EnsureDefaults(ctx, s.settingsSeed); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-s.watermillRouter.Running():
		case <-ctx.Done():
			return nil
		}

		return s.scheduler.Run(ctx)
	})

	g.Go(func() error {
		// we don't want to start HTTP server before Watermill router (so service won't be healthy before it's ready)
		select {
		case <-s.watermillRouter.Running():
		case <-ctx.Done():
			return nil
		}

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}
