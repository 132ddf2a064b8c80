package cmd

import (
	"log/slog"
	"net/http"

	"dispatch/internal/adapters/in/auth"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/persistence"
	"dispatch/internal/adapters/out/persistence/orderrepo"
	"dispatch/internal/adapters/out/persistence/workerrepo"
	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/adapters/out/redisseq"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/realtime"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Externals are the optional infrastructure clients. A nil field disables the feature
// it backs: order events are not published without Publisher, and order numbers come
// from the timestamp generator without Redis.
type Externals struct {
	Publisher rabbitmq.Publisher
	Redis     redis.Scripter
}

// CompositionRoot builds every handler from one set of shared dependencies.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *persistence.GormUnitOfWorkFactory
	logger     *slog.Logger

	matcher    services.DispatchMatcher
	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
	notifier   ports.Notifier
	publisher  *rabbitmq.PublishingNotifier
	numbers    ports.OrderNumberGenerator
	verifier   *auth.Verifier
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, ext Externals, logger *slog.Logger) (*CompositionRoot, error) {
	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	registry := realtime.NewRegistry(cfg.PresenceTimeout, logger)
	dispatcher := realtime.NewDispatcher(registry, logger)

	var notifier ports.Notifier = dispatcher
	var publisher *rabbitmq.PublishingNotifier
	if ext.Publisher != nil {
		publisher = rabbitmq.NewPublishingNotifier(dispatcher, ext.Publisher, cfg.AMQPExchange, logger)
		notifier = publisher
	}

	var numbers ports.OrderNumberGenerator = redisseq.NewTimestampGenerator()
	if ext.Redis != nil {
		numbers = redisseq.NewSequence(ext.Redis, numbers, logger)
	}

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: persistence.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		matcher:    services.NewDispatchMatcher(cfg.DispatchRadiusKm, cfg.DispatchMaxCandidates),
		registry:   registry,
		dispatcher: dispatcher,
		notifier:   notifier,
		publisher:  publisher,
		numbers:    numbers,
		verifier:   verifier,
	}, nil
}

// Start launches the background event publisher, if one is configured.
func (c *CompositionRoot) Start() {
	if c.publisher != nil {
		c.publisher.Start()
	}
}

// Close flushes queued order events and disconnects every realtime session.
func (c *CompositionRoot) Close() {
	if c.publisher != nil {
		c.publisher.Close()
	}
	c.registry.Close()
}

func (c *CompositionRoot) Verifier() *auth.Verifier {
	return c.verifier
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.numbers, c.matcher, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateSubmitQuoteCommandHandler() commands.SubmitQuoteCommandHandler {
	return commands.NewSubmitQuoteCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateConfirmQuoteCommandHandler() commands.ConfirmQuoteCommandHandler {
	return commands.NewConfirmQuoteCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateStartWorkCommandHandler() commands.StartWorkCommandHandler {
	return commands.NewStartWorkCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCompleteWorkCommandHandler() commands.CompleteWorkCommandHandler {
	return commands.NewCompleteWorkCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreatePayOrderCommandHandler() commands.PayOrderCommandHandler {
	return commands.NewPayOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRateOrderCommandHandler() commands.RateOrderCommandHandler {
	return commands.NewRateOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRebroadcastOrderCommandHandler() commands.RebroadcastOrderCommandHandler {
	return commands.NewRebroadcastOrderCommandHandler(c.orderUoWFactory(), c.matcher, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateUpdateWorkerLocationCommandHandler() commands.UpdateWorkerLocationCommandHandler {
	return commands.NewUpdateWorkerLocationCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRegisterWorkerCommandHandler() commands.RegisterWorkerCommandHandler {
	return commands.NewRegisterWorkerCommandHandler(c.workerUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreateReviewWorkerCommandHandler() commands.ReviewWorkerCommandHandler {
	return commands.NewReviewWorkerCommandHandler(c.workerUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreateChangeWorkStatusCommandHandler() commands.ChangeWorkStatusCommandHandler {
	return commands.NewChangeWorkStatusCommandHandler(c.workerUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(orderrepo.NewGormOrderRepository(c.gormDB))
}

func (c *CompositionRoot) CreateGetNearbyOrdersQueryHandler() queries.GetNearbyOrdersQueryHandler {
	return queries.NewGetNearbyOrdersQueryHandler(
		orderrepo.NewGormOrderRepository(c.gormDB),
		workerrepo.NewGormWorkerRepository(c.gormDB),
		c.matcher,
	)
}

func (c *CompositionRoot) CreateSearchNearbyWorkersQueryHandler() queries.SearchNearbyWorkersQueryHandler {
	return queries.NewSearchNearbyWorkersQueryHandler(workerrepo.NewGormWorkerRepository(c.gormDB), c.matcher, c.registry)
}

func (c *CompositionRoot) CreateGetPresenceStatsQueryHandler() queries.GetPresenceStatsQueryHandler {
	return queries.NewGetPresenceStatsQueryHandler(c.registry)
}

// HTTPHandlers collects the handlers served by the REST adapter.
func (c *CompositionRoot) HTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateOrder:  c.CreateCreateOrderCommandHandler(),
		AcceptOrder:  c.CreateAcceptOrderCommandHandler(),
		ConfirmOrder: c.CreateConfirmOrderCommandHandler(),
		SubmitQuote:  c.CreateSubmitQuoteCommandHandler(),
		ConfirmQuote: c.CreateConfirmQuoteCommandHandler(),
		StartWork:    c.CreateStartWorkCommandHandler(),
		CompleteWork: c.CreateCompleteWorkCommandHandler(),
		PayOrder:     c.CreatePayOrderCommandHandler(),
		RateOrder:    c.CreateRateOrderCommandHandler(),
		CancelOrder:  c.CreateCancelOrderCommandHandler(),

		RegisterWorker:       c.CreateRegisterWorkerCommandHandler(),
		ReviewWorker:         c.CreateReviewWorkerCommandHandler(),
		ChangeWorkStatus:     c.CreateChangeWorkStatusCommandHandler(),
		UpdateWorkerLocation: c.CreateUpdateWorkerLocationCommandHandler(),

		GetOrder:            c.CreateGetOrderQueryHandler(),
		GetNearbyOrders:     c.CreateGetNearbyOrdersQueryHandler(),
		SearchNearbyWorkers: c.CreateSearchNearbyWorkersQueryHandler(),
		GetPresenceStats:    c.CreateGetPresenceStatsQueryHandler(),
	}
}

func (c *CompositionRoot) CreateRealtimeRouter() *realtime.Router {
	return realtime.NewRouter(
		c.registry,
		c.dispatcher,
		c.CreateUpdateWorkerLocationCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateWebsocketHandler() http.Handler {
	return ws.NewHandler(c.registry, c.CreateRealtimeRouter(), c.verifier, c.cfg.SessionBuffer, c.logger)
}

// NewEcho builds the HTTP server: REST routes under /api/v1 and the socket endpoint at /ws.
func (c *CompositionRoot) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			c.logger.LogAttrs(ctx.Request().Context(), slog.LevelDebug, "http_request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	httpin.NewServer(c.HTTPHandlers(), c.logger).Register(e, c.verifier)
	e.GET("/ws", echo.WrapHandler(c.CreateWebsocketHandler()))

	return e
}

// Jobs returns the scheduled background jobs, not yet started.
func (c *CompositionRoot) Jobs() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewPresenceSweepJob(c.registry, c.cfg.PresenceSweepSchedule, c.logger),
		jobs.NewPendingOrderRebroadcastJob(
			orderrepo.NewGormOrderRepository(c.gormDB),
			c.CreateRebroadcastOrderCommandHandler(),
			c.cfg.RebroadcastSchedule,
			c.cfg.RebroadcastMinAge,
			c.logger,
		),
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) workerUoWFactory() commands.WorkerUoWFactory {
	return FuncWorkerUoWFactory(func() commands.WorkerUoW {
		return c.uowFactory.Create()
	})
}

type FuncWorkerUoWFactory func() commands.WorkerUoW

func (f FuncWorkerUoWFactory) Create() commands.WorkerUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
