// Package http exposes the dispatch engine over REST with echo. Every route except
// /health requires a bearer token; the verified actor is handed to the use cases,
// which decide what that actor may do.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"

	"github.com/labstack/echo/v4"
)

// Handler is a command or query handler as the server sees it.
type Handler[In any, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// Handlers groups the use cases served over REST.
type Handlers struct {
	CreateOrder  Handler[commands.CreateOrderCommand, *order.Order]
	AcceptOrder  Handler[commands.AcceptOrderCommand, *order.Order]
	ConfirmOrder Handler[commands.ConfirmOrderCommand, *order.Order]
	SubmitQuote  Handler[commands.SubmitQuoteCommand, *order.Order]
	ConfirmQuote Handler[commands.ConfirmQuoteCommand, *order.Order]
	StartWork    Handler[commands.StartWorkCommand, *order.Order]
	CompleteWork Handler[commands.CompleteWorkCommand, *order.Order]
	PayOrder     Handler[commands.PayOrderCommand, *order.Order]
	RateOrder    Handler[commands.RateOrderCommand, *order.Order]
	CancelOrder  Handler[commands.CancelOrderCommand, *order.Order]

	RegisterWorker       Handler[commands.RegisterWorkerCommand, *worker.Worker]
	ReviewWorker         Handler[commands.ReviewWorkerCommand, *worker.Worker]
	ChangeWorkStatus     Handler[commands.ChangeWorkStatusCommand, *worker.Worker]
	UpdateWorkerLocation Handler[commands.UpdateWorkerLocationCommand, *kernel.UUID]

	GetOrder            Handler[queries.GetOrderQuery, *order.Order]
	GetNearbyOrders     Handler[queries.GetNearbyOrdersQuery, []queries.GetNearbyOrdersQueryResponse]
	SearchNearbyWorkers Handler[queries.SearchNearbyWorkersQuery, []queries.SearchNearbyWorkersQueryResponse]
	GetPresenceStats    Handler[queries.GetPresenceStatsQuery, queries.GetPresenceStatsQueryResponse]
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

// NewServer creates a server over the given handlers.
func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http")}
}

// Register mounts the routes on e. Routes below /api/v1 are authenticated by verifier.
func (s *Server) Register(e *echo.Echo, verifier TokenVerifier) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "healthy")
	})

	api := e.Group("/api/v1", Authenticate(verifier))

	orders := api.Group("/orders")
	orders.POST("", s.CreateOrder)
	orders.GET("/nearby", s.GetNearbyOrders)
	orders.GET("/:id", s.GetOrder)
	orders.POST("/:id/accept", s.AcceptOrder)
	orders.POST("/:id/confirm", s.ConfirmOrder)
	orders.POST("/:id/quote", s.SubmitQuote)
	orders.POST("/:id/quote/confirm", s.ConfirmQuote)
	orders.POST("/:id/start", s.StartWork)
	orders.POST("/:id/complete", s.CompleteWork)
	orders.POST("/:id/pay", s.PayOrder)
	orders.POST("/:id/rate", s.RateOrder)
	orders.POST("/:id/cancel", s.CancelOrder)

	workers := api.Group("/workers")
	workers.POST("", s.RegisterWorker)
	workers.GET("/nearby", s.SearchNearbyWorkers)
	workers.PUT("/me/status", s.ChangeWorkStatus)
	workers.PUT("/me/location", s.UpdateWorkerLocation)
	workers.POST("/:id/review", s.ReviewWorker)

	api.GET("/presence", s.GetPresenceStats)
}

// orderResult writes the order returned by a handler, or the error it failed with.
func (s *Server) orderResult(c echo.Context, status int, o *order.Order, err error) error {
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, newOrderResponse(o))
}

func (s *Server) workerResult(c echo.Context, status int, w *worker.Worker, err error) error {
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, newWorkerResponse(w))
}

func pathID(c echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(c.Param("id"))
}
