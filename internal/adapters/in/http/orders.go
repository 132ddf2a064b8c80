package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, err)
	}

	location, err := kernel.NewLocation(req.Location.Latitude, req.Location.Longitude)
	if err != nil {
		return s.fail(c, err)
	}
	priority, err := order.ParsePriority(req.Priority)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(actorOf(c), order.Details{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Address:           req.Address,
		RequiredSpecialty: req.RequiredSpecialty,
	}, location, priority, req.EstimatedAmount)
	if err != nil {
		return s.fail(c, err)
	}

	created, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusCreated, created, err)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewGetOrderQuery(id, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	return s.orderResult(c, http.StatusOK, o, err)
}

// GetNearbyOrders handles GET /api/v1/orders/nearby?lat=&lng=&radius=&category=&priority=.
// Without lat and lng the worker's last reported location is used.
func (s *Server) GetNearbyOrders(c echo.Context) error {
	var (
		lat, lng, radius   float64
		category, priority string
	)
	if err := echo.QueryParamsBinder(c).
		Float64("lat", &lat).
		Float64("lng", &lng).
		Float64("radius", &radius).
		String("category", &category).
		String("priority", &priority).
		BindError(); err != nil {
		return s.fail(c, err)
	}

	var origin *kernel.Location
	if c.QueryParam("lat") != "" || c.QueryParam("lng") != "" {
		loc, err := kernel.NewLocation(lat, lng)
		if err != nil {
			return s.fail(c, err)
		}
		origin = &loc
	}

	query, err := queries.NewGetNearbyOrdersQuery(actorOf(c), origin, radius, category, priority)
	if err != nil {
		return s.fail(c, err)
	}

	found, err := s.h.GetNearbyOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := make([]NearbyOrderResponse, 0, len(found))
	for _, f := range found {
		resp = append(resp, NearbyOrderResponse{Order: newOrderResponse(f.Order), DistanceKm: f.DistanceKm})
	}
	return c.JSON(http.StatusOK, resp)
}

// AcceptOrder handles POST /api/v1/orders/:id/accept. A worker who lost the race
// receives 409 with code already_assigned.
func (s *Server) AcceptOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewAcceptOrderCommand(id, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.AcceptOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// ConfirmOrder handles POST /api/v1/orders/:id/confirm.
func (s *Server) ConfirmOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewConfirmOrderCommand(id, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.ConfirmOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// SubmitQuote handles POST /api/v1/orders/:id/quote.
func (s *Server) SubmitQuote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req SubmitQuoteRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewSubmitQuoteCommand(id, actorOf(c), req.QuotedAmount, req.Note)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.SubmitQuote.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// ConfirmQuote handles POST /api/v1/orders/:id/quote/confirm.
func (s *Server) ConfirmQuote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewConfirmQuoteCommand(id, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.ConfirmQuote.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// StartWork handles POST /api/v1/orders/:id/start.
func (s *Server) StartWork(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewStartWorkCommand(id, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.StartWork.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// CompleteWork handles POST /api/v1/orders/:id/complete.
func (s *Server) CompleteWork(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req CompleteWorkRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCompleteWorkCommand(id, actorOf(c), req.FinalAmount, req.WorkContent)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.CompleteWork.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// PayOrder handles POST /api/v1/orders/:id/pay.
func (s *Server) PayOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req PayOrderRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewPayOrderCommand(id, actorOf(c), req.PaymentMethod)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.PayOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// RateOrder handles POST /api/v1/orders/:id/rate.
func (s *Server) RateOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req RateOrderRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewRateOrderCommand(id, actorOf(c), req.Rating, req.Comment)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.RateOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req CancelOrderRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCancelOrderCommand(id, actorOf(c), req.Reason)
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.h.CancelOrder.Handle(c.Request().Context(), cmd)
	return s.orderResult(c, http.StatusOK, o, err)
}
