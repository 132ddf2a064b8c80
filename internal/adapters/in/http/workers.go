package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"

	"github.com/labstack/echo/v4"
)

// RegisterWorker handles POST /api/v1/workers. The profile id is the caller's id.
func (s *Server) RegisterWorker(c echo.Context) error {
	var req RegisterWorkerRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewRegisterWorkerCommand(actorOf(c), req.Name, req.Specialties, req.EmergencyCapable, req.MinOrderAmount)
	if err != nil {
		return s.fail(c, err)
	}

	w, err := s.h.RegisterWorker.Handle(c.Request().Context(), cmd)
	return s.workerResult(c, http.StatusCreated, w, err)
}

// ReviewWorker handles POST /api/v1/workers/:id/review.
func (s *Server) ReviewWorker(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req ReviewWorkerRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	decision, err := worker.ParseVerificationStatus(req.Decision)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewReviewWorkerCommand(actorOf(c), id, decision)
	if err != nil {
		return s.fail(c, err)
	}

	w, err := s.h.ReviewWorker.Handle(c.Request().Context(), cmd)
	return s.workerResult(c, http.StatusOK, w, err)
}

// ChangeWorkStatus handles PUT /api/v1/workers/me/status.
func (s *Server) ChangeWorkStatus(c echo.Context) error {
	var req ChangeWorkStatusRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	target, err := worker.ParseWorkStatus(req.WorkStatus)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewChangeWorkStatusCommand(actorOf(c), target)
	if err != nil {
		return s.fail(c, err)
	}

	w, err := s.h.ChangeWorkStatus.Handle(c.Request().Context(), cmd)
	return s.workerResult(c, http.StatusOK, w, err)
}

// UpdateWorkerLocation handles PUT /api/v1/workers/me/location. The response names
// the active order the position was forwarded to, if any.
func (s *Server) UpdateWorkerLocation(c echo.Context) error {
	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, err)
	}
	location, err := kernel.NewLocation(req.Latitude, req.Longitude)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewUpdateWorkerLocationCommand(actorOf(c), location)
	if err != nil {
		return s.fail(c, err)
	}

	activeOrderID, err := s.h.UpdateWorkerLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	var resp LocationUpdateResponse
	if activeOrderID != nil {
		id := activeOrderID.String()
		resp.ActiveOrderID = &id
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchNearbyWorkers handles GET /api/v1/workers/nearby?lat=&lng=&radius=&specialty=&emergency=&includeBusy=.
func (s *Server) SearchNearbyWorkers(c echo.Context) error {
	var (
		lat, lng, radius       float64
		specialty              string
		emergency, includeBusy bool
	)
	if err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &lat).
		MustFloat64("lng", &lng).
		Float64("radius", &radius).
		String("specialty", &specialty).
		Bool("emergency", &emergency).
		Bool("includeBusy", &includeBusy).
		BindError(); err != nil {
		return s.fail(c, err)
	}

	origin, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewSearchNearbyWorkersQuery(origin, radius, specialty, emergency, includeBusy)
	if err != nil {
		return s.fail(c, err)
	}

	found, err := s.h.SearchNearbyWorkers.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := make([]NearbyWorkerResponse, 0, len(found))
	for _, f := range found {
		resp = append(resp, newNearbyWorkerResponse(f))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPresenceStats handles GET /api/v1/presence.
func (s *Server) GetPresenceStats(c echo.Context) error {
	query, err := queries.NewGetPresenceStatsQuery(actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	stats, err := s.h.GetPresenceStats.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newPresenceStatsResponse(stats))
}
