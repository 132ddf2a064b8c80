package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// SearchNearbyWorkersQueryHandler lists workers around a location, nearest first.
type SearchNearbyWorkersQueryHandler struct {
	workers  WorkerReader
	matcher  services.DispatchMatcher
	presence ports.PresenceReader
}

// NewSearchNearbyWorkersQueryHandler creates the handler. presence may be nil, in which
// case every worker is reported offline.
func NewSearchNearbyWorkersQueryHandler(
	workers WorkerReader,
	matcher services.DispatchMatcher,
	presence ports.PresenceReader,
) SearchNearbyWorkersQueryHandler {
	return SearchNearbyWorkersQueryHandler{workers: workers, matcher: matcher, presence: presence}
}

func (h SearchNearbyWorkersQueryHandler) Handle(
	ctx context.Context,
	query SearchNearbyWorkersQuery,
) ([]SearchNearbyWorkersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	workers, err := h.workers.ListDispatchable(ctx, query.IncludeBusy())
	if err != nil {
		return nil, err
	}

	candidates, err := h.matcher.Match(services.Criteria{
		Origin:        query.Origin(),
		RadiusKm:      query.RadiusKm(),
		Specialty:     query.Specialty(),
		EmergencyOnly: query.EmergencyOnly(),
		IncludeBusy:   query.IncludeBusy(),
	}, workers)
	if err != nil {
		return nil, err
	}

	result := make([]SearchNearbyWorkersQueryResponse, 0, len(candidates))
	for _, c := range candidates {
		rating, rated := c.Worker.Rating()
		result = append(result, SearchNearbyWorkersQueryResponse{
			WorkerID:         c.Worker.ID(),
			Name:             c.Worker.Name(),
			Location:         c.Worker.Location(),
			DistanceKm:       c.DistanceKm,
			WorkStatus:       c.Worker.WorkStatus().String(),
			EmergencyCapable: c.Worker.EmergencyCapable(),
			Specialties:      c.Worker.Specialties(),
			Rating:           rating,
			RatedOrders:      rated,
			Online:           h.presence != nil && h.presence.IsOnline(c.Worker.ID(), kernel.RoleWorker),
		})
	}
	return result, nil
}
