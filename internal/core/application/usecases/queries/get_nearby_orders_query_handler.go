package queries

import (
	"context"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// GetNearbyOrdersQueryHandler ranks the pending orders around a worker, nearest first.
// Orders estimated below the worker's minimum order amount are left out.
type GetNearbyOrdersQueryHandler struct {
	orders  OrderReader
	workers WorkerReader
	matcher services.DispatchMatcher
}

func NewGetNearbyOrdersQueryHandler(
	orders OrderReader,
	workers WorkerReader,
	matcher services.DispatchMatcher,
) GetNearbyOrdersQueryHandler {
	return GetNearbyOrdersQueryHandler{orders: orders, workers: workers, matcher: matcher}
}

func (h GetNearbyOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetNearbyOrdersQuery,
) ([]GetNearbyOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	w, err := h.workers.Get(ctx, query.Actor().ID)
	if err != nil {
		return nil, err
	}

	origin := w.Location()
	if query.Origin() != nil {
		origin = *query.Origin()
	} else if !w.HasLocation() {
		return nil, errs.NewValueIsRequiredError("location")
	}

	pending, err := h.orders.ListPending(ctx, ports.PendingFilter{Category: query.Category()})
	if err != nil {
		return nil, err
	}

	nearby, err := h.matcher.RankOrders(services.OrderFilter{
		Origin:    origin,
		RadiusKm:  query.RadiusKm(),
		Category:  query.Category(),
		Priority:  query.Priority(),
		MinAmount: w.MinOrderAmount(),
	}, pending)
	if err != nil {
		return nil, err
	}

	result := make([]GetNearbyOrdersQueryResponse, 0, len(nearby))
	for _, n := range nearby {
		result = append(result, GetNearbyOrdersQueryResponse{Order: n.Order, DistanceKm: n.DistanceKm})
	}
	return result, nil
}
