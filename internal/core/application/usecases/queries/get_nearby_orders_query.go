package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetNearbyOrdersQueryIsNotConstructed = errors.New(
	"GetNearbyOrdersQuery must be created via NewGetNearbyOrdersQuery constructor",
)

// GetNearbyOrdersQuery lists the pending orders a worker could accept.
//
// Origin is optional: when nil the worker's last reported location is used.
// RadiusKm zero means the matcher default. Category and Priority are optional filters.
type GetNearbyOrdersQuery struct {
	actor    kernel.Actor
	origin   *kernel.Location
	radiusKm float64
	category string
	priority order.Priority

	guard guard.ConstructorGuard
}

func NewGetNearbyOrdersQuery(
	actor kernel.Actor,
	origin *kernel.Location,
	radiusKm float64,
	category string,
	priority string,
) (GetNearbyOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetNearbyOrdersQuery{}, err
	}
	if !actor.Is(kernel.RoleWorker) {
		return GetNearbyOrdersQuery{}, errs.NewNotAuthorizedError(actor.ID.String(), "only workers browse nearby orders")
	}
	if origin != nil {
		if err := origin.Validate(); err != nil {
			return GetNearbyOrdersQuery{}, err
		}
	}
	if radiusKm < 0 {
		return GetNearbyOrdersQuery{}, errs.NewValueIsInvalidError("radiusKm")
	}

	var p order.Priority
	if priority != "" {
		parsed, err := order.ParsePriority(priority)
		if err != nil {
			return GetNearbyOrdersQuery{}, err
		}
		p = parsed
	}

	return GetNearbyOrdersQuery{
		actor:    actor,
		origin:   origin,
		radiusKm: radiusKm,
		category: category,
		priority: p,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetNearbyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetNearbyOrdersQueryIsNotConstructed)
}

func (q GetNearbyOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

func (q GetNearbyOrdersQuery) Origin() *kernel.Location {
	return q.origin
}

func (q GetNearbyOrdersQuery) RadiusKm() float64 {
	return q.radiusKm
}

func (q GetNearbyOrdersQuery) Category() string {
	return q.category
}

// Priority is empty when the browse is not filtered by priority.
func (q GetNearbyOrdersQuery) Priority() order.Priority {
	return q.priority
}

// GetNearbyOrdersQueryResponse is one pending order and its distance to the worker.
type GetNearbyOrdersQueryResponse struct {
	Order      *order.Order
	DistanceKm float64
}
