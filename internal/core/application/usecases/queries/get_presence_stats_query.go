package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetPresenceStatsQueryIsNotConstructed = errors.New(
	"GetPresenceStatsQuery must be created via NewGetPresenceStatsQuery constructor",
)

// GetPresenceStatsQuery asks who is connected right now. Admins only.
type GetPresenceStatsQuery struct {
	guard guard.ConstructorGuard
}

func NewGetPresenceStatsQuery(actor kernel.Actor) (GetPresenceStatsQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetPresenceStatsQuery{}, err
	}
	if !actor.Is(kernel.RoleAdmin) {
		return GetPresenceStatsQuery{}, errs.NewNotAuthorizedError(actor.ID.String(), "only admins read presence")
	}
	return GetPresenceStatsQuery{guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPresenceStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetPresenceStatsQueryIsNotConstructed)
}

// GetPresenceStatsQueryResponse holds online counts and ids per role.
type GetPresenceStatsQueryResponse struct {
	Counts   map[kernel.Role]int
	Online   map[kernel.Role][]kernel.UUID
	Sessions int
}
