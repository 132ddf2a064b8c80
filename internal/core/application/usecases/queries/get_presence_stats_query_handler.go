package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

type GetPresenceStatsQueryHandler struct {
	presence ports.PresenceReader
}

func NewGetPresenceStatsQueryHandler(presence ports.PresenceReader) GetPresenceStatsQueryHandler {
	return GetPresenceStatsQueryHandler{presence: presence}
}

// Handle reports every role, including roles with nobody online.
func (h GetPresenceStatsQueryHandler) Handle(
	_ context.Context,
	query GetPresenceStatsQuery,
) (GetPresenceStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPresenceStatsQueryResponse{}, err
	}

	stats := h.presence.Stats()
	resp := GetPresenceStatsQueryResponse{
		Counts:   make(map[kernel.Role]int, len(kernel.Roles())),
		Online:   make(map[kernel.Role][]kernel.UUID, len(kernel.Roles())),
		Sessions: stats.Sessions,
	}
	for _, role := range kernel.Roles() {
		ids := stats.Online[role]
		if ids == nil {
			ids = []kernel.UUID{}
		}
		resp.Online[role] = ids
		resp.Counts[role] = len(ids)
	}
	return resp, nil
}
