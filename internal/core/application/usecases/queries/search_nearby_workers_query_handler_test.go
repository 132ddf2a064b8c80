package queries_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchNearbyWorkersQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	near := approvedWorker(t, kernel.NewUUID(), 39.91, 116.40, worker.Available)
	busy := approvedWorker(t, kernel.NewUUID(), 39.92, 116.40, worker.Busy)
	far := approvedWorker(t, kernel.NewUUID(), 40.01, 116.40, worker.Available)

	workers := new(MockWorkerReader)
	workers.On("ListDispatchable", ctx, true).Return([]*worker.Worker{far, busy, near}, nil).Once()
	presence := new(MockPresenceReader)
	presence.On("IsOnline", near.ID(), kernel.RoleWorker).Return(true)
	presence.On("IsOnline", busy.ID(), kernel.RoleWorker).Return(false)

	query, err := queries.NewSearchNearbyWorkersQuery(kernel.MustNewLocation(39.90, 116.40), 10, "", false, true)
	require.NoError(t, err)

	got, err := queries.NewSearchNearbyWorkersQueryHandler(
		workers, services.NewDispatchMatcher(services.DefaultRadiusKm, 0), presence).Handle(ctx, query)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, near.ID(), got[0].WorkerID)
	assert.True(t, got[0].Online)
	assert.Equal(t, worker.Available.String(), got[0].WorkStatus)
	assert.Equal(t, busy.ID(), got[1].WorkerID)
	assert.False(t, got[1].Online)
	assert.Equal(t, worker.Busy.String(), got[1].WorkStatus)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestSearchNearbyWorkersQueryHandler_Handle_WithoutPresence(t *testing.T) {
	ctx := t.Context()
	near := approvedWorker(t, kernel.NewUUID(), 39.91, 116.40, worker.Available)

	workers := new(MockWorkerReader)
	workers.On("ListDispatchable", ctx, false).Return([]*worker.Worker{near}, nil).Once()

	query, err := queries.NewSearchNearbyWorkersQuery(kernel.MustNewLocation(39.90, 116.40), 0, "wiring", false, false)
	require.NoError(t, err)

	got, err := queries.NewSearchNearbyWorkersQueryHandler(
		workers, services.NewDispatchMatcher(0, 0), nil).Handle(ctx, query)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Online)
	assert.Equal(t, []string{"wiring"}, got[0].Specialties)
}

func TestNewSearchNearbyWorkersQuery_NegativeRadius(t *testing.T) {
	_, err := queries.NewSearchNearbyWorkersQuery(kernel.MustNewLocation(39.90, 116.40), -2, "", false, false)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestGetPresenceStatsQueryHandler_Handle(t *testing.T) {
	w1, w2, c1 := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	presence := new(MockPresenceReader)
	presence.On("Stats").Return(ports.PresenceStats{
		Online: map[kernel.Role][]kernel.UUID{
			kernel.RoleWorker:   {w1, w2},
			kernel.RoleCustomer: {c1},
		},
		Sessions: 4,
	}).Once()

	query, err := queries.NewGetPresenceStatsQuery(actorOf(kernel.RoleAdmin))
	require.NoError(t, err)

	got, err := queries.NewGetPresenceStatsQueryHandler(presence).Handle(t.Context(), query)

	require.NoError(t, err)
	assert.Equal(t, 4, got.Sessions)
	assert.Equal(t, 2, got.Counts[kernel.RoleWorker])
	assert.Equal(t, 1, got.Counts[kernel.RoleCustomer])
	assert.Equal(t, 0, got.Counts[kernel.RoleAdmin])
	assert.NotNil(t, got.Online[kernel.RoleAdmin])
	assert.ElementsMatch(t, []kernel.UUID{w1, w2}, got.Online[kernel.RoleWorker])
}

func TestNewGetPresenceStatsQuery_AdminOnly(t *testing.T) {
	_, err := queries.NewGetPresenceStatsQuery(actorOf(kernel.RoleWorker))

	require.ErrorIs(t, err, errs.ErrNotAuthorized)
}
