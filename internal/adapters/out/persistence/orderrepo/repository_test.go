package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/persistence"
	"dispatch/internal/adapters/out/persistence/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := persistence.Open(persistence.Options{
		Driver: persistence.DriverSQLite,
		DSN:    persistence.InMemoryDSN(uuid.NewString()),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newPendingOrder(t *testing.T, number string, createdAt time.Time) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(),
		number,
		kernel.NewUUID(),
		order.Details{Title: "Socket sparks", Category: "electrical", Address: "12 Dongcheng Rd"},
		kernel.MustNewLocation(39.90, 116.40),
		order.PriorityUrgent,
		decimal.NewFromInt(200),
		createdAt,
	)
	require.NoError(t, err)
	return o
}

func workerActor(id kernel.UUID) kernel.Actor {
	return kernel.Actor{ID: id, Role: kernel.RoleWorker}
}

func TestGormOrderRepository_AddAndGet(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	o := newPendingOrder(t, "ORD0001", testNow)

	require.NoError(t, repo.Add(ctx, o))

	got, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.True(t, got.IsEqual(o))
	assert.Equal(t, "ORD0001", got.Number())
	assert.Equal(t, order.Pending, got.Status())
	assert.Equal(t, order.PriorityUrgent, got.Priority())
	assert.Equal(t, o.Details(), got.Details())
	assert.True(t, got.EstimatedAmount().Equal(decimal.NewFromInt(200)))
	assert.Nil(t, got.WorkerID())
	assert.False(t, got.QuotedAmount().Valid)
	assert.True(t, got.Timeline().CreatedAt.Equal(testNow))

	same, err := got.Location().IsEqual(o.Location())
	require.NoError(t, err)
	assert.True(t, same)
}

func TestGormOrderRepository_Get_NotFound(t *testing.T) {
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))

	_, err := repo.Get(context.Background(), kernel.NewUUID())

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestGormOrderRepository_Add_RejectsUnconstructedOrder(t *testing.T) {
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))

	err := repo.Add(context.Background(), &order.Order{})

	require.ErrorIs(t, err, order.ErrOrderIsNotConstructed)
}

func TestGormOrderRepository_Accept_SecondAcceptLoses(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	o := newPendingOrder(t, "ORD0042", testNow)
	require.NoError(t, repo.Add(ctx, o))

	first, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	second, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)

	workerA, workerB := kernel.NewUUID(), kernel.NewUUID()
	require.NoError(t, first.Accept(workerActor(workerA), testNow))
	require.NoError(t, second.Accept(workerActor(workerB), testNow))

	require.NoError(t, repo.Accept(ctx, first))
	err = repo.Accept(ctx, second)
	require.ErrorIs(t, err, errs.ErrAlreadyAssigned)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Accepted, stored.Status())
	require.NotNil(t, stored.WorkerID())
	assert.True(t, stored.WorkerID().IsEqual(workerA))
	assert.NotNil(t, stored.Timeline().AcceptedAt)
}

func TestGormOrderRepository_Accept_ConcurrentWorkers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	o := newPendingOrder(t, "ORD0042", testNow)
	require.NoError(t, orderrepo.NewGormOrderRepository(db).Add(ctx, o))

	const workers = 8
	repo := orderrepo.NewGormOrderRepository(db)
	contenders := make([]*order.Order, workers)
	for i := range contenders {
		loaded, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		require.NoError(t, loaded.Accept(workerActor(kernel.NewUUID()), testNow))
		contenders[i] = loaded
	}

	results := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, contender := range contenders {
		wg.Add(1)
		go func(i int, contender *order.Order) {
			defer wg.Done()
			<-start
			results[i] = orderrepo.NewGormOrderRepository(db).Accept(ctx, contender)
		}(i, contender)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	}
	assert.Equal(t, 1, succeeded)
}

func TestGormOrderRepository_Accept_RequiresAcceptedAggregate(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	o := newPendingOrder(t, "ORD0003", testNow)
	require.NoError(t, repo.Add(ctx, o))

	err := repo.Accept(ctx, o)

	require.ErrorIs(t, err, errs.ErrTransitionIsInvalid)
}

func TestGormOrderRepository_Update_ConditionalOnStatus(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	customer := kernel.NewUUID()
	workerID := kernel.NewUUID()

	o, err := order.NewOrder(kernel.NewUUID(), "ORD0004", customer,
		order.Details{Title: "Breaker trips"}, kernel.MustNewLocation(39.9, 116.4),
		order.PriorityNormal, decimal.Zero, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, o))
	require.NoError(t, o.Accept(workerActor(workerID), testNow))
	require.NoError(t, repo.Accept(ctx, o))

	stale, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)

	customerActor := kernel.Actor{ID: customer, Role: kernel.RoleCustomer}
	require.NoError(t, o.Confirm(customerActor, testNow.Add(time.Minute)))
	require.NoError(t, repo.Update(ctx, o, order.Accepted))

	_, err = stale.Cancel(customerActor, "changed my mind", testNow.Add(2*time.Minute))
	require.NoError(t, err)
	err = repo.Update(ctx, stale, order.Accepted)
	require.ErrorIs(t, err, errs.ErrTransitionIsInvalid)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, stored.Status())
	assert.NotNil(t, stored.Timeline().ConfirmedAt)
	assert.Nil(t, stored.Timeline().CancelledAt)
}

func TestGormOrderRepository_Update_PersistsAmounts(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	w := workerActor(kernel.NewUUID())

	o, err := order.NewOrder(kernel.NewUUID(), "ORD0005", customer.ID,
		order.Details{Title: "Install lights"}, kernel.MustNewLocation(39.9, 116.4),
		order.PriorityNormal, decimal.NewFromInt(120), testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, o))

	require.NoError(t, o.Accept(w, testNow))
	require.NoError(t, repo.Accept(ctx, o))

	steps := []struct {
		from order.Status
		do   func() error
	}{
		{order.Accepted, func() error { return o.Confirm(customer, testNow) }},
		{order.Confirmed, func() error { return o.SubmitQuote(w, decimal.NewFromInt(140), "two fixtures", testNow) }},
		{order.Quoted, func() error { return o.ConfirmQuote(customer, testNow) }},
		{order.QuoteConfirmed, func() error { return o.StartWork(w, testNow) }},
		{order.InProgress, func() error {
			final := decimal.NewFromInt(150)
			_, err := o.CompleteWork(w, &final, "replaced breaker", testNow)
			return err
		}},
	}
	for _, step := range steps {
		require.NoError(t, step.do())
		require.NoError(t, repo.Update(ctx, o, step.from))
	}

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Completed, stored.Status())
	require.True(t, stored.QuotedAmount().Valid)
	assert.True(t, stored.QuotedAmount().Decimal.Equal(decimal.NewFromInt(140)))
	require.True(t, stored.FinalAmount().Valid)
	assert.True(t, stored.FinalAmount().Decimal.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "two fixtures", stored.QuoteNote())
	assert.Equal(t, "replaced breaker", stored.WorkContent())
	assert.Equal(t, "ORD0005", stored.Number())
}

func TestGormOrderRepository_GetActiveByWorker(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))
	workerID := kernel.NewUUID()

	_, err := repo.GetActiveByWorker(ctx, workerID)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	o := newPendingOrder(t, "ORD0006", testNow)
	require.NoError(t, repo.Add(ctx, o))
	require.NoError(t, o.Accept(workerActor(workerID), testNow))
	require.NoError(t, repo.Accept(ctx, o))

	active, err := repo.GetActiveByWorker(ctx, workerID)
	require.NoError(t, err)
	assert.True(t, active.IsEqual(o))

	_, err = o.Cancel(workerActor(workerID), "cannot reach site", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, o, order.Accepted))

	_, err = repo.GetActiveByWorker(ctx, workerID)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestGormOrderRepository_ListPending(t *testing.T) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(newTestDB(t))

	oldest := newPendingOrder(t, "ORD0010", testNow.Add(-30*time.Minute))
	older := newPendingOrder(t, "ORD0011", testNow.Add(-10*time.Minute))
	fresh := newPendingOrder(t, "ORD0012", testNow)
	taken := newPendingOrder(t, "ORD0013", testNow.Add(-time.Hour))
	for _, o := range []*order.Order{fresh, older, oldest, taken} {
		require.NoError(t, repo.Add(ctx, o))
	}
	require.NoError(t, taken.Accept(workerActor(kernel.NewUUID()), testNow))
	require.NoError(t, repo.Accept(ctx, taken))

	all, err := repo.ListPending(ctx, ports.PendingFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD0010", "ORD0011", "ORD0012"}, numbers(all))

	aged, err := repo.ListPending(ctx, ports.PendingFilter{CreatedBefore: testNow.Add(-5 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD0010", "ORD0011"}, numbers(aged))

	limited, err := repo.ListPending(ctx, ports.PendingFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD0010"}, numbers(limited))

	none, err := repo.ListPending(ctx, ports.PendingFilter{Category: "plumbing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func numbers(orders []*order.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Number())
	}
	return out
}
