package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateOrderCommand(t *testing.T, priority order.Priority) commands.CreateOrderCommand {
	t.Helper()

	cmd, err := commands.NewCreateOrderCommand(customerActor(),
		order.Details{Title: "Socket sparks", Category: "electrical"},
		kernel.MustNewLocation(39.90, 116.40), priority, decimal.NewFromInt(200))
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_NotifiesMatchedWorkers(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t, order.PriorityNormal)

	near := newWorker(t, workerActor(), true, worker.Available, 39.92, 116.40, false)
	farther := newWorker(t, workerActor(), true, worker.Available, 39.93, 116.40, false)
	outside := newWorker(t, workerActor(), true, worker.Available, 40.01, 116.40, false)

	orderRepo := new(MockOrderRepository)
	workerRepo := new(MockWorkerRepository)
	uow := new(MockUoW)
	numbers := new(MockOrderNumberGenerator)
	notifier := new(MockNotifier)

	mock.InOrder(
		numbers.On("Next", ctx).Return("ORD20250301000001", nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("WorkerRepository").Return(workerRepo).Once(),
		workerRepo.On("ListDispatchable", ctx, false).
			Return([]*worker.Worker{outside, farther, near}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("OrderCreated", ctx, mock.AnythingOfType("*order.Order")).Once(),
		notifier.On("OrderAvailable", ctx, mock.AnythingOfType("*order.Order"),
			[]kernel.UUID{near.ID(), farther.ID()}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, numbers,
		services.NewDispatchMatcher(services.DefaultRadiusKm, 0), notifier, discardLogger())
	created, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Pending, created.Status())
	assert.Equal(t, "ORD20250301000001", created.Number())
	assert.True(t, created.CustomerID().IsEqual(cmd.Customer().ID))
	numbers.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	workerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_EmergencyOnlyReachesCapableWorkers(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t, order.PriorityEmergency)

	capable := newWorker(t, workerActor(), true, worker.Available, 39.93, 116.40, true)
	regular := newWorker(t, workerActor(), true, worker.Available, 39.91, 116.40, false)

	orderRepo := new(MockOrderRepository)
	workerRepo := new(MockWorkerRepository)
	uow := new(MockUoW)
	numbers := new(MockOrderNumberGenerator)
	notifier := new(MockNotifier)

	numbers.On("Next", ctx).Return("ORD20250301000002", nil).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	uow.On("WorkerRepository").Return(workerRepo).Once()
	workerRepo.On("ListDispatchable", ctx, false).Return([]*worker.Worker{regular, capable}, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	notifier.On("OrderCreated", ctx, mock.AnythingOfType("*order.Order")).Once()
	notifier.On("OrderAvailable", ctx, mock.AnythingOfType("*order.Order"), []kernel.UUID{capable.ID()}).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, numbers,
		services.NewDispatchMatcher(services.DefaultRadiusKm, 0), notifier, discardLogger())
	_, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_NumberGeneratorError(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t, order.PriorityNormal)

	numbers := new(MockOrderNumberGenerator)
	numbers.On("Next", ctx).Return("", errors.New("sequence unavailable")).Once()
	factory := new(MockUoWFactory)
	notifier := new(MockNotifier)

	handler := commands.NewCreateOrderCommandHandler(factory, numbers,
		services.NewDispatchMatcher(0, 0), notifier, discardLogger())
	_, err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "sequence unavailable")
	factory.AssertNotCalled(t, "Create")
	notifier.AssertNotCalled(t, "OrderAvailable", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t, order.PriorityNormal)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	numbers := new(MockOrderNumberGenerator)
	notifier := new(MockNotifier)

	mock.InOrder(
		numbers.On("Next", ctx).Return("ORD20250301000003", nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(errors.New("duplicate number")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, numbers,
		services.NewDispatchMatcher(0, 0), notifier, discardLogger())
	_, err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "duplicate number")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	notifier.AssertNotCalled(t, "OrderAvailable", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_MatchErrorStillReturnsCreatedOrder(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t, order.PriorityNormal)

	orderRepo := new(MockOrderRepository)
	workerRepo := new(MockWorkerRepository)
	uow := new(MockUoW)
	numbers := new(MockOrderNumberGenerator)
	notifier := new(MockNotifier)

	mock.InOrder(
		numbers.On("Next", ctx).Return("ORD20250301000004", nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("WorkerRepository").Return(workerRepo).Once(),
		// A worker that was never constructed makes the matcher fail.
		workerRepo.On("ListDispatchable", ctx, false).Return([]*worker.Worker{new(worker.Worker)}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("OrderCreated", ctx, mock.AnythingOfType("*order.Order")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, numbers,
		services.NewDispatchMatcher(0, 0), notifier, discardLogger())
	created, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "ORD20250301000004", created.Number())
	assert.Equal(t, order.Pending, created.Status())
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "OrderAvailable", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockUoWFactory)
	handler := commands.NewCreateOrderCommandHandler(factory, new(MockOrderNumberGenerator),
		services.NewDispatchMatcher(0, 0), new(MockNotifier), discardLogger())

	_, err := handler.Handle(t.Context(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
