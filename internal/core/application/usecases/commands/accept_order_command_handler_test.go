package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type acceptFixture struct {
	orderRepo  *MockOrderRepository
	workerRepo *MockWorkerRepository
	uow        *MockUoW
	factory    *MockUoWFactory
	notifier   *MockNotifier
	handler    commands.AcceptOrderCommandHandler
}

func newAcceptFixture() acceptFixture {
	f := acceptFixture{
		orderRepo:  new(MockOrderRepository),
		workerRepo: new(MockWorkerRepository),
		uow:        new(MockUoW),
		factory:    new(MockUoWFactory),
		notifier:   new(MockNotifier),
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.handler = commands.NewAcceptOrderCommandHandler(f.factory, f.notifier, discardLogger())
	return f
}

func TestNewAcceptOrderCommand_OnlyWorkers(t *testing.T) {
	_, err := commands.NewAcceptOrderCommand(kernel.NewUUID(), customerActor())
	require.ErrorIs(t, err, errs.ErrNotAuthorized)

	_, err = commands.NewAcceptOrderCommand(kernel.UUID{}, workerActor())
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestAcceptOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	o := newPendingOrder(t, customerActor(), order.PriorityNormal)
	cmd, err := commands.NewAcceptOrderCommand(o.ID(), actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("WorkerRepository").Return(f.workerRepo).Once(),
		f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
		f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once(),
		f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orderRepo.On("Accept", ctx, o).Return(nil).Once(),
		f.workerRepo.On("Occupy", ctx, actor.ID).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.notifier.On("OrderStatusChanged", ctx, o, order.Pending).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	accepted, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Accepted, accepted.Status())
	require.NotNil(t, accepted.WorkerID())
	assert.True(t, accepted.WorkerID().IsEqual(actor.ID))
	assert.NotNil(t, accepted.Timeline().AcceptedAt)
	f.orderRepo.AssertExpectations(t)
	f.workerRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAcceptOrderCommandHandler_Handle_LostRaceRollsBack(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	o := newPendingOrder(t, customerActor(), order.PriorityNormal)
	cmd, err := commands.NewAcceptOrderCommand(o.ID(), actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("WorkerRepository").Return(f.workerRepo).Once(),
		f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
		f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once(),
		f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orderRepo.On("Accept", ctx, o).Return(errs.NewAlreadyAssignedError(o.ID().String())).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err = f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	f.workerRepo.AssertNotCalled(t, "Occupy", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.notifier.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptOrderCommandHandler_Handle_AlreadyAcceptedOnRead(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	o := orderAt(t, order.Accepted, customerActor(), workerActor())
	cmd, err := commands.NewAcceptOrderCommand(o.ID(), actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.uow.On("WorkerRepository").Return(f.workerRepo).Once()
	f.uow.On("OrderRepository").Return(f.orderRepo).Once()
	f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once()
	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	_, err = f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	f.orderRepo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestAcceptOrderCommandHandler_Handle_CancelledOrder(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	customer := customerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	o := newPendingOrder(t, customer, order.PriorityNormal)
	_, err := o.Cancel(customer, "found someone else", testNow)
	require.NoError(t, err)
	cmd, err := commands.NewAcceptOrderCommand(o.ID(), actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.uow.On("WorkerRepository").Return(f.workerRepo).Once()
	f.uow.On("OrderRepository").Return(f.orderRepo).Once()
	f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once()
	f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	_, err = f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrTransitionIsInvalid)
	require.NotErrorIs(t, err, errs.ErrAlreadyAssigned)
}

func TestAcceptOrderCommandHandler_Handle_WorkerNotEligible(t *testing.T) {
	tests := []struct {
		name     string
		approved bool
		status   worker.WorkStatus
		want     error
	}{
		{"unapproved worker", false, worker.Offline, errs.ErrNotAuthorized},
		{"busy worker", true, worker.Busy, errs.ErrTransitionIsInvalid},
		{"offline worker", true, worker.Offline, errs.ErrTransitionIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			actor := workerActor()
			w := newWorker(t, actor, tt.approved, tt.status, 39.91, 116.40, false)
			cmd, err := commands.NewAcceptOrderCommand(kernel.NewUUID(), actor)
			require.NoError(t, err)

			f := newAcceptFixture()
			f.uow.On("Begin", ctx).Return(nil).Once()
			f.uow.On("WorkerRepository").Return(f.workerRepo).Once()
			f.uow.On("OrderRepository").Return(f.orderRepo).Once()
			f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once()
			f.uow.On("Rollback", ctx).Return(nil).Once()

			_, err = f.handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.want)
			f.orderRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		})
	}
}

func TestAcceptOrderCommandHandler_Handle_OccupyFailsRollsBack(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	o := newPendingOrder(t, customerActor(), order.PriorityNormal)
	cmd, err := commands.NewAcceptOrderCommand(o.ID(), actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("WorkerRepository").Return(f.workerRepo).Once(),
		f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
		f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once(),
		f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orderRepo.On("Accept", ctx, o).Return(nil).Once(),
		f.workerRepo.On("Occupy", ctx, actor.ID).
			Return(errs.NewTransitionIsInvalidError("worker", "not available", "occupy")).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err = f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrTransitionIsInvalid)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.notifier.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptOrderCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	actor := workerActor()
	w := newWorker(t, actor, true, worker.Available, 39.91, 116.40, false)
	orderID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOrderCommand(orderID, actor)
	require.NoError(t, err)

	f := newAcceptFixture()
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.uow.On("WorkerRepository").Return(f.workerRepo).Once()
	f.uow.On("OrderRepository").Return(f.orderRepo).Once()
	f.workerRepo.On("Get", ctx, actor.ID).Return(w, nil).Once()
	f.orderRepo.On("Get", ctx, orderID).Return(nil, errs.NewObjectNotFoundError("order", orderID.String())).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	_, err = f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
