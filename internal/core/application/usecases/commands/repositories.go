// Package commands contains the operations that change dispatch state. Each command
// is validated on construction and executed by its handler inside one unit of work.
// Notifications are sent only after the transaction committed.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work views narrowed to what each handler touches.
type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides the order repository bound to the transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// WorkerRepoFactory provides the worker repository bound to the transaction.
	WorkerRepoFactory interface {
		WorkerRepository() ports.WorkerRepository
	}

	// WorkerUoW manages transactions that only touch workers.
	WorkerUoW interface {
		TxManager
		WorkerRepoFactory
	}

	// WorkerUoWFactory creates worker unit of work instances.
	WorkerUoWFactory interface {
		Create() WorkerUoW
	}

	// UoW manages transactions spanning orders and workers. Order transitions use it
	// because acceptance, completion, cancellation and rating change both aggregates.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orders := uow.OrderRepository()
	//   workers := uow.WorkerRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		WorkerRepoFactory
	}

	// UoWFactory creates unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
