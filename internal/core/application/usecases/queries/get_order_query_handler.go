package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// GetOrderQueryHandler returns an order to its customer, its assigned worker or an admin.
// Workers may also read any order that is still pending, to decide whether to accept it.
type GetOrderQueryHandler struct {
	orders OrderReader
}

func NewGetOrderQueryHandler(orders OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	actor := query.Actor()
	if !o.CanView(actor) && !(actor.Is(kernel.RoleWorker) && o.Status() == order.Pending) {
		return nil, errs.NewNotAuthorizedError(actor.ID.String(), "is not a party of the order")
	}

	return o, nil
}
