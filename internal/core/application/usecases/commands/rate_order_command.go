package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

var ErrRateOrderCommandIsNotConstructed = errors.New(
	"RateOrderCommand must be created via NewRateOrderCommand constructor",
)

// RateOrderCommand is the customer's rating of a paid order.
type RateOrderCommand struct {
	orderAction
	rating  int
	comment string
}

// NewRateOrderCommand validates the rating against [order.MinRating..order.MaxRating].
func NewRateOrderCommand(orderID kernel.UUID, actor kernel.Actor, rating int, comment string) (RateOrderCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return RateOrderCommand{}, err
	}
	if rating < order.MinRating || rating > order.MaxRating {
		return RateOrderCommand{}, errs.NewValueIsOutOfRangeError("rating", rating, order.MinRating, order.MaxRating)
	}
	return RateOrderCommand{orderAction: action, rating: rating, comment: comment}, nil
}

// Validate ensures the command was created through the constructor.
func (c RateOrderCommand) Validate() error {
	return c.guard.Validate(ErrRateOrderCommandIsNotConstructed)
}

func (c RateOrderCommand) Rating() int {
	return c.rating
}

func (c RateOrderCommand) Comment() string {
	return c.comment
}
