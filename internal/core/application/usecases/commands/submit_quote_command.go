package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrSubmitQuoteCommandIsNotConstructed = errors.New(
	"SubmitQuoteCommand must be created via NewSubmitQuoteCommand constructor",
)

// SubmitQuoteCommand carries the assigned worker's price for the job.
type SubmitQuoteCommand struct {
	orderAction
	amount decimal.Decimal
	note   string
}

// NewSubmitQuoteCommand validates the quote. The amount must be greater than zero.
func NewSubmitQuoteCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	amount decimal.Decimal,
	note string,
) (SubmitQuoteCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return SubmitQuoteCommand{}, err
	}
	if !amount.IsPositive() {
		return SubmitQuoteCommand{}, errs.NewValueIsInvalidErrorWithCause("quotedAmount",
			fmt.Errorf("%s is not greater than 0", amount))
	}
	return SubmitQuoteCommand{orderAction: action, amount: amount, note: note}, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitQuoteCommand) Validate() error {
	return c.guard.Validate(ErrSubmitQuoteCommandIsNotConstructed)
}

func (c SubmitQuoteCommand) Amount() decimal.Decimal {
	return c.amount
}

func (c SubmitQuoteCommand) Note() string {
	return c.note
}
