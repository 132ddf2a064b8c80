package commands

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrCompleteWorkCommandIsNotConstructed = errors.New(
	"CompleteWorkCommand must be created via NewCompleteWorkCommand constructor",
)

// CompleteWorkCommand finishes a job. Without a final amount the quoted amount is billed.
//
// Example:
//
//	final := decimal.NewFromInt(150)
//	cmd, err := NewCompleteWorkCommand(orderID, workerActor, &final, "replaced breaker")
type CompleteWorkCommand struct {
	orderAction
	finalAmount *decimal.Decimal
	workContent string
}

// NewCompleteWorkCommand validates the completion report. workContent is required
// and finalAmount, when given, must not be negative.
func NewCompleteWorkCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	finalAmount *decimal.Decimal,
	workContent string,
) (CompleteWorkCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return CompleteWorkCommand{}, err
	}

	var errList []error
	if strings.TrimSpace(workContent) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("workContent"))
	}
	if finalAmount != nil && finalAmount.IsNegative() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("finalAmount",
			fmt.Errorf("%s is negative", finalAmount)))
	}
	if err = errors.Join(errList...); err != nil {
		return CompleteWorkCommand{}, err
	}

	var amount *decimal.Decimal
	if finalAmount != nil {
		copied := *finalAmount
		amount = &copied
	}
	return CompleteWorkCommand{orderAction: action, finalAmount: amount, workContent: workContent}, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteWorkCommand) Validate() error {
	return c.guard.Validate(ErrCompleteWorkCommandIsNotConstructed)
}

// FinalAmount returns the billed amount, nil when the quote applies.
func (c CompleteWorkCommand) FinalAmount() *decimal.Decimal {
	if c.finalAmount == nil {
		return nil
	}
	amount := *c.finalAmount
	return &amount
}

func (c CompleteWorkCommand) WorkContent() string {
	return c.workContent
}
