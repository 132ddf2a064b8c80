package guard_test

import (
	"errors"
	"testing"

	"dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotBuilt := errors.New("quote must be created via NewQuote")

	t.Run("constructed_guard_passes_with_and_without_custom_error", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotBuilt))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_guard_returns_custom_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errNotBuilt)

		assert.Equal(t, errNotBuilt, err)
	})

	t.Run("zero_guard_falls_back_to_default_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		require.ErrorIs(t, g.Validate(nil), guard.ErrDefaultConstructorGuard)
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type quote struct {
		amount int
		guard  guard.ConstructorGuard
	}
	errQuote := errors.New("quote is not constructed")
	newQuote := func(amount int) quote {
		return quote{amount: amount, guard: guard.NewConstructorGuard()}
	}

	built := newQuote(120)
	require.NoError(t, built.guard.Validate(errQuote))

	literal := quote{amount: 120}
	require.ErrorIs(t, literal.guard.Validate(errQuote), errQuote)
}
