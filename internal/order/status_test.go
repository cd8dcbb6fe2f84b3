package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jretamal/comanda-pos/internal/model"
)

func TestCanTransitionForwardMoves(t *testing.T) {
	assert.NoError(t, CanTransition(model.StatusPending, model.StatusPreparing))
	assert.NoError(t, CanTransition(model.StatusPending, model.StatusReady))
	assert.NoError(t, CanTransition(model.StatusPending, model.StatusDelivered))
	assert.NoError(t, CanTransition(model.StatusPreparing, model.StatusReady))
	assert.NoError(t, CanTransition(model.StatusReady, model.StatusDelivered))
}

func TestCanTransitionRejectsBackwardMoves(t *testing.T) {
	assert.ErrorIs(t, CanTransition(model.StatusReady, model.StatusPreparing), ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(model.StatusPreparing, model.StatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(model.StatusPending, model.StatusPending), ErrInvalidTransition)
}

func TestCanTransitionCancellation(t *testing.T) {
	assert.NoError(t, CanTransition(model.StatusPending, model.StatusCancelled))
	assert.NoError(t, CanTransition(model.StatusPreparing, model.StatusCancelled))
	assert.NoError(t, CanTransition(model.StatusReady, model.StatusCancelled))
}

func TestCanTransitionTerminalIsImmutable(t *testing.T) {
	assert.ErrorIs(t, CanTransition(model.StatusDelivered, model.StatusCancelled), ErrOrderClosed)
	assert.ErrorIs(t, CanTransition(model.StatusCancelled, model.StatusPreparing), ErrOrderClosed)
	assert.ErrorIs(t, CanTransition(model.StatusDelivered, model.StatusPending), ErrOrderClosed)
}

func TestCanChangeQuantityOnlyWhilePending(t *testing.T) {
	assert.NoError(t, CanChangeQuantity(model.StatusPending))
	assert.ErrorIs(t, CanChangeQuantity(model.StatusPreparing), ErrEditNotAllowed)
	assert.ErrorIs(t, CanChangeQuantity(model.StatusReady), ErrEditNotAllowed)
	assert.ErrorIs(t, CanChangeQuantity(model.StatusDelivered), ErrOrderClosed)
	assert.ErrorIs(t, CanChangeQuantity(model.StatusCancelled), ErrOrderClosed)
}

func TestCanAddItemsUntilTerminal(t *testing.T) {
	assert.NoError(t, CanAddItems(model.StatusPending))
	assert.NoError(t, CanAddItems(model.StatusPreparing))
	assert.NoError(t, CanAddItems(model.StatusReady))
	assert.ErrorIs(t, CanAddItems(model.StatusDelivered), ErrOrderClosed)
	assert.ErrorIs(t, CanAddItems(model.StatusCancelled), ErrOrderClosed)
}
