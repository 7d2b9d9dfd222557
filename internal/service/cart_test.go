package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemCreatesAndBumps(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer@example.com", "user")
	cart := seedCart(t, r, user.ID)
	product := seedProduct(t, r, "Lamp", "19.99", 10)

	item, err := svc.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = svc.AddItem(ctx, cart.ID, product.ID, 3)
	require.NoError(t, err)

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer@example.com", "user")
	cart := seedCart(t, r, user.ID)
	product := seedProduct(t, r, "Mug", "5.00", 3)

	_, err := svc.AddItem(ctx, cart.ID, product.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, cart.ID, product.ID, -2)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, cart.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, uuid.New(), product.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, cart.ID, product.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateItemQuantity(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer@example.com", "user")
	cart := seedCart(t, r, user.ID)
	product := seedProduct(t, r, "Chair", "45.00", 10)

	_, err := svc.AddItem(ctx, cart.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateItemQuantity(ctx, cart.ID, product.ID, 7))

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 7, got.Items[0].Quantity)

	err = svc.UpdateItemQuantity(ctx, cart.ID, uuid.New(), 2)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.UpdateItemQuantity(ctx, cart.ID, product.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer@example.com", "user")
	cart := seedCart(t, r, user.ID)
	product := seedProduct(t, r, "Bottle", "3.50", 5)

	_, err := svc.AddItem(ctx, cart.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, cart.ID, product.ID))
	require.NoError(t, svc.RemoveItem(ctx, cart.ID, product.ID))

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	err = svc.RemoveItem(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearItems(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer@example.com", "user")
	cart := seedCart(t, r, user.ID)
	first := seedProduct(t, r, "Wallet", "25.00", 5)
	second := seedProduct(t, r, "Notebook", "4.00", 5)

	_, err := svc.AddItem(ctx, cart.ID, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, second.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ClearItems(ctx, cart.ID))

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	require.NoError(t, svc.ClearItems(ctx, cart.ID))
}
