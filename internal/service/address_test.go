package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
)

func validAddress() service.AddressInput {
	return service.AddressInput{FullName: "Amina B.", Phone: "0555", Wilaya: "Alger", AddressLine1: "12 rue Didouche"}
}

func TestAddressService_Add(t *testing.T) {
	repo := &fakeAddressRepo{}
	svc := service.NewAddressService(discardLogger(), repo)
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address becomes default")

	second, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	in := validAddress()
	in.IsDefault = true
	third, err := svc.Add(ctx, "u1", in)
	require.NoError(t, err)
	assert.True(t, third.IsDefault)
	assert.False(t, first.IsDefault, "previous default unset")
	assert.Equal(t, []string{"create", "create", "unset", "create"}, repo.calls)
}

func TestAddressService_AddValidation(t *testing.T) {
	repo := &fakeAddressRepo{}
	svc := service.NewAddressService(discardLogger(), repo)

	_, err := svc.Add(context.Background(), "u1", service.AddressInput{FullName: "Amina", Phone: " "})
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "address_line1, wilaya, phone")
	assert.Empty(t, repo.addrs)
}

func TestAddressService_SetDefault(t *testing.T) {
	repo := &fakeAddressRepo{}
	svc := service.NewAddressService(discardLogger(), repo)
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	second, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(ctx, "u1", second.ID))
	assert.False(t, first.IsDefault)
	assert.True(t, second.IsDefault)

	def, err := svc.Default(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	err = svc.SetDefault(ctx, "u2", second.ID)
	assert.ErrorIs(t, err, storage.ErrAddressNotFound, "someone else's address")
}

func TestAddressService_Delete(t *testing.T) {
	repo := &fakeAddressRepo{}
	svc := service.NewAddressService(discardLogger(), repo)
	ctx := context.Background()

	addr, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", addr.ID), storage.ErrAddressNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", addr.ID))

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddressService_DeleteDefaultPromotesNewest(t *testing.T) {
	repo := &fakeAddressRepo{}
	svc := service.NewAddressService(discardLogger(), repo)
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	older, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	newer, err := svc.Add(ctx, "u1", validAddress())
	require.NoError(t, err)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first.CreatedAt, older.CreatedAt, newer.CreatedAt = base, base.Add(time.Hour), base.Add(2*time.Hour)
	require.True(t, first.IsDefault)

	require.NoError(t, svc.Delete(ctx, "u1", first.ID))

	def, err := svc.Default(ctx, "u1")
	require.NoError(t, err, "checkout without address_id still finds an address")
	assert.Equal(t, newer.ID, def.ID)
	assert.False(t, older.IsDefault)

	// удаление не-дефолтного адреса флаг не трогает
	repo.calls = nil
	require.NoError(t, svc.Delete(ctx, "u1", older.ID))
	assert.NotContains(t, repo.calls, "set")
	assert.True(t, newer.IsDefault)
}
