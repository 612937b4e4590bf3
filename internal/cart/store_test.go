package cart_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// fakeCartRepo — потокобезопасная реализация CartStorage в памяти.
type fakeCartRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
	rows     map[string]map[string]*models.CartItemRow // userID -> productID -> row
	nextID   int
	failWith error
	calls    []string
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo(products ...models.Product) *fakeCartRepo {
	f := &fakeCartRepo{
		products: make(map[string]models.Product),
		rows:     make(map[string]map[string]*models.CartItemRow),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCartRepo) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeCartRepo) put(userID, productID string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[userID] == nil {
		f.rows[userID] = make(map[string]*models.CartItemRow)
	}
	f.nextID++
	f.rows[userID][productID] = &models.CartItemRow{ID: string(rune('a' + f.nextID)), UserID: userID, ProductID: productID, Quantity: qty}
}

func (f *fakeCartRepo) quantity(userID, productID string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[userID][productID]
	if !ok {
		return 0, false
	}
	return row.Quantity, true
}

func (f *fakeCartRepo) rowCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[userID])
}

func (f *fakeCartRepo) GetCartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCartLines"); err != nil {
		return nil, err
	}
	var lines []models.CartLine
	for productID, row := range f.rows[userID] {
		p, ok := f.products[productID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{Product: p, Quantity: row.Quantity, SelectedSize: row.Size, SelectedColor: row.Color})
	}
	return lines, nil
}

func (f *fakeCartRepo) GetCartItem(ctx context.Context, userID, productID string) (*models.CartItemRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetCartItem"); err != nil {
		return nil, err
	}
	row, ok := f.rows[userID][productID]
	if !ok {
		return nil, storage.ErrCartItemNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeCartRepo) InsertCartItem(ctx context.Context, item *models.CartItemRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("InsertCartItem"); err != nil {
		return err
	}
	if f.rows[item.UserID] == nil {
		f.rows[item.UserID] = make(map[string]*models.CartItemRow)
	}
	f.nextID++
	cp := *item
	cp.ID = string(rune('a' + f.nextID))
	f.rows[item.UserID][item.ProductID] = &cp
	return nil
}

func (f *fakeCartRepo) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateCartItemQuantity"); err != nil {
		return err
	}
	for _, rows := range f.rows {
		for _, row := range rows {
			if row.ID == id {
				row.Quantity = quantity
				return nil
			}
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) SetCartItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetCartItemQuantity"); err != nil {
		return err
	}
	row, ok := f.rows[userID][productID]
	if !ok {
		return storage.ErrCartItemNotFound
	}
	row.Quantity = quantity
	return nil
}

func (f *fakeCartRepo) DeleteCartItem(ctx context.Context, userID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteCartItem"); err != nil {
		return err
	}
	delete(f.rows[userID], productID)
	return nil
}

func (f *fakeCartRepo) DeleteCartItems(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteCartItems"); err != nil {
		return err
	}
	delete(f.rows, userID)
	return nil
}

func newTestStore(repo storage.CartStorage) *cart.Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cart.NewStore(logger, repo, 0)
}

func TestStore_GuestMutationsStayLocal(t *testing.T) {
	repo := newFakeCartRepo()
	store := newTestStore(repo)

	store.AddLine(product("a", 1000, nil), "M", "")
	store.AddLine(product("a", 1000, nil), "L", "")
	store.SetQuantity("a", 5)
	store.RemoveLine("missing")
	store.Wait()

	assert.Equal(t, 5, store.Count())
	assert.Empty(t, repo.calls, "guest cart must not touch the remote store")
}

func TestStore_AddMirrorsInsertThenIncrement(t *testing.T) {
	p := product("a", 1000, nil)
	repo := newFakeCartRepo(p)
	store := newTestStore(repo)
	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))

	store.AddLine(p, "M", "black")
	store.Wait()
	qty, ok := repo.quantity("user-1", "a")
	require.True(t, ok)
	assert.Equal(t, 1, qty)

	store.AddLine(p, "XL", "white")
	store.Wait()
	qty, _ = repo.quantity("user-1", "a")
	assert.Equal(t, 2, qty)
	assert.Equal(t, 1, repo.rowCount("user-1"))
	assert.Equal(t, 2, store.Count())
}

func TestStore_SetQuantityAndRemoveMirror(t *testing.T) {
	p := product("a", 1000, nil)
	repo := newFakeCartRepo(p)
	repo.put("user-1", "a", 1)
	store := newTestStore(repo)
	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))

	assert.True(t, store.SetQuantity("a", 4))
	store.Wait()
	qty, _ := repo.quantity("user-1", "a")
	assert.Equal(t, 4, qty)

	assert.True(t, store.SetQuantity("a", 0))
	store.Wait()
	_, ok := repo.quantity("user-1", "a")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}

func TestStore_ClearDeletesRemoteRows(t *testing.T) {
	a, b := product("a", 1000, nil), product("b", 500, nil)
	repo := newFakeCartRepo(a, b)
	repo.put("user-1", "a", 2)
	repo.put("user-1", "b", 1)
	store := newTestStore(repo)
	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))
	assert.Equal(t, 3, store.Count())

	store.Clear()
	store.Wait()
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 0.0, store.Total())
	assert.Equal(t, 0, repo.rowCount("user-1"))
}

func TestStore_MirrorFailureKeepsLocalState(t *testing.T) {
	p := product("a", 1000, nil)
	repo := newFakeCartRepo(p)
	store := newTestStore(repo)
	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))

	repo.mu.Lock()
	repo.failWith = errors.New("network down")
	repo.mu.Unlock()

	line := store.AddLine(p, "", "")
	store.Wait()

	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 1, store.Count(), "optimistic mutation is never rolled back")
	assert.Equal(t, 0, repo.rowCount("user-1"), "local and remote stay diverged until the next full fetch")
}

func TestStore_SignOutThenSignInYieldsRemoteCart(t *testing.T) {
	a, b := product("a", 1000, nil), product("b", 500, nil)
	repo := newFakeCartRepo(a, b)
	repo.put("user-1", "a", 2)
	store := newTestStore(repo)
	ctx := context.Background()

	require.NoError(t, store.OnIdentityChange(ctx, "user-1"))

	// локальное изменение, которое не дошло до базы
	repo.mu.Lock()
	repo.failWith = errors.New("timeout")
	repo.mu.Unlock()
	store.AddLine(b, "", "")
	store.Wait()
	assert.Equal(t, 3, store.Count())

	require.NoError(t, store.OnIdentityChange(ctx, ""))
	assert.Equal(t, 0, store.Count(), "sign-out clears local state")

	repo.mu.Lock()
	repo.failWith = nil
	repo.mu.Unlock()
	require.NoError(t, store.OnIdentityChange(ctx, "user-1"))

	lines := store.Snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestStore_SignInDiscardsGuestLines(t *testing.T) {
	a, b := product("a", 1000, nil), product("b", 500, nil)
	repo := newFakeCartRepo(a, b)
	repo.put("user-1", "b", 1)
	store := newTestStore(repo)

	store.AddLine(a, "", "")
	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))

	lines := store.Snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].ID)
}

func TestStore_SignInDropsRowsOfDeletedProducts(t *testing.T) {
	a := product("a", 1000, nil)
	repo := newFakeCartRepo(a)
	repo.put("user-1", "a", 1)
	repo.put("user-1", "gone", 3)
	store := newTestStore(repo)

	require.NoError(t, store.OnIdentityChange(context.Background(), "user-1"))
	assert.Equal(t, 1, store.Count())
}

func TestStore_FailedLoadReturnsError(t *testing.T) {
	repo := newFakeCartRepo()
	repo.failWith = errors.New("db down")
	store := newTestStore(repo)

	err := store.OnIdentityChange(context.Background(), "user-1")
	assert.Error(t, err)
	assert.Equal(t, "user-1", store.UserID())
	assert.Equal(t, 0, store.Count())
}

func TestStore_SameIdentityIsNoop(t *testing.T) {
	repo := newFakeCartRepo()
	store := newTestStore(repo)
	ctx := context.Background()

	require.NoError(t, store.OnIdentityChange(ctx, "user-1"))
	require.NoError(t, store.OnIdentityChange(ctx, "user-1"))
	assert.Equal(t, []string{"GetCartLines"}, repo.calls)
}

func TestStore_RefreshReloadsRemoteRows(t *testing.T) {
	a, b := product("a", 1000, nil), product("b", 500, nil)
	repo := newFakeCartRepo(a, b)
	repo.put("user-1", "a", 1)
	store := newTestStore(repo)
	ctx := context.Background()

	require.NoError(t, store.Refresh(ctx), "guest refresh is a no-op")
	assert.Equal(t, 0, store.Count())

	require.NoError(t, store.OnIdentityChange(ctx, "user-1"))
	// строка, добавленная из другой вкладки
	repo.put("user-1", "b", 4)
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, 5, store.Count())
}
