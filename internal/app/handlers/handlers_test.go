package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/favorites"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token    string
	identity session.Identity
	err      error
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, fullName string) (string, session.Identity, error) {
	return f.token, f.identity, f.err
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (string, session.Identity, error) {
	return f.token, f.identity, f.err
}

func (f *fakeAuthService) IsAdmin(ctx context.Context, userID, email string) bool { return false }

type fakeCatalog struct {
	products map[string]*models.Product
	filter   service.ProductFilter
}

func (f *fakeCatalog) List(ctx context.Context, filter service.ProductFilter) (service.ProductPage, error) {
	f.filter = filter
	return service.ProductPage{Page: 1, PageSize: 20}, nil
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("service.CatalogService.Get: %w", storage.ErrProductNotFound)
	}
	return p, nil
}

type fakeCheckout struct {
	order *models.Order
	err   error
	req   service.CheckoutRequest
}

func (f *fakeCheckout) Checkout(ctx context.Context, sess *session.Session, req service.CheckoutRequest) (*models.Order, error) {
	f.req = req
	return f.order, f.err
}

type fakeOrders struct {
	err error
}

func (f *fakeOrders) ListMine(ctx context.Context, userID string) ([]*models.Order, error) {
	return nil, f.err
}
func (f *fakeOrders) Cancel(ctx context.Context, userID, orderID string) error { return f.err }
func (f *fakeOrders) ListAll(ctx context.Context) ([]*models.Order, error)  { return nil, f.err }
func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	return f.err
}

type fakeProductAdmin struct {
	uploaded string
	err      error
}

func (f *fakeProductAdmin) Create(ctx context.Context, in service.ProductInput) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: "new", Name: in.Name, Price: in.Price}, nil
}
func (f *fakeProductAdmin) Update(ctx context.Context, id string, in service.ProductInput) (*models.Product, error) {
	return nil, f.err
}
func (f *fakeProductAdmin) Delete(ctx context.Context, id string) error { return f.err }
func (f *fakeProductAdmin) UploadImage(ctx context.Context, name string, body io.Reader) (string, error) {
	data, _ := io.ReadAll(body)
	f.uploaded = string(data)
	return "http://localhost/storage/products/" + name, f.err
}

// nopCartRepo — удалённая корзина пользователя u1 с одной строкой.
type nopCartRepo struct{}

func (nopCartRepo) GetCartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	if userID == "u1" {
		return []models.CartLine{{Product: models.Product{ID: "remote", Price: 100}, Quantity: 3}}, nil
	}
	return nil, nil
}
func (nopCartRepo) GetCartItem(ctx context.Context, userID, productID string) (*models.CartItemRow, error) {
	return nil, storage.ErrCartItemNotFound
}
func (nopCartRepo) InsertCartItem(ctx context.Context, item *models.CartItemRow) error { return nil }
func (nopCartRepo) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) error {
	return nil
}
func (nopCartRepo) SetCartItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	return nil
}
func (nopCartRepo) DeleteCartItem(ctx context.Context, userID, productID string) error { return nil }
func (nopCartRepo) DeleteCartItems(ctx context.Context, userID string) error          { return nil }

type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func newManager() *session.Manager {
	return session.NewManager(discardLogger(), nopCartRepo{}, func(string) favorites.KV {
		return &memKV{values: map[string]string{}}
	}, session.Options{})
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := newManager().GetOrCreate(context.Background(), "")
	require.NoError(t, err)
	return s
}

// request собирает запрос с сессией, пользователем и параметрами маршрута chi.
func request(method, target, body string, sess *session.Session, userID string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := req.Context()
	if sess != nil {
		ctx = session.WithSession(ctx, sess)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, jwtmiddleware.UserIDKey, userID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func TestSignInHandler_BindsSession(t *testing.T) {
	m := newManager()
	ctx := context.Background()
	chosen := uuid.NewString()
	sess, err := m.GetOrCreate(ctx, chosen)
	require.NoError(t, err)
	sess.Cart.AddLine(models.Product{ID: "guest", Price: 5}, "", "")
	_, err = sess.Favorites.Toggle(ctx, models.Product{ID: "fav"})
	require.NoError(t, err)

	fakeSvc := &fakeAuthService{token: "test-token", identity: session.Identity{UserID: "u1", Email: "a@b.dz"}}
	handler := handlers.SignInHandler(discardLogger(), fakeSvc, m)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, request("POST", "/api/auth/signin", `{"email":"a@b.dz","password":"password123"}`, sess, "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "test-token", resp.Token)
	assert.Equal(t, "u1", resp.User.ID)

	newID := rr.Header().Get(session.HeaderName)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, chosen, newID, "sign-in issues a fresh session id")

	bound, ok := m.Get(newID)
	require.True(t, ok)
	require.NotNil(t, bound.Identity())
	assert.True(t, bound.Favorites.IsFavorite("fav"))
	snapshot := bound.Cart.Snapshot()
	require.Len(t, snapshot, 1, "guest cart replaced by the remote one")
	assert.Equal(t, "remote", snapshot[0].ID)

	// id, известный клиенту до входа, больше не ведёт к пользователю
	stale, err := m.GetOrCreate(ctx, chosen)
	require.NoError(t, err)
	assert.Nil(t, stale.Identity())
	assert.Equal(t, 0, stale.Cart.Count())

	rr = httptest.NewRecorder()
	handlers.MeHandler(discardLogger()).ServeHTTP(rr, request("GET", "/api/auth/me", "", stale, "", nil))
	assert.JSONEq(t, `{"user":null}`, rr.Body.String())
}

func TestSignInHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid json", `{"email": "a@b.dz", "password":`, nil, http.StatusBadRequest},
		{"invalid email", `{"email": "nope", "password": "x"}`, nil, http.StatusBadRequest},
		{"bad credentials", `{"email": "a@b.dz", "password": "x"}`, service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"backend down", `{"email": "a@b.dz", "password": "x"}`, errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager()
			sess, err := m.GetOrCreate(context.Background(), "")
			require.NoError(t, err)
			handler := handlers.SignInHandler(discardLogger(), &fakeAuthService{err: tt.err}, m)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, request("POST", "/api/auth/signin", tt.body, sess, "", nil))
			assert.Equal(t, tt.want, rr.Code)
			assert.Nil(t, sess.Identity())
			_, ok := m.Get(sess.ID)
			assert.True(t, ok, "failed sign-in keeps the session")
		})
	}
}

func TestSignOutAndMe(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SignIn(context.Background(), session.Identity{UserID: "u1", Email: "a@b.dz"}))

	rr := httptest.NewRecorder()
	handlers.SignOutHandler(discardLogger()).ServeHTTP(rr, request("POST", "/api/auth/signout", "", sess, "", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, sess.Cart.Count())

	rr = httptest.NewRecorder()
	handlers.MeHandler(discardLogger()).ServeHTTP(rr, request("GET", "/api/auth/me", "", sess, "", nil))
	assert.JSONEq(t, `{"user":null}`, rr.Body.String())
}

func TestCartHandlers(t *testing.T) {
	sess := newSession(t)
	catalog := &fakeCatalog{products: map[string]*models.Product{"p1": {ID: "p1", Name: "Robe", Price: 1000}}}
	log := discardLogger()

	rr := httptest.NewRecorder()
	handlers.AddCartItemHandler(log, catalog).ServeHTTP(rr, request("POST", "/api/cart/items", `{"product_id":"p1","size":"M"}`, sess, "", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handlers.AddCartItemHandler(log, catalog).ServeHTTP(rr, request("POST", "/api/cart/items", `{"product_id":"p1","size":"L"}`, sess, "", nil))
	var cart handlers.CartResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "M", cart.Items[0].SelectedSize, "first variant kept")
	assert.Equal(t, 2000.0, cart.Total)

	rr = httptest.NewRecorder()
	handlers.UpdateCartItemHandler(log).ServeHTTP(rr, request("PUT", "/api/cart/items/p1", `{"quantity":0}`, sess, "", map[string]string{"productID": "p1"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, sess.Cart.Count(), "quantity 0 removes the line")

	rr = httptest.NewRecorder()
	handlers.UpdateCartItemHandler(log).ServeHTTP(rr, request("PUT", "/api/cart/items/p1", `{}`, sess, "", map[string]string{"productID": "p1"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "quantity is required")

	rr = httptest.NewRecorder()
	handlers.AddCartItemHandler(log, catalog).ServeHTTP(rr, request("POST", "/api/cart/items", `{"product_id":"ghost"}`, sess, "", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCartHandler_Refresh(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SignIn(context.Background(), session.Identity{UserID: "u1"}))
	sess.Cart.RemoveLine("remote")
	sess.Cart.Wait()
	require.Equal(t, 0, sess.Cart.Count())

	rr := httptest.NewRecorder()
	handlers.GetCartHandler(discardLogger()).ServeHTTP(rr, request("GET", "/api/cart", "", sess, "", nil))
	var cart handlers.CartResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cart))
	assert.Equal(t, 0, cart.Count, "plain read serves memory")

	rr = httptest.NewRecorder()
	handlers.GetCartHandler(discardLogger()).ServeHTTP(rr, request("GET", "/api/cart?refresh=1", "", sess, "", nil))
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cart))
	assert.Equal(t, 3, cart.Count, "refresh reloads the stored cart")
}

func TestToggleFavoriteHandler(t *testing.T) {
	sess := newSession(t)
	catalog := &fakeCatalog{products: map[string]*models.Product{"p1": {ID: "p1", Name: "Robe"}}}
	handler := handlers.ToggleFavoriteHandler(discardLogger(), catalog)
	params := map[string]string{"productID": "p1"}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, request("POST", "/api/favorites/p1/toggle", "", sess, "", params))
	assert.JSONEq(t, `{"product_id":"p1","favorite":true}`, rr.Body.String())

	// товар удалён из каталога, но из избранного его убрать можно
	delete(catalog.products, "p1")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, request("POST", "/api/favorites/p1/toggle", "", sess, "", params))
	assert.JSONEq(t, `{"product_id":"p1","favorite":false}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handlers.ListFavoritesHandler(discardLogger()).ServeHTTP(rr, request("GET", "/api/favorites", "", sess, "", nil))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCheckoutHandler(t *testing.T) {
	signedIn := func(t *testing.T) *session.Session {
		sess := newSession(t)
		require.NoError(t, sess.SignIn(context.Background(), session.Identity{UserID: "u1"}))
		return sess
	}
	body := `{"delivery_method":"pickup"}`

	tests := []struct {
		name   string
		userID string
		err    error
		want   int
		msg    string
	}{
		{"success", "u1", nil, http.StatusCreated, ""},
		{"token of another user", "u2", nil, http.StatusUnauthorized, "please sign in"},
		{"no address", "u1", fmt.Errorf("op: %w", service.ErrAddressRequired), http.StatusBadRequest, "address required"},
		{"empty cart", "u1", service.ErrCartEmpty, http.StatusBadRequest, "cart is empty"},
		{"submit failed", "u1", fmt.Errorf("op: %w: %w", service.ErrOrderSubmit, errors.New("timeout")), http.StatusBadGateway, "order submission failed, please retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCheckout{order: &models.Order{ID: "o1", TotalAmount: 2600}, err: tt.err}
			rr := httptest.NewRecorder()
			handlers.CheckoutHandler(discardLogger(), fake).ServeHTTP(rr, request("POST", "/api/checkout", body, signedIn(t), tt.userID, nil))

			assert.Equal(t, tt.want, rr.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, strings.TrimSpace(rr.Body.String()))
			}
			if tt.want == http.StatusCreated {
				assert.Equal(t, models.DeliveryPickup, fake.req.DeliveryMethod)
			}
		})
	}
}

func TestCheckoutHandler_Unauthenticated(t *testing.T) {
	rr := httptest.NewRecorder()
	handlers.CheckoutHandler(discardLogger(), &fakeCheckout{}).ServeHTTP(rr, request("POST", "/api/checkout", `{}`, newSession(t), "", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOrderHandlers(t *testing.T) {
	log := discardLogger()
	params := map[string]string{"id": "o1"}

	rr := httptest.NewRecorder()
	handlers.CancelOrderHandler(log, &fakeOrders{err: service.ErrOrderNotCancellable}).
		ServeHTTP(rr, request("POST", "/api/orders/o1/cancel", "", nil, "u1", params))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	handlers.CancelOrderHandler(log, &fakeOrders{err: storage.ErrOrderNotFound}).
		ServeHTTP(rr, request("POST", "/api/orders/o1/cancel", "", nil, "u1", params))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	handlers.ListMyOrdersHandler(log, &fakeOrders{}).ServeHTTP(rr, request("GET", "/api/orders", "", nil, "u1", nil))
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	handlers.AdminUpdateOrderStatusHandler(log, &fakeOrders{}).
		ServeHTTP(rr, request("PUT", "/api/admin/orders/o1/status", `{"status":"lost"}`, nil, "admin", params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handlers.AdminUpdateOrderStatusHandler(log, &fakeOrders{}).
		ServeHTTP(rr, request("PUT", "/api/admin/orders/o1/status", `{"status":"shipped"}`, nil, "admin", params))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestListProductsHandler_Query(t *testing.T) {
	catalog := &fakeCatalog{}
	rr := httptest.NewRecorder()
	handlers.ListProductsHandler(discardLogger(), catalog).
		ServeHTTP(rr, request("GET", "/api/products?q=robe&category=new&page=2&page_size=abc", "", nil, "", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, service.ProductFilter{Search: "robe", Category: "new", Page: 2}, catalog.filter)
}

func TestCreateProductHandler_ValidationMessage(t *testing.T) {
	fake := &fakeProductAdmin{err: fmt.Errorf("service.ProductAdminService.Create: %w: unknown category \"shoes\"", service.ErrValidation)}
	rr := httptest.NewRecorder()
	handlers.CreateProductHandler(discardLogger(), fake).
		ServeHTTP(rr, request("POST", "/api/admin/products", `{"name":"x","price":10,"category":"shoes"}`, nil, "admin", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `validation failed: unknown category "shoes"`, strings.TrimSpace(rr.Body.String()))
}

func TestUploadImageHandler(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "robe.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/admin/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	fake := &fakeProductAdmin{}
	handlers.UploadImageHandler(discardLogger(), fake, 1<<20).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"url":"http://localhost/storage/products/robe.png"}`, rr.Body.String())
	assert.Equal(t, "png-bytes", fake.uploaded)

	rr = httptest.NewRecorder()
	handlers.UploadImageHandler(discardLogger(), fake, 1<<20).ServeHTTP(rr, httptest.NewRequest("POST", "/api/admin/uploads", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
