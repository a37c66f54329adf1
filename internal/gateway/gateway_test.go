package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/gateway/loading"
)

type staticCredentials struct {
	token, userID string
	err           error
}

func (s staticCredentials) Credentials(context.Context) (string, string, error) {
	return s.token, s.userID, s.err
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// fakeAPI is an in-memory order endpoint set with request counting.
type fakeAPI struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	hits     map[string]int
	headers  http.Header
	respond  func(w http.ResponseWriter, r *http.Request) bool
	listGate chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		orders: map[string]domain.Order{
			"o-1": {ID: "o-1", CustomerID: "cust-1", Status: domain.StatusReview},
			"o-2": {ID: "o-2", CustomerID: "cust-1", Status: domain.StatusPending},
		},
		hits: make(map[string]int),
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.hits[key]++
	f.headers = r.Header.Clone()
	respond := f.respond
	gate := f.listGate
	f.mu.Unlock()

	if respond != nil && respond(w, r) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/orders":
		if gate != nil {
			<-gate
		}
		f.mu.Lock()
		list := []domain.Order{f.orders["o-1"], f.orders["o-2"]}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(list)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/orders/"):
		id := strings.TrimPrefix(r.URL.Path, "/orders/")
		f.mu.Lock()
		o, ok := f.orders[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"order not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(o)

	case r.Method == http.MethodPost && r.URL.Path == "/orders/myOrders":
		o := domain.Order{ID: "o-3", CustomerID: "cust-1", Status: domain.StatusPending}
		f.mu.Lock()
		f.orders["o-3"] = o
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(o)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/orders/updateOrder/"):
		id := strings.TrimPrefix(r.URL.Path, "/orders/updateOrder/")
		var patch map[string]any
		_ = json.NewDecoder(r.Body).Decode(&patch)
		f.mu.Lock()
		o := f.orders[id]
		if s, ok := patch["status"].(string); ok {
			o.Status = domain.Status(s)
		}
		f.orders[id] = o
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(o)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/orders/"):
		id := strings.TrimPrefix(r.URL.Path, "/orders/")
		f.mu.Lock()
		delete(f.orders, id)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(dto.DeleteResponse{ID: id, Deleted: true})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	api     *fakeAPI
	nav     *recordingNavigator
	tracker *loading.Tracker
	gw      *Gateway
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	nav := &recordingNavigator{}
	tracker := loading.NewTracker(nil)
	opts = append([]Option{WithTracker(tracker)}, opts...)

	client, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second},
		staticCredentials{token: "tok-123", userID: "cust-1"}, nav, zap.NewNop(), opts...)
	require.NoError(t, err)

	return &fixture{api: api, nav: nav, tracker: tracker, gw: NewGateway(client, domain.RoleCustomer)}
}

func TestGet_CachedAndByteIdentical(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.gw.Orders.Get(ctx, "o-1")
	require.NoError(t, err)
	raw1, ok := f.gw.Client().Cache().Peek("Orders:o-1")
	require.True(t, ok)

	second, err := f.gw.Orders.Get(ctx, "o-1")
	require.NoError(t, err)
	raw2, _ := f.gw.Client().Cache().Peek("Orders:o-1")

	assert.Equal(t, first, second)
	assert.Equal(t, raw1, raw2)
	assert.Equal(t, 1, f.api.count("GET /orders/o-1"))
	assert.Equal(t, int64(0), f.tracker.InFlight())
}

func TestList_ConcurrentCallsShareOneRequest(t *testing.T) {
	f := newFixture(t)
	gate := make(chan struct{})
	f.api.mu.Lock()
	f.api.listGate = gate
	f.api.mu.Unlock()

	var wg sync.WaitGroup
	results := make([][]domain.Order, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := f.gw.Orders.List(context.Background())
			assert.NoError(t, err)
			results[i] = list
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, f.api.count("GET /orders"))
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, int64(0), f.tracker.InFlight())
}

func TestUpdate_InvalidatesExactlyTwoTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.gw.Orders.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReview, list[0].Status)
	_, err = f.gw.Orders.Get(ctx, "o-2")
	require.NoError(t, err)

	updated, err := f.gw.Orders.Update(ctx, "o-1", map[string]any{"status": "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)

	assert.Equal(t, [][]string{{"Orders:all", "Orders:o-1"}}, f.gw.Client().Cache().Invalidations())
	assert.True(t, f.gw.Client().Cache().Valid("Orders:o-2"))

	list, err = f.gw.Orders.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, list[0].Status)
	assert.Equal(t, 2, f.api.count("GET /orders"))
}

func TestCreate_InvalidatesListAndSeedsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Orders.List(ctx)
	require.NoError(t, err)

	created, err := f.gw.Orders.Create(ctx, map[string]any{"bookedCompanyName": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "o-3", created.ID)

	assert.Equal(t, [][]string{{"Orders:all"}}, f.gw.Client().Cache().Invalidations())
	assert.False(t, f.gw.Client().Cache().Valid("Orders:all"))
	assert.True(t, f.gw.Client().Cache().Valid("Orders:o-3"))

	got, err := f.gw.Orders.Get(ctx, "o-3")
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, 0, f.api.count("GET /orders/o-3"))
}

func TestDelete_InvalidatesListAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.gw.Orders.Delete(ctx, "o-2"))
	assert.Equal(t, [][]string{{"Orders:all", "Orders:o-2"}}, f.gw.Client().Cache().Invalidations())
	assert.Equal(t, 1, f.api.count("DELETE /orders/o-2"))
}

func TestUnauthorized_RedirectsAndLeavesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Orders.List(ctx)
	require.NoError(t, err)

	f.api.mu.Lock()
	f.api.respond = func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method != http.MethodPut {
			return false
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
		return true
	}
	f.api.mu.Unlock()

	_, err = f.gw.Orders.Update(ctx, "o-1", map[string]any{"status": "APPROVED"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "token expired", err.Error())
	assert.Equal(t, []string{"/login"}, f.nav.Paths())

	// No retry, no invalidation, cached status unchanged.
	assert.Equal(t, 1, f.api.count("PUT /orders/updateOrder/o-1"))
	assert.Empty(t, f.gw.Client().Cache().Invalidations())
	list, err := f.gw.Orders.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReview, list[0].Status)
	assert.Equal(t, 1, f.api.count("GET /orders"))
	assert.Equal(t, int64(0), f.tracker.InFlight())
}

func TestErrors_ServerMessageOrFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.api.mu.Lock()
	f.api.respond = func(w http.ResponseWriter, r *http.Request) bool {
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"status":409,"code":"CONFLICT","message":"cannot pickup an order in status REVIEW"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`oops`))
		default:
			return false
		}
		return true
	}
	f.api.mu.Unlock()

	_, err := f.gw.Orders.Update(ctx, "o-1", map[string]any{"action": "pickup"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "cannot pickup an order in status REVIEW", apiErr.Message)

	err = f.gw.Orders.Delete(ctx, "o-1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to delete order", apiErr.Message)

	assert.Empty(t, f.gw.Client().Cache().Invalidations())
	assert.Equal(t, int64(0), f.tracker.InFlight())
}

func TestErrors_NetworkFailureUsesFallback(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil, zap.NewNop(),
		WithTracker(loading.NewTracker(nil)))
	require.NoError(t, err)
	gw := NewGateway(client, domain.RoleAdmin)

	_, err = gw.Orders.Update(context.Background(), "o-1", map[string]any{"status": "APPROVED"})
	require.Error(t, err)
	assert.Equal(t, "Failed to update order", err.Error())
	assert.Equal(t, int64(0), client.Tracker().InFlight())
}

func TestAuthHeaders(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.Orders.Get(context.Background(), "o-1")
	require.NoError(t, err)

	f.api.mu.Lock()
	defer f.api.mu.Unlock()
	assert.Equal(t, "Bearer tok-123", f.api.headers.Get("Authorization"))
	assert.Equal(t, "cust-1", f.api.headers.Get("x-user-id"))
}

func TestAnonymousCredentials(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	noSession := errors.New("no session")
	client, err := New(Config{BaseURL: srv.URL}, staticCredentials{err: noSession}, nil, zap.NewNop(),
		WithTracker(loading.NewTracker(nil)),
		WithAnonymous(func(err error) bool { return errors.Is(err, noSession) }))
	require.NoError(t, err)

	_, err = NewGateway(client, domain.RoleUnknown).Orders.Get(context.Background(), "o-1")
	require.NoError(t, err)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Empty(t, api.headers.Get("Authorization"))
}

func TestUnsupportedAndValidation_NoRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Branches.Get(ctx, "br-1")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = f.gw.Enquiries.Get(ctx, "e-1")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = f.gw.Orders.Create(ctx, dto.CreateOrderRequest{BookedCompanyName: "Acme"})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = f.gw.Orders.Get(ctx, "  ")
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)

	assert.Equal(t, 0, f.api.total())
}

func TestCancelledCaller_DiscardsResult(t *testing.T) {
	f := newFixture(t)
	gate := make(chan struct{})
	f.api.mu.Lock()
	f.api.listGate = gate
	f.api.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		_, err := f.gw.Orders.List(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(gate)
	list, err := f.gw.Orders.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 1, f.api.count("GET /orders"))

	assert.Eventually(t, func() bool { return f.tracker.InFlight() == 0 }, time.Second, 10*time.Millisecond)
}

func TestUserKindByRole(t *testing.T) {
	assert.Equal(t, "/superadmin/users/{id}", UserKind(domain.RoleSuperAdmin).Endpoints.Get)
	assert.Equal(t, "/admin/staff/{id}", UserKind(domain.RoleAdmin).Endpoints.Get)
	assert.Equal(t, "/auth/user/{id}", UserKind(domain.RoleLR).Endpoints.Get)

	assert.Equal(t, "/superadmin/users", UserKind(domain.RoleSuperAdmin).Endpoints.Create)
	assert.Equal(t, "/admin/staff", UserKind(domain.RoleAdmin).Endpoints.Create)
	assert.Empty(t, UserKind(domain.RoleCustomer).Endpoints.Create)
}

func TestLogin_ResetsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Orders.List(ctx)
	require.NoError(t, err)

	f.api.mu.Lock()
	f.api.respond = func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path != "/auth/login" {
			return false
		}
		_ = json.NewEncoder(w).Encode(dto.AuthResponse{Token: "new", User: domain.User{ID: "u-9", Role: domain.RoleAdmin}})
		return true
	}
	f.api.mu.Unlock()

	resp, err := f.gw.Login(ctx, dto.LoginRequest{Email: "a@b.in", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u-9", resp.User.ID)
	assert.False(t, f.gw.Client().Cache().Valid("Orders:all"))
}
