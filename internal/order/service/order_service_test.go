package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haulage/internal/authz"
	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/lifecycle"
	"haulage/internal/order/repository"
	"haulage/internal/session"
	"haulage/internal/visibility"
)

// fakeOrderRepository keeps orders in a map and records the last filter.
type fakeOrderRepository struct {
	orders     map[string]domain.Order
	lastFilter repository.ListFilter
	createErr  error
}

func newFakeOrderRepository(orders ...domain.Order) *fakeOrderRepository {
	r := &fakeOrderRepository{orders: map[string]domain.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders[order.ID] = *order.Clone()
	return nil
}

func (r *fakeOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("order with id " + id + " not found")
	}
	return o.Clone(), nil
}

func (r *fakeOrderRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Order, error) {
	r.lastFilter = filter
	out := []domain.Order{}
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return apperrors.NewNotFoundError("order with id " + id + " not found")
	}
	delete(r.orders, id)
	return nil
}

type fakeBranches map[string]domain.Branch

func (f fakeBranches) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	b, ok := f[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("branch with id " + id + " not found")
	}
	return &b, nil
}

func newTestService(t *testing.T, repo OrderRepository) *OrderService {
	t.Helper()
	enforcer, err := authz.New()
	require.NoError(t, err)
	branches := fakeBranches{"br-1": {ID: "br-1", Name: "Chennai"}}
	svc := NewOrderService(repo, branches, lifecycle.NewPolicy(enforcer), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return svc
}

func booked(id, customerID, branchID string, status domain.Status) domain.Order {
	return domain.Order{
		ID:         id,
		CustomerID: customerID,
		BranchID:   branchID,
		Pickups:    []domain.PickUp{{CompanyName: "Acme", Pincode: "600001"}},
		Deliveries: []domain.Delivery{{CompanyName: "Globex", Pincode: "560001"}},
		Status:     status,
	}
}

var (
	customer = session.Principal{UserID: "cust-1", Role: domain.RoleCustomer}
	admin    = session.Principal{UserID: "adm-1", Role: domain.RoleAdmin, BranchID: "br-1"}
	pickup   = session.Principal{UserID: "pk-1", Role: domain.RolePickup, BranchID: "br-1"}
)

func TestOrderService_List_CustomerSeesOnlyOwnOrders(t *testing.T) {
	repo := newFakeOrderRepository(
		booked("a", "cust-1", "br-1", domain.StatusPending),
		booked("b", "cust-2", "br-1", domain.StatusPending),
	)
	svc := newTestService(t, repo)

	orders, err := svc.List(context.Background(), customer, visibility.View{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "cust-1", repo.lastFilter.CustomerID)
}

func TestOrderService_List_ActionsPerRole(t *testing.T) {
	repo := newFakeOrderRepository(
		booked("a", "cust-1", "br-1", domain.StatusReview),
		booked("b", "cust-1", "br-1", domain.StatusApproved),
		booked("c", "cust-1", "br-2", domain.StatusApproved),
	)
	svc := newTestService(t, repo)

	orders, err := svc.List(context.Background(), pickup, visibility.View{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "b", orders[0].ID)
	assert.Contains(t, orders[0].Actions, string(lifecycle.ActionPickUp))
	assert.NotContains(t, orders[0].Actions, string(lifecycle.ActionApprove))
	assert.Equal(t, "br-1", repo.lastFilter.BranchID)
}

func TestOrderService_Get_HiddenOrderIsNotFound(t *testing.T) {
	svc := newTestService(t, newFakeOrderRepository(booked("a", "cust-2", "br-1", domain.StatusPending)))

	_, err := svc.Get(context.Background(), customer, "a")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	v, err := svc.Get(context.Background(), admin, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", v.ID)
}

func TestOrderService_Create(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := newTestService(t, repo)

	req := dto.CreateOrderRequest{
		BookedCompanyName:  "Acme",
		BookedCustomerName: "Ravi",
		BookedPhoneNumber:  "9876543210",
		Pickups:            []dto.PickUpRequest{{CompanyName: "Acme", Pincode: "600001"}},
		Deliveries:         []dto.DeliveryRequest{{CompanyName: "Globex", Pincode: "560001"}},
	}

	v, err := svc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, domain.StatusPending, v.Status)
	assert.Equal(t, "cust-1", v.CustomerID)
	assert.Equal(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC), v.CreatedAt)

	stored, ok := repo.orders[v.ID]
	require.True(t, ok)
	assert.Equal(t, "cust-1", stored.CreatedByID)
}

func TestOrderService_Create_RejectsIncompleteOrder(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), admin, dto.CreateOrderRequest{BookedCompanyName: "Acme"})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, repo.orders)
}

func TestOrderService_Create_UnknownBranch(t *testing.T) {
	repo := newFakeOrderRepository()
	svc := newTestService(t, repo)
	superAdmin := session.Principal{UserID: "sa-1", Role: domain.RoleSuperAdmin}

	req := dto.CreateOrderRequest{
		BranchID:   "no-such-branch",
		Pickups:    []dto.PickUpRequest{{CompanyName: "Acme"}},
		Deliveries: []dto.DeliveryRequest{{CompanyName: "Globex"}},
	}
	_, err := svc.Create(context.Background(), superAdmin, req)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "branchId", ve.Details[0].Field)
	assert.Empty(t, repo.orders)

	req.BranchID = "br-1"
	v, err := svc.Create(context.Background(), superAdmin, req)
	require.NoError(t, err)
	assert.Equal(t, "br-1", v.BranchID)
}

func TestOrderService_Create_BranchDeletedMeanwhile(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.createErr = apperrors.NewNotFoundError("branch with id br-1 not found")
	svc := newTestService(t, repo)

	req := dto.CreateOrderRequest{
		BranchID:   "br-1",
		Pickups:    []dto.PickUpRequest{{CompanyName: "Acme"}},
		Deliveries: []dto.DeliveryRequest{{CompanyName: "Globex"}},
	}
	_, err := svc.Create(context.Background(), customer, req)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestOrderService_Create_RepositoryError(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.createErr = errors.New("disk full")
	svc := newTestService(t, repo)

	req := dto.CreateOrderRequest{
		Pickups:    []dto.PickUpRequest{{CompanyName: "Acme"}},
		Deliveries: []dto.DeliveryRequest{{CompanyName: "Globex"}},
	}
	_, err := svc.Create(context.Background(), customer, req)
	assert.EqualError(t, err, "disk full")
}

func TestOrderService_Delete(t *testing.T) {
	repo := newFakeOrderRepository(
		booked("a", "cust-1", "br-1", domain.StatusPickedUp),
		booked("b", "cust-1", "br-1", domain.StatusPending),
	)
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), customer, "b")
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "customers cannot delete")
	assert.Contains(t, repo.orders, "b")

	require.NoError(t, svc.Delete(context.Background(), admin, "a"), "admins delete at any stage")
	assert.NotContains(t, repo.orders, "a")

	err = svc.Delete(context.Background(), admin, "a")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(transitionsTotal.WithLabelValues("edit", outcomeConflict))
	RecordTransition("", apperrors.NewConflictError("locked"))
	assert.Equal(t, before+1, testutil.ToFloat64(transitionsTotal.WithLabelValues("edit", outcomeConflict)))

	assert.Equal(t, outcomeOK, outcomeOf(nil))
	assert.Equal(t, outcomeForbidden, outcomeOf(apperrors.NewForbiddenError("no")))
	assert.Equal(t, outcomeInvalid, outcomeOf(apperrors.NewValidationError("bad")))
	assert.Equal(t, outcomeNotFound, outcomeOf(apperrors.NewNotFoundError("gone")))
	assert.Equal(t, outcomeError, outcomeOf(errors.New("boom")))
}
