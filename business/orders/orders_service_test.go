package orders

import (
	"context"
	"errors"
	"kawaiiShop/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrdersRepo struct {
	orders   map[uint64]domain.Order
	restocks map[uint64]int
	placeErr error
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[uint64]domain.Order{}, restocks: map[uint64]int{}}
}

func (r *fakeOrdersRepo) PlaceOrder(_ context.Context, order *domain.Order) error {
	if r.placeErr != nil {
		return r.placeErr
	}
	order.ID = uint64(len(r.orders) + 1)
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrdersRepo) FindByID(_ context.Context, id uint64) (domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrdersRepo) FindAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for id := uint64(1); id <= uint64(len(r.orders)); id++ {
		out = append(out, r.orders[id])
	}
	return out, nil
}

func (r *fakeOrdersRepo) FindByUser(_ context.Context, userID uint) ([]domain.Order, error) {
	var out []domain.Order
	for id := uint64(1); id <= uint64(len(r.orders)); id++ {
		if r.orders[id].UserID == userID {
			out = append(out, r.orders[id])
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	o := r.orders[id]
	if o.OrderStatus != from {
		return domain.ErrInvalidTransition
	}
	o.OrderStatus = to
	r.orders[id] = o
	return nil
}

func (r *fakeOrdersRepo) Cancel(_ context.Context, id uint64) error {
	o := r.orders[id]
	for _, item := range o.Items {
		r.restocks[item.ProductID] += item.Quantity
	}
	o.OrderStatus = domain.OrderStatusCancelled
	r.orders[id] = o
	return nil
}

type fakeCart struct {
	items   map[uint][]domain.CartItem
	cleared []uint
}

func (c *fakeCart) FindByUser(_ context.Context, userID uint) ([]domain.CartItem, error) {
	return c.items[userID], nil
}

func (c *fakeCart) Clear(_ context.Context, userID uint) error {
	c.cleared = append(c.cleared, userID)
	delete(c.items, userID)
	return nil
}

type fakeUsers struct{}

func (fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	return domain.User{ID: id, FullName: "Mochi", Email: "mochi@example.com"}, nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendEmail(toName, toEmail, subject, message string) error {
	m.sent = append(m.sent, toEmail+"|"+subject+"|"+message)
	return m.err
}

var (
	plush = &domain.Product{ID: 1, Name: "Plush Cat", Price: 10, Stock: 5}
	pin   = &domain.Product{ID: 2, Name: "Enamel Pin", Price: 3.25, Stock: 1}
	box   = &domain.Product{ID: 3, Name: "Mystery Box", Price: 8, Stock: 9, IsBlindBox: true}
)

func newFixture() (*OrdersService, *fakeOrdersRepo, *fakeCart, *recordingMailer) {
	repo := newFakeOrdersRepo()
	carts := &fakeCart{items: map[uint][]domain.CartItem{
		7: {
			{ID: 1, UserID: 7, ProductID: 1, Quantity: 2, Charms: []string{"bow", "star"}, Product: plush},
			{ID: 2, UserID: 7, ProductID: 2, Quantity: 1, Product: pin},
		},
	}}
	mailer := &recordingMailer{}
	return NewOrdersService(repo, carts, fakeUsers{}, mailer, 1.5), repo, carts, mailer
}

func TestCheckout_SnapshotsCartPricing(t *testing.T) {
	svc, repo, carts, mailer := newFixture()

	order, err := svc.Checkout(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, domain.OrderTypeStandard, order.OrderType)
	assert.Len(t, order.OrderNumber, 36)
	require.Len(t, order.Items, 2)

	// 2 × (10 + 2 × 1.5) = 26, plus 3.25
	assert.InDelta(t, 13.0, order.Items[0].PriceEach, 1e-9)
	assert.InDelta(t, 26.0, order.Items[0].Subtotal, 1e-9)
	assert.Equal(t, []string{"bow", "star"}, []string(order.Items[0].Charms))
	assert.InDelta(t, 29.25, order.Total, 1e-9)

	assert.Contains(t, repo.orders, order.ID)
	assert.Equal(t, []uint{7}, carts.cleared)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0], "mochi@example.com|"+SubjectOrderPlaced)
	assert.Contains(t, mailer.sent[0], "Total: 29.25")
}

func TestCheckout_Rejections(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		svc, _, _, _ := newFixture()
		_, err := svc.Checkout(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("not enough stock", func(t *testing.T) {
		svc, repo, carts, _ := newFixture()
		carts.items[7][1].Quantity = 2

		_, err := svc.Checkout(context.Background(), 7)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
		assert.Empty(t, repo.orders)
		assert.Empty(t, carts.cleared)
	})

	t.Run("blind box sneaked into cart", func(t *testing.T) {
		svc, _, carts, _ := newFixture()
		carts.items[7] = append(carts.items[7], domain.CartItem{ID: 3, ProductID: 3, Quantity: 1, Product: box})

		_, err := svc.Checkout(context.Background(), 7)
		assert.ErrorIs(t, err, domain.ErrBlindBoxInCart)
	})

	t.Run("stock race in repository keeps the cart", func(t *testing.T) {
		svc, repo, carts, _ := newFixture()
		repo.placeErr = domain.ErrOutOfStock

		_, err := svc.Checkout(context.Background(), 7)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
		assert.Empty(t, carts.cleared)
	})
}

func TestCheckout_MailFailureDoesNotFailOrder(t *testing.T) {
	svc, _, _, mailer := newFixture()
	mailer.err = errors.New("mailjet down")

	_, err := svc.Checkout(context.Background(), 7)
	assert.NoError(t, err)
}

func TestOrderLifecycle(t *testing.T) {
	svc, repo, _, _ := newFixture()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 7)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, 8, false, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	paid, err := svc.Pay(ctx, 7, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.OrderStatus)

	_, err = svc.Cancel(ctx, 7, false, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	shipped, err := svc.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, shipped.OrderStatus)

	done, err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, done.OrderStatus)
	assert.Equal(t, domain.OrderStatusCompleted, repo.orders[order.ID].OrderStatus)
}

func TestCancel_Restocks(t *testing.T) {
	svc, repo, _, _ := newFixture()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, 7)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, 7, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, map[uint64]int{1: 2, 2: 1}, repo.restocks)
}

func TestListOrders_ScopesToOwner(t *testing.T) {
	svc, repo, _, _ := newFixture()
	ctx := context.Background()

	repo.orders[1] = domain.Order{ID: 1, UserID: 7}
	repo.orders[2] = domain.Order{ID: 2, UserID: 8}

	mine, err := svc.ListOrders(ctx, 7, false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListOrders(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
