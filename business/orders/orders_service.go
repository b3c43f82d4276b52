package orders

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/business/cart"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"kawaiiShop/pkg/metrics"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrdersRepository interface {
	// PlaceOrder stores the order and its items and takes them out of stock
	// in one transaction, failing with domain.ErrOutOfStock.
	PlaceOrder(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Order, error)
	// UpdateStatus moves an order only if it is still in status from.
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	// Cancel marks a pending order cancelled and puts its items back in stock.
	Cancel(ctx context.Context, id uint64) error
}

type CartStore interface {
	FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID uint) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

const SubjectOrderPlaced = "Your Kawaii Shop order"

type OrdersService struct {
	orderRepo  OrdersRepository
	cartRepo   CartStore
	userRepo   UserFinder
	notifRepo  NotificationRepository
	charmPrice float64
}

// NewOrdersService wires the checkout flow. notifRepo may be nil, in which
// case no confirmation mails are sent.
func NewOrdersService(orderRepo OrdersRepository, cartRepo CartStore, userRepo UserFinder, notifRepo NotificationRepository, charmPrice float64) *OrdersService {
	return &OrdersService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		charmPrice: charmPrice,
	}
}

// Checkout turns the user's cart into a pending order and empties the cart.
func (s *OrdersService) Checkout(ctx context.Context, userID uint) (domain.Order, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart for checkout", "user_id", userID, "error", err)
		return domain.Order{}, err
	}

	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	for _, item := range items {
		if item.Product == nil {
			return domain.Order{}, fmt.Errorf("cart item %d: %w", item.ID, domain.ErrProductNotFound)
		}
		if item.Product.IsBlindBox {
			return domain.Order{}, domain.ErrBlindBoxInCart
		}
		if item.Quantity > item.Product.Stock {
			return domain.Order{}, fmt.Errorf("%s: %w", item.Product.Name, domain.ErrOutOfStock)
		}
	}

	summary := cart.Summarize(userID, items, s.charmPrice)

	now := time.Now()
	order := domain.Order{
		OrderNumber: uuid.NewString(),
		UserID:      userID,
		OrderType:   domain.OrderTypeStandard,
		OrderStatus: domain.OrderStatusPending,
		Total:       summary.Subtotal,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       make([]domain.OrderItem, 0, len(summary.Lines)),
	}

	for _, line := range summary.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			PriceEach:   line.UnitPrice + float64(len(line.Charms))*line.CharmPrice,
			Charms:      line.Charms,
			Subtotal:    line.LineTotal,
		})
	}

	if err := s.orderRepo.PlaceOrder(ctx, &order); err != nil {
		logger.Error("Failed to place order", "user_id", userID, "error", err)
		return domain.Order{}, err
	}

	metrics.OrdersPlaced.WithLabelValues(domain.OrderTypeStandard).Inc()

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		logger.Warn("Order placed but cart was not cleared", "order_id", order.ID, "error", err)
	}

	s.notifyPlaced(ctx, order)

	logger.Info("order placed", "order_id", order.ID, "user_id", userID, "total", order.Total)
	return order, nil
}

func (s *OrdersService) notifyPlaced(ctx context.Context, order domain.Order) {
	if s.notifRepo == nil {
		return
	}

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		logger.Warn("Skipping order confirmation, user lookup failed", "order_id", order.ID, "error", err)
		return
	}

	if err := s.notifRepo.SendEmail(user.FullName, user.Email, SubjectOrderPlaced, ConfirmationText(user.FullName, order)); err != nil {
		logger.Warn("Failed to send order confirmation", "order_id", order.ID, "error", err)
	}
}

// ConfirmationText renders the plain text body of an order confirmation.
func ConfirmationText(name string, order domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order %s!\n\n", name, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s", item.Quantity, item.ProductName)
		if len(item.Charms) > 0 {
			fmt.Fprintf(&b, " (charms: %s)", strings.Join(item.Charms, ", "))
		}
		fmt.Fprintf(&b, "  %.2f\n", item.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", order.Total)
	return b.String()
}

func (s *OrdersService) owned(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !isAdmin && order.UserID != userID {
		return domain.Order{}, domain.ErrForbidden
	}

	return order, nil
}

func (s *OrdersService) GetOrder(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	return s.owned(ctx, userID, isAdmin, orderID)
}

// ListOrders returns the caller's orders, or every order for admins.
func (s *OrdersService) ListOrders(ctx context.Context, userID uint, isAdmin bool) ([]domain.Order, error) {
	if isAdmin {
		return s.orderRepo.FindAll(ctx)
	}
	return s.orderRepo.FindByUser(ctx, userID)
}

// Pay settles a pending order. There is no payment gateway behind it.
func (s *OrdersService) Pay(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	order, err := s.owned(ctx, userID, isAdmin, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	return s.transition(ctx, order, domain.OrderStatusPaid)
}

func (s *OrdersService) Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	order, err := s.owned(ctx, userID, isAdmin, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.OrderStatus != domain.OrderStatusPending {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	if err := s.orderRepo.Cancel(ctx, orderID); err != nil {
		logger.Error("Failed to cancel order", "order_id", orderID, "error", err)
		return domain.Order{}, err
	}

	logger.Info("order cancelled", "order_id", orderID)
	return s.orderRepo.FindByID(ctx, orderID)
}

// UpdateStatus is the admin path for fulfilment (SHIPPED, COMPLETED).
// Cancellation goes through Cancel so stock is restored.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderID uint64, status string) (domain.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == domain.OrderStatusCancelled {
		return s.Cancel(ctx, 0, true, orderID)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	return s.transition(ctx, order, status)
}

func (s *OrdersService) transition(ctx context.Context, order domain.Order, to string) (domain.Order, error) {
	if !domain.CanTransition(order.OrderStatus, to) {
		logger.Warn("Rejected order transition", "order_id", order.ID, "from", order.OrderStatus, "to", to)
		return domain.Order{}, domain.ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.OrderStatus, to); err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			logger.Error("Failed to update order status", "order_id", order.ID, "error", err)
		}
		return domain.Order{}, err
	}

	order.OrderStatus = to
	order.UpdatedAt = time.Now()
	return order, nil
}
