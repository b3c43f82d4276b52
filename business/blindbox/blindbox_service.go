package blindbox

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/business/cart"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"kawaiiShop/pkg/metrics"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProductFinder interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

// OutcomeRepository stores the outcome table of each blind box.
type OutcomeRepository interface {
	FindByProduct(ctx context.Context, productID uint64) ([]domain.BlindBoxOutcome, error)
	Replace(ctx context.Context, productID uint64, outcomes []domain.BlindBoxOutcome) error
}

// OrderPlacer persists an order and takes its items out of stock atomically.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *domain.Order) error
}

type blindBoxService struct {
	productRepo ProductFinder
	outcomeRepo OutcomeRepository
	orderRepo   OrderPlacer
	src         RandomSource
	now         func() time.Time
}

func NewBlindBoxService(productRepo ProductFinder, outcomeRepo OutcomeRepository, orderRepo OrderPlacer, src RandomSource) *blindBoxService {
	return &blindBoxService{
		productRepo: productRepo,
		outcomeRepo: outcomeRepo,
		orderRepo:   orderRepo,
		src:         src,
		now:         time.Now,
	}
}

func (s *blindBoxService) blindBox(ctx context.Context, productID uint64) (domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	if !product.IsBlindBox {
		return domain.Product{}, domain.ErrNotBlindBox
	}

	return product, nil
}

func (s *blindBoxService) GetOutcomes(ctx context.Context, productID uint64) ([]domain.BlindBoxOutcome, error) {
	if _, err := s.blindBox(ctx, productID); err != nil {
		return nil, err
	}

	return s.outcomeRepo.FindByProduct(ctx, productID)
}

// ReplaceOutcomes swaps the whole outcome table after validating it as a
// distribution.
func (s *blindBoxService) ReplaceOutcomes(ctx context.Context, productID uint64, outcomes []domain.BlindBoxOutcome) ([]domain.BlindBoxOutcome, error) {
	if _, err := s.blindBox(ctx, productID); err != nil {
		return nil, err
	}

	table := make([]domain.BlindBoxOutcome, len(outcomes))
	copy(table, outcomes)

	seen := make(map[string]bool, len(table))
	for i := range table {
		table[i].Name = strings.TrimSpace(table[i].Name)
		if table[i].Name == "" {
			return nil, domain.Invalid("outcome name is required")
		}
		if seen[table[i].Name] {
			return nil, domain.Invalidf("duplicate outcome %q", table[i].Name)
		}
		seen[table[i].Name] = true

		table[i].ID = 0
		table[i].ProductID = productID
		table[i].Position = i
	}

	if err := Validate(toWeighted(table)); err != nil {
		logger.Warn("Rejected blind box outcome table", "product_id", productID, "error", err)
		return nil, err
	}

	if err := s.outcomeRepo.Replace(ctx, productID, table); err != nil {
		logger.Error("Failed to store blind box outcomes", "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to store outcomes: %w", err)
	}

	logger.Info("blind box outcomes replaced", "product_id", productID, "count", len(table))

	return s.outcomeRepo.FindByProduct(ctx, productID)
}

// Purchase draws one outcome per unit and records the order with its draws.
func (s *blindBoxService) Purchase(ctx context.Context, userID uint, productID uint64, quantity int) (domain.BlindBoxPurchase, error) {
	started := s.now()

	if quantity <= 0 {
		return domain.BlindBoxPurchase{}, ErrInvalidQuantity
	}

	product, err := s.blindBox(ctx, productID)
	if err != nil {
		logFailure("Blind box lookup failed", err, "product_id", productID)
		return domain.BlindBoxPurchase{}, err
	}

	if quantity > product.Stock {
		logger.Warn("Blind box out of stock", "product_id", productID, "quantity", quantity, "stock", product.Stock)
		return domain.BlindBoxPurchase{}, domain.ErrOutOfStock
	}

	outcomes, err := s.outcomeRepo.FindByProduct(ctx, productID)
	if err != nil {
		logger.Error("Failed to load blind box outcomes", "product_id", productID, "error", err)
		return domain.BlindBoxPurchase{}, err
	}

	draws, err := Draw(toWeighted(outcomes), quantity, s.src)
	if err != nil {
		logger.Error("Blind box draw rejected", "product_id", productID, "quantity", quantity, "error", err)
		return domain.BlindBoxPurchase{}, err
	}

	records := make([]domain.DrawRecord, len(draws))
	items := make([]domain.BlindBoxItem, len(draws))
	for i, d := range draws {
		records[i] = domain.DrawRecord{DrawIndex: d.DrawIndex, Name: d.Outcome.Name, Image: d.Outcome.Payload}
		items[i] = domain.BlindBoxItem{Name: d.Outcome.Name, Image: d.Outcome.Payload}
	}

	subtotal := cart.LineTotal(product.Price, quantity, 0, 0)
	order := &domain.Order{
		OrderNumber: uuid.NewString(),
		UserID:      userID,
		OrderType:   domain.OrderTypeBlindBox,
		OrderStatus: domain.OrderStatusPaid,
		Total:       subtotal,
		CreatedAt:   started,
		UpdatedAt:   started,
		Items: []domain.OrderItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			PriceEach:   product.Price,
			Subtotal:    subtotal,
			Draws:       records,
		}},
	}

	if err := s.orderRepo.PlaceOrder(ctx, order); err != nil {
		logFailure("Failed to place blind box order", err, "product_id", productID)
		return domain.BlindBoxPurchase{}, err
	}

	productLabel := strconv.FormatUint(product.ID, 10)
	for _, item := range items {
		metrics.BlindBoxDraws.WithLabelValues(productLabel, item.Name).Inc()
	}
	metrics.OrdersPlaced.WithLabelValues(domain.OrderTypeBlindBox).Inc()
	metrics.BlindBoxPurchaseLatency.Observe(s.now().Sub(started).Seconds())

	logger.Info("blind box purchased", "order_id", order.ID, "user_id", userID, "product_id", productID, "quantity", quantity)

	return domain.BlindBoxPurchase{
		OrderID: order.ID,
		Items:   items,
		Product: domain.BlindBoxProduct{ID: product.ID, Name: product.Name},
	}, nil
}

func toWeighted(outcomes []domain.BlindBoxOutcome) []WeightedOutcome[string] {
	out := make([]WeightedOutcome[string], len(outcomes))
	for i, o := range outcomes {
		out[i] = WeightedOutcome[string]{Name: o.Name, Payload: o.Image, Weight: o.Weight}
	}
	return out
}

// logFailure logs caller mistakes at warn and everything else at error.
func logFailure(msg string, err error, keysAndValues ...interface{}) {
	keysAndValues = append(keysAndValues, "error", err)
	if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrNotBlindBox) || errors.Is(err, domain.ErrOutOfStock) {
		logger.Warn(msg, keysAndValues...)
		return
	}
	logger.Error(msg, keysAndValues...)
}
