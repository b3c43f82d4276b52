package cart

import (
	"context"
	"fmt"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"slices"
	"sort"
)

// CartRepository contract interface
type CartRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error)
	FindItem(ctx context.Context, userID uint, itemID uint64) (domain.CartItem, error)
	Create(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uint64, quantity int) error
	Delete(ctx context.Context, userID uint, itemID uint64) error
	Clear(ctx context.Context, userID uint) error
}

// ProductFinder is the slice of the product repository the cart needs.
type ProductFinder interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type cartService struct {
	cartRepo    CartRepository
	productRepo ProductFinder
	charmPrice  float64
}

func NewCartService(cartRepo CartRepository, productRepo ProductFinder, charmPrice float64) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		charmPrice:  charmPrice,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uint) (domain.Cart, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", "user_id", userID, "error", err)
		return domain.Cart{}, err
	}

	return Summarize(userID, items, s.charmPrice), nil
}

func (s *cartService) AddItem(ctx context.Context, userID uint, productID uint64, quantity int, charms []string) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.Invalid("quantity must be greater than 0")
	}

	charms, err := normalizeCharms(charms)
	if err != nil {
		return domain.Cart{}, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("Product lookup failed while adding to cart", "product_id", productID, "error", err)
		return domain.Cart{}, err
	}

	if product.IsBlindBox {
		return domain.Cart{}, domain.ErrBlindBoxInCart
	}

	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	// merge into a line with the same product and charm set
	for _, item := range items {
		if item.ProductID != productID || !slices.Equal([]string(item.Charms), charms) {
			continue
		}

		newQty := item.Quantity + quantity
		if newQty > product.Stock {
			return domain.Cart{}, domain.ErrOutOfStock
		}

		if err := s.cartRepo.UpdateQuantity(ctx, item.ID, newQty); err != nil {
			logger.Error("Failed to update cart item", "item_id", item.ID, "error", err)
			return domain.Cart{}, fmt.Errorf("failed to update cart item: %w", err)
		}

		return s.GetCart(ctx, userID)
	}

	if quantity > product.Stock {
		return domain.Cart{}, domain.ErrOutOfStock
	}

	item := &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Charms:    charms,
	}
	if err := s.cartRepo.Create(ctx, item); err != nil {
		logger.Error("Failed to create cart item", "user_id", userID, "error", err)
		return domain.Cart{}, fmt.Errorf("failed to add cart item: %w", err)
	}

	logger.Info("cart item added", "user_id", userID, "product_id", productID, "quantity", quantity)

	return s.GetCart(ctx, userID)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (s *cartService) UpdateItem(ctx context.Context, userID uint, itemID uint64, quantity int) (domain.Cart, error) {
	if quantity < 0 {
		return domain.Cart{}, domain.Invalid("quantity cannot be negative")
	}

	item, err := s.cartRepo.FindItem(ctx, userID, itemID)
	if err != nil {
		return domain.Cart{}, err
	}

	if quantity == 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return domain.Cart{}, err
	}

	if quantity > product.Stock {
		return domain.Cart{}, domain.ErrOutOfStock
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		logger.Error("Failed to update cart item", "item_id", itemID, "error", err)
		return domain.Cart{}, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID uint, itemID uint64) (domain.Cart, error) {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		logger.Error("Failed to remove cart item", "item_id", itemID, "error", err)
		return domain.Cart{}, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		logger.Error("Failed to clear cart", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// normalizeCharms validates charm names and sorts them so that the same set
// in any order merges into one line.
func normalizeCharms(charms []string) ([]string, error) {
	out := make([]string, 0, len(charms))
	for _, c := range charms {
		if !domain.IsCharm(c) {
			return nil, domain.Invalidf("unknown charm %q", c)
		}
		out = append(out, c)
	}

	sort.Strings(out)
	return out, nil
}
