package cart

import (
	"kawaiiShop/domain"
	"math"
)

// LineTotal is the single place cart and order arithmetic happens:
// quantity × (unit price + charms × charm price), rounded to cents.
func LineTotal(unitPrice float64, quantity int, charmCount int, charmPrice float64) float64 {
	if quantity <= 0 {
		return 0
	}

	perUnit := unitPrice + float64(charmCount)*charmPrice
	return roundCents(perUnit * float64(quantity))
}

// Summarize prices each cart item against its loaded product.
func Summarize(userID uint, items []domain.CartItem, charmPrice float64) domain.Cart {
	cart := domain.Cart{
		UserID: userID,
		Lines:  make([]domain.CartLine, 0, len(items)),
	}

	var subtotal float64
	for _, item := range items {
		if item.Product == nil {
			continue
		}

		charms := []string(item.Charms)
		if charms == nil {
			charms = []string{}
		}

		line := domain.CartLine{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			ImageURL:    item.Product.ImageURL,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
			Charms:      charms,
			CharmPrice:  charmPrice,
			LineTotal:   LineTotal(item.Product.Price, item.Quantity, len(charms), charmPrice),
		}

		cart.Lines = append(cart.Lines, line)
		cart.ItemCount += item.Quantity
		subtotal += line.LineTotal
	}

	cart.Subtotal = roundCents(subtotal)
	return cart
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
