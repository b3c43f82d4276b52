package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrReviewNotFound   = errors.New("review not found")

	ErrEmailExists       = errors.New("email already exists")
	ErrCategoryExists    = errors.New("category already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrForbidden         = errors.New("you are not allowed to access this resource")

	ErrCategoryInUse     = errors.New("category still has products")
	ErrOutOfStock        = errors.New("insufficient stock")
	ErrNotBlindBox       = errors.New("product is not a blind box")
	ErrBlindBoxInCart    = errors.New("blind boxes are purchased directly, not through the cart")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrAlreadyReviewed   = errors.New("product already reviewed by this user")
)

// ErrInvalidInput matches every error built by Invalid.
var ErrInvalidInput = errors.New("invalid input")

type invalidError struct {
	msg string
}

func (e invalidError) Error() string { return e.msg }

func (e invalidError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid reports a caller mistake with a message safe to show to clients.
func Invalid(msg string) error {
	return invalidError{msg: msg}
}

func Invalidf(format string, args ...interface{}) error {
	return invalidError{msg: fmt.Sprintf(format, args...)}
}
