// Package errors provides sentinel errors for checkout operations.
package errors

import "errors"

var ErrInvalidItem = errors.New("invalid item")
var ErrEmptyCart = errors.New("cart is empty")
var ErrInsufficientBalance = errors.New("customer's balance is insufficient")
var ErrInsufficientStock = errors.New("not enough stock available")

var ErrInvalidProduct = errors.New("invalid product")
var ErrInvalidCustomer = errors.New("invalid customer")
var ErrInvalidAmount = errors.New("invalid amount")

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product already exists")
var ErrCustomerNotFound = errors.New("customer not found")
var ErrCartNotFound = errors.New("cart not found")

var ErrAccessDenied = errors.New("access denied")
var ErrCheckoutInProgress = errors.New("checkout with this idempotency key is in progress")
