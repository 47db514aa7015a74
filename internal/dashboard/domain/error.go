package domain

import "errors"

// ErrCustomerNotFound covers both a missing user and a customer the seller
// has no relationship with.
var ErrCustomerNotFound = errors.New("customer not found")
