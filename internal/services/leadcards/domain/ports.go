package domain

import "context"

// WritePort persists lead cards
type WritePort interface {
	// Write inserts the card once per instance and returns the card id
	// a repeat write for the same instance returns the existing id
	Write(ctx context.Context, c Card) (string, error)
}

// ReadPort serves the external frontend read path
type ReadPort interface {
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Card, error)
}
