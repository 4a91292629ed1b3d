package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// API is the contract of the remote books service.
type API interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, d Draft) error
	Delete(ctx context.Context, id int) error
}
