package clientes

import "context"

// System defines the public contract for cliente operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Create(ctx context.Context, cmd CreateCommand) (*Cliente, error)
	Get(ctx context.Context, key string) (*Cliente, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Cliente, error)
	Delete(ctx context.Context, key string) (*Deleted, error)
	Page(ctx context.Context, page int) (*PageResult, error)
}

// Repository persists Clientes. Absent records are reported as ErrNotFound
// and duplicate keys as ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, c Cliente) (Cliente, error)
	FindByKey(ctx context.Context, key string) (Cliente, error)
	// DeleteByKey removes the record and returns it as it was.
	DeleteByKey(ctx context.Context, key string) (Cliente, error)
	// Update writes only the fields present in ch.
	Update(ctx context.Context, key string, ch Changes) (Cliente, error)
	// Page returns the records of the 1-based page and the count that page holds.
	Page(ctx context.Context, page, size int) ([]Cliente, int, error)
	// TotalPages returns ceil(total / size).
	TotalPages(ctx context.Context, size int) (int, error)
}
