package gorem

import (
	"context"
	"time"
)

// Store is the transport boundary to the remote object store. One call is one
// round trip; implementations must be safe for concurrent use. Field maps cross
// this boundary already in wire form.
type Store interface {
	Create(ctx context.Context, class string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error)
	Update(ctx context.Context, class, objectID string, fields map[string]interface{}, useMasterKey bool) (*SaveResult, error)
	Delete(ctx context.Context, class, objectID string, useMasterKey bool) error
	Get(ctx context.Context, class, objectID string, useMasterKey bool) (map[string]interface{}, error)
	Find(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) ([]map[string]interface{}, error)
	Count(ctx context.Context, class string, query *StoreQuery, useMasterKey bool) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// SaveResult carries the store assigned identity and timestamps after a save
type SaveResult struct {
	ObjectID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreQuery is the wire level query, already compiled from the Query facade
type StoreQuery struct {
	Where map[string]interface{}
	Order []string
	Skip  int
	Limit int
	Keys  []string
}
