package catalog

import (
	"context"

	"github.com/google/uuid"
)

// TreeCache caches rendered category trees per tenant. Implementations
// swallow their own failures; a cache miss and a cache outage look the
// same to callers.
type TreeCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, key string) ([]byte, bool)
	Set(ctx context.Context, tenantID uuid.UUID, key string, payload []byte)
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}
