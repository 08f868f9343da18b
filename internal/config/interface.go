package config

import "context"

// Loader is the interface for a format-specific manifest loader. Load reads
// every manifest under root, translates it into the format-agnostic model,
// and validates cross-file consistency (unique names, known kinds).
type Loader interface {
	Load(ctx context.Context, root string) (*Model, error)
}
