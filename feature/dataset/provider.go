package dataset

import (
	"context"

	"data-mirror/core/engine"
)

// Provider loads a dataset as generic records.
type Provider interface {
	// Name identifies the provider. It is used in logs and as the cache key.
	Name() string

	// Load reads the full dataset.
	Load(ctx context.Context) ([]engine.Record, error)
}

// Static is an in-memory provider.
type Static struct {
	// ProviderName identifies this dataset.
	ProviderName string

	// Records is the dataset served by Load.
	Records []engine.Record
}

// Name returns the provider name.
func (s *Static) Name() string {
	return s.ProviderName
}

// Load returns the in-memory records.
func (s *Static) Load(ctx context.Context) ([]engine.Record, error) {
	return s.Records, nil
}
