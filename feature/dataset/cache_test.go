package dataset

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"data-mirror/core/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider counts how many times Load is called.
type countingProvider struct {
	name  string
	loads atomic.Int32
}

func (p *countingProvider) Name() string {
	return p.name
}

func (p *countingProvider) Load(ctx context.Context) ([]engine.Record, error) {
	p.loads.Add(1)
	return []engine.Record{{"id": 1}}, nil
}

func TestLoadCachedServesFreshSnapshot(t *testing.T) {
	p := &countingProvider{name: "test:fresh"}
	defer Invalidate(p.name)

	records, err := LoadCached(context.Background(), p, time.Minute)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Second load within the TTL hits the snapshot, not the provider.
	_, err = LoadCached(context.Background(), p, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.loads.Load())
}

func TestLoadCachedZeroTTLDisablesCaching(t *testing.T) {
	p := &countingProvider{name: "test:nocache"}
	defer Invalidate(p.name)

	_, err := LoadCached(context.Background(), p, 0)
	require.NoError(t, err)
	_, err = LoadCached(context.Background(), p, 0)
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.loads.Load())
}

func TestLoadCachedInvalidate(t *testing.T) {
	p := &countingProvider{name: "test:invalidate"}
	defer Invalidate(p.name)

	_, err := LoadCached(context.Background(), p, time.Minute)
	require.NoError(t, err)

	Invalidate(p.name)

	_, err = LoadCached(context.Background(), p, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.loads.Load())
}

func TestLoadCachedPropagatesError(t *testing.T) {
	p := &failingProvider{}
	records, err := LoadCached(context.Background(), p, time.Minute)
	assert.Error(t, err)
	assert.Nil(t, records)
}

type failingProvider struct{}

func (p *failingProvider) Name() string {
	return "test:failing"
}

func (p *failingProvider) Load(ctx context.Context) ([]engine.Record, error) {
	return nil, assert.AnError
}
