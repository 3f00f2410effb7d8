package dataset

import (
	"context"
	"io"
	"strings"
	"testing"

	"data-mirror/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestObjectLoad(t *testing.T) {
	body := `[{"id": 1, "name": "Ada"}, {"id": 2, "name": "Grace"}]`

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "mirror", "datasets/people.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	provider := NewObject(client, "mirror", "datasets/people.json")
	records, err := provider.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// JSON numbers decode as float64.
	assert.Equal(t, float64(1), records[0]["id"])
	assert.Equal(t, "Ada", records[0]["name"])

	client.AssertExpectations(t)
}

func TestObjectLoadGetError(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "mirror", "missing.json", mock.Anything).
		Return(nil, assert.AnError)

	provider := NewObject(client, "mirror", "missing.json")
	records, err := provider.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestObjectLoadInvalidJSON(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "mirror", "broken.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader("{not json")), nil)

	provider := NewObject(client, "mirror", "broken.json")
	_, err := provider.Load(context.Background())
	assert.ErrorContains(t, err, "failed to parse object")
}

func TestObjectName(t *testing.T) {
	provider := NewObject(nil, "mirror", "datasets/people.json")
	assert.Equal(t, "object:datasets/people.json", provider.Name())
}
