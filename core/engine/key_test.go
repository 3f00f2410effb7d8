package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompositeKey_TypedTokens(t *testing.T) {
	fields := []string{"a"}

	t.Run("number and numeric string differ", func(t *testing.T) {
		assert.NotEqual(t,
			compositeKey(Record{"a": 1}, fields),
			compositeKey(Record{"a": "1"}, fields),
		)
	})

	t.Run("nil and the string null differ", func(t *testing.T) {
		assert.NotEqual(t,
			compositeKey(Record{"a": nil}, fields),
			compositeKey(Record{"a": "null"}, fields),
		)
	})

	t.Run("missing field equals nil value", func(t *testing.T) {
		assert.Equal(t,
			compositeKey(Record{}, fields),
			compositeKey(Record{"a": nil}, fields),
		)
	})

	t.Run("integral float folds onto int", func(t *testing.T) {
		assert.Equal(t,
			compositeKey(Record{"a": float64(7)}, fields),
			compositeKey(Record{"a": 7}, fields),
		)
		assert.NotEqual(t,
			compositeKey(Record{"a": 7.5}, fields),
			compositeKey(Record{"a": 7}, fields),
		)
	})

	t.Run("bool and int differ", func(t *testing.T) {
		assert.NotEqual(t,
			compositeKey(Record{"a": true}, fields),
			compositeKey(Record{"a": 1}, fields),
		)
	})
}

// TestCompositeKey_DelimiterCollision checks that shifting content between
// adjacent key fields always changes the key, even when a value contains the
// separator byte itself.
func TestCompositeKey_DelimiterCollision(t *testing.T) {
	fields := []string{"a", "b"}

	k1 := compositeKey(Record{"a": "x\x1fy", "b": "z"}, fields)
	k2 := compositeKey(Record{"a": "x", "b": "y\x1fz"}, fields)
	assert.NotEqual(t, k1, k2)

	k3 := compositeKey(Record{"a": "ab", "b": "c"}, fields)
	k4 := compositeKey(Record{"a": "a", "b": "bc"}, fields)
	assert.NotEqual(t, k3, k4)
}

func TestCompositeKey_FieldOrderMatters(t *testing.T) {
	row := Record{"a": "x", "b": "y"}
	assert.NotEqual(t,
		compositeKey(row, []string{"a", "b"}),
		compositeKey(row, []string{"b", "a"}),
	)
}

func TestCompositeKey_Time(t *testing.T) {
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("plus2", 2*3600))

	// Same instant in different zones produces the same key.
	assert.Equal(t,
		compositeKey(Record{"a": utc}, []string{"a"}),
		compositeKey(Record{"a": shifted}, []string{"a"}),
	)
}

// TestCompositeKey_EmptyKeyFields documents the degenerate configuration:
// with no key fields every record shares the empty key.
func TestCompositeKey_EmptyKeyFields(t *testing.T) {
	assert.Equal(t,
		compositeKey(Record{"a": 1}, nil),
		compositeKey(Record{"b": "other"}, nil),
	)
}
