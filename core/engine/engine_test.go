package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullName concatenates firstName and lastName from the source row.
func fullName(_ context.Context, row Record) (any, error) {
	return fmt.Sprintf("%v %v", row["firstName"], row["lastName"]), nil
}

func personMappings() []FieldMapping {
	return []FieldMapping{
		{Name: "id", Source: "id", Key: true},
		{Name: "FullName", Compute: fullName},
	}
}

// TestGetChanges_PersonScenario runs the canonical mirror scenario: three
// source people against three destination rows sharing only two ids.
func TestGetChanges_PersonScenario(t *testing.T) {
	eng, err := New(Options{
		Source: []Record{
			{"id": 1, "firstName": "John", "lastName": "Doe"},
			{"id": 2, "firstName": "Jane", "lastName": "Diana"},
			{"id": 4, "firstName": "Rid", "lastName": "Lomba"},
		},
		Destination: []Record{
			{"id": 1, "FullName": "John Doe"},
			{"id": 3, "FullName": "Doe Risko"},
			{"id": 4, "FullName": "Fids Almo"},
		},
		Mappings: personMappings(),
	})
	require.NoError(t, err)

	changes, err := eng.GetChanges(context.Background())
	require.NoError(t, err)

	require.Len(t, changes.Inserted, 1)
	assert.Equal(t, Record{"id": 2, "FullName": "Jane Diana"}, changes.Inserted[0].Row)
	assert.Nil(t, changes.Inserted[0].Overrides)

	require.Len(t, changes.Deleted, 1)
	assert.Equal(t, Record{"id": 3, "FullName": "Doe Risko"}, changes.Deleted[0])

	require.Len(t, changes.Updated, 1)
	assert.Equal(t, Record{"id": 4, "FullName": "Rid Lomba"}, changes.Updated[0].Row)
	require.Len(t, changes.Updated[0].Deltas, 1)
	assert.Equal(t, FieldDelta{Field: "FullName", Old: "Fids Almo", New: "Rid Lomba"}, changes.Updated[0].Deltas[0])

	assert.Equal(t, Summary{
		SourceRows:      3,
		DestinationRows: 3,
		Inserted:        1,
		Deleted:         1,
		Updated:         1,
		Unchanged:       1,
	}, changes.Summary)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		expectErr string
	}{
		{
			name:      "no mappings",
			opts:      Options{},
			expectErr: "at least one field mapping",
		},
		{
			name: "empty destination name",
			opts: Options{Mappings: []FieldMapping{
				{Source: "id"},
			}},
			expectErr: "empty destination name",
		},
		{
			name: "duplicate destination name",
			opts: Options{Mappings: []FieldMapping{
				{Name: "id", Source: "id"},
				{Name: "id", Source: "other"},
			}},
			expectErr: "duplicate destination field",
		},
		{
			name: "neither source nor compute",
			opts: Options{Mappings: []FieldMapping{
				{Name: "id"},
			}},
			expectErr: "exactly one of",
		},
		{
			name: "both source and compute",
			opts: Options{Mappings: []FieldMapping{
				{Name: "id", Source: "id", Compute: fullName},
			}},
			expectErr: "exactly one of",
		},
		{
			name: "unknown explicit key field",
			opts: Options{
				Mappings:  []FieldMapping{{Name: "id", Source: "id"}},
				KeyFields: []string{"missing"},
			},
			expectErr: "does not match any mapped destination field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

// TestNew_ExplicitKeyFields checks the flat-list form: mappings without Key
// flags plus a separate key name list.
func TestNew_ExplicitKeyFields(t *testing.T) {
	eng, err := New(Options{
		Mappings: []FieldMapping{
			{Name: "tenant", Source: "tenant"},
			{Name: "id", Source: "id"},
			{Name: "name", Source: "name"},
		},
		KeyFields: []string{"tenant", "id"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant", "id"}, eng.KeyFields())
}

func TestNew_DerivedKeyFields(t *testing.T) {
	eng, err := New(Options{Mappings: personMappings()})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, eng.KeyFields())
}
