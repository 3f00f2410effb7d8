package mirror

import (
	"context"
	"io"
	"strings"
	"testing"

	"data-mirror/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mockDB
}

func testConfig() Config {
	return Config{
		SourceObject: "datasets/people.json",
		DestTable:    "people_dest",
		RulesObject:  "mirror/rules.json",
	}
}

// expectDestSchema registers the SHOW COLUMNS expectation used by rule
// validation.
func expectDestSchema(mockDB sqlmock.Sqlmock, columns ...string) {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, col := range columns {
		rows.AddRow(col, "varchar(255)", "YES", "", nil, "")
	}
	mockDB.ExpectQuery("SHOW COLUMNS FROM `people_dest`").WillReturnRows(rows)
}

func newTestClient(rulesBody, sourceBody string) *mocks.Client {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "mirror", "mirror/rules.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(rulesBody)), nil)
	if sourceBody != "" {
		client.On("GetObject", mock.Anything, "mirror", "datasets/people.json", mock.Anything).
			Return(io.NopCloser(strings.NewReader(sourceBody)), nil)
	}
	return client
}

const testRules = `{"rules": [
	{"dest": "id", "source": "id", "key": true},
	{"dest": "full_name", "template": "{first} {last}"}
]}`

const testSource = `[
	{"id": 1, "first": "Ada", "last": "Lovelace"},
	{"id": 2, "first": "Grace", "last": "Hopper"}
]`

func TestServicePlan(t *testing.T) {
	db, mockDB := setupMockDB(t)
	client := newTestClient(testRules, testSource)

	expectDestSchema(mockDB, "id", "full_name")

	destRows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow(2, []byte("Wrong Name")).
		AddRow(3, []byte("Gone Person"))
	mockDB.ExpectQuery("SELECT \\* FROM `people_dest`").WillReturnRows(destRows)

	svc := NewService(db, client, "mirror", testConfig(), zap.NewNop())

	changes, err := svc.Plan(context.Background())
	require.NoError(t, err)

	// id 1 is new, id 2 has a wrong name, id 3 is gone from the source.
	assert.Equal(t, 1, changes.Summary.Inserted)
	assert.Equal(t, 1, changes.Summary.Updated)
	assert.Equal(t, 1, changes.Summary.Deleted)
	assert.Equal(t, 0, changes.Summary.Unchanged)

	require.Len(t, changes.Inserted, 1)
	assert.Equal(t, "Ada Lovelace", changes.Inserted[0].Row["full_name"])

	require.Len(t, changes.Updated, 1)
	require.Len(t, changes.Updated[0].Deltas, 1)
	assert.Equal(t, "full_name", changes.Updated[0].Deltas[0].Field)
	assert.Equal(t, "Grace Hopper", changes.Updated[0].Deltas[0].New)

	client.AssertExpectations(t)
}

func TestServicePlanUnknownDestColumn(t *testing.T) {
	db, mockDB := setupMockDB(t)
	client := newTestClient(testRules, "")

	// Table only has id, full_name is missing.
	expectDestSchema(mockDB, "id")

	svc := NewService(db, client, "mirror", testConfig(), zap.NewNop())

	_, err := svc.Plan(context.Background())
	assert.ErrorContains(t, err, `dest column "full_name" does not exist`)
}

func TestServicePlanRequiresDatabase(t *testing.T) {
	svc := NewService(nil, new(mocks.Client), "mirror", testConfig(), zap.NewNop())

	_, err := svc.Plan(context.Background())
	assert.ErrorContains(t, err, "requires a database connection")
}

func TestServiceApplyRequiresConfirmation(t *testing.T) {
	svc := NewService(nil, new(mocks.Client), "mirror", testConfig(), zap.NewNop())

	_, _, err := svc.Apply(context.Background(), ApplyOptions{})
	assert.ErrorContains(t, err, "requires confirmation")
}

func TestServiceApplyDryRun(t *testing.T) {
	db, mockDB := setupMockDB(t)
	client := newTestClient(testRules, testSource)

	expectDestSchema(mockDB, "id", "full_name")

	destRows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow(1, []byte("Ada Lovelace"))
	mockDB.ExpectQuery("SELECT \\* FROM `people_dest`").WillReturnRows(destRows)

	svc := NewService(db, client, "mirror", testConfig(), zap.NewNop())

	changes, result, err := svc.Apply(context.Background(), ApplyOptions{DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, changes)

	// Dry-run never executes callbacks, so there is no sync result.
	assert.Nil(t, result)
	assert.Equal(t, 1, changes.Summary.Inserted)
	assert.Equal(t, 1, changes.Summary.Unchanged)
}

func TestServiceApply(t *testing.T) {
	db, mockDB := setupMockDB(t)
	client := newTestClient(testRules, testSource)

	expectDestSchema(mockDB, "id", "full_name")

	destRows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow(2, []byte("Wrong Name")).
		AddRow(3, []byte("Gone Person"))
	mockDB.ExpectQuery("SELECT \\* FROM `people_dest`").WillReturnRows(destRows)

	// One insert, one delete and one update run concurrently, so the
	// per-category expectations cannot be ordered.
	mockDB.MatchExpectationsInOrder(false)
	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO `people_dest`").WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectBegin()
	mockDB.ExpectExec("DELETE FROM `people_dest`").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE `people_dest`").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	svc := NewService(db, client, "mirror", testConfig(), zap.NewNop())

	changes, result, err := svc.Apply(context.Background(), ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, changes.Summary.Inserted)
	require.Len(t, result.Inserts, 1)
	require.Len(t, result.Deletes, 1)
	require.Len(t, result.Updates, 1)
	assert.Equal(t, int64(1), result.Inserts[0])
}
