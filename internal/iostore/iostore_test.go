package iostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/schema"
)

func TestValidateTableName(t *testing.T) {
	valid := []string{"workspace_metrics_cache", "repositories", "_private", "Table1"}
	for _, name := range valid {
		assert.NoError(t, validateTableName(name), name)
	}

	invalid := []string{"", "1table", "bad-name", "with space", `drop;table`, `"quoted"`}
	for _, name := range invalid {
		assert.Error(t, validateTableName(name), name)
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`metrics`", quoteTableName("metrics", schema.MySQLBackend))
	assert.Equal(t, `"metrics"`, quoteTableName("metrics", schema.SQLiteBackend))
	assert.Equal(t, `"metrics"`, quoteTableName("metrics", schema.PostgreSQLBackend))
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ? AND b = ? AND c = ?"

	assert.Equal(t, query, rebind(schema.SQLiteBackend, query))
	assert.Equal(t, query, rebind(schema.MySQLBackend, query))
	assert.Equal(t,
		"SELECT * FROM t WHERE a = $1 AND b = $2 AND c = $3",
		rebind(schema.PostgreSQLBackend, query))
}

func TestBoolColumnType(t *testing.T) {
	assert.Equal(t, "TINYINT(1)", boolColumnType(schema.MySQLBackend))
	assert.Equal(t, "BOOLEAN", boolColumnType(schema.PostgreSQLBackend))
	assert.Equal(t, "INTEGER", boolColumnType(schema.SQLiteBackend))
}

func TestOpenDatabaseNoneBackend(t *testing.T) {
	db, err := openDatabase(schema.NoneBackend, "", "")
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestOpenDatabaseUnsupportedBackend(t *testing.T) {
	_, err := openDatabase(schema.DatabaseBackend("oracle"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database backend")
}
