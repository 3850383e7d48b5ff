package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x String);

-- second
CREATE TABLE b (y String);
`
	stmts := splitStatements(input)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x String)", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String)", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'a''b'; SELECT 1;`))
	assert.ErrorIs(t, validateNoSemicolonInStrings(`SELECT 'a;b'`), errSemicolonInString)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, tc := range []struct {
		dir   string
		files func() ([]string, error)
	}{
		{"postgres", func() ([]string, error) { return sqlFiles(PostgresFS, "postgres") }},
		{"clickhouse", func() ([]string, error) { return sqlFiles(ClickhouseFS, "clickhouse") }},
		{"sqlite", func() ([]string, error) { return sqlFiles(SQLiteFS, "sqlite") }},
	} {
		files, err := tc.files()
		require.NoError(t, err, tc.dir)
		assert.NotEmpty(t, files, tc.dir)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/catalog")
	require.NoError(t, err)
	assert.Equal(t, "catalog", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
