package main

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDSN(t *testing.T) {
	t.Setenv(envDSN, "")
	assert.Equal(t, defaultDSN, resolveDSN(""))

	t.Setenv(envDSN, "postgres://env/db")
	assert.Equal(t, "postgres://env/db", resolveDSN(""))
	assert.Equal(t, "postgres://flag/db", resolveDSN("postgres://flag/db"))
}

func TestPgxURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h:5432/db":   "pgx5://u:p@h:5432/db",
		"postgresql://u:p@h:5432/db": "pgx5://u:p@h:5432/db",
		"pgx5://h/db":                "pgx5://h/db",
	}
	for in, want := range tests {
		assert.Equal(t, want, pgxURL(in), in)
	}
}

func TestParseSteps(t *testing.T) {
	n, err := parseSteps("-2")
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	for _, bad := range []string{"0", "two", ""} {
		_, err := parseSteps(bad)
		assert.Error(t, err, bad)
	}
}

func TestMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups[strings.TrimSuffix(n, ".up.sql")] = true
		case strings.HasSuffix(n, ".down.sql"):
			downs[strings.TrimSuffix(n, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"up", "down", "steps", "version", "force"})
	assert.NotNil(t, root.PersistentFlags().Lookup("dsn"))
}

func TestStepsRejectsZero(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"steps", "0"})
	root.SilenceErrors = true

	err := root.Execute()
	assert.ErrorContains(t, err, "invalid step count")
}
