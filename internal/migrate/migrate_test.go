package migrate

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/calendar/migrations"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	require.Equal(t, "00001_create_events.sql", files[0])
}

func TestGooseLogger_DoesNotExit(t *testing.T) {
	l := gooseLogger{s: zaptest.NewLogger(t).Sugar()}
	l.Printf("applied %d", 1)
	l.Fatalf("failed %s", "x")
}
