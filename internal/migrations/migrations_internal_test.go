package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@db:5432/taskdesk", want: "pgx5://u:p@db:5432/taskdesk"},
		{in: "postgresql://u:p@db/taskdesk?sslmode=disable", want: "pgx5://u:p@db/taskdesk?sslmode=disable"},
		{in: "pgx5://db/taskdesk", want: "pgx5://db/taskdesk"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, driverURL(tt.in))
		})
	}
}

func TestEmbeddedFilesArePaired(t *testing.T) {
	ups, err := fs.Glob(files, "sql/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(files, "sql/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
