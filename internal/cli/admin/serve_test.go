package admin

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationOutcome(t *testing.T) {
	tests := []struct {
		name       string
		upErr      error
		version    uint
		dirty      bool
		versionErr error
		wantLine   string
		wantErr    bool
	}{
		{
			name:     "applied",
			version:  1,
			wantLine: "migrations: applied successfully (version 1)",
		},
		{
			name:     "already current",
			upErr:    migrate.ErrNoChange,
			version:  1,
			wantLine: "migrations: database is up to date (version 1)",
		},
		{
			name:       "empty database",
			upErr:      migrate.ErrNoChange,
			versionErr: migrate.ErrNilVersion,
			wantLine:   "migrations: database is up to date (no migrations applied)",
		},
		{
			name:       "version lookup failure",
			versionErr: errors.New("connection lost"),
			wantErr:    true,
		},
		{
			name:    "dirty schema",
			version: 2,
			dirty:   true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := migrationOutcome(tt.upErr, tt.version, tt.dirty, tt.versionErr)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLine, line)
		})
	}
}
