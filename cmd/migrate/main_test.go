package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/logging"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	target  uint
	forced  int
	version uint
	err     error
}

func (f *fakeMigrator) Up() error { f.calls = append(f.calls, "up"); return f.err }

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}

func (f *fakeMigrator) Migrate(v uint) error {
	f.calls = append(f.calls, "migrate")
	f.target = v
	return f.err
}

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	if f.version == 0 {
		return 0, false, migrate.ErrNilVersion
	}
	return f.version, false, nil
}

func TestRunCommand(t *testing.T) {
	log := logging.NewNop()

	m := &fakeMigrator{err: migrate.ErrNoChange}
	require.NoError(t, runCommand(m, "up", nil, log))

	m = &fakeMigrator{}
	require.NoError(t, runCommand(m, "down", nil, log))
	assert.Equal(t, -1, m.steps)
	require.NoError(t, runCommand(m, "down", []string{"3"}, log))
	assert.Equal(t, -3, m.steps)
	assert.Error(t, runCommand(m, "down", []string{"0"}, log))

	require.NoError(t, runCommand(m, "goto", []string{"1"}, log))
	assert.Equal(t, uint(1), m.target)
	require.NoError(t, runCommand(m, "force", []string{"-1"}, log))
	assert.Equal(t, -1, m.forced)
	assert.Error(t, runCommand(m, "force", nil, log))

	require.NoError(t, runCommand(&fakeMigrator{}, "version", nil, log))
	require.NoError(t, runCommand(&fakeMigrator{version: 1}, "version", nil, log))

	assert.True(t, errors.Is(runCommand(m, "sideways", nil, log), errUsage))

	failing := &fakeMigrator{err: errors.New("dirty database")}
	assert.EqualError(t, runCommand(failing, "up", nil, log), "dirty database")
}
