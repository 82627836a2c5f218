package main

import (
	"bytes"
	"testing"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(config.Config{DBURL: "postgres://x@localhost/db"})

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", down.Name())
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)

	seed, _, err := root.Find([]string{"seed-admin"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("email"))

	assert.Equal(t, "postgres://x@localhost/db", root.PersistentFlags().Lookup("db-url").DefValue)
}

func TestSeedAdminRequiresCredentials(t *testing.T) {
	root := newRootCmd(config.Config{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"seed-admin"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin email and password are required")
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	root := newRootCmd(config.Config{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "down", "--steps", "0"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps must be positive")
}
