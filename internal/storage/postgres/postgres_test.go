package postgres

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/session"
)

func TestNew_DefersConnection(t *testing.T) {
	dbm := database.NewManager(zerolog.Nop())
	b := New(dbm, cache.NewVehicleCache(), cache.NewDriftRunCache(), logging.NewSlogManager(), session.NewContext())
	require.NotNil(t, b)
	require.NotNil(t, b.Backend)
	require.Nil(t, b.deps.DB)
	require.Same(t, dbm, b.dbm)
}

func TestNew_NilManagerGetsPrivateOne(t *testing.T) {
	b := New(nil, cache.NewVehicleCache(), cache.NewDriftRunCache(), logging.NewSlogManager(), session.NewContext())
	require.NotNil(t, b.dbm)
}
