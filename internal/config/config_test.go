package config_test

import (
	"testing"
	"time"

	"github.com/ark-network/counter/internal/config"
	"github.com/ark-network/counter/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		datadir := t.TempDir()
		t.Setenv("COUNTER_DATADIR", datadir)

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.Equal(t, datadir, cfg.Datadir)
		require.Equal(t, uint32(config.DefaultPort), cfg.Port)
		require.Equal(t, "badger", cfg.DbType)
		require.Equal(t, "watermill", cfg.EventDbType)
		require.Equal(t, "inmemory", cfg.EscrowType)
		require.Equal(t, "local", cfg.OracleType)
		require.Equal(t, 2*time.Second, cfg.OracleFulfillDelay)
		require.True(t, cfg.OracleAutoSettle)
		require.Equal(t, domain.DefaultProgramID, cfg.ProgramID)
		require.NotEmpty(t, cfg.DbDir)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("COUNTER_DATADIR", t.TempDir())
		t.Setenv("COUNTER_PORT", "9000")
		t.Setenv("COUNTER_DB_TYPE", "sqlite")
		t.Setenv("COUNTER_ESCROW_INITIAL_FUNDING", "500000")
		t.Setenv("COUNTER_ORACLE_FULFILL_DELAY", "100ms")
		t.Setenv("COUNTER_ORACLE_AUTO_SETTLE", "false")
		t.Setenv("COUNTER_STALE_ROUND_THRESHOLD", "60")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		require.Equal(t, uint32(9000), cfg.Port)
		require.Equal(t, "sqlite", cfg.DbType)
		require.Equal(t, uint64(500_000), cfg.InitialFunding)
		require.Equal(t, 100*time.Millisecond, cfg.OracleFulfillDelay)
		require.False(t, cfg.OracleAutoSettle)
		require.Equal(t, int64(60), cfg.StaleRoundThreshold)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			env         map[string]string
			expectedErr string
		}{
			{
				env:         map[string]string{"COUNTER_ESCROW_TYPE": "redis"},
				expectedErr: "REDIS_URL not provided",
			},
			{
				env:         map[string]string{"COUNTER_PROGRAM_ID": "0OIl"},
				expectedErr: "invalid program id",
			},
			{
				env:         map[string]string{"COUNTER_LOG_LEVEL": "7"},
				expectedErr: "invalid log level",
			},
			{
				env:         map[string]string{"COUNTER_STALE_CHECK_INTERVAL": "-1"},
				expectedErr: "invalid stale check interval",
			},
		}

		for _, f := range fixtures {
			f := f
			t.Run(f.expectedErr, func(t *testing.T) {
				t.Setenv("COUNTER_DATADIR", t.TempDir())
				for k, v := range f.env {
					t.Setenv(k, v)
				}

				cfg, err := config.LoadConfig()
				require.ErrorContains(t, err, f.expectedErr)
				require.Nil(t, cfg)
			})
		}
	})
}
