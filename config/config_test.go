package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.Scheduler.Interval)
	require.Equal(t, 3, cfg.Scheduler.Retry.Attempts)
	require.Equal(t, []int64{100, 50, 25}, cfg.Rewards.CompetitionPlaces)
	require.Equal(t, int64(50), cfg.Rewards.RafflePrize)
	require.Equal(t, 10, cfg.Rewards.RaffleSelfCap)
	require.Equal(t, "0 19 * * 0", cfg.Scheduler.RecapSchedule)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "taskmaster.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[scheduler]
interval = "1m"

[channels]
raffle = 42
`), 0o600))

	t.Setenv("RAFFLE_CHANNEL_ID", "77")
	t.Setenv("TASKMASTER_REWARDS_RAFFLEPRIZE", "75")
	t.Setenv("PORT", "9000")

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, time.Minute, cfg.Scheduler.Interval)
	require.Equal(t, int64(77), cfg.Channels.Raffle)
	require.Equal(t, int64(75), cfg.Rewards.RafflePrize)
	require.Equal(t, ":9000", cfg.API.Address)
}
