package dateutil

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30m", want: 30 * time.Minute},
		{in: "4 h", want: 4 * time.Hour},
		{in: "7D", want: 7 * 24 * time.Hour},
		{in: "0m", wantErr: true},
		{in: "10s", wantErr: true},
		{in: "", wantErr: true},
		{in: "366d", want: MaxDuration},
		{in: "367d", wantErr: true},
		{in: "200000d", wantErr: true},
		{in: "9999999999999h", wantErr: true},
		{in: "99999999999999999999m", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDuration(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPreviousOccurrence(t *testing.T) {
	schedule, err := cron.ParseStandard("0 19 * * 0")
	require.NoError(t, err)

	// Wednesday 2024-05-15.
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	got, ok := PreviousOccurrence(schedule, now, 8*24*time.Hour)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 5, 12, 19, 0, 0, 0, time.UTC), got)

	// Exactly at the activation time.
	now = time.Date(2024, 5, 19, 19, 0, 0, 0, time.UTC)
	got, ok = PreviousOccurrence(schedule, now, 8*24*time.Hour)
	require.True(t, ok)
	require.Equal(t, now, got)

	_, ok = PreviousOccurrence(schedule, now.Add(-time.Minute), time.Hour)
	require.False(t, ok)
}
