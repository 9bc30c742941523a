package xcontext_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()

	require.NotNil(t, xcontext.Logger(ctx))
	require.Equal(t, http.DefaultClient, xcontext.HTTPClient(ctx))
	require.Empty(t, xcontext.RequestID(ctx))
	require.Nil(t, xcontext.DB(ctx))

	ctx = xcontext.WithRequestID(ctx, "abc")
	require.Equal(t, "abc", xcontext.RequestID(ctx))
}

func countSettings(t *testing.T, ctx context.Context, name string) int64 {
	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.BotSetting{}).Where("name=?", name).Count(&count).Error)
	return count
}

func TestRunInDBTransaction(t *testing.T) {
	ctx := testutil.MockContext()

	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, xcontext.DB(ctx).Create(&entity.BotSetting{Name: "rolled_back", Value: "1"}).Error)
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	require.Zero(t, countSettings(t, ctx, "rolled_back"))

	err = xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		require.True(t, xcontext.HasDBTransaction(ctx))

		// A nested call joins the outer transaction.
		return xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
			return xcontext.DB(ctx).Create(&entity.BotSetting{Name: "committed", Value: "1"}).Error
		})
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), countSettings(t, ctx, "committed"))
	require.False(t, xcontext.HasDBTransaction(ctx))
}
