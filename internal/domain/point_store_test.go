package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestPointStoreDomain(t *testing.T, dispatcher *testutil.MockDispatcher) (*pointStoreDomain, ledger.Ledger) {
	l := newTestLedger(t)
	return NewPointStoreDomain(repository.NewRewardRepository(), repository.NewPointsRepository(), l, dispatcher), l
}

func Test_pointStoreDomain_AddReward(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.AddRewardRequest
		wantErr errorx.Code
	}{
		{
			name: "happy case",
			req:  &model.AddRewardRequest{Name: "Bond", Cost: 500, Description: "One old school bond"},
		},
		{
			name: "with role",
			req:  &model.AddRewardRequest{Name: "Veteran", Cost: 1000, RoleID: 2002},
		},
		{
			name:    "empty name",
			req:     &model.AddRewardRequest{Name: "  ", Cost: 500},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "zero cost",
			req:     &model.AddRewardRequest{Name: "Free lunch"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "negative cost",
			req:     &model.AddRewardRequest{Name: "Refund", Cost: -5},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			d, _ := newTestPointStoreDomain(t, &testutil.MockDispatcher{})

			got, err := d.AddReward(ctx, tt.req)
			if tt.wantErr != 0 {
				requireCode(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotZero(t, got.Reward.ID)
			require.Equal(t, tt.req.Name, got.Reward.Name)
			require.Equal(t, tt.req.Cost, got.Reward.Cost)
			if tt.req.RoleID != 0 {
				require.Equal(t, tt.req.RoleID, *got.Reward.RoleID)
			} else {
				require.Nil(t, got.Reward.RoleID)
			}
		})
	}
}

func Test_pointStoreDomain_Catalogue(t *testing.T) {
	ctx := testutil.MockContext()
	d, _ := newTestPointStoreDomain(t, &testutil.MockDispatcher{})

	_, err := d.AddReward(ctx, &model.AddRewardRequest{Name: "Veteran", Cost: 1000, RoleID: 2002})
	require.NoError(t, err)
	_, err = d.AddReward(ctx, &model.AddRewardRequest{Name: "Bond", Cost: 500})
	require.NoError(t, err)

	// Names are unique regardless of case.
	_, err = d.AddReward(ctx, &model.AddRewardRequest{Name: "bond", Cost: 600})
	requireCode(t, err, errorx.AlreadyExists)

	rewards, err := d.GetRewards(ctx, &model.GetRewardsRequest{})
	require.NoError(t, err)
	require.Len(t, rewards.Rewards, 2)
	require.Equal(t, "Bond", rewards.Rewards[0].Name)
	require.Equal(t, "Veteran", rewards.Rewards[1].Name)

	_, err = d.RemoveReward(ctx, &model.RemoveRewardRequest{Name: "BOND"})
	require.NoError(t, err)

	_, err = d.RemoveReward(ctx, &model.RemoveRewardRequest{Name: "Bond"})
	requireCode(t, err, errorx.NotFound)

	rewards, err = d.GetRewards(ctx, &model.GetRewardsRequest{})
	require.NoError(t, err)
	require.Len(t, rewards.Rewards, 1)
	require.Equal(t, "Veteran", rewards.Rewards[0].Name)
}

func Test_pointStoreDomain_Redeem(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := &testutil.MockDispatcher{}
	d, l := newTestPointStoreDomain(t, dispatcher)

	_, err := d.AddReward(ctx, &model.AddRewardRequest{Name: "Bond", Cost: 500})
	require.NoError(t, err)
	_, err = d.AddReward(ctx, &model.AddRewardRequest{Name: "Veteran", Cost: 300, RoleID: 2002})
	require.NoError(t, err)

	_, err = l.Award(ctx, 61, 900, "Clan event")
	require.NoError(t, err)

	got, err := d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "bond"})
	require.NoError(t, err)
	require.Equal(t, "Bond", got.Reward.Name)
	require.Equal(t, int64(400), got.Balance)
	require.False(t, got.RoleGranted)
	require.Empty(t, dispatcher.Granted)

	got, err = d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "Veteran"})
	require.NoError(t, err)
	require.Equal(t, int64(100), got.Balance)
	require.True(t, got.RoleGranted)
	require.Equal(t, [][2]int64{{61, 2002}}, dispatcher.Granted)

	// Not enough points left, nothing is spent.
	_, err = d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "Bond"})
	requireCode(t, err, errorx.InsufficientPoints)

	balance, err := l.Balance(ctx, 61)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	// A member without an account has no points.
	_, err = d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 62, Name: "Bond"})
	requireCode(t, err, errorx.InsufficientPoints)

	_, err = d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "Dragon Claws"})
	requireCode(t, err, errorx.NotFound)

	_, err = d.Redeem(ctx, &model.RedeemRewardRequest{Name: "Bond"})
	requireCode(t, err, errorx.BadRequest)

	redemptions, err := d.GetRedemptions(ctx, &model.GetRedemptionsRequest{UserID: 61})
	require.NoError(t, err)
	require.Len(t, redemptions.Redemptions, 2)

	names := []string{}
	for _, r := range redemptions.Redemptions {
		names = append(names, r.RewardName)
	}
	require.ElementsMatch(t, []string{"Bond", "Veteran"}, names)

	_, err = d.GetRedemptions(ctx, &model.GetRedemptionsRequest{UserID: 61, Limit: 101})
	requireCode(t, err, errorx.BadRequest)
}

func Test_pointStoreDomain_RedeemRoleFailure(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := &testutil.MockDispatcher{
		GrantRoleFunc: func(context.Context, int64, int64) error {
			return errors.New("missing permissions")
		},
	}
	d, l := newTestPointStoreDomain(t, dispatcher)

	_, err := d.AddReward(ctx, &model.AddRewardRequest{Name: "Veteran", Cost: 300, RoleID: 2002})
	require.NoError(t, err)
	_, err = l.Award(ctx, 61, 300, "Clan event")
	require.NoError(t, err)

	// The redemption stands even if the role cannot be granted.
	got, err := d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "Veteran"})
	require.NoError(t, err)
	require.False(t, got.RoleGranted)
	require.Zero(t, got.Balance)

	redemptions, err := d.GetRedemptions(ctx, &model.GetRedemptionsRequest{UserID: 61})
	require.NoError(t, err)
	require.Len(t, redemptions.Redemptions, 1)
}

func Test_pointStoreDomain_ConcurrentRedeem(t *testing.T) {
	ctx := testutil.MockContext()
	d, l := newTestPointStoreDomain(t, &testutil.MockDispatcher{})

	_, err := d.AddReward(ctx, &model.AddRewardRequest{Name: "Bond", Cost: 500})
	require.NoError(t, err)
	_, err = l.Award(ctx, 61, 700, "Clan event")
	require.NoError(t, err)

	errs := make([]error, 3)
	wg := sync.WaitGroup{}
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Redeem(ctx, &model.RedeemRewardRequest{UserID: 61, Name: "Bond"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, errorx.InsufficientPoints)
	}
	require.Equal(t, 1, succeeded)

	balance, err := l.Balance(ctx, 61)
	require.NoError(t, err)
	require.Equal(t, int64(200), balance)
}
