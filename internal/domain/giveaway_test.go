package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/customid"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

const giveawayChannel int64 = 3001

func newTestGiveawayDomain(t *testing.T, dispatcher *testutil.MockDispatcher) *giveawayDomain {
	return NewGiveawayDomain(repository.NewGiveawayRepository(), newTestWriter(t), dispatcher, nil)
}

func Test_giveawayDomain_Create(t *testing.T) {
	tests := []struct {
		name     string
		req      *model.CreateGiveawayRequest
		postFail bool
		wantErr  errorx.Code
	}{
		{
			name: "happy case",
			req: &model.CreateGiveawayRequest{
				Prize: "Bond", Duration: "2h", WinnerCount: 2, ChannelID: giveawayChannel, HostID: 9, RoleID: 77,
			},
		},
		{
			name: "default winner count",
			req:  &model.CreateGiveawayRequest{Prize: "Bond", Duration: "2h", ChannelID: giveawayChannel},
		},
		{
			name:    "too many winners",
			req:     &model.CreateGiveawayRequest{Prize: "Bond", Duration: "2h", WinnerCount: 21, ChannelID: giveawayChannel},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "missing channel",
			req:     &model.CreateGiveawayRequest{Prize: "Bond", Duration: "2h"},
			wantErr: errorx.BadRequest,
		},
		{
			name:     "announcement failure",
			req:      &model.CreateGiveawayRequest{Prize: "Bond", Duration: "2h", ChannelID: giveawayChannel},
			postFail: true,
			wantErr:  errorx.Unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			dispatcher := &testutil.MockDispatcher{}
			if tt.postFail {
				dispatcher.PostAnnouncementFunc = func(context.Context, int64, model.Announcement) (int64, error) {
					return 0, errors.New("discord is down")
				}
			}

			d := newTestGiveawayDomain(t, dispatcher)
			got, err := d.Create(ctx, tt.req)
			if tt.wantErr != 0 {
				requireCode(t, err, tt.wantErr)
				if tt.postFail {
					var count int64
					require.NoError(t, xcontext.DB(ctx).Model(&entity.Giveaway{}).Count(&count).Error)
					require.Zero(t, count)
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, string(entity.GiveawayActive), got.Giveaway.Phase)

			posted := dispatcher.PostedTo(giveawayChannel)
			require.Len(t, posted, 1)
			require.Equal(t, posted[0].MessageID, got.Giveaway.MessageID)
			require.Equal(t, lifecycle.EntriesField, posted[0].Announcement.Fields[len(posted[0].Announcement.Fields)-1].Name)

			require.Len(t, dispatcher.Edited, 1)
			require.Equal(t, got.Giveaway.MessageID, dispatcher.Edited[0].MessageID)
			require.Equal(t,
				customid.New(lifecycle.KindGiveaway, ActionEnter, got.Giveaway.MessageID).String(),
				dispatcher.Edited[0].Announcement.Buttons[0].CustomID)

			giveaway, err := repository.NewGiveawayRepository().GetByMessageID(ctx, got.Giveaway.MessageID)
			require.NoError(t, err)
			require.True(t, giveaway.IsActive)
			require.Equal(t, tt.req.RoleID != 0, giveaway.RoleID.Valid)
			require.Equal(t, max(tt.req.WinnerCount, 1), giveaway.WinnerCount)
		})
	}
}

func Test_giveawayDomain_Enter(t *testing.T) {
	ctx := testutil.MockContext()
	giveawayRepo := repository.NewGiveawayRepository()
	d := newTestGiveawayDomain(t, &testutil.MockDispatcher{})

	created, err := d.Create(ctx, &model.CreateGiveawayRequest{Prize: "Bond", Duration: "1d", ChannelID: giveawayChannel})
	require.NoError(t, err)
	messageID := created.Giveaway.MessageID

	resp, err := d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: messageID, UserID: 41})
	require.NoError(t, err)
	require.True(t, resp.Entered)

	resp, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: messageID, UserID: 41})
	require.NoError(t, err)
	require.False(t, resp.Entered)

	_, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: messageID, UserID: 42})
	require.NoError(t, err)

	entries, err := d.GetEntries(ctx, &model.GetGiveawayEntriesRequest{MessageID: messageID})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"41", "42"}, entries.UserIDs)
	require.Empty(t, entries.Winners)

	_, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: 1, UserID: 41})
	requireCode(t, err, errorx.NotFound)

	ended := &entity.Giveaway{
		MessageID:   555,
		ChannelID:   giveawayChannel,
		Prize:       "Old bond",
		EndsAt:      time.Now().UTC().Add(-time.Minute),
		WinnerCount: 1,
		IsActive:    true,
	}
	require.NoError(t, giveawayRepo.Create(ctx, ended))

	_, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: 555, UserID: 41})
	requireCode(t, err, errorx.EventClosed)
}

func Test_giveawayDomain_Enter_AfterDraw(t *testing.T) {
	ctx := testutil.MockContext()
	giveawayRepo := repository.NewGiveawayRepository()
	d := newTestGiveawayDomain(t, &testutil.MockDispatcher{})

	created, err := d.Create(ctx, &model.CreateGiveawayRequest{Prize: "Bond", Duration: "1d", ChannelID: giveawayChannel})
	require.NoError(t, err)
	messageID := created.Giveaway.MessageID

	_, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: messageID, UserID: 41})
	require.NoError(t, err)

	// The draw closed the giveaway while its end time is still ahead.
	require.NoError(t, giveawayRepo.MarkDrawn(ctx, messageID))

	_, err = d.Enter(ctx, &model.EnterGiveawayRequest{MessageID: messageID, UserID: 42})
	requireCode(t, err, errorx.EventClosed)

	count, err := giveawayRepo.CountEntries(ctx, messageID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
