package domain

import (
	"testing"

	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_userLinkDomain_Link(t *testing.T) {
	ctx := testutil.MockContext()
	d := NewUserLinkDomain(repository.NewUserLinkRepository())

	tests := []struct {
		name    string
		req     *model.LinkUserRequest
		wantErr errorx.Code
	}{
		{
			name: "happy case",
			req:  &model.LinkUserRequest{DiscordID: 11, ExternalName: "Zezima"},
		},
		{
			name: "relink the same member",
			req:  &model.LinkUserRequest{DiscordID: 11, ExternalName: "zezima"},
		},
		{
			name:    "name of another member",
			req:     &model.LinkUserRequest{DiscordID: 12, ExternalName: "ZEZIMA"},
			wantErr: errorx.AlreadyExists,
		},
		{
			name:    "name too long",
			req:     &model.LinkUserRequest{DiscordID: 12, ExternalName: "ThirteenChars"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "empty discord id",
			req:     &model.LinkUserRequest{ExternalName: "Lynx Titan"},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Link(ctx, tt.req)
			if tt.wantErr != 0 {
				requireCode(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			got, err := d.Get(ctx, &model.GetUserLinkRequest{DiscordID: tt.req.DiscordID})
			require.NoError(t, err)
			require.Equal(t, tt.req.ExternalName, got.ExternalName)
		})
	}

	_, err := d.Get(ctx, &model.GetUserLinkRequest{DiscordID: 12})
	requireCode(t, err, errorx.NotFound)
}
