package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

// Player names are 1 to 12 letters, digits, spaces, hyphens or underscores.
var playerNameRegex = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,12}$`)

type UserLinkDomain interface {
	Link(context.Context, *model.LinkUserRequest) (*model.LinkUserResponse, error)
	Get(context.Context, *model.GetUserLinkRequest) (*model.GetUserLinkResponse, error)
}

type userLinkDomain struct {
	userLinkRepo repository.UserLinkRepository
}

func NewUserLinkDomain(userLinkRepo repository.UserLinkRepository) *userLinkDomain {
	return &userLinkDomain{userLinkRepo: userLinkRepo}
}

func (d *userLinkDomain) Link(
	ctx context.Context, req *model.LinkUserRequest,
) (*model.LinkUserResponse, error) {
	if req.DiscordID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty discord id")
	}

	name := strings.TrimSpace(req.ExternalName)
	if !playerNameRegex.MatchString(name) {
		return nil, errorx.New(errorx.BadRequest, "Invalid player name")
	}

	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		existing, err := d.userLinkRepo.GetByExternalName(ctx, name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user link: %v", err)
			return errorx.Unknown
		}

		if err == nil && existing.DiscordID != req.DiscordID {
			return errorx.New(errorx.AlreadyExists, "%s is already linked to another member", name)
		}

		if err := d.userLinkRepo.Upsert(ctx, &entity.UserLink{
			DiscordID:    req.DiscordID,
			ExternalName: name,
		}); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot link user: %v", err)
			return errorx.Unknown
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.LinkUserResponse{}, nil
}

func (d *userLinkDomain) Get(
	ctx context.Context, req *model.GetUserLinkRequest,
) (*model.GetUserLinkResponse, error) {
	link, err := d.userLinkRepo.GetByDiscordID(ctx, req.DiscordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user link")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user link: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUserLinkResponse{ExternalName: link.ExternalName}, nil
}
