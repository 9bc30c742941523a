package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/customid"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	ActionEnter  = "enter"
	ActionSignup = "signup"
	ActionLeave  = "leave"

	maxGiveawayWinners = 20
)

type GiveawayDomain interface {
	Create(context.Context, *model.CreateGiveawayRequest) (*model.CreateGiveawayResponse, error)
	Enter(context.Context, *model.EnterGiveawayRequest) (*model.EnterGiveawayResponse, error)
	GetEntries(context.Context, *model.GetGiveawayEntriesRequest) (*model.GetGiveawayEntriesResponse, error)
}

type giveawayDomain struct {
	giveawayRepo repository.GiveawayRepository
	writer       announce.Writer
	dispatcher   notify.Dispatcher
	prices       pricecache.Lookup
}

func NewGiveawayDomain(
	giveawayRepo repository.GiveawayRepository,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
	prices pricecache.Lookup,
) *giveawayDomain {
	return &giveawayDomain{
		giveawayRepo: giveawayRepo,
		writer:       writer,
		dispatcher:   dispatcher,
		prices:       prices,
	}
}

// Create posts the giveaway announcement first, a giveaway is identified by
// the id of this message.
func (d *giveawayDomain) Create(
	ctx context.Context, req *model.CreateGiveawayRequest,
) (*model.CreateGiveawayResponse, error) {
	prize, err := checkPrize(req.Prize)
	if err != nil {
		return nil, err
	}

	if req.WinnerCount == 0 {
		req.WinnerCount = 1
	}

	if req.WinnerCount < 0 || req.WinnerCount > maxGiveawayWinners {
		return nil, errorx.New(errorx.BadRequest, "Number of winners must be between 1 and %d", maxGiveawayWinners)
	}

	if req.ChannelID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty channel id")
	}

	now := time.Now().UTC()
	endsAt, err := endTime(now, req.Duration)
	if err != nil {
		return nil, err
	}

	details := model.GiveawayDetails{
		Prize:       prize,
		EndsAt:      announce.RelativeTime(endsAt),
		WinnerCount: req.WinnerCount,
		PrizeValue:  pricecache.PrizeValue(d.prices, prize),
	}
	if req.HostID != 0 {
		details.Host = announce.UserMention(req.HostID)
	}

	a := d.writer.Write(ctx, announce.GiveawayStart, details)
	a.Fields = append(a.Fields, model.AnnouncementField{Name: lifecycle.EntriesField, Value: "0", Inline: true})

	messageID, err := postAnnouncement(ctx, d.dispatcher, lifecycle.KindGiveaway, req.ChannelID, a)
	if err != nil {
		return nil, errorx.New(errorx.Unavailable, "Cannot post the giveaway announcement")
	}

	giveaway := &entity.Giveaway{
		MessageID:   messageID,
		ChannelID:   req.ChannelID,
		HostID:      req.HostID,
		Prize:       prize,
		EndsAt:      endsAt,
		WinnerCount: req.WinnerCount,
		RoleID:      sql.NullInt64{Int64: req.RoleID, Valid: req.RoleID != 0},
		IsActive:    true,
	}
	if err := d.giveawayRepo.Create(ctx, giveaway); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create giveaway: %v", err)
		return nil, errorx.Unknown
	}

	// The button can only carry the message id once the message exists.
	a.Buttons = []model.AnnouncementButton{{
		Label:    "Enter",
		CustomID: customid.New(lifecycle.KindGiveaway, ActionEnter, messageID).String(),
	}}
	if err := d.dispatcher.EditAnnouncement(ctx, req.ChannelID, messageID, a); err != nil {
		notificationFailed(ctx, lifecycle.KindGiveaway, err)
	}

	return &model.CreateGiveawayResponse{Giveaway: convertGiveaway(giveaway, now)}, nil
}

func (d *giveawayDomain) Enter(
	ctx context.Context, req *model.EnterGiveawayRequest,
) (*model.EnterGiveawayResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	var created bool
	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		giveaway, err := d.giveawayRepo.GetByMessageIDForUpdate(ctx, req.MessageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found giveaway")
			}

			xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
			return errorx.Unknown
		}

		if giveaway.Phase(time.Now()) != entity.GiveawayActive {
			return errorx.New(errorx.EventClosed, "The giveaway for %s has ended", giveaway.Prize)
		}

		created, err = d.giveawayRepo.CreateEntry(ctx, &entity.GiveawayEntry{
			MessageID: req.MessageID,
			UserID:    req.UserID,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create giveaway entry: %v", err)
			return errorx.Unknown
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.EnterGiveawayResponse{Entered: created}, nil
}

func (d *giveawayDomain) GetEntries(
	ctx context.Context, req *model.GetGiveawayEntriesRequest,
) (*model.GetGiveawayEntriesResponse, error) {
	giveaway, err := d.giveawayRepo.GetByMessageID(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
		return nil, errorx.Unknown
	}

	entries, err := d.giveawayRepo.GetEntryUserIDs(ctx, req.MessageID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get giveaway entries: %v", err)
		return nil, errorx.Unknown
	}

	winners, err := d.giveawayRepo.GetWinnerUserIDs(ctx, req.MessageID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get giveaway winners: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetGiveawayEntriesResponse{
		Giveaway: convertGiveaway(giveaway, time.Now()),
		UserIDs:  formatIDs(entries),
		Winners:  formatIDs(winners),
	}, nil
}
