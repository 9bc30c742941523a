package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	Create(context.Context, *model.CreateRaffleRequest) (*model.CreateRaffleResponse, error)
	Enter(context.Context, *model.EnterRaffleRequest) (*model.EnterRaffleResponse, error)
	GiveTickets(context.Context, *model.GiveRaffleTicketsRequest) (*model.GiveRaffleTicketsResponse, error)
	GetTickets(context.Context, *model.GetRaffleTicketsRequest) (*model.GetRaffleTicketsResponse, error)
	Draw(context.Context, *model.DrawRaffleRequest) (*model.DrawRaffleResponse, error)
}

type raffleDomain struct {
	raffleRepo repository.RaffleRepository
	engine     lifecycle.Engine
	writer     announce.Writer
	dispatcher notify.Dispatcher
	prices     pricecache.Lookup
}

func NewRaffleDomain(
	raffleRepo repository.RaffleRepository,
	engine lifecycle.Engine,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
	prices pricecache.Lookup,
) *raffleDomain {
	return &raffleDomain{
		raffleRepo: raffleRepo,
		engine:     engine,
		writer:     writer,
		dispatcher: dispatcher,
		prices:     prices,
	}
}

func (d *raffleDomain) Create(
	ctx context.Context, req *model.CreateRaffleRequest,
) (*model.CreateRaffleResponse, error) {
	prize, err := checkPrize(req.Prize)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	endsAt, err := endTime(now, req.Duration)
	if err != nil {
		return nil, err
	}

	channelID := req.ChannelID
	if channelID == 0 {
		channelID = xcontext.Configs(ctx).Channels.Raffle
	}

	raffle := &entity.Raffle{
		Prize:     prize,
		EndsAt:    endsAt,
		ChannelID: channelID,
		CreatedBy: req.CreatedBy,
	}
	if err := d.raffleRepo.Create(ctx, raffle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return nil, errorx.Unknown
	}

	a := d.writer.Write(ctx, announce.RaffleStart, model.RaffleDetails{
		Prize:      prize,
		EndsAt:     announce.RelativeTime(endsAt),
		PrizeValue: pricecache.PrizeValue(d.prices, prize),
	})

	// The raffle is open even if the announcement cannot be posted.
	messageID, err := postAnnouncement(ctx, d.dispatcher, lifecycle.KindRaffle, channelID, a)
	if err == nil {
		if err := d.raffleRepo.UpdateMessage(ctx, raffle.ID, channelID, messageID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot save message of raffle %d: %v", raffle.ID, err)
		}
		raffle.MessageID = messageID
	}

	return &model.CreateRaffleResponse{Raffle: convertRaffle(raffle, now, d.prices)}, nil
}

func (d *raffleDomain) Enter(
	ctx context.Context, req *model.EnterRaffleRequest,
) (*model.EnterRaffleResponse, error) {
	if req.Tickets == 0 {
		req.Tickets = 1
	}

	tickets, err := d.addTickets(ctx, req.RaffleID, req.UserID, req.Tickets, entity.RaffleEntrySelf)
	if err != nil {
		return nil, err
	}

	return &model.EnterRaffleResponse{Tickets: tickets}, nil
}

func (d *raffleDomain) GiveTickets(
	ctx context.Context, req *model.GiveRaffleTicketsRequest,
) (*model.GiveRaffleTicketsResponse, error) {
	tickets, err := d.addTickets(ctx, req.RaffleID, req.UserID, req.Tickets, entity.RaffleEntryAdmin)
	if err != nil {
		return nil, err
	}

	return &model.GiveRaffleTicketsResponse{Tickets: tickets}, nil
}

// addTickets appends count entries of userID and returns how many entries of
// this source the user holds afterwards. Only self entries are capped.
func (d *raffleDomain) addTickets(
	ctx context.Context, raffleID, userID int64, count int, source entity.RaffleEntrySource,
) (int64, error) {
	if userID == 0 {
		return 0, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	if count <= 0 {
		return 0, errorx.New(errorx.BadRequest, "Number of tickets must be positive")
	}

	selfCap := int64(xcontext.Configs(ctx).Rewards.RaffleSelfCap)

	var total int64
	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		raffle, err := d.raffleRepo.GetByIDForUpdate(ctx, raffleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found raffle")
			}

			xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
			return errorx.Unknown
		}

		if raffle.Phase(time.Now()) != entity.RaffleOpen {
			return errorx.New(errorx.EventClosed, "The raffle for %s is closed", raffle.Prize)
		}

		held, err := d.raffleRepo.CountEntries(ctx, raffleID, userID, source)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count raffle entries: %v", err)
			return errorx.Unknown
		}

		if source == entity.RaffleEntrySelf && selfCap > 0 && held+int64(count) > selfCap {
			return errorx.New(errorx.EntryCapReached,
				"You can hold at most %d tickets, you already have %d", selfCap, held)
		}

		entries := make([]entity.RaffleEntry, 0, count)
		for i := 0; i < count; i++ {
			entries = append(entries, entity.RaffleEntry{RaffleID: raffleID, UserID: userID, Source: source})
		}

		if err := d.raffleRepo.CreateEntries(ctx, entries); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create raffle entries: %v", err)
			return errorx.Unknown
		}

		total = held + int64(count)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (d *raffleDomain) GetTickets(
	ctx context.Context, req *model.GetRaffleTicketsRequest,
) (*model.GetRaffleTicketsResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	tickets, err := d.raffleRepo.GetTickets(ctx, req.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle tickets: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetRaffleTicketsResponse{
		Raffle:  convertRaffle(raffle, time.Now(), d.prices),
		Tickets: []model.RaffleTickets{},
	}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, model.RaffleTickets{UserID: t.UserID, Tickets: t.Tickets})
	}

	return resp, nil
}

// Draw closes the raffle now and draws it without waiting for the scheduler.
func (d *raffleDomain) Draw(
	ctx context.Context, req *model.DrawRaffleRequest,
) (*model.DrawRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now().UTC().Truncate(time.Second)
	if !raffle.WinnerID.Valid && now.Before(raffle.EndsAt) {
		err := d.raffleRepo.CloseNow(ctx, raffle.ID, now)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot close raffle: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := d.engine.DrawRaffle(ctx, raffle.ID); err != nil {
		// A committed draw is announced by a later tick.
		xcontext.Logger(ctx).Warnf("Cannot complete the draw of raffle %d: %v", raffle.ID, err)
	}

	raffle, err = d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if !raffle.WinnerID.Valid {
		return nil, errorx.New(errorx.Unavailable, "Cannot draw the raffle now, try again later")
	}

	return &model.DrawRaffleResponse{Raffle: convertRaffle(raffle, now, d.prices)}, nil
}
