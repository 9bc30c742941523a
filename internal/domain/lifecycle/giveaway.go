package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/questx-lab/taskmaster/pkg/xredis"
	"gorm.io/gorm"
)

const (
	EntriesField = "Entries"

	entryCountTTL = 30 * 24 * time.Hour
)

func (e *engine) ProcessGiveaways(ctx context.Context) error {
	now := e.now()
	due, err := e.giveawayRepo.GetDue(ctx, now)
	if err != nil {
		return err
	}

	forEachRow(ctx, KindGiveaway, due, e.settleGiveaway)

	running, err := e.giveawayRepo.GetRunning(ctx, now)
	if err != nil {
		return err
	}

	forEachRow(ctx, KindGiveaway, running, e.refreshEntryCount)
	return nil
}

func (e *engine) settleGiveaway(ctx context.Context, g entity.Giveaway) error {
	if g.IsActive {
		if err := e.drawGiveaway(ctx, g.MessageID); err != nil {
			return err
		}

		fresh, err := e.giveawayRepo.GetByMessageID(ctx, g.MessageID)
		if err != nil {
			return err
		}

		g = *fresh
	}

	if !g.Drawn || g.Announced {
		return nil
	}

	return e.announceGiveaway(ctx, g)
}

// drawGiveaway closes the giveaway and stores its winners in one
// transaction. The guard is flipped before the selection runs, so a giveaway
// is never drawn twice.
func (e *engine) drawGiveaway(ctx context.Context, messageID int64) error {
	var winners []int64
	var entries int

	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		if err := e.giveawayRepo.MarkDrawn(ctx, messageID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAlreadyClaimed
			}

			return err
		}

		giveaway, err := e.giveawayRepo.GetByMessageID(ctx, messageID)
		if err != nil {
			return err
		}

		pool, err := e.giveawayRepo.GetEntryUserIDs(ctx, messageID)
		if err != nil {
			return err
		}

		winners = e.chooser(pool, giveaway.WinnerCount)
		entries = len(pool)
		return e.giveawayRepo.CreateWinners(ctx, messageID, winners)
	})
	if errors.Is(err, errAlreadyClaimed) {
		return nil
	}

	if err != nil {
		return err
	}

	e.publish(ctx, KindGiveaway, messageID, "drawn", map[string]any{
		"winners": winners,
		"entries": entries,
	})

	return nil
}

func (e *engine) announceGiveaway(ctx context.Context, g entity.Giveaway) error {
	release, ok := e.claim(fmt.Sprintf("%s:%d:announce", KindGiveaway, g.MessageID))
	if !ok {
		return nil
	}
	defer release()

	fresh, err := e.giveawayRepo.GetByMessageID(ctx, g.MessageID)
	if err != nil {
		return err
	}

	if fresh.Announced {
		return nil
	}

	winners, err := e.giveawayRepo.GetWinnerUserIDs(ctx, g.MessageID)
	if err != nil {
		return err
	}

	if g.RoleID.Valid {
		for _, userID := range winners {
			if err := e.dispatcher.GrantRole(ctx, userID, g.RoleID.Int64); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot grant role %d to winner %d of giveaway %d: %v",
					g.RoleID.Int64, userID, g.MessageID, err)
				e.notificationFailed(ctx, KindGiveaway, err)
			}
		}
	}

	details := model.GiveawayDetails{
		Prize:       g.Prize,
		EndsAt:      announce.RelativeTime(g.EndsAt),
		WinnerCount: g.WinnerCount,
		PrizeValue:  pricecache.PrizeValue(e.prices, g.Prize),
		Winners:     mentions(winners, ", "),
	}
	if g.HostID != 0 {
		details.Host = announce.UserMention(g.HostID)
	}

	var a model.Announcement
	if len(winners) > 0 {
		a = e.writer.Write(ctx, announce.GiveawayWinner, details)
		a.Content = mentions(winners, " ")
	} else {
		a = e.writer.Write(ctx, announce.GiveawayEmpty, details)
	}

	if _, err := e.dispatcher.PostAnnouncement(ctx, g.ChannelID, a); err != nil {
		e.notificationFailed(ctx, KindGiveaway, err)
		return err
	}

	if err := e.giveawayRepo.MarkAnnounced(ctx, g.MessageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Giveaway %d was already announced", g.MessageID)
			return nil
		}

		return err
	}

	e.publish(ctx, KindGiveaway, g.MessageID, "announced", nil)
	e.mirror(ctx, KindGiveaway, g.ChannelID, a)

	ended := model.Announcement{
		Title:       "Giveaway Ended",
		Description: "**" + g.Prize + "**",
		Color:       a.Color,
		Fields:      []model.AnnouncementField{{Name: "Winners", Value: orNobody(details.Winners)}},
	}
	if err := e.dispatcher.EditAnnouncement(ctx, g.ChannelID, g.MessageID, ended); err != nil &&
		!errors.Is(err, notify.ErrMessageNotFound) {
		e.notificationFailed(ctx, KindGiveaway, err)
	}

	return nil
}

// refreshEntryCount keeps the entry count of a running giveaway up to date.
// A giveaway whose message was deleted is closed without a draw.
func (e *engine) refreshEntryCount(ctx context.Context, g entity.Giveaway) error {
	count, err := e.giveawayRepo.CountEntries(ctx, g.MessageID)
	if err != nil {
		return err
	}

	key := xredis.GiveawayEntryCountKey(g.MessageID)
	if last, ok := e.lastEntryCount(ctx, key); ok && last == count {
		return nil
	}

	field := model.AnnouncementField{Name: EntriesField, Value: strconv.FormatInt(count, 10), Inline: true}
	err = e.dispatcher.UpdateField(ctx, g.ChannelID, g.MessageID, field)
	if errors.Is(err, notify.ErrMessageNotFound) {
		if err := e.giveawayRepo.Deactivate(ctx, g.MessageID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		e.publish(ctx, KindGiveaway, g.MessageID, "deactivated", map[string]any{"reason": "message deleted"})
		return nil
	}

	if err != nil {
		e.notificationFailed(ctx, KindGiveaway, err)
		return err
	}

	e.storeEntryCount(ctx, key, count)
	return nil
}

func (e *engine) lastEntryCount(ctx context.Context, key string) (int64, bool) {
	if e.redisClient == nil {
		return e.entryCounts.Load(key)
	}

	s, err := e.redisClient.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, xredis.ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot get cached entry count: %v", err)
		}

		return 0, false
	}

	count, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}

	return count, true
}

func (e *engine) storeEntryCount(ctx context.Context, key string, count int64) {
	if e.redisClient == nil {
		e.entryCounts.Store(key, count)
		return
	}

	if err := e.redisClient.Set(ctx, key, strconv.FormatInt(count, 10), entryCountTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache entry count: %v", err)
	}
}

func orNobody(s string) string {
	if s == "" {
		return "Nobody"
	}

	return s
}
