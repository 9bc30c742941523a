// Package lifecycle drives every event from creation to its terminal state.
// The scheduler calls one Process method per event kind on each tick. Each
// method re-derives what still has to happen from the clock and the guard
// flags stored on the rows, so it can be called any number of times.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/taskmaster/internal/common"
	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/domain/selection"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/api/wom"
	"github.com/questx-lab/taskmaster/pkg/pubsub"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/questx-lab/taskmaster/pkg/xredis"
	"golang.org/x/sync/errgroup"
)

const (
	KindRecap       = "recap"
	KindCompetition = "competition"
	KindRaffle      = "raffle"
	KindGiveaway    = "giveaway"
	KindActivity    = "activity"
	KindBulletin    = "bulletin"
)

// errAlreadyClaimed aborts a transaction whose guard was flipped by another
// writer first.
var errAlreadyClaimed = errors.New("already claimed by another writer")

type Engine interface {
	ProcessRecap(ctx context.Context) error
	ProcessCompetitions(ctx context.Context) error
	ProcessRaffles(ctx context.Context) error
	ProcessGiveaways(ctx context.Context) error
	ProcessActivities(ctx context.Context) error
	PostBulletin(ctx context.Context) error

	// DrawRaffle draws and announces one raffle regardless of its end time.
	// It is a no-op for a raffle which is already drawn and announced.
	DrawRaffle(ctx context.Context, raffleID int64) error
}

type engine struct {
	competitionRepo repository.CompetitionRepository
	raffleRepo      repository.RaffleRepository
	giveawayRepo    repository.GiveawayRepository
	activityRepo    repository.ActivityRepository
	userLinkRepo    repository.UserLinkRepository
	settingRepo     repository.SettingRepository

	ledger      ledger.Ledger
	leaderboard wom.IEndpoint
	writer      announce.Writer
	dispatcher  notify.Dispatcher
	publisher   pubsub.Publisher
	prices      pricecache.Lookup
	redisClient xredis.Client

	chooser     selection.Chooser
	now         func() time.Time
	inflight    *xsync.MapOf[string, struct{}]
	entryCounts *xsync.MapOf[string, int64]
}

// NewEngine returns the lifecycle engine. prices and redisClient may be nil.
func NewEngine(
	competitionRepo repository.CompetitionRepository,
	raffleRepo repository.RaffleRepository,
	giveawayRepo repository.GiveawayRepository,
	activityRepo repository.ActivityRepository,
	userLinkRepo repository.UserLinkRepository,
	settingRepo repository.SettingRepository,
	pointsLedger ledger.Ledger,
	leaderboard wom.IEndpoint,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
	publisher pubsub.Publisher,
	prices pricecache.Lookup,
	redisClient xredis.Client,
) *engine {
	return &engine{
		competitionRepo: competitionRepo,
		raffleRepo:      raffleRepo,
		giveawayRepo:    giveawayRepo,
		activityRepo:    activityRepo,
		userLinkRepo:    userLinkRepo,
		settingRepo:     settingRepo,
		ledger:          pointsLedger,
		leaderboard:     leaderboard,
		writer:          writer,
		dispatcher:      dispatcher,
		publisher:       publisher,
		prices:          prices,
		redisClient:     redisClient,
		chooser:         selection.ChooseWithoutReplacement,
		now:             func() time.Time { return time.Now().UTC() },
		inflight:        xsync.NewMapOf[struct{}](),
		entryCounts:     xsync.NewMapOf[int64](),
	}
}

// forEachRow processes the rows concurrently. A failed row is logged and
// skipped, it does not stop the other rows.
func forEachRow[T any](ctx context.Context, kind string, rows []T, fn func(context.Context, T) error) {
	concurrency := xcontext.Configs(ctx).Scheduler.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	eg := errgroup.Group{}
	eg.SetLimit(concurrency)
	for _, row := range rows {
		row := row
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					xcontext.Logger(ctx).Errorf("Panic while processing %s: %v\n%s", kind, r, debug.Stack())
				}
			}()

			if err := fn(ctx, row); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot process %s: %v", kind, err)
			}

			return nil
		})
	}

	_ = eg.Wait()
}

// claim reserves key in this process. It returns false if another goroutine
// is already working on key.
func (e *engine) claim(key string) (func(), bool) {
	if _, loaded := e.inflight.LoadOrStore(key, struct{}{}); loaded {
		return nil, false
	}

	return func() { e.inflight.Delete(key) }, true
}

func (e *engine) publish(ctx context.Context, kind string, eventID int64, transition string, data map[string]any) {
	common.PromCounters[common.LifecycleTransitionTotal].WithLabelValues(kind, transition).Inc()
	xcontext.Logger(ctx).Infof("%s %d: %s", kind, eventID, transition)

	b, err := json.Marshal(model.LifecycleEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EventID:    eventID,
		Transition: transition,
		At:         e.now().UTC(),
		Data:       data,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal lifecycle event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.Topic
	pack := &pubsub.Pack{Key: []byte(fmt.Sprintf("%s:%d", kind, eventID)), Msg: b}
	if err := e.publisher.Publish(ctx, topic, pack); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish lifecycle event: %v", err)
	}
}

func (e *engine) notificationFailed(ctx context.Context, kind string, err error) {
	common.PromCounters[common.NotificationFailureTotal].WithLabelValues(kind).Inc()
	if errors.Is(err, notify.ErrNotConfigured) {
		xcontext.Logger(ctx).Warnf("Skip %s notification, the target is not configured", kind)
		return
	}

	xcontext.Logger(ctx).Warnf("Cannot send %s notification: %v", kind, err)
}

// mirror copies an announcement to the global announcements channel.
func (e *engine) mirror(ctx context.Context, kind string, sourceChannelID int64, a model.Announcement) {
	channelID := xcontext.Configs(ctx).Channels.Announcements
	if channelID == 0 || channelID == sourceChannelID {
		return
	}

	if _, err := e.dispatcher.PostAnnouncement(ctx, channelID, a); err != nil {
		e.notificationFailed(ctx, kind, err)
	}
}

// notifyPoints tells a user about points they just received.
func (e *engine) notifyPoints(ctx context.Context, kind string, userID, amount int64, reason string) {
	balance, err := e.ledger.Balance(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get balance of %d: %v", userID, err)
	}

	a := e.writer.Write(ctx, announce.PointsAward, model.PointsDetails{
		Amount:  amount,
		Reason:  reason,
		Balance: balance,
	})
	if err := e.dispatcher.SendDirect(ctx, userID, a); err != nil {
		e.notificationFailed(ctx, kind, err)
	}
}

func mentions(userIDs []int64, sep string) string {
	result := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		result = append(result, announce.UserMention(id))
	}

	return strings.Join(result, sep)
}
