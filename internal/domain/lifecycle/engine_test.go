package lifecycle

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/selection"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*engine

	ctx         context.Context
	now         time.Time
	dispatcher  *testutil.MockDispatcher
	leaderboard *testutil.MockLeaderboard
	publisher   *testutil.MockPublisher
	draws       *atomic.Int32
}

func newTestEngine(t *testing.T) *testEngine {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	writer, err := announce.NewWriter(nil)
	require.NoError(t, err)

	te := &testEngine{
		ctx:         testutil.MockContext(),
		now:         time.Now().UTC().Truncate(time.Second),
		dispatcher:  &testutil.MockDispatcher{},
		leaderboard: &testutil.MockLeaderboard{},
		publisher:   &testutil.MockPublisher{},
		draws:       &atomic.Int32{},
	}

	te.engine = NewEngine(
		repository.NewCompetitionRepository(),
		repository.NewRaffleRepository(),
		repository.NewGiveawayRepository(),
		repository.NewActivityRepository(),
		repository.NewUserLinkRepository(),
		repository.NewSettingRepository(),
		ledger.New(repository.NewPointsRepository(), node),
		te.leaderboard,
		writer,
		te.dispatcher,
		te.publisher,
		nil,
		nil,
	)

	te.engine.now = func() time.Time { return te.now }
	te.engine.chooser = func(pool []int64, k int) []int64 {
		te.draws.Add(1)
		return selection.ChooseWithoutReplacement(pool, k)
	}

	return te
}

func (te *testEngine) balance(t *testing.T, userID int64) int64 {
	balance, err := te.ledger.Balance(te.ctx, userID)
	require.NoError(t, err)
	return balance
}

func (te *testEngine) transactionCount(t *testing.T) int64 {
	var count int64
	require.NoError(t, xcontext.DB(te.ctx).Model(&entity.Transaction{}).Count(&count).Error)
	return count
}

func (te *testEngine) transitions(t *testing.T, kind, transition string) int {
	count := 0
	for _, pack := range te.publisher.Packs() {
		var ev model.LifecycleEvent
		require.NoError(t, json.Unmarshal(pack.Msg, &ev))
		if ev.Kind == kind && ev.Transition == transition {
			count++
		}
	}

	return count
}
