package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/config"
	"github.com/questx-lab/taskmaster/migration"
	"github.com/questx-lab/taskmaster/pkg/logger"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	AnnouncementsChannel int64 = 1001
	RaffleChannel        int64 = 1002
	RecapChannel         int64 = 1003
	CompetitionChannel   int64 = 1004
	ActivityChannel      int64 = 1005
	CompetitionRole      int64 = 2001
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env:      "test",
		LogLevel: "silence",
		Discord:  config.DiscordConfigs{GuildID: 42},
		Channels: config.ChannelConfigs{
			Announcements: AnnouncementsChannel,
			Raffle:        RaffleChannel,
			Recap:         RecapChannel,
			Competition:   CompetitionChannel,
			Activity:      ActivityChannel,
		},
		Roles:       config.RoleConfigs{Competition: CompetitionRole},
		Leaderboard: config.LeaderboardConfigs{GroupID: 99},
		Scheduler: config.SchedulerConfigs{
			Interval:         5 * time.Minute,
			Concurrency:      4,
			RecapSchedule:    "0 19 * * 0",
			BulletinInterval: 4 * time.Hour,
			Retry:            config.RetryConfigs{Attempts: 1},
		},
		Rewards: config.RewardConfigs{
			CompetitionPlaces: []int64{100, 50, 25},
			RafflePrize:       50,
			RaffleSelfCap:     10,
		},
		API: config.APIConfigs{APIKey: "secret"},
	}
}

// MockContext returns a context holding the test configs, a silent logger and
// a migrated in-memory database.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens a distinct database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}
