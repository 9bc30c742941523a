package migration

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// Migrate applies the versioned SQL migrations. Only postgres is supported,
// other drivers use AutoMigrate.
func Migrate(ctx context.Context) error {
	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(postgresFS, "postgres")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	err := xcontext.DB(ctx).AutoMigrate(
		&entity.Competition{},
		&entity.Raffle{},
		&entity.RaffleEntry{},
		&entity.Giveaway{},
		&entity.GiveawayEntry{},
		&entity.GiveawayWinner{},
		&entity.ScheduledActivity{},
		&entity.ActivitySignup{},
		&entity.PointsAccount{},
		&entity.Transaction{},
		&entity.Reward{},
		&entity.Redemption{},
		&entity.UserLink{},
		&entity.BotSetting{},
	)
	if err != nil {
		return err
	}

	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.BotSetting{
		Name:  entity.SettingLastRecapSent,
		Value: time.Time{}.Format(time.RFC3339),
	}).Error
}
