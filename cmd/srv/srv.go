package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/taskmaster/config"
	"github.com/questx-lab/taskmaster/internal/domain"
	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/api/discord"
	"github.com/questx-lab/taskmaster/pkg/api/gemini"
	"github.com/questx-lab/taskmaster/pkg/api/osrsprices"
	"github.com/questx-lab/taskmaster/pkg/api/wom"
	"github.com/questx-lab/taskmaster/pkg/kafka"
	"github.com/questx-lab/taskmaster/pkg/logger"
	"github.com/questx-lab/taskmaster/pkg/pubsub"
	"github.com/questx-lab/taskmaster/pkg/router"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/questx-lab/taskmaster/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const snowflakeNode = 1

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	leaderboard wom.IEndpoint
	generator   gemini.IEndpoint
	dispatcher  notify.Dispatcher
	priceCache  *pricecache.Cache

	competitionRepo repository.CompetitionRepository
	raffleRepo      repository.RaffleRepository
	giveawayRepo    repository.GiveawayRepository
	activityRepo    repository.ActivityRepository
	pointsRepo      repository.PointsRepository
	userLinkRepo    repository.UserLinkRepository
	settingRepo     repository.SettingRepository
	rewardRepo      repository.RewardRepository

	ledger ledger.Ledger
	engine lifecycle.Engine

	raffleDomain      domain.RaffleDomain
	giveawayDomain    domain.GiveawayDomain
	activityDomain    domain.ActivityDomain
	competitionDomain domain.CompetitionDomain
	pointsDomain      domain.PointsDomain
	userLinkDomain    domain.UserLinkDomain
	interactionDomain domain.InteractionDomain
	pointStoreDomain  domain.PointStoreDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)

	var log logger.Logger = logger.NewLogger(level)
	if cfg.Env != "local" {
		log = logger.NewJSONLogger(level)
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, log)
	s.ctx = xcontext.WithHTTPClient(s.ctx, &http.Client{Timeout: time.Minute})
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %s", cfg.Driver)
	}

	logLevel := gormlogger.Silent
	if cfg.LogSQL {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return fmt.Errorf("cannot connect to the database: %w", err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

// loadRedisClient leaves the client nil when redis is disabled, its users then
// keep their state in memory.
func (s *srv) loadRedisClient() error {
	if !xcontext.Configs(s.ctx).Redis.Enable {
		return nil
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return fmt.Errorf("cannot connect to redis: %w", err)
	}

	s.redisClient = client
	return nil
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		s.publisher = pubsub.NewNoopPublisher()
		return nil
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, cfg.Addrs)
	if err != nil {
		return fmt.Errorf("cannot connect to kafka: %w", err)
	}

	s.publisher = publisher
	return nil
}

func (s *srv) loadEndpoints() error {
	cfg := xcontext.Configs(s.ctx)

	s.leaderboard = wom.New(cfg.Leaderboard, cfg.Scheduler.Retry)

	discordEndpoint, err := discord.New(cfg.Discord)
	if err != nil {
		return fmt.Errorf("cannot create discord session: %w", err)
	}
	s.dispatcher = notify.NewDispatcher(cfg.Discord.GuildID, discordEndpoint)

	if cfg.AI.Enable && cfg.AI.APIKey != "" {
		s.generator = gemini.New(cfg.AI, cfg.Scheduler.Retry)
	}

	s.priceCache = pricecache.New(osrsprices.New(cfg.Prices, cfg.Scheduler.Retry), s.redisClient)
	return nil
}

func (s *srv) loadRepos() {
	s.competitionRepo = repository.NewCompetitionRepository()
	s.raffleRepo = repository.NewRaffleRepository()
	s.giveawayRepo = repository.NewGiveawayRepository()
	s.activityRepo = repository.NewActivityRepository()
	s.pointsRepo = repository.NewPointsRepository()
	s.userLinkRepo = repository.NewUserLinkRepository()
	s.settingRepo = repository.NewSettingRepository()
	s.rewardRepo = repository.NewRewardRepository()
}

func (s *srv) loadDomains() error {
	node, err := snowflake.NewNode(snowflakeNode)
	if err != nil {
		return err
	}

	writer, err := announce.NewWriter(s.generator)
	if err != nil {
		return fmt.Errorf("cannot load announcement templates: %w", err)
	}

	s.ledger = ledger.New(s.pointsRepo, node)
	s.engine = lifecycle.NewEngine(
		s.competitionRepo,
		s.raffleRepo,
		s.giveawayRepo,
		s.activityRepo,
		s.userLinkRepo,
		s.settingRepo,
		s.ledger,
		s.leaderboard,
		writer,
		s.dispatcher,
		s.publisher,
		s.priceCache,
		s.redisClient,
	)

	s.raffleDomain = domain.NewRaffleDomain(s.raffleRepo, s.engine, writer, s.dispatcher, s.priceCache)
	s.giveawayDomain = domain.NewGiveawayDomain(s.giveawayRepo, writer, s.dispatcher, s.priceCache)
	s.activityDomain = domain.NewActivityDomain(s.activityRepo, writer, s.dispatcher)
	s.competitionDomain = domain.NewCompetitionDomain(s.competitionRepo, s.leaderboard, writer, s.dispatcher)
	s.pointsDomain = domain.NewPointsDomain(s.pointsRepo, s.ledger, writer, s.dispatcher)
	s.userLinkDomain = domain.NewUserLinkDomain(s.userLinkRepo)
	s.interactionDomain = domain.NewInteractionDomain(s.giveawayDomain, s.activityDomain)
	s.pointStoreDomain = domain.NewPointStoreDomain(s.rewardRepo, s.pointsRepo, s.ledger, s.dispatcher)
	return nil
}

// loadAll prepares everything a command needs to run the event lifecycle.
func (s *srv) loadAll() error {
	loaders := []func() error{
		s.loadDatabase,
		s.loadRedisClient,
		s.loadPublisher,
		s.loadEndpoints,
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return err
		}
	}

	s.loadRepos()
	return s.loadDomains()
}

func (s *srv) close() {
	if s.publisher != nil {
		if err := s.publisher.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop the publisher: %v", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close redis client: %v", err)
		}
	}

	if db := xcontext.DB(s.ctx); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
