package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/questx-lab/taskmaster/internal/domain/cron"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func (s *srv) startServer(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}
	defer s.close()

	if err := s.migrateDB(false); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)

	// The announcements can be written without prices, a failure here is not
	// fatal.
	if err := s.priceCache.Refresh(s.ctx); err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot load item prices: %v", err)
	}

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(
		cron.NewEventTickCronJob(s.engine, cfg.Scheduler.Interval),
		cron.NewBulletinCronJob(s.engine, cfg.Scheduler.BulletinInterval),
		cron.NewPriceRefreshCronJob(s.priceCache, cfg.Prices.RefreshInterval),
	)

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cronJobManager.Start(gctx)
		return nil
	})

	if cfg.API.Enable {
		s.loadRouter()
		s.server = &http.Server{
			Addr:              cfg.API.Address,
			Handler:           s.router.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			xcontext.Logger(s.ctx).Infof("Starting server on %s", cfg.API.Address)
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot notify systemd: %v", err)
	}

	g.Go(func() error {
		<-gctx.Done()
		xcontext.Logger(s.ctx).Infof("Shutting down")
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), shutdownTimeout)
		defer cancel()

		cronJobManager.Cancel(shutdownCtx)
		if s.server != nil {
			return s.server.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}
