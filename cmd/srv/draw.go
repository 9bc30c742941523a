package main

import (
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startDraw(c *cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}
	defer s.close()

	resp, err := s.raffleDomain.Draw(s.ctx, &model.DrawRaffleRequest{RaffleID: c.Int64("id")})
	if err != nil {
		return err
	}

	if resp.Raffle.WinnerID == nil {
		xcontext.Logger(s.ctx).Infof("Raffle %d closed without entries", resp.Raffle.ID)
		return nil
	}

	xcontext.Logger(s.ctx).Infof("Raffle %d won by %d", resp.Raffle.ID, *resp.Raffle.WinnerID)
	return nil
}
