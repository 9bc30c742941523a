package main

import (
	"net/http"

	"github.com/questx-lab/taskmaster/internal/middleware"
	"github.com/questx-lab/taskmaster/pkg/prometheus"
	"github.com/questx-lab/taskmaster/pkg/router"
)

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime(), middleware.WithRequestID())
	s.router.AddCloser(middleware.Logger(), middleware.Prometheus())

	s.router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Bot is running."))
	}))
	s.router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler())

	// Every other endpoint is reserved to the clan admins and the bot frontend.
	adminRouter := s.router.Branch()
	adminRouter.Before(middleware.APIKey())
	{
		// Raffle API
		router.POST(adminRouter, "/createRaffle", s.raffleDomain.Create)
		router.POST(adminRouter, "/enterRaffle", s.raffleDomain.Enter)
		router.POST(adminRouter, "/giveRaffleTickets", s.raffleDomain.GiveTickets)
		router.GET(adminRouter, "/getRaffleTickets", s.raffleDomain.GetTickets)
		router.POST(adminRouter, "/drawRaffle", s.raffleDomain.Draw)

		// Giveaway API
		router.POST(adminRouter, "/createGiveaway", s.giveawayDomain.Create)
		router.POST(adminRouter, "/enterGiveaway", s.giveawayDomain.Enter)
		router.GET(adminRouter, "/getGiveawayEntries", s.giveawayDomain.GetEntries)

		// Activity API
		router.POST(adminRouter, "/createActivity", s.activityDomain.Create)
		router.POST(adminRouter, "/signupActivity", s.activityDomain.Signup)
		router.POST(adminRouter, "/leaveActivity", s.activityDomain.Leave)
		router.POST(adminRouter, "/cancelActivity", s.activityDomain.Cancel)
		router.GET(adminRouter, "/getActivityParticipants", s.activityDomain.GetParticipants)

		// Competition API
		router.POST(adminRouter, "/startCompetition", s.competitionDomain.Start)

		// Points API
		router.GET(adminRouter, "/getBalance", s.pointsDomain.GetBalance)
		router.POST(adminRouter, "/awardPoints", s.pointsDomain.Award)
		router.POST(adminRouter, "/deductPoints", s.pointsDomain.Deduct)
		router.GET(adminRouter, "/getPointsLeaderboard", s.pointsDomain.GetLeaderboard)
		router.GET(adminRouter, "/getPointsHistory", s.pointsDomain.GetHistory)

		// Point store API
		router.POST(adminRouter, "/addReward", s.pointStoreDomain.AddReward)
		router.POST(adminRouter, "/removeReward", s.pointStoreDomain.RemoveReward)
		router.GET(adminRouter, "/getRewards", s.pointStoreDomain.GetRewards)
		router.POST(adminRouter, "/redeemReward", s.pointStoreDomain.Redeem)
		router.GET(adminRouter, "/getRedemptions", s.pointStoreDomain.GetRedemptions)

		// User link API
		router.POST(adminRouter, "/linkUser", s.userLinkDomain.Link)
		router.GET(adminRouter, "/getUserLink", s.userLinkDomain.Get)

		// Button presses forwarded by the gateway.
		router.POST(adminRouter, "/interactions/button", s.interactionDomain.Button)
	}
}
