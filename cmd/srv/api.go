package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/middleware"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/pkg/authenticator"
	"github.com/questx-lab/eventreward/pkg/prometheus"
	"github.com/questx-lab/eventreward/pkg/router"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	if s.configs.Auth.TokenSecret == "" {
		return errors.New("auth token secret is not configured")
	}

	if err := s.loadServices(cctx.Int64("node")); err != nil {
		return err
	}
	s.loadRouter()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", s.configs.ApiServer.Host, s.configs.ApiServer.Port),
		Handler: s.router.Handler(s.configs.ApiServer.AllowedOrigins),
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken.Expiration)

	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.Before(middleware.NewAuthVerifier(tokenEngine).Middleware())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler(common.PromCollectors()...))

	// These following APIs need an authenticated request user.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		// Event API
		router.POST(authRouter, "/createEvent", s.eventDomain.Create)
		router.POST(authRouter, "/updateEvent", s.eventDomain.Update)
		router.POST(authRouter, "/activateEvent", s.eventDomain.Activate)
		router.POST(authRouter, "/openVoting", s.eventDomain.OpenVoting)
		router.POST(authRouter, "/closeVoting", s.eventDomain.CloseVoting)
		router.POST(authRouter, "/completeEvent", s.eventDomain.Complete)
		router.POST(authRouter, "/cancelEvent", s.eventDomain.Cancel)
		router.POST(authRouter, "/register", s.eventDomain.Register)
		router.POST(authRouter, "/unregister", s.eventDomain.Unregister)
		router.POST(authRouter, "/markAttendance", s.eventDomain.MarkAttendance)
		router.POST(authRouter, "/batchMarkAttendance", s.eventDomain.BatchMarkAttendance)
		router.GET(authRouter, "/getParticipants", s.eventDomain.GetParticipants)

		// Reward ledger API
		router.POST(authRouter, "/createLedger", s.ledgerDomain.CreateLedger)
		router.POST(authRouter, "/creditAttendance", s.ledgerDomain.CreditAttendance)
		router.POST(authRouter, "/creditSurvey", s.ledgerDomain.CreditSurvey)
		router.POST(authRouter, "/debit", s.ledgerDomain.Debit)

		// Voting API
		router.POST(authRouter, "/createCategory", s.votingDomain.CreateCategory)
		router.POST(authRouter, "/toggleCategory", s.votingDomain.ToggleCategory)
		router.POST(authRouter, "/addEventCategories", s.votingDomain.AddEventCategories)
		router.POST(authRouter, "/vote", s.votingDomain.Vote)
		router.POST(authRouter, "/batchVote", s.votingDomain.BatchVote)

		// Redemption API
		router.POST(authRouter, "/createItem", s.redemptionDomain.CreateItem)
		router.POST(authRouter, "/updateItem", s.redemptionDomain.UpdateItem)
		router.POST(authRouter, "/updateStock", s.redemptionDomain.UpdateStock)
		router.POST(authRouter, "/toggleItemActive", s.redemptionDomain.ToggleActive)
		router.POST(authRouter, "/addSupportedLedger", s.redemptionDomain.AddSupportedLedger)
		router.POST(authRouter, "/removeSupportedLedger", s.redemptionDomain.RemoveSupportedLedger)
		router.POST(authRouter, "/redeem", s.redemptionDomain.Redeem)
		router.POST(authRouter, "/updateOrderStatus", s.redemptionDomain.UpdateStatus)
		router.POST(authRouter, "/cancelOrder", s.redemptionDomain.Cancel)
		router.GET(authRouter, "/getOrder", s.redemptionDomain.GetOrder)
		router.GET(authRouter, "/getUserOrders", s.redemptionDomain.GetUserOrders)

		// Role API
		router.POST(authRouter, "/grantRole", s.roleDomain.Grant)
		router.POST(authRouter, "/revokeRole", s.roleDomain.Revoke)
		router.GET(authRouter, "/getRoles", s.roleDomain.GetRoles)
		router.POST(authRouter, "/pause", s.roleDomain.Pause)
		router.POST(authRouter, "/unpause", s.roleDomain.Unpause)
		router.GET(authRouter, "/getPauses", s.roleDomain.GetPauses)
	}

	// Public API.
	router.GET(s.router, "/getEvent", s.eventDomain.Get)
	router.GET(s.router, "/isRegistered", s.eventDomain.IsRegistered)
	router.GET(s.router, "/hasAttended", s.eventDomain.HasAttended)
	router.GET(s.router, "/getActiveEvents", s.eventDomain.GetActive)
	router.GET(s.router, "/getUpcomingEvents", s.eventDomain.GetUpcoming)
	router.GET(s.router, "/canVote", s.eventDomain.CanVote)

	router.GET(s.router, "/getProgress", s.ledgerDomain.GetProgress)
	router.GET(s.router, "/getBalance", s.ledgerDomain.GetBalance)
	router.GET(s.router, "/getLedgerEntries", s.ledgerDomain.GetEntries)
	router.GET(s.router, "/getLedgerLeaderboard", s.ledgerDomain.GetLeaderboard)

	router.GET(s.router, "/getCategory", s.votingDomain.GetCategory)
	router.GET(s.router, "/getCategories", s.votingDomain.GetCategories)
	router.GET(s.router, "/getCategoryResults", s.votingDomain.GetCategoryResults)
	router.GET(s.router, "/getRatingDistribution", s.votingDomain.GetRatingDistribution)
	router.GET(s.router, "/getAverageRating", s.votingDomain.GetAverageRating)
	router.GET(s.router, "/hasVoted", s.votingDomain.HasVoted)
	router.GET(s.router, "/hasVotedCategory", s.votingDomain.HasVotedCategory)

	router.GET(s.router, "/getItem", s.redemptionDomain.GetItem)
	router.GET(s.router, "/getItems", s.redemptionDomain.GetItems)
}
