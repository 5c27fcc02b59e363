package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/contest-backoffice/internal/middleware"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/pkg/authenticator"
	"github.com/questx-lab/contest-backoffice/pkg/router"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadNotifier()
	s.loadStorage()
	s.loadRepos()
	s.loadDomains()
	defer s.stop()

	if err := s.loadRouter(); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals

		if err := s.server.Shutdown(s.ctx); err != nil {
			s.logger.Errorf("Cannot shutdown server: %v", err)
		}
	}()

	s.logger.Infof("Starting server on port: %s", s.configs.ApiServer.Port)
	var err error
	if s.configs.ApiServer.Cert != "" && s.configs.ApiServer.Key != "" {
		err = s.server.ListenAndServeTLS(s.configs.ApiServer.Cert, s.configs.ApiServer.Key)
	} else {
		err = s.server.ListenAndServe()
	}

	if err != nil && err != http.ErrServerClosed {
		return err
	}

	// Winner notifications of a forced draw may still be in flight.
	s.weeklyContestDomain.WaitNotifications()
	s.logger.Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() error {
	tokenEngine, err := authenticator.NewTokenEngine[model.AccessToken](s.configs.Auth.AccessToken)
	if err != nil {
		return err
	}

	s.router = router.New(xcontext.DB(s.ctx), *s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())

	// Every API of the back office is reserved to admins.
	adminRouter := s.router.Branch()
	adminRouter.Before(middleware.NewAuthVerifier(tokenEngine).Middleware())
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		// Contest API
		router.POST(adminRouter, "/createContest", s.contestDomain.Create)
		router.GET(adminRouter, "/getContest", s.contestDomain.Get)
		router.GET(adminRouter, "/getListContest", s.contestDomain.GetList)
		router.POST(adminRouter, "/updateContest", s.contestDomain.Update)
		router.POST(adminRouter, "/uploadContestBanner", s.contestDomain.UploadBanner)

		// Participant API
		router.POST(adminRouter, "/addParticipant", s.contestDomain.AddParticipant)
		router.POST(adminRouter, "/removeParticipant", s.contestDomain.RemoveParticipant)
		router.GET(adminRouter, "/getListParticipant", s.contestDomain.GetListParticipant)

		// Winner API
		router.POST(adminRouter, "/selectWinner", s.contestDomain.SelectWinner)
		router.POST(adminRouter, "/removeWinner", s.contestDomain.RemoveWinner)
		router.POST(adminRouter, "/selectMultipleWinners", s.contestDomain.SelectMultipleWinners)

		// Weekly contest API
		router.POST(adminRouter, "/createWeeklyContest", s.weeklyContestDomain.Create)
		router.GET(adminRouter, "/getCurrentWeeklyContest", s.weeklyContestDomain.GetCurrent)
		router.POST(adminRouter, "/forceAutoDraw", s.weeklyContestDomain.ForceAutoDraw)

		// Standalone winner API
		router.POST(adminRouter, "/createStandaloneWinner", s.standaloneWinnerDomain.Create)
		router.POST(adminRouter, "/updateStandaloneWinner", s.standaloneWinnerDomain.Update)
		router.POST(adminRouter, "/deleteStandaloneWinner", s.standaloneWinnerDomain.Delete)
		router.GET(adminRouter, "/getListStandaloneWinner", s.standaloneWinnerDomain.GetList)

		// Stats API
		router.GET(adminRouter, "/getContestStats", s.contestStatsDomain.Get)
		router.POST(adminRouter, "/updateContestStats", s.contestStatsDomain.Update)
	}

	return nil
}
