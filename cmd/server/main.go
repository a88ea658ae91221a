package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jrsteele09/go-enquiry-service/auth"
	"github.com/jrsteele09/go-enquiry-service/authcodes"
	"github.com/jrsteele09/go-enquiry-service/clients"
	fakeclientrepo "github.com/jrsteele09/go-enquiry-service/clients/fakerepo"
	"github.com/jrsteele09/go-enquiry-service/enquiries"
	fakeenquiryrepo "github.com/jrsteele09/go-enquiry-service/enquiries/repofake"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
	"github.com/jrsteele09/go-enquiry-service/internal/obs"
	"github.com/jrsteele09/go-enquiry-service/server"
	"github.com/jrsteele09/go-enquiry-service/sessions"
	"github.com/jrsteele09/go-enquiry-service/storage/gormdb"
	"github.com/jrsteele09/go-enquiry-service/token"
	"github.com/jrsteele09/go-enquiry-service/users"
	fakeuserrepo "github.com/jrsteele09/go-enquiry-service/users/repofake"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	obs.SetupLogging(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, c)
	if err != nil {
		return err
	}
	defer stores.close()

	secret, err := c.GetSigningSecret()
	if err != nil {
		return err
	}
	signer, err := token.NewHMACSigner(secret)
	if err != nil {
		return err
	}
	tokens := token.New(signer,
		token.WithIssuer(c.GetIssuer()),
		token.WithAccessTokenExpiry(c.GetDefaultAccessTokenExpiry()),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(registry)

	authService, err := auth.NewAuthorizationService(auth.Repos{
		Users:    stores.users,
		Clients:  stores.clients,
		Sessions: stores.sessions,
		Codes:    stores.codes,
	}, tokens, auth.WithConfig(c), auth.WithMetrics(metrics))
	if err != nil {
		return err
	}

	handler, err := server.New(ctx, c, authService, server.Repos{
		Users:     stores.users,
		Enquiries: stores.enquiries,
		Clients:   stores.clients,
	}, metrics)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return listenAndServe(httpServer)
	})
	group.Go(func() error {
		return authService.RunSweeper(groupCtx, c.GetSweepInterval())
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("shutting down")
		return shutdown(httpServer)
	})
	return group.Wait()
}

// storeSet holds every repository the service runs on plus whatever needs
// closing when it stops.
type storeSet struct {
	users     users.Repo
	enquiries enquiries.Repo
	clients   clients.Repo
	sessions  sessions.Repo
	codes     authcodes.Repo
	closers   []func() error
}

func (s *storeSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
}

func openStores(ctx context.Context, c config.Config) (*storeSet, error) {
	stores := &storeSet{}

	switch driver := c.GetDBDriver(); driver {
	case config.DriverSQLite:
		db, err := gormdb.Open(c.GetDBPath())
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, func() error { return gormdb.Close(db) })
		stores.users = gormdb.NewUserRepo(db)
		stores.enquiries = gormdb.NewEnquiryRepo(db)
		stores.clients = gormdb.NewClientRepo(db)
		log.Info().Str("path", c.GetDBPath()).Msg("using sqlite store")
	case config.DriverMemory:
		stores.users = fakeuserrepo.NewFakeUserRepo()
		stores.enquiries = fakeenquiryrepo.NewFakeEnquiryRepo()
		stores.clients = fakeclientrepo.NewFakeClientRepo()
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	var redisClient redis.UniversalClient
	if c.GetCodeStore() == config.DriverRedis || c.GetSessionStore() == config.DriverRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			stores.close()
			return nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		stores.closers = append(stores.closers, redisClient.Close)
	}

	codes, err := authcodes.New(ctx, c, authcodes.Deps{Redis: redisClient})
	if err != nil {
		stores.close()
		return nil, err
	}
	stores.codes = codes
	stores.closers = append(stores.closers, codes.Close)

	switch driver := c.GetSessionStore(); driver {
	case "", config.DriverMemory:
		stores.sessions = sessions.NewMemoryRepo()
	case config.DriverRedis:
		stores.sessions = sessions.NewRedisRepo(redisClient, c.GetRedisPrefix())
	default:
		stores.close()
		return nil, fmt.Errorf("unknown SESSION_STORE %q", driver)
	}

	log.Info().
		Str("db", c.GetDBDriver()).
		Str("codes", c.GetCodeStore()).
		Str("sessions", c.GetSessionStore()).
		Msg("stores ready")
	return stores, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
