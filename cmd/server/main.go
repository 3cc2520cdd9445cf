package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/casnet-auth/bootstrap"
	"github.com/jrsteele09/casnet-auth/internal/config"
	"github.com/jrsteele09/casnet-auth/internal/logging"
	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/ratelimit"
	"github.com/jrsteele09/casnet-auth/server"
	"github.com/jrsteele09/casnet-auth/store"
	"github.com/jrsteele09/casnet-auth/store/memory"
	"github.com/jrsteele09/casnet-auth/store/postgres"
	"github.com/jrsteele09/casnet-auth/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(configPath string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New(configPath)
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer st.Close()

	hasher, err := password.NewBcryptHasher(c.GetBcryptCost(), password.WithWorkers(c.GetHashWorkers()))
	if err != nil {
		return fmt.Errorf("password.NewBcryptHasher: %w", err)
	}

	if c.GetBootstrapEnabled() {
		_, err := bootstrap.Seed(ctx, st, hasher, bootstrap.Options{
			AdminUsername:     c.GetSystemAdminUser(),
			AdminPassword:     c.GetSystemAdminPassword(),
			AdminEmail:        c.GetSystemAdminEmail(),
			DefaultTenantName: c.GetDefaultTenantName(),
		})
		if err != nil {
			return fmt.Errorf("bootstrap.Seed: %w", err)
		}
	}

	signer, err := token.NewHMACSigner(c.GetSecret(), c.GetAlgorithm())
	if err != nil {
		return fmt.Errorf("token.NewHMACSigner: %w", err)
	}
	tokens := token.New(signer, token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()))

	var options []server.Option
	if c.GetEnableRateLimiting() {
		limiter, closeLimiter, err := newLimiter(ctx, c)
		if err != nil {
			return err
		}
		defer closeLimiter()
		options = append(options, server.WithRateLimiter(limiter))
	}

	handler, err := server.New(c, st, hasher, tokens, options...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(httpServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(httpServer, c.GetShutdownTimeout())
	})
	return g.Wait()
}

func openStore(ctx context.Context, c config.Config) (store.Store, error) {
	switch c.GetStoreDriver() {
	case config.StoreDriverPostgres:
		st, err := postgres.New(ctx, postgres.Config{
			DSN:            c.GetDatabaseURL(),
			MaxOpenConns:   c.GetMaxOpenConns(),
			MigrateOnStart: c.GetMigrateOnStart(),
		})
		if err != nil {
			return nil, fmt.Errorf("postgres.New: %w", err)
		}
		log.Info().Msg("Using PostgreSQL store")
		return st, nil
	default:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
}

// newLimiter prefers Redis so that several replicas share one budget per client.
func newLimiter(ctx context.Context, c config.Config) (ratelimit.Limiter, func(), error) {
	if addr := c.GetRedisAddr(); addr != "" {
		rl, err := ratelimit.NewRedisLimiter(ctx, addr, c.GetLoginRequestsPerMinute())
		if err != nil {
			return nil, nil, fmt.Errorf("ratelimit.NewRedisLimiter: %w", err)
		}
		return rl, func() { _ = rl.Close() }, nil
	}
	return ratelimit.NewMemoryLimiter(c.GetLoginRequestsPerMinute(), c.GetLoginBurst()), func() {}, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
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
