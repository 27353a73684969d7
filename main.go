package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriflow/authentication/controllers"
	"nutriflow/authentication/local"
	"nutriflow/authentication/mailer"
	"nutriflow/config"
	"nutriflow/database"
	"nutriflow/form"
	"nutriflow/handlers"
	"nutriflow/logger"
	"nutriflow/middleware"
	"nutriflow/registration"
	"nutriflow/repositories"
	"nutriflow/routes"
	"nutriflow/supabase"
	"nutriflow/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// sweepIdleForms drops page views nobody has touched for idle. Browsers do
// not always send the discard request when a tab is closed.
func sweepIdleForms(ctx context.Context, forms *form.Registry, every, idle time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := forms.Sweep(idle); n > 0 {
				log.Debug("swept idle forms", zap.Int("removed", n), zap.Int("live", forms.Len()))
			}
		}
	}
}

// backend is what the workflow and the routes need from the chosen storage.
type backend struct {
	auth     registration.AuthService
	profiles registration.DataStore
	verifier controllers.EmailVerifier
}

func buildBackend(cfg config.AppConfig, log *zap.Logger) (backend, error) {
	if cfg.Backend == config.BackendSupabase {
		client := supabase.New(cfg.Supabase)
		return backend{auth: client, profiles: client}, nil
	}

	var (
		identities repositories.IdentityStore
		profiles   registration.DataStore
	)
	switch cfg.Backend {
	case config.BackendMemory:
		identities = repositories.NewInMemoryIdentityStore()
		profiles = repositories.NewInMemoryProfileStore()
	default:
		db, err := database.Connect(cfg.DB.DSN(), log)
		if err != nil {
			return backend{}, err
		}
		identities = database.NewIdentityStore(db)
		profiles = database.NewProfileStore(db)
	}

	provider := local.NewProvider(identities, mailer.NewLogMailer(log), local.Config{
		Secret:       cfg.JWTSecret,
		VerifyURL:    cfg.PublicURL + "/auth/verify",
		VerifyExpiry: time.Duration(cfg.VerificationExpiryHours) * time.Hour,
	}, log)
	return backend{auth: provider, profiles: profiles, verifier: provider}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := buildBackend(cfg, zl)
	if err != nil {
		zl.Fatal("failed to set up backend", zap.String("backend", string(cfg.Backend)), zap.Error(err))
	}

	opts := []registration.Option{
		registration.WithLogger(zl),
		registration.WithCompensation(cfg.CompensatePartialSignup),
	}
	if cfg.Redis.Enabled() {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			zl.Fatal("redis unavailable", zap.Error(err))
		}
		defer rdb.Close()
		opts = append(opts, registration.WithGuard(database.NewSubmitGuard(rdb, cfg.SubmitLockTTL)))
		zl.Info("redis connection opened", zap.String("addr", cfg.Redis.Addr))
	}
	workflow := registration.New(be.auth, be.profiles, opts...)

	pages, err := web.NewRenderer()
	if err != nil {
		zl.Fatal("failed to parse templates", zap.Error(err))
	}

	forms := form.NewRegistry()
	go sweepIdleForms(ctx, forms, cfg.FormSweepInterval, cfg.FormIdleTTL, zl)

	var verify *controllers.VerifyController
	if be.verifier != nil {
		verify = controllers.NewVerifyController(be.verifier, zl)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(zl))
	routes.SetupRoutes(app, handlers.NewFormHandler(forms, workflow, pages, zl), verify)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("backend", string(cfg.Backend)))
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
