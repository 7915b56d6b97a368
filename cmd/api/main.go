package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contacts-platform/internal/audit"
	"contacts-platform/internal/auth"
	"contacts-platform/internal/config"
	"contacts-platform/internal/contact"
	"contacts-platform/internal/httpapi"
	"contacts-platform/internal/mailer"
	"contacts-platform/internal/ratelimit"
	"contacts-platform/internal/storage"
	"contacts-platform/internal/user"
	"contacts-platform/pkg/logger"
	"contacts-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := auth.NewCodec(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}
	issuer := auth.NewIssuer(codec, cfg.Auth)
	verifier := auth.NewVerifier(codec)
	hasher := auth.NewPasswordHasher()

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	avatars, err := storage.NewDiskStore(cfg.App.AvatarDir, cfg.App.PublicBaseURL+"/static/avatars")
	if err != nil {
		log.Error("avatar store init failed", "err", err)
		os.Exit(1)
	}

	userRepo := user.NewSQLRepo(db)
	userCache := user.NewCache(rdb)
	identities := user.NewIdentityStore(userRepo)
	cachedIdentities := user.NewCachedIdentityStore(identities, userCache)

	sessions := auth.NewSessionManager(identities, issuer, verifier, hasher)
	users := user.NewService(userRepo, userCache, issuer, verifier, hasher,
		mailer.NewSMTPDispatcher(cfg.Mail), cfg.App.PublicBaseURL)
	contacts := contact.NewService(contact.NewSQLRepo(db))
	auditLog := audit.NewService(audit.NewSQLRepo(db))
	limiter := ratelimit.New(rdb)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Sessions: sessions,
		Users:    users,
		Contacts: contacts,
		Avatars:  avatars,
		Audit:    auditLog,
	}
	registerRoutes(r, h, routeDeps{
		db:         db,
		verifier:   verifier,
		identities: cachedIdentities,
		limiter:    limiter,
		avatarDir:  cfg.App.AvatarDir,
		rate:       cfg.Rate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
