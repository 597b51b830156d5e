package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"bids-api/internal/core/auth"
	"bids-api/internal/core/cache"
	"bids-api/internal/core/config"
	"bids-api/internal/core/database"
	"bids-api/internal/core/logger"
	"bids-api/internal/core/mail"
	"bids-api/internal/core/server"
	"bids-api/internal/domain"
	"bids-api/internal/repo"
	"bids-api/internal/service"
	"bids-api/internal/transport/http/handler"
	"bids-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load("")

	l, closeLog := logger.New(cfg.App.Name, cfg.Log.Level, cfg.Log.JSON)
	defer closeLog()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("open database", zap.Error(err))
	}
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.RefreshToken{},
			&domain.Bid{},
			&domain.Comment{},
		); err != nil {
			l.Fatal("auto migrate", zap.Error(err))
		}
	}

	var c *cache.Cache
	if cfg.Redis.Enable {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	var mailer mail.Mailer = mail.Noop{}
	if cfg.Mail.Enable {
		mailer = mail.NewSendGrid(cfg.Mail.APIKey, cfg.Mail.Sender)
	}

	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshTokenTTLHrs) * time.Hour,
	}

	users := repo.NewUserRepo(db)
	tokens := repo.NewTokenRepo(db)
	bids := repo.NewBidRepo(db)
	comments := repo.NewCommentRepo(db)

	authSvc := service.NewAuthService(users, tokens, jwter, l)
	userSvc := service.NewUserService(users, tokens, l)
	bidSvc := service.NewBidService(bids, users, c, mailer, l)
	commentSvc := service.NewCommentService(comments, bids, users)

	engine := router.New(l, jwter, router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, cfg.Upload.Dir, l),
		User:    handler.NewUserHandler(userSvc, cfg.Upload.Dir, l),
		Bid:     handler.NewBidHandler(bidSvc),
		Comment: handler.NewCommentHandler(commentSvc),
	}, router.Options{
		Env:          cfg.App.Env,
		MaxBodyBytes: int64(cfg.Upload.MaxSizeMB) << 20,
	})

	srv := server.BuildServer(
		server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port),
		engine,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		l.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	l.Info("bye")
}
