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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-club-store/internal/core/auth"
	"go-club-store/internal/core/config"
	"go-club-store/internal/core/database"
	"go-club-store/internal/core/logger"
	"go-club-store/internal/core/server"
	"go-club-store/internal/feature/catalog"
	"go-club-store/internal/feature/inventory"
	"go-club-store/internal/feature/order"
	"go-club-store/internal/feature/user"
	"go-club-store/internal/repo"
	"go-club-store/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	defer func() { _ = database.Close(db) }()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	orderRepo := repo.NewOrderRepo(db)
	productRepo := repo.NewProductRepo(db)
	userRepo := repo.NewUserRepo(db)

	// 后台不走确认协议，通知器留空即可
	orderSvc := order.NewService(orderRepo, productRepo, inventory.New(productRepo, log), nil, log)
	catalogSvc := catalog.NewService(productRepo, nil, log)
	userSvc := user.NewService(userRepo, jwter)

	// 封禁到期清理
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	sweeper := user.NewSweeper(userRepo, time.Duration(cfg.Sweep.BanIntervalMin)*time.Minute, log)
	go sweeper.Run(ctx)

	r := router.NewAdminEngine(log, jwter, router.AdminDeps{
		Orders:  orderSvc,
		Catalog: catalogSvc,
		Users:   userSvc,
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Info("admin api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
