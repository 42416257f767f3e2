// @title           Car Rental API
// @version         1.0
// @description     Car rental marketplace backend.
// @description     Users browse and book cars, owners manage listings and bookings,
// @description     passwords are recovered with an emailed one-time code.
// @termsOfService  https://example.com/terms

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin
// @contact.email  ivan@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
//
// Package main содержит точку входа сервера аренды машин.
//
// Пакет отвечает за инициализацию и жизненный цикл HTTP(S)-сервера, а именно:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации сервера из файла ./configs/server.yaml;
//   - инициализацию подключения к базе данных и миграции;
//   - сборку инфраструктуры: SMTP, redis-троттлинг, S3 для фото, PDF-отчёты, метрики;
//   - создание репозиториев, сервисов, middleware и HTTP-обработчиков;
//   - периодическую чистку просроченных кодов сброса пароля;
//   - корректное (graceful) завершение работы по SIGINT, SIGTERM, SIGQUIT.
//
// Пакет не содержит бизнес-логики и не предназначен для unit-тестирования.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/api"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/mailer"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/metrics"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-carrental/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/report"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/repository"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/storage"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/throttle"
	"github.com/IvanChernomyrdin/go-carrental/internal/shared/logger"

	_ "github.com/IvanChernomyrdin/go-carrental/swagger/docs"
)

func main() {
	bootLog := logger.NewHTTPLogger().Sugar()

	if err := godotenv.Load(); err != nil {
		bootLog.Warnf("no .env file loaded, error: %v", err)
	}

	cfg, err := config.Load("./configs/server.yaml")
	if err != nil {
		bootLog.Fatal(err)
	}

	httpLogger := logger.New(logger.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	})
	defer httpLogger.Sync() //nolint:errcheck
	sugar := httpLogger.Sugar()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// подключаем базу данных и накатываем миграции
	db, err := config.OpenDB(ctx, cfg.DB, cfg.Migrations, httpLogger)
	if err != nil {
		sugar.Fatal(err)
	}
	defer db.Close()

	repos := service.Repositories{
		Users:          repository.NewUsersRepository(db),
		PasswordResets: repository.NewPasswordResetsRepository(db),
		Cars:           repository.NewCarsRepository(db),
		Bookings:       repository.NewBookingsRepository(db),
	}

	var m *metrics.Metrics
	infra := service.Infra{
		Mailer:   mailer.New(cfg.Mail),
		Throttle: throttle.Noop{},
		Reports:  report.NewPDF(),
	}
	if cfg.Observability.Metrics.Enabled {
		m = metrics.New()
		infra.Events = m
	}

	if cfg.Redis.Enabled {
		rt, err := throttle.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			sugar.Fatalf("redis: %v", err)
		}
		defer rt.Close()
		infra.Throttle = rt
	} else {
		sugar.Info("redis disabled, forgot-password is not throttled")
	}

	if cfg.Storage.S3.Enabled {
		images, err := storage.NewS3Images(ctx, cfg.Storage.S3)
		if err != nil {
			sugar.Fatalf("s3: %v", err)
		}
		infra.Images = images
	} else {
		sugar.Info("s3 disabled, image uploads are not available")
	}

	svc := service.NewServices(repos, infra, cfg)

	verifier := middleware.NewJWTVerifier(
		cfg.Auth.JWT.SigningKey,
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
	)
	handler := api.NewHandler(svc, httpLogger, verifier)
	router := h.NewRouter(handler, h.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Metrics:        m,
		MetricsPath:    cfg.Observability.Metrics.Path,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{MinVersion: tlsVersion(cfg.TLS.MinVersion)}
	}

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		var err error
		if cfg.TLS.Enabled {
			sugar.Infof("server started on https://%s", addr)
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			sugar.Warnf("server started on http://%s (tls disabled)", addr)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// чистка просроченных кодов
	g.Go(func() error {
		ticker := time.NewTicker(cfg.OTP.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := svc.Password.PurgeExpired(ctx)
				if err != nil {
					sugar.Errorw("purge expired otp", "error", err)
					continue
				}
				if n > 0 {
					sugar.Infow("expired otp purged", "count", n)
				}
			}
		}
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единная обработка ошибок
	if err := g.Wait(); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
	sugar.Info("server gracefully stopped")
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
