package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gobarber/gobarber/internal/handlers"
	"github.com/gobarber/gobarber/internal/outbox"
	"github.com/gobarber/gobarber/internal/storage"
	"github.com/gobarber/gobarber/libs/config"
	"github.com/gobarber/gobarber/libs/db"
	"github.com/gobarber/gobarber/libs/httpx"
	"github.com/gobarber/gobarber/libs/kafkax"
	otelx "github.com/gobarber/gobarber/libs/otel"
	"github.com/gobarber/gobarber/libs/runtime"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "gobarber-api")
	port, err := config.Port("PORT", "3333")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DATABASE_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	tokenTTL := config.Seconds("JWT_TTL_SECONDS", 7*24*time.Hour)
	baseURL := strings.TrimRight(config.String("APP_URL", "http://localhost:"+port), "/")
	storageDir := config.String("UPLOADS_DIR", "tmp/uploads")

	userRepo := storage.NewUserRepository(pool)
	fileRepo := storage.NewFileRepository(pool)
	appointmentRepo := storage.NewAppointmentRepository(pool)
	notificationRepo := storage.NewNotificationRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	userHandler := handlers.NewUserHandler(userRepo, fileRepo, logger)
	sessionHandler := handlers.NewSessionHandler(userRepo, logger, jwtSecret, tokenTTL)
	providerHandler := handlers.NewProviderHandler(userRepo, logger, baseURL)
	scheduleHandler := handlers.NewScheduleHandler(appointmentRepo, userRepo, logger)
	fileHandler := handlers.NewFileHandler(fileRepo, logger, storageDir, baseURL)
	appointmentHandler := handlers.NewAppointmentHandler(
		appointmentRepo, userRepo, notificationRepo, outboxRepo, logger, baseURL,
	)

	authed := handlers.RequireAuth(jwtSecret)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers := strings.TrimSpace(config.String("KAFKA_BROKERS", "")); brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)

	sessionLimiter := loginRateLimit(ctx, logger)
	mux.Handle("/sessions", httpx.Chain(http.HandlerFunc(sessionHandler.Store), sessionLimiter))

	updateUser := authed(http.HandlerFunc(userHandler.Update))
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userHandler.Store(w, r)
		case http.MethodPut:
			updateUser.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/providers", authed(http.HandlerFunc(providerHandler.Index)))
	mux.Handle("/schedule", authed(http.HandlerFunc(scheduleHandler.Index)))
	mux.Handle("/appointments", authed(http.HandlerFunc(appointmentHandler.Collection)))
	mux.Handle("/appointments/", authed(http.HandlerFunc(appointmentHandler.Item)))

	uploadFile := authed(http.HandlerFunc(fileHandler.Store))
	mux.Handle("/files", uploadFile)
	mux.Handle("/files/", fileHandler.Serve())

	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 10<<20))
	requestTimeout := config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)

	handler := httpx.Chain(mux,
		httpx.WithCORS(
			parseList(config.String("CORS_ALLOWED_ORIGINS", "*")),
			parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")),
			parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
		),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
	)
	handler = otelhttp.NewHandler(handler, "gobarber-api")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// loginRateLimit throttles /sessions per client. Redis keeps the counters
// shared across replicas; without Redis a per-process limiter still slows
// brute force attempts.
func loginRateLimit(ctx context.Context, logger *slog.Logger) httpx.Middleware {
	limitPerMinute := config.Int("LOGIN_RATE_LIMIT_PER_MINUTE", 10)

	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		redisDB := 0
		if v, err := strconv.Atoi(config.String("REDIS_DB", "0")); err == nil && v >= 0 {
			redisDB = v
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		go func() {
			<-ctx.Done()
			_ = rdb.Close()
		}()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl:login"))
		logger.Info("login rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
		return rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
	}

	rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
	logger.Info("login rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	return rl.Middleware()
}
