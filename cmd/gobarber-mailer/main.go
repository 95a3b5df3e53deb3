package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gobarber/gobarber/internal/consumer"
	"github.com/gobarber/gobarber/internal/inbox"
	"github.com/gobarber/gobarber/internal/mailer"
	"github.com/gobarber/gobarber/libs/config"
	"github.com/gobarber/gobarber/libs/db"
	"github.com/gobarber/gobarber/libs/httpx"
	"github.com/gobarber/gobarber/libs/kafkax"
	otelx "github.com/gobarber/gobarber/libs/otel"
	"github.com/gobarber/gobarber/libs/runtime"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "gobarber-mailer")
	port, err := config.Port("PORT", "3334")
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

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DATABASE_MAX_CONNS", 5)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	deliveries := mailer.NewDeliveryRepository(pool)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "equipe@gobarber.local")
	sender := mailer.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	consumerCfg := consumer.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "gobarber-mailer"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "gobarber.appointment.canceled.v1"),
	}
	eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
		var payload mailer.CancellationPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid cancellation payload", "err", err)
			return nil
		}
		if !payload.Valid() {
			logger.Error("missing cancellation fields", "appointment_id", payload.AppointmentID)
			return nil
		}

		subject, body := mailer.CancellationMail(payload)
		status := "sent"
		reason := ""
		if err := sender.Send(payload.Provider.Email, subject, body); err != nil {
			status = "failed"
			reason = err.Error()
			logger.Error("cancellation mail send failed", "err", err, "recipient", payload.Provider.Email)
		}

		if err := deliveries.Insert(ctx, mailer.Delivery{
			AppointmentID: payload.AppointmentID,
			Recipient:     payload.Provider.Email,
			Status:        status,
			Reason:        reason,
		}); err != nil {
			logger.Error("failed to persist mail delivery", "err", err)
			return err
		}

		logger.Info("cancellation processed", "appointment_id", payload.AppointmentID, "status", status)
		return nil
	})
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "gobarber-mailer")
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
