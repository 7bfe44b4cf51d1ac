package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rentease-service/internal/cache"
	"rentease-service/internal/config"
	"rentease-service/internal/handler"
	"rentease-service/internal/middleware"
	"rentease-service/internal/notify"
	"rentease-service/internal/payment"
	"rentease-service/internal/repository"
	"rentease-service/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, c config.Config) error {
	b, err := openBackend(ctx, c)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	var qc service.QueryCache
	if c.CacheEnabled() {
		client, err := cache.Connect(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		qc = cache.New(client, c.CacheTTL)
	}

	var notifier notify.Notifier = notify.Nop{}
	if c.MailEnabled() {
		notifier = notify.NewMailer(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPass, c.SMTPSender)
	}

	var gateway payment.Gateway
	if c.PaymentsEnabled() {
		gateway = payment.NewStripeGateway(c.StripeSecretKey, c.StripeWebhookSecret, c.PaymentCurrency)
	}

	if c.JWTSecret == "" {
		log.Println("[serve] JWT_SECRET is empty, every authenticated request will be rejected")
	}

	svc := services(b, qc, notifier, gateway, c.AdminEmail)
	auth := middleware.NewAuth(c.JWTSecret, repository.NewUserRepository(b.store))
	r := handler.NewRouter(svc, auth, c.CORSOrigins)

	srv := &http.Server{Addr: ":" + c.Port, Handler: r}
	errc := make(chan error, 1)
	go func() {
		log.Printf("RentEase service running on :%s …", c.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("[serve] shutting down")
	return srv.Shutdown(shutdownCtx)
}

func services(b *backend, qc service.QueryCache, notifier notify.Notifier, gateway payment.Gateway, adminEmail string) handler.Services {
	props := repository.NewPropertyRepository(b.store)
	interests := repository.NewInterestRepository(b.store)
	settings := repository.NewSettingsRepository(b.store)
	users := repository.NewUserRepository(b.store)
	messages := repository.NewMessageRepository(b.store)

	return handler.Services{
		Properties: service.NewPropertyService(props, b.blobs, qc, notifier),
		Interests:  service.NewInterestService(interests, props, settings, gateway, notifier, adminEmail),
		Settings:   service.NewSettingsService(settings),
		Users:      service.NewUserService(users),
		Messages:   service.NewMessageService(messages, notifier, adminEmail),
		Reports:    service.NewReportService(props, interests, users),
	}
}
