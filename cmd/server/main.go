package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"easychat/auth"
	"easychat/contract"
	easyhttp "easychat/infrastructure/http"
	"easychat/internal"
	"easychat/mail"
	"easychat/notifier"
	"easychat/repositories"
	"easychat/runtime"
	"easychat/runtime/workers"
	"easychat/secrets"
	"easychat/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secretStore := secrets.NewEnvStore()

	// Token signing key comes from the secret store; the built-in development
	// default stays in place when the secret is absent.
	if signingSecret, err := secretStore.Resolve(ctx, config.SigningSecretName); err == nil {
		auth.SetSigningKey(signingSecret)
	} else {
		logger.Warn("signing secret not configured, using development key", "error", err)
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & services
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)

	smtpConfig := mail.SMTPConfig{
		Host:    config.SMTPHost,
		Port:    config.SMTPPort,
		User:    config.SMTPUser,
		UseTLS:  config.SMTPUseTLS,
		Timeout: config.SMTPTimeout,
	}

	mailPassword, err := secretStore.Resolve(ctx, config.MailSecretName)
	if err != nil {
		logger.Warn("mail credential not configured, outbound mail will fail", "error", err)
	}
	resetMailer := mail.NewSMTPMailer(smtpConfig, mailPassword)

	authService := services.NewAuthService(logger, userRepository, resetMailer,
		config.SenderAddr, config.ResetURL, config.ResetTokenTTL, config.AuthTokenDuration)

	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(logger, registry, messageRepository, config.BufferSize)
	chatService := services.NewChatService(orchestrator)

	// 4. Realtime delivery worker
	fanout := workers.NewEventFanout(logger, orchestrator.Batches(), registry)
	go func() {
		logger.Info("Starting worker", "name", contract.GetWorkerName(fanout))
		if err := fanout.Run(ctx); err != nil {
			logger.Error("fanout worker stopped", "error", err)
		}
	}()

	// 5. Notifier: one email per created message, observing the same
	// change stream as every other subscriber.
	if config.NotifierEnabled {
		factory := notifier.MailerFactory(func(credential string) contract.Mailer {
			return mail.NewSMTPMailer(smtpConfig, credential)
		})
		n := notifier.New(logger, secretStore, factory,
			config.MailSecretName, config.SenderAddr, splitAddresses(config.NotifyBcc))
		disposeNotifier := chatService.Subscribe(notifier.NewSink(n))
		defer disposeNotifier()
	}

	// 6. HTTP server
	server := easyhttp.NewServer(logger, authService, chatService)
	httpServer := &http.Server{
		Addr:    config.HTTPAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", config.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		return exitRuntime, fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("http shutdown failed: %w", err)
	}

	return exitOK, nil
}

func splitAddresses(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
