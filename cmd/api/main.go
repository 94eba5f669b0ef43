package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"household-med-tracker/internal/adapters/auth/sentinel"
	"household-med-tracker/internal/adapters/notify/pushgw"
	"household-med-tracker/internal/platform/logger"
	"household-med-tracker/internal/ports/auth"
	"household-med-tracker/internal/ports/notify"
	"household-med-tracker/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env es opcional; en prod las vars vienen del entorno.
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r, dispatcher := router.NewRouter(router.Options{
		AuthVerifier: buildVerifier(log),
		Logger:       log,
		Notifier:     buildNotifier(log),
	})

	if dispatcher != nil {
		if err := dispatcher.Start(); err != nil {
			log.Error("reminder dispatcher failed to start", map[string]any{"error": err.Error()})
		} else {
			defer dispatcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// buildVerifier arma el verifier de Sentinel solo si está configurado;
// sin AUTH_BASE_URL el servicio queda en modo dev (X-Debug-User-ID).
func buildVerifier(log logger.Logger) auth.AuthVerifier {
	baseURL := strings.TrimSpace(os.Getenv("AUTH_BASE_URL"))
	if baseURL == "" {
		log.Warn("auth verifier not configured, running in dev mode", nil)
		return nil
	}

	client, err := sentinel.NewClient(sentinel.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("AUTH_API_KEY"),
	})
	if err != nil {
		log.Error("invalid auth config, running in dev mode", map[string]any{"error": err.Error()})
		return nil
	}

	return sentinel.NewVerifier(client)
}

// buildNotifier arma el notifier de push. Con NOTIFY_DRY_RUN=true funciona
// sin gateway (solo loguea); sin config y sin dry run, no hay recordatorios.
func buildNotifier(log logger.Logger) notify.Notifier {
	baseURL := strings.TrimSpace(os.Getenv("PUSH_BASE_URL"))
	dryRun := strings.EqualFold(strings.TrimSpace(os.Getenv("NOTIFY_DRY_RUN")), "true")

	if baseURL == "" && !dryRun {
		log.Warn("push gateway not configured, reminders disabled", nil)
		return nil
	}

	client, err := pushgw.NewClient(pushgw.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("PUSH_API_KEY"),
	})
	if err != nil {
		log.Error("invalid push config, reminders disabled", map[string]any{"error": err.Error()})
		return nil
	}

	return pushgw.NewNotifier(client, log)
}
