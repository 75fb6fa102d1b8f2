package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"voicesurvey-backend/lib/configuration"
	"voicesurvey-backend/lib/scrapers/alexa"
	"voicesurvey-backend/lib/scrapers/assistant"
	"voicesurvey-backend/lib/serviceutil"
	"voicesurvey-backend/lib/telemetry"
	"voicesurvey-backend/services/survey"
	"voicesurvey-backend/services/survey/db"

	"github.com/labstack/echo/v4"

	_ "modernc.org/sqlite"
)

type Config struct {
	Port     int    `json:"port"`
	Database string `json:"database"`
	// overridable so a local mock can stand in for the real consoles
	AmazonBaseUrl string `json:"amazon_base_url"`
	GoogleBaseUrl string `json:"google_base_url"`
}

func main() {
	cfg, err := configuration.ReadConfig[Config]("surveyd.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8310
	}
	if cfg.Database == "" {
		cfg.Database = "surveyd.db"
	}

	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "surveyd")
	if err != nil {
		slog.Warn("telemetry disabled", "err", err)
	} else {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}

	database, err := sql.Open("sqlite", cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer database.Close()
	_, err = database.Exec(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to apply schema", err)
	}

	alexaClient, err := alexa.NewClient(alexa.ClientOptions{BaseUrl: cfg.AmazonBaseUrl})
	if err != nil {
		serviceutil.Fatal("failed to initialize alexa client", err)
	}
	assistantClient, err := assistant.NewClient(assistant.ClientOptions{BaseUrl: cfg.GoogleBaseUrl})
	if err != nil {
		serviceutil.Fatal("failed to initialize assistant client", err)
	}

	service := survey.NewService(database, map[survey.Provider]survey.Validator{
		survey.ProviderAlexa:     alexaClient,
		survey.ProviderAssistant: assistantClient,
	})

	e := echo.New()
	e.HideBanner = true
	handler{service: service}.RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		e.Close()
	}()

	slog.Info("listening", "port", cfg.Port)
	err = e.Start(fmt.Sprintf("0.0.0.0:%d", cfg.Port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		serviceutil.Fatal("server stopped", err)
	}
	slog.Info("shut down")
}
