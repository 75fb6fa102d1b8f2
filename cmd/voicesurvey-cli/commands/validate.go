package commands

import (
	"context"
	"log/slog"
	"os"
	"time"
	"voicesurvey-backend/lib/configuration"
	"voicesurvey-backend/lib/scrapers/alexa"
	"voicesurvey-backend/lib/scrapers/assistant"
	"voicesurvey-backend/lib/serviceutil"
	"voicesurvey-backend/lib/validation"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type validateConfig struct {
	AmazonBaseUrl string `json:"amazon_base_url"`
	GoogleBaseUrl string `json:"google_base_url"`
}

var showTranscripts *bool

func init() {
	showTranscripts = validateCmd.Flags().Bool("transcripts", false, "Print every collected interaction.")
	rootCmd.AddCommand(validateCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var validateCmd = &cobra.Command{
	Use:   "validate <alexa|assistant>",
	Short: "Run one provider's login/eligibility check against a live session.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _ := configuration.ReadConfig[validateConfig]("voicesurvey.json5")

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*5)
		defer cancel()

		var result validation.Result
		switch args[0] {
		case "alexa":
			client, err := alexa.NewClient(alexa.ClientOptions{BaseUrl: cfg.AmazonBaseUrl})
			if err != nil {
				serviceutil.Fatal("failed to initialize alexa client", err)
			}
			result = client.Validate(ctx)
		case "assistant":
			client, err := assistant.NewClient(assistant.ClientOptions{BaseUrl: cfg.GoogleBaseUrl})
			if err != nil {
				serviceutil.Fatal("failed to initialize assistant client", err)
			}
			result = client.Validate(ctx)
		default:
			slog.Error("unknown provider", "provider", args[0])
			os.Exit(1)
		}

		t := newTable()
		t.AppendHeader(table.Row{"status", "interactions", "reason", "errors"})
		t.AppendRow(table.Row{
			result.Status,
			len(result.Interactions),
			result.IneligibilityReason,
			len(result.Errors),
		})
		t.Render()

		for _, err := range result.Errors {
			slog.Warn("collected error", "err", err)
		}

		if *showTranscripts {
			t := newTable()
			t.AppendHeader(table.Row{"time", "recording", "transcript"})
			for _, i := range result.Interactions {
				ts := ""
				if i.Timestamp > 0 {
					ts = time.UnixMilli(i.Timestamp).Format(time.RFC3339)
				}
				t.AppendRow(table.Row{ts, i.RecordingAvailable, i.Transcript})
			}
			t.Render()
		}
	},
}
