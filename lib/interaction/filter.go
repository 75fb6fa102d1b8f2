package interaction

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("interaction")

// transcripts the providers emit for entries with no usable speech,
// matched exactly after trimming surrounding whitespace
var placeholderTranscripts = map[string]bool{
	"Alexa":                                  true,
	"Google Assistant":                       true,
	"Unknown voice command":                  true,
	"Text not available":                     true,
	"Audio could not be understood":          true,
	"Audio was not intended for this device": true,
}

// Good reports whether an interaction is worth presenting. Placeholder
// transcripts are rejected outright. Recording-less interactions are
// accepted without any network traffic; recording-bearing ones get a
// liveness probe, expired or dead links are rejected.
func Good(ctx context.Context, client *resty.Client, i Interaction) bool {
	if placeholderTranscripts[strings.TrimSpace(i.Transcript)] {
		return false
	}
	if !i.RecordingAvailable {
		return true
	}

	res, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(i.Url)
	if err != nil {
		slog.WarnContext(ctx, "recording liveness probe failed", "url", i.Url, "err", err)
		return false
	}
	defer res.RawBody().Close()

	if res.Header().Get("Content-Type") == "" {
		slog.DebugContext(ctx, "recording has no content type, dropping", "url", i.Url)
		return false
	}
	return true
}

// Filter returns the interactions that pass Good, preserving input
// order. Liveness probes run concurrently since they are independent
// of one another; probe failures only ever drop the probed record.
func Filter(ctx context.Context, client *resty.Client, list []Interaction) []Interaction {
	ctx, span := tracer.Start(ctx, "Filter")
	defer span.End()

	keep := make([]bool, len(list))
	wg := sync.WaitGroup{}
	for idx, i := range list {
		wg.Add(1)
		go func(idx int, i Interaction) {
			defer wg.Done()
			keep[idx] = Good(ctx, client, i)
		}(idx, i)
	}
	wg.Wait()

	var out []Interaction
	for idx, ok := range keep {
		if ok {
			out = append(out, list[idx])
		}
	}
	return out
}
