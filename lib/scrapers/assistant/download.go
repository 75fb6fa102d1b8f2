package assistant

import (
	"context"
	"log/slog"
	"math"
	"time"
	"voicesurvey-backend/lib/interaction"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type DownloadStatus string

const (
	DownloadSuccess      DownloadStatus = "success"
	DownloadMaxedOut     DownloadStatus = "maxedOut"
	DownloadTimedOut     DownloadStatus = "timedOut"
	DownloadError        DownloadStatus = "error"
	DownloadNotAttempted DownloadStatus = "notAttempted"
)

// DownloadResult always carries whatever was collected before the loop
// stopped; partial data is valid output, never discarded on a cap.
type DownloadResult struct {
	Interactions []interaction.Interaction
	Errors       []error
	Status       DownloadStatus
}

// backoff grows logarithmically in the request count, monotonically
// non-decreasing, so long histories don't hammer the endpoint.
func (c *Client) backoff(requests int) time.Duration {
	return time.Duration(math.Log2(float64(requests)+2) * float64(c.BackoffUnit))
}

// DownloadAll drives the paginated activity download: fetch and parse
// page zero, then follow the continuation cursor with increasing waits
// until it drains, a page fails, or the request/elapsed-time ceilings
// are hit.
func (c *Client) DownloadAll(ctx context.Context, token string) DownloadResult {
	ctx, span := tracer.Start(ctx, "DownloadAll")
	defer span.End()

	result := DownloadResult{Status: DownloadNotAttempted}
	started := time.Now()
	requests := 0
	cursor := ""

	for {
		raw, err := c.FetchPage(ctx, token, cursor)
		requests++
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "activity batch fetch failed")
			result.Errors = append(result.Errors, err)
			result.Status = DownloadError
			return result
		}

		page, err := ParsePage(raw)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "activity batch unusable")
			result.Errors = append(result.Errors, err)
			result.Status = DownloadError
			return result
		}

		result.Interactions = append(result.Interactions, page.Interactions...)
		result.Errors = append(result.Errors, page.Errors...)

		if page.EmptyList && page.Cursor != "" {
			// valid empty terminal state, but a cursor alongside a
			// null list has never been observed
			slog.WarnContext(ctx, "null activity list arrived with a continuation token", "cursor", page.Cursor)
		}

		cursor = page.Cursor
		if cursor == "" {
			result.Status = DownloadSuccess
			break
		}
		if requests >= c.MaxRequests {
			result.Status = DownloadMaxedOut
			break
		}
		if time.Since(started) > c.MaxElapsed {
			result.Status = DownloadTimedOut
			break
		}

		select {
		case <-time.After(c.backoff(requests)):
		case <-ctx.Done():
			result.Errors = append(result.Errors, ctx.Err())
			result.Status = DownloadError
			return result
		}
	}

	span.SetAttributes(
		attribute.Int("requests", requests),
		attribute.Int("interactions", len(result.Interactions)),
		attribute.String("status", string(result.Status)),
	)
	return result
}
