package assistant

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"voicesurvey-backend/lib/validation"

	"go.opentelemetry.io/otel/codes"
)

// DefaultPolicy: at least 30 interactions and the earliest one at
// least 30 days old. Deliberately stricter than the amazon policy.
var DefaultPolicy = validation.Policy{
	MinInteractions: 30,
	MinAccountAge:   time.Hour * 24 * 30,
}

// Validate runs the whole login/eligibility check for the google
// provider and maps every outcome onto one of the four terminal
// states.
func (c *Client) Validate(ctx context.Context) validation.Result {
	ctx, span := tracer.Start(ctx, "Validate")
	defer span.End()

	token, err := c.FetchToken(ctx)
	if errors.Is(err, ErrSignedOut) {
		return validation.Result{Status: validation.StatusLoggedOut}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token acquisition failed")
		slog.ErrorContext(ctx, "failed to acquire google xsrf token", "err", err)
		return validation.Result{Status: validation.StatusError, Errors: []error{err}}
	}

	download := c.DownloadAll(ctx, token)
	if download.Status == DownloadError && len(download.Interactions) == 0 {
		return validation.Result{Status: validation.StatusError, Errors: download.Errors}
	}

	result := validation.Result{Errors: download.Errors}
	if reason, ok := DefaultPolicy.Evaluate(download.Interactions, time.Now()); !ok {
		result.Status = validation.StatusIneligible
		result.IneligibilityReason = reason
		return result
	}
	result.Status = validation.StatusLoggedIn
	result.Interactions = download.Interactions
	return result
}
