package alexa

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"voicesurvey-backend/lib/validation"

	"go.opentelemetry.io/otel/codes"
)

// DefaultPolicy requires strictly more than 10 interactions. Amazon's
// export carries no timestamps so there is no account age check; the
// threshold deliberately differs from the assistant policy.
var DefaultPolicy = validation.Policy{MinInteractions: 11}

// empty batches from amazon are usually transient, one more request
// tends to resolve them
const fetchAttempts = 3

// Validate runs the whole login/eligibility check for the amazon
// provider. Transport problems are folded into an error status rather
// than returned, the survey frontend only ever sees one of the four
// terminal states.
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
		slog.ErrorContext(ctx, "failed to acquire amazon csrf token", "err", err)
		return validation.Result{Status: validation.StatusError, Errors: []error{err}}
	}

	result := validation.Result{Status: validation.StatusError}
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		raw, err := c.FetchActivity(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "activity download failed")
			return validation.Result{Status: validation.StatusError, Errors: []error{err}}
		}

		interactions, errs := ParseActivity(raw)
		result.Errors = append(result.Errors, errs...)
		if len(interactions) == 0 && attempt < fetchAttempts-1 {
			slog.WarnContext(ctx, "empty amazon activity batch, retrying", "attempt", attempt+1)
			continue
		}

		if reason, ok := DefaultPolicy.Evaluate(interactions, time.Now()); !ok {
			result.Status = validation.StatusIneligible
			result.IneligibilityReason = reason
			return result
		}
		result.Status = validation.StatusLoggedIn
		result.Interactions = interactions
		return result
	}
	return result
}
