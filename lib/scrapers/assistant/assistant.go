// Package assistant scrapes voice interaction history from the Google
// My Activity console. Responses are positional jspb arrays guarded by
// an anti-JSON prefix; every offset in here was inferred from observed
// payloads and is expected to drift.
package assistant

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"
	"voicesurvey-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/assistant")

var (
	ErrSignedOut = fmt.Errorf("not signed in to a google account")
	ErrNoToken   = fmt.Errorf("could not find an xsrf token in the activity page")
)

const activityPath = "/item"

// marker element class present on the signed-out interstitial
const signedOutMarker = "FootprintsMyactivitySignedoutUi"

var xsrfTokenRegex = regexp.MustCompile(`window\.HISTORY_xsrf='([A-Za-z0-9_\-]{44})'`)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// pagination/backoff knobs, see download.go
	MaxRequests int
	MaxElapsed  time.Duration
	BackoffUnit time.Duration
}

type ClientOptions struct {
	// defaults to https://myactivity.google.com, overridable for tests
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://myactivity.google.com"
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/assistant/http")

	return &Client{
		BaseUrl:     baseUrl,
		Http:        client,
		MaxRequests: 50,
		MaxElapsed:  time.Minute * 2,
		BackoffUnit: time.Second,
	}, nil
}

// FetchToken requests the activity page and extracts the xsrf token.
// Unlike the amazon client, transport errors propagate unchanged so
// the caller can distinguish them.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchToken")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(activityPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch activity page")
		return "", err
	}

	body := string(res.Body())
	if strings.Contains(body, signedOutMarker) {
		span.SetStatus(codes.Error, ErrSignedOut.Error())
		return "", ErrSignedOut
	}

	groups := xsrfTokenRegex.FindStringSubmatch(body)
	if len(groups) < 2 {
		span.SetStatus(codes.Error, ErrNoToken.Error())
		return "", ErrNoToken
	}
	return groups[1], nil
}

// FetchPage issues exactly one activity request. cursor resumes a
// previous page when non-empty; retries are the download loop's
// responsibility.
func (c *Client) FetchPage(ctx context.Context, token, cursor string) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()

	payload := map[string]string{"sig": token}
	if cursor != "" {
		payload["ct"] = cursor
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(payload).
		Post(activityPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch activity batch")
		return "", err
	}
	return string(res.Body()), nil
}
