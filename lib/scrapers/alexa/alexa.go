// Package alexa scrapes voice interaction history from the Amazon
// account console. The console is an undocumented surface: token
// acquisition, the transcript endpoint and the response markup are all
// inferred from observed traffic and treated as unstable.
package alexa

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"time"
	"voicesurvey-backend/lib/htmlutil"
	"voicesurvey-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/alexa")

var (
	ErrSignedOut    = fmt.Errorf("not signed in to an amazon account")
	ErrNoToken      = fmt.Errorf("could not find a csrf token in the overview page")
	ErrCsrfRejected = fmt.Errorf("amazon rejected the csrf token")
)

const (
	overviewPath = "/hz/mycd/myx"
	activityPath = "/hz/mycd/alexa/activityTranscripts"
)

// literal body amazon returns when the csrf token is stale or bogus
const csrfFailureBody = `{"ERROR":"{\"success\":false,\"error\":\"CSRF_VALIDATION_FAILED\"}"}`

var csrfTokenRegex = regexp.MustCompile(`csrfToken\s*=\s*"([^"]+)"`)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to https://www.amazon.com, overridable for tests
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://www.amazon.com"
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
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/alexa/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// FetchToken requests the account overview page and pulls the csrf
// token out of its inline script. A signed-out account is reported as
// ErrSignedOut, an overview page without a token (format drift) as
// ErrNoToken. The returned token is percent-encoded, ready for reuse
// as a form parameter.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchToken")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(overviewPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch overview page")
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse overview page html")
		return "", err
	}
	if len(doc.Find("form[name=signIn]").Nodes) > 0 {
		span.SetStatus(codes.Error, ErrSignedOut.Error())
		return "", ErrSignedOut
	}

	for _, script := range doc.Find("script").Nodes {
		groups := csrfTokenRegex.FindStringSubmatch(htmlutil.GetText(script))
		if len(groups) < 2 {
			continue
		}
		return url.QueryEscape(groups[1]), nil
	}
	span.SetStatus(codes.Error, ErrNoToken.Error())
	return "", ErrNoToken
}

// FetchActivity downloads the raw activity transcript markup in one
// request. Amazon's export has no pagination: the date range below
// covers all time and the batch size is effectively unbounded.
func (c *Client) FetchActivity(ctx context.Context, token string) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchActivity")
	defer span.End()

	body := fmt.Sprintf(
		"csrfToken=%s&rangeType=custom&startDate=000000000000&endDate=9999999999999&batchSize=999999&shouldParseStartDate=false&shouldParseEndDate=false",
		token,
	)
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post(activityPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch activity transcripts")
		return "", err
	}

	raw := string(res.Body())
	if raw == csrfFailureBody {
		span.SetStatus(codes.Error, ErrCsrfRejected.Error())
		return "", ErrCsrfRejected
	}
	return raw, nil
}
