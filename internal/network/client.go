package network

import (
	"errors"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

var ErrRequestFailed = errors.New("request failed")

const (
	DefaultUserAgent = "prepsite/1 (+https://interviewsense.org)"
	DefaultTimeout   = 30 * time.Second
)

// Options configures the API transport.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// SessionCookie is sent verbatim as the Cookie header when set.
	SessionCookie string
	Proxy         string
}

type Client struct {
	http          tls_client.HttpClient
	userAgent     string
	sessionCookie string
}

func NewClient(opts Options) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clientOpts := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout.Round(time.Second) / time.Second)),
		tls_client.WithCookieJar(jar),
	}
	if proxy := strings.TrimSpace(opts.Proxy); proxy != "" {
		clientOpts = append(clientOpts, tls_client.WithProxyUrl(proxy))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), clientOpts...)
	if err != nil {
		return nil, err
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:          client,
		userAgent:     userAgent,
		sessionCookie: strings.TrimSpace(opts.SessionCookie),
	}, nil
}

func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.sessionCookie != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	return resp, nil
}
