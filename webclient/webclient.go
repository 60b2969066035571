package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	pikax "github.com/Akashic-y/Pikax"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultWwwUrl      = "https://www.pixiv.net"
	defaultAccountsUrl = "https://accounts.pixiv.net"

	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

// Client is the session bound HTTP layer. All requests share one cookie jar,
// so whatever cookies a login strategy establishes are carried by every
// subsequent call.
type Client struct {
	log pikax.Logger

	client *http.Client

	wwwUrl      *url.URL
	accountsUrl *url.URL
}

func NewClient(log pikax.Logger) (*Client, error) {
	return NewClientWithUrls(log, defaultWwwUrl, defaultAccountsUrl)
}

// NewClientWithUrls is NewClient with overridable endpoints, used by tests to
// point the client at a local server.
func NewClientWithUrls(log pikax.Logger, wwwUrl, accountsUrl string) (*Client, error) {
	www, err := url.Parse(wwwUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid www base url: %w", err)
	}

	accounts, err := url.Parse(accountsUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid accounts base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed creating cookie jar: %w", err)
	}

	return &Client{
		log:         log,
		wwwUrl:      www,
		accountsUrl: accounts,
		client:      &http.Client{Jar: jar, Timeout: requestTimeout},
	}, nil
}

// do performs one request, retrying transport errors and server errors with
// exponential backoff. Client errors are not retried.
func (c *Client) do(ctx context.Context, method string, reqUrl *url.URL, form url.Values) ([]byte, error) {
	var respBody []byte
	err := backoff.Retry(func() error {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, reqUrl.String(), body)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", pikax.UserAgent())
		req.Header.Set("Referer", c.wwwUrl.String())
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}

		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %d", resp.StatusCode)
		} else if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("request failed with status %d", resp.StatusCode))
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx))
	if err != nil {
		return nil, err
	}

	return respBody, nil
}

func (c *Client) get(ctx context.Context, reqUrl *url.URL) ([]byte, error) {
	return c.do(ctx, http.MethodGet, reqUrl, nil)
}

func (c *Client) postForm(ctx context.Context, reqUrl *url.URL, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, reqUrl, form)
}

// Fetch retrieves an absolute URL through the session, e.g. an image served
// from a CDN that checks the referer.
func (c *Client) Fetch(ctx context.Context, rawUrl string) ([]byte, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch url: %w", err)
	}

	return c.get(ctx, u)
}

// Cookies returns the session cookies currently applicable to the web
// frontend.
func (c *Client) Cookies() []*http.Cookie {
	return c.client.Jar.Cookies(c.wwwUrl)
}

// ReplaceCookies throws away the whole jar and installs the given cookies.
// This is clear-then-set, not a merge.
func (c *Client) ReplaceCookies(cookies []*http.Cookie) error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed creating cookie jar: %w", err)
	}

	jar.SetCookies(c.wwwUrl, cookies)
	c.client.Jar = jar
	return nil
}
