// Package schoolsby is a scraping client for the schools.by school
// management portal. It logs in with a username/password pair, fetches
// the portal's HTML pages and extracts typed records from markup that
// was designed for browsers, tolerating the portal's many layout
// variants.
package schoolsby

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"schoolsby-client/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/schoolsby")

const defaultAuthURL = "https://schools.by"

// address the portal answers on when its DNS is blocked; used by the
// IPBypass connectivity workaround
const bypassAddr = "178.172.160.30"

// every school lives on its own subdomain, e.g. https://demo.schools.by/
var baseURLPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+\.[a-zA-Z]+/$`)

type Options struct {
	// school subdomain prefix, e.g. "https://demo.schools.by/"
	// (trailing slash required)
	BaseURL string
	// root portal host handling logins; defaults to
	// "https://schools.by", overridable for tests
	AuthURL string
	// dial a literal portal IP while keeping the virtual host intact.
	// Connectivity workaround only, it must not change what is parsed.
	IPBypass bool
}

// Client is the session gateway: it owns the shared transport and
// wraps every authenticated fetch with uniform error classification.
// Create it once and share it, the transport is read-only after
// construction.
type Client struct {
	baseURL *url.URL
	authURL string

	http *resty.Client
	// same transport, but keeps redirect responses so Location
	// headers can be inspected (login handshake, user-id probe)
	noRedirect *resty.Client
}

func NewClient(opts Options) (*Client, error) {
	if !baseURLPattern.MatchString(opts.BaseURL) {
		return nil, fmt.Errorf("base url %q does not look like a school subdomain", opts.BaseURL)
	}
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	authURL := opts.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	authURL = strings.TrimSuffix(authURL, "/")

	c := &Client{
		baseURL:    baseURL,
		authURL:    authURL,
		http:       newResty(opts, true),
		noRedirect: newResty(opts, false),
	}
	return c, nil
}

func newResty(opts Options, followRedirects bool) *resty.Client {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	transport := &http.Transport{}
	if opts.IPBypass {
		dialer := &net.Dialer{Timeout: time.Second * 10}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			_, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			return dialer.DialContext(ctx, network, net.JoinHostPort(bypassAddr, port))
		}
		// certificate is for the hostname, which we still send via SNI
		transport.TLSClientConfig = &tls.Config{}
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(transport)

	if followRedirects {
		client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	} else {
		client.GetClient().CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	restyutil.InstrumentClient(client, "scrapers/schoolsby/http")
	return client
}

// BaseURL returns the configured school subdomain prefix, with the
// trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) pageURL(path string) string {
	return c.baseURL.String() + strings.TrimPrefix(path, "/")
}

func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func sessionCleared(cookies []*http.Cookie) bool {
	for _, cookie := range cookies {
		if cookie.Name == "sessionid" && cookie.Value == "" {
			return true
		}
	}
	return false
}

func findCookie(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) credentialCookies(req *resty.Request, creds *Credentials) *resty.Request {
	if creds == nil {
		return req
	}
	return req.
		SetCookie(&http.Cookie{Name: "csrftoken", Value: creds.CSRFToken}).
		SetCookie(&http.Cookie{Name: "sessionid", Value: creds.SessionID})
}

// Login performs the portal's two-stage handshake: fetch the login
// form for a csrf token plus whatever hidden fields the form carries,
// then submit the credentials. A redirect target still containing
// "login" means the portal rejected the pair.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginURL := c.authURL + "/login"

	res, err := c.http.R().
		SetContext(ctx).
		Get(loginURL)
	if err != nil {
		return Credentials{}, classifyTransport(err)
	}
	firstToken := findCookie(res.Cookies(), "csrftoken")
	if firstToken == "" {
		return Credentials{}, parseErrorf("/login", "csrftoken cookie missing from login form response")
	}

	form := map[string]string{}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err == nil {
		doc.Find("form input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
			name := input.AttrOr("name", "")
			if name != "" {
				form[name] = input.AttrOr("value", "")
			}
		})
	}
	form["csrfmiddlewaretoken"] = firstToken
	form["username"] = username
	form["password"] = password

	res, err = c.noRedirect.R().
		SetContext(ctx).
		SetCookie(&http.Cookie{Name: "csrftoken", Value: firstToken}).
		SetHeader("referer", loginURL).
		SetFormData(form).
		Post(loginURL)
	if err != nil {
		return Credentials{}, classifyTransport(err)
	}

	location := res.Header().Get("location")
	if location == "" {
		location = loginURL
	}
	if strings.Contains(location, "login") {
		return Credentials{}, ErrAuthorizationFailed
	}

	csrfToken := findCookie(res.Cookies(), "csrftoken")
	sessionID := findCookie(res.Cookies(), "sessionid")
	if csrfToken == "" || sessionID == "" {
		return Credentials{}, parseErrorf("/login", "session cookies missing after login submit")
	}
	return Credentials{CSRFToken: csrfToken, SessionID: sessionID}, nil
}

// CheckCookies reports whether the credentials are still accepted by
// the portal. An empty-valued sessionid cookie in the response means
// the session was dropped server-side.
func (c *Client) CheckCookies(ctx context.Context, creds Credentials) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:CheckCookies")
	defer span.End()

	res, err := c.credentialCookies(c.http.R().SetContext(ctx), &creds).
		Get(c.baseURL.String())
	if err != nil {
		return false, classifyTransport(err)
	}
	return !sessionCleared(res.Cookies()), nil
}

// UserID resolves the account id behind the credentials: the login
// page redirects an authenticated browser to its own profile, and the
// redirect target's last path segment is the id.
func (c *Client) UserID(ctx context.Context, creds Credentials) (int, error) {
	ctx, span := tracer.Start(ctx, "client:UserID")
	defer span.End()

	res, err := c.credentialCookies(c.noRedirect.R().SetContext(ctx), &creds).
		Get(c.authURL + "/login")
	if err != nil {
		return 0, classifyTransport(err)
	}
	if sessionCleared(res.Cookies()) {
		return 0, ErrBadCredentials
	}
	switch res.StatusCode() {
	case http.StatusNotFound:
		return 0, parseErrorf("/login", "login page was not found")
	case http.StatusOK:
		// no redirect happened, so the portal does not consider the
		// session logged in
		return 0, ErrBadCredentials
	}

	location := res.Header().Get("location")
	idx := strings.LastIndexByte(location, '/')
	if idx < 0 {
		return 0, parseErrorf("/login", "user id missing from redirect location %q", location)
	}
	id, err := strconv.Atoi(location[idx+1:])
	if err != nil {
		return 0, parseErrorf("/login", "user id missing from redirect location %q", location)
	}
	return id, nil
}

// get fetches an authenticated page and classifies the transport-level
// outcomes every extractor shares. `creds` may be nil for fully public
// pages. It returns the parsed document and the resolved (final) URL.
func (c *Client) get(ctx context.Context, path string, creds *Credentials) (*goquery.Document, *url.URL, error) {
	res, err := c.credentialCookies(c.http.R().SetContext(ctx), creds).
		Get(c.pageURL(path))
	if err != nil {
		return nil, nil, classifyTransport(err)
	}

	finalURL := res.RawResponse.Request.URL
	if sessionCleared(res.Cookies()) || strings.Contains(finalURL.String(), "already-redirected") {
		return nil, nil, ErrBadCredentials
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, nil, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, nil, parseErrorf(path, "body is not parsable html: %v", err)
	}
	return doc, finalURL, nil
}
