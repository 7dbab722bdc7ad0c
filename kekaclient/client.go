package kekaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/105.0.0.0 Safari/537.36"

// TokenSource provides the bearer credential attached to every
// request. Implementations may renew the credential as a side
// effect, which can block for the duration of a browser login.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed-credential TokenSource.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// StatusError is a non-200 vendor response, surfaced verbatim.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vendor returned %d: %s", e.Code, e.Body)
}

// Client talks to the vendor dashboard API.
type Client struct {
	Base *url.URL

	client    *http.Client
	tokens    TokenSource
	origin    string
	userAgent string
}

// New builds a client for https://{subdomain}.keka.com.
func New(subdomain string, tokens TokenSource) (*Client, error) {
	return NewWithBase(fmt.Sprintf("https://%s.keka.com", subdomain), tokens)
}

// NewWithBase builds a client against an explicit base URL. Used
// in tests and dev setups.
func NewWithBase(base string, tokens TokenSource) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	return &Client{
		Base: u,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:    tokens,
		origin:    base,
		userAgent: defaultUserAgent,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*http.Request, error) {
	reqUrl := c.Base.JoinPath("/k/dashboard/api", endpoint)

	if query != nil {
		reqUrl.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqUrl.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}

	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("content-type", "application/json; charset=UTF-8")
	req.Header.Set("origin", c.origin)
	req.Header.Set("referer", c.origin+"/")
	req.Header.Set("user-agent", c.userAgent)
	req.Header.Set("x-requested-with", "XMLHttpRequest")
	req.Header.Set("authorization", "Bearer "+token)

	return req, nil
}

func do[T any](c *Client, req *http.Request) (*T, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// RemoteClockIn submits a punch. A non-200 response is returned
// as a *StatusError carrying the vendor's status and body.
func (c *Client) RemoteClockIn(ctx context.Context, clockIn ClockInRequest) error {
	body, err := json.Marshal(clockIn)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/mytime/attendance/remoteclockin", nil, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}

// Holidays fetches the holiday calendar for the user's location.
func (c *Client) Holidays(ctx context.Context) (*HolidayResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/dashboard/holidays", nil, nil)
	if err != nil {
		return nil, err
	}

	return do[HolidayResponse](c, req)
}

// LeaveEvents fetches the user's leave calendar between two dates
// (inclusive).
func (c *Client) LeaveEvents(ctx context.Context, from, to time.Time) ([]LeaveEvent, error) {
	query := url.Values{}
	query.Add("fromDate", from.Format(time.DateOnly))
	query.Add("toDate", to.Format(time.DateOnly))

	req, err := c.newRequest(ctx, http.MethodGet, "/me/leave/calendarevents", query, nil)
	if err != nil {
		return nil, err
	}

	events, err := do[[]LeaveEvent](c, req)
	if err != nil {
		return nil, err
	}

	return *events, nil
}

// AttendanceRequests fetches the raw clock-in/out entries recorded
// for a date.
func (c *Client) AttendanceRequests(ctx context.Context, date time.Time) ([]AttendanceEntry, error) {
	query := url.Values{}
	query.Add("fromDate", date.Format(time.DateOnly))
	query.Add("toDate", date.Format(time.DateOnly))

	req, err := c.newRequest(ctx, http.MethodGet, "/mytime/attendance/attendancerequests", query, nil)
	if err != nil {
		return nil, err
	}

	entries, err := do[[]AttendanceEntry](c, req)
	if err != nil {
		return nil, err
	}

	return *entries, nil
}

// PublicProfile fetches the vendor-side profile of the logged-in
// user, principally for its employee id.
func (c *Client) PublicProfile(ctx context.Context) (*PublicProfile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/me/publicprofile", nil, nil)
	if err != nil {
		return nil, err
	}

	return do[PublicProfile](c, req)
}
