// Package chrome implements token.CredentialProvider with a
// scripted browser login. The bearer token never appears in the
// page itself; it is captured from the Authorization headers of
// the XHR traffic the dashboard fires after login.
package chrome

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	passwordLoginButton = `//*[@id="login-container-center"]/div/div/div[3]/form/button[2]`
	submitButton        = `//*[@id="login-container-center"]/div/div/form/div/div[4]/div/button`
)

var bearerRe = regexp.MustCompile(`Bearer\s+([A-Za-z0-9._-]+)`)

type Provider struct {
	// LoginURL is the tenant login page, e.g. https://acme.keka.com/.
	LoginURL string

	// Headless controls whether a visible browser window is used.
	Headless bool

	// Timeout bounds the whole login, navigation included.
	Timeout time.Duration

	Logger *slog.Logger
}

// Login drives the login form and returns the first bearer token
// observed on the wire. Blocks until the token is captured, the
// timeout elapses, or ctx is cancelled.
func (p *Provider) Login(ctx context.Context, email, password string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.Headless),
		chromedp.Flag("incognito", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := p.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	tokens := make(chan string, 1)
	chromedp.ListenTarget(browserCtx, func(ev any) {
		var headers network.Headers
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			headers = e.Request.Headers
		case *network.EventRequestWillBeSentExtraInfo:
			headers = e.Headers
		default:
			return
		}

		for _, key := range []string{"Authorization", "authorization"} {
			value, ok := headers[key].(string)
			if !ok {
				continue
			}
			if m := bearerRe.FindStringSubmatch(value); m != nil {
				select {
				case tokens <- m[1]:
				default:
				}
				return
			}
		}
	})

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(p.LoginURL),
		chromedp.WaitVisible(passwordLoginButton, chromedp.BySearch),
		chromedp.Click(passwordLoginButton, chromedp.BySearch),
		chromedp.WaitVisible(`#email`, chromedp.ByID),
		chromedp.SendKeys(`#email`, email, chromedp.ByID),
		chromedp.SendKeys(`#password`, password, chromedp.ByID),
		chromedp.Click(submitButton, chromedp.BySearch),
	)
	if err != nil {
		return "", fmt.Errorf("login navigation failed: %w", err)
	}

	p.Logger.Info("submitted login form, waiting for bearer token")

	select {
	case bearer := <-tokens:
		p.Logger.Info("captured bearer token")
		return bearer, nil
	case <-browserCtx.Done():
		return "", fmt.Errorf("no bearer token observed before timeout: %w", browserCtx.Err())
	}
}
