package msauth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeNavigator implements Navigator on top of a Chromium instance driven
// through the DevTools protocol. Interactive logins run a visible window;
// silent refreshes run headless.
type ChromeNavigator struct {
	// ExecPath overrides the browser binary chromedp discovers on PATH.
	ExecPath string
}

// Navigate opens authURL and resolves with the first URL observed under
// redirectPrefix. The hidden surface never finishes loading the redirect
// target, so outbound requests and frame navigations are both watched
// instead of waiting for a page load. The surface is torn down when ctx is
// done or once a result is delivered, whichever comes first.
func (n ChromeNavigator) Navigate(ctx context.Context, authURL, redirectPrefix string, visible bool) (string, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if n.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(n.ExecPath))
	}
	if visible {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	result := make(chan string, 1)
	var once sync.Once
	deliver := func(u string) {
		once.Do(func() { result <- u })
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			// CDP strips the fragment off Request.URL and reports it
			// separately.
			if strings.HasPrefix(e.Request.URL, redirectPrefix) {
				deliver(e.Request.URL + e.Request.URLFragment)
			}
		case *page.EventFrameNavigated:
			if strings.HasPrefix(e.Frame.URL, redirectPrefix) {
				deliver(e.Frame.URL + e.Frame.URLFragment)
			}
		}
	})

	runErr := make(chan error, 1)
	go func() {
		// Run blocks until the load event, which for the redirect target
		// may never fire; the listener above is the real completion path.
		// A failure here (browser missing, launch refused) must still
		// reach the caller or an interactive login would hang forever.
		if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(authURL)); err != nil && tabCtx.Err() == nil {
			runErr <- err
		}
	}()

	select {
	case redirectURL := <-result:
		return redirectURL, nil
	case err := <-runErr:
		// A redirect observed in the same instant wins over the error.
		select {
		case redirectURL := <-result:
			return redirectURL, nil
		default:
		}
		return "", fmt.Errorf("browser session failed: %w", err)
	case <-tabCtx.Done():
		return "", tabCtx.Err()
	}
}
