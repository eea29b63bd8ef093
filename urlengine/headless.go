package urlengine

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/extractcore/extractcore/coretype"
)

// HtmlUrlHeadless renders a page in a headless Chromium instance before
// extracting content, for pages whose content only appears after
// client-side JavaScript execution. The browser lifecycle (launch with
// anti-detection flags, lazy single-instance reuse, stealth page creation,
// navigate-then-wait-load) is adapted from
// hazyhaar-chrc/domwatch/internal/browser/manager.go and tab.go, trimmed
// down from that package's DOM-mutation-watching use case to a single
// outerHTML snapshot per call.
type HtmlUrlHeadless struct {
	once    sync.Once
	browser *rod.Browser
	launchErr error
}

func NewHtmlUrlHeadless() *HtmlUrlHeadless {
	return &HtmlUrlHeadless{}
}

func (e *HtmlUrlHeadless) Name() string { return "html_url_headless" }

func (e *HtmlUrlHeadless) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes: []string{"text/html"},
		Priority:  30,
		Category:  coretype.CategoryURLs,
	}
}

// IsAvailable checks for any of the common Chromium binary names on PATH,
// the same subprocess-probe idiom used for ffmpeg/ffprobe availability
// elsewhere in this repo — go-rod's launcher can also download its own
// copy, but we don't want an engine's first real request to trigger an
// unexpected multi-megabyte download.
func (e *HtmlUrlHeadless) IsAvailable() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func (e *HtmlUrlHeadless) ensureBrowser() (*rod.Browser, error) {
	e.once.Do(func() {
		wsURL, err := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled").
			Launch()
		if err != nil {
			e.launchErr = fmt.Errorf("urlengine: launch browser: %w", err)
			return
		}
		e.browser = rod.New().ControlURL(wsURL)
		if err := e.browser.Connect(); err != nil {
			e.launchErr = fmt.Errorf("urlengine: connect browser: %w", err)
		}
	})
	return e.browser, e.launchErr
}

func (e *HtmlUrlHeadless) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	rawURL := source.URL()
	if rawURL == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "html_url_headless requires a URL source"}
	}

	browser, err := e.ensureBrowser()
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.EngineUnavailableError{Engine: e.Name(), Reason: err.Error()}
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.FatalInternalError{Reason: "create stealth page", Cause: err}
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(rawURL); err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "navigate " + rawURL, Cause: err}
	}
	_ = page.Context(navCtx).WaitLoad() // best-effort; some SPAs never reach network-idle

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "read rendered DOM", Cause: err}
	}

	extracted, err := extractFromHTML([]byte(res.Value.Str()), extractOptions{Mode: "auto"})
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "html extraction", Cause: err}
	}

	result := coretype.NewProcessorResult(extracted.Text, "text/plain")
	result.Metadata = map[string]any{"sourceURL": rawURL, "title": extracted.Title, "contentHash": extracted.Hash}
	return result, nil
}
