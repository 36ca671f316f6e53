// File: internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Session is one agent's exclusive browser tab. It exposes the base
// automation capability set: navigate, bounded element waits, clicks and
// typing, with every action logged for later audit.
//
// Element lookups poll until found or until the per-call timeout expires
// because the portal renders its calendar asynchronously. Clicks and
// typing are never retried; their failures surface to the caller.
type Session struct {
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	stopAfter func() bool
	done      func()

	actionTimeout     time.Duration
	navigationTimeout time.Duration

	closed bool
}

// run executes chromedp actions under a bounded wait, translating a
// deadline expiry into the given sentinel error.
func (s *Session) run(ctx context.Context, timeout time.Duration, sentinel error, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if ctx.Err() != nil {
		return ctx.Err()
	}

	runCtx, cancel := context.WithTimeout(runCtx, timeout)
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return sentinel
		}
		return err
	}
	return nil
}

// Navigate loads the given URL and waits for the page load to settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Navigating", zap.String("url", url))
	if err := s.run(ctx, s.navigationTimeout, ErrNavigationTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible element or the
// timeout expires. A zero timeout uses the session's action timeout.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.actionTimeout
	}
	s.logger.Debug("Waiting for element", zap.String("selector", selector), zap.Duration("timeout", timeout))
	if err := s.run(ctx, timeout, ErrElementNotFound, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

// Click waits for the element and clicks it once.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Info("Clicking", zap.String("selector", selector))
	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// Type waits for the element, focuses it and types the given text. The
// value is deliberately absent from the log line: it may be a secret.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	s.logger.Info("Typing into element", zap.String("selector", selector))
	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

// Submit types Enter into the element, submitting its enclosing form.
func (s *Session) Submit(ctx context.Context, selector string) error {
	s.logger.Info("Submitting form", zap.String("selector", selector))
	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound,
		chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("submit via %s: %w", selector, err)
	}
	return nil
}

// SelectByText picks the option with the given visible text from a
// <select> element and fires its change event, the way a user would.
func (s *Session) SelectByText(ctx context.Context, selector, option string) error {
	s.logger.Info("Selecting dropdown option",
		zap.String("selector", selector), zap.String("option", option))

	var ok bool
	script := fmt.Sprintf(`(() => {
		const sel = document.querySelector(%q);
		if (!sel) return false;
		for (const opt of sel.options) {
			if (opt.text.trim() === %q) {
				sel.value = opt.value;
				sel.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})()`, selector, option)

	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &ok),
	); err != nil {
		return fmt.Errorf("select %q in %s: %w", option, selector, err)
	}
	if !ok {
		return fmt.Errorf("select %q in %s: %w", option, selector, ErrElementNotFound)
	}
	return nil
}

// Titles returns the title attribute of every element matching the
// selector. Elements without a title yield an empty string.
func (s *Session) Titles(ctx context.Context, selector string) ([]string, error) {
	var titles []string
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.getAttribute('title') || '')`,
		selector)

	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound, chromedp.Evaluate(script, &titles)); err != nil {
		return nil, fmt.Errorf("collect titles of %s: %w", selector, err)
	}
	s.logger.Debug("Collected element titles", zap.String("selector", selector), zap.Int("count", len(titles)))
	return titles, nil
}

// HasVisible reports whether the selector currently matches a visible
// element, without waiting for one to appear.
func (s *Session) HasVisible(ctx context.Context, selector string) (bool, error) {
	var present bool
	script := fmt.Sprintf(`(() => {
		const e = document.querySelector(%q);
		return !!e && e.offsetParent !== null;
	})()`, selector)

	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound, chromedp.Evaluate(script, &present)); err != nil {
		return false, fmt.Errorf("probe %s: %w", selector, err)
	}
	return present, nil
}

// ClickByTitle clicks the first element matching the selector whose title
// attribute contains the given fragment. The portal's calendar events are
// only addressable by their titles.
func (s *Session) ClickByTitle(ctx context.Context, selector, titleFragment string) error {
	s.logger.Info("Clicking element by title",
		zap.String("selector", selector), zap.String("title", titleFragment))

	var ok bool
	script := fmt.Sprintf(`(() => {
		for (const e of document.querySelectorAll(%q)) {
			const t = e.getAttribute('title') || '';
			if (t.includes(%q)) { e.click(); return true; }
		}
		return false;
	})()`, selector, titleFragment)

	if err := s.run(ctx, s.actionTimeout, ErrElementNotFound, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("click %s titled %q: %w", selector, titleFragment, err)
	}
	if !ok {
		return fmt.Errorf("click %s titled %q: %w", selector, titleFragment, ErrElementNotFound)
	}
	return nil
}

// WaitForText blocks until the page body contains the given text.
func (s *Session) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.actionTimeout
	}
	s.logger.Debug("Waiting for page text", zap.String("text", text), zap.Duration("timeout", timeout))

	xpath := fmt.Sprintf(`//*[contains(text(), %q)]`, text)
	if err := s.run(ctx, timeout, ErrElementNotFound, chromedp.WaitVisible(xpath, chromedp.BySearch)); err != nil {
		return fmt.Errorf("wait for text %q: %w", text, err)
	}
	return nil
}

// Screenshot captures the current viewport to the given path, creating
// parent directories as needed.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	capture := chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	})
	if err := s.run(ctx, s.actionTimeout, ErrNavigationTimeout, capture); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot directory: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	s.logger.Info("Saved screenshot", zap.String("path", path))
	return nil
}

// Close releases the tab. Safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopAfter()
	s.cancel()
	s.done()
	s.logger.Debug("Session closed")
}
