// File: internal/browser/manager.go

// Package browser wraps chromedp with the small capability set the
// booking agents need: one shared browser process, isolated per-agent
// tab sessions, and retry-aware element primitives.
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/config"
)

// userAgents is the pool a launch picks from when no override is
// configured. Mixing agents keeps repeated daily runs from presenting an
// identical fingerprint to the portal.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// Manager owns the lifecycle of the headless browser process. All agent
// sessions are tabs derived from its allocator context.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// wg tracks open sessions so Shutdown can wait for them.
	wg sync.WaitGroup
}

// NewManager launches the browser process and verifies it is responsive.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
	if err := m.launch(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Initializing browser allocator...")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, m.allocatorOptions()...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Probe with a throwaway tab to confirm the process started.
	probeCtx, cancelProbe := context.WithTimeout(allocCtx, 30*time.Second)
	probeCtx, cancelTab := chromedp.NewContext(probeCtx)
	defer cancelTab()
	defer cancelProbe()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched and responsive.")
	return nil
}

// allocatorOptions assembles launch flags. The automation-control flags
// are switched off because the portal's calendar widget refuses to
// render inside an obviously automated browser.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	userAgent := m.cfg.UserAgent
	if userAgent == "" {
		userAgent = userAgents[rand.Intn(len(userAgents))]
	}

	opts = append(opts,
		// A false bool flag overrides the default and drops the switch
		// from the command line entirely.
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Headless),
		chromedp.UserAgent(userAgent),
	)

	// Extra arguments from the config file, "--name=value" or "--name".
	for _, arg := range m.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Containers need these on Linux.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return opts
}

// NewSession opens a fresh, isolated tab for one agent. The session is
// owned exclusively by that agent until Close.
func (m *Manager) NewSession(ctx context.Context, name string) (*Session, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tabCtx, cancelTab := chromedp.NewContext(m.allocatorCtx)

	// Tie the tab's lifetime to the caller's context as well; the
	// allocator context outlives individual agents.
	stop := context.AfterFunc(ctx, cancelTab)

	// Force tab creation now so failures surface here, not mid-login.
	if err := chromedp.Run(tabCtx); err != nil {
		stop()
		cancelTab()
		return nil, fmt.Errorf("failed to open browser tab: %w", err)
	}

	m.wg.Add(1)
	return &Session{
		logger:            m.logger.Named("session").With(zap.String("agent", name)),
		ctx:               tabCtx,
		cancel:            cancelTab,
		stopAfter:         stop,
		done:              m.wg.Done,
		actionTimeout:     m.cfg.ActionTimeout,
		navigationTimeout: m.cfg.NavigationTimeout,
	}, nil
}

// Shutdown waits for open sessions to close, then terminates the browser
// process. The wait respects the caller's deadline.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated.")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
