// Package browser drives the seller portal through an already-running
// Chrome's DevTools endpoint. The operator starts the browser with remote
// debugging enabled and logs in; the tool attaches to the existing tab and
// inherits the session, so no credentials ever pass through it.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config locates the browser and the storefront it is pointed at.
type Config struct {
	// DevtoolsURL is the remote-debugging endpoint, e.g. http://127.0.0.1:9222.
	DevtoolsURL string

	// BaseURL is the seller-portal origin.
	BaseURL string

	// CatalogURL is the catalog search page.
	CatalogURL string

	// AttachTimeout bounds the initial connection.
	AttachTimeout time.Duration

	// ActionTimeout bounds each page interaction.
	ActionTimeout time.Duration
}

// Session is a live attachment to one browser tab. It implements
// page.Session. Not safe for concurrent use; the engine drives it
// sequentially.
type Session struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

// Attach connects to the running browser and takes over its first page tab,
// opening a fresh one when none exists.
func Attach(parent context.Context, cfg Config) (*Session, error) {
	if cfg.AttachTimeout == 0 {
		cfg.AttachTimeout = 10 * time.Second
	}
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = 30 * time.Second
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(parent, cfg.DevtoolsURL)

	// Reuse the tab the operator is looking at instead of opening our own:
	// the portal session lives in that tab.
	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	boundedCtx, boundedCancel := context.WithTimeout(probeCtx, cfg.AttachTimeout)
	defer boundedCancel()
	targets, err := chromedp.Targets(boundedCtx)
	if err != nil {
		probeCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: list targets")
	}

	var opts []chromedp.ContextOption
	for _, t := range targets {
		if t.Type == "page" {
			opts = append(opts, chromedp.WithTargetID(t.TargetID))
			zap.L().Info("attaching to existing tab", zap.String("url", t.URL))
			break
		}
	}
	probeCancel()

	ctx, cancel := chromedp.NewContext(allocCtx, opts...)
	s := &Session{cfg: cfg, ctx: ctx, cancel: func() {
		cancel()
		allocCancel()
	}}

	// A no-op evaluation proves the attachment actually works before any
	// flow starts relying on it.
	var ready bool
	if err := s.run(parent, chromedp.Evaluate("true", &ready)); err != nil {
		s.cancel()
		return nil, eris.Wrapf(err, "browser: attach to %s", cfg.DevtoolsURL)
	}
	return s, nil
}

// Close detaches from the browser. The browser and its tabs stay open; only
// our DevTools connection goes away.
func (s *Session) Close() error {
	s.cancel()
	return nil
}

// run executes actions under the per-action timeout, honoring the caller's
// context for cancellation.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.cfg.ActionTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// eval runs a JS expression and decodes its result into out.
func (s *Session) eval(ctx context.Context, js string, out any) error {
	return s.run(ctx, chromedp.Evaluate(js, out))
}
