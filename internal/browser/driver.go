// Package browser drives the registry's search form and detail pages
// through a headless (or headed) Chrome instance, preserving session state
// across a long scrape run and handling interactive CAPTCHA challenges.
package browser

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// SessionError indicates the registry's page structure no longer matches
// what the driver expects, or a CAPTCHA was never resolved.
type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string { return "browser session error: " + e.Reason }

// captchaIndicators are matched case-insensitively against page text to
// decide whether the registry is presenting a CAPTCHA challenge.
var captchaIndicators = []string{
	"captcha",
	"what code is in the image",
	"access denied",
	"support id",
}

const (
	searchFormURL  = "https://ttbonline.gov/colasonline/publicSearchColasBasicProcess.do"
	searchFormPath = "https://ttbonline.gov/colasonline/publicSearchColasBasicAdvanced.do"
	detailBaseURL  = "https://ttbonline.gov/colasonline/viewColaDetails.do?action=publicDisplaySearchBasic&ttbid="
)

// Config controls how the driver launches and behaves.
type Config struct {
	Headless        bool
	DetailTimeout   time.Duration // default 30s
	DetailRetries   int           // default 3
	CaptchaTimeout  time.Duration // default 300s
	RestartAttempts int           // default 3
}

func (c Config) withDefaults() Config {
	if c.DetailTimeout == 0 {
		c.DetailTimeout = 30 * time.Second
	}
	if c.DetailRetries == 0 {
		c.DetailRetries = 3
	}
	if c.CaptchaTimeout == 0 {
		c.CaptchaTimeout = 300 * time.Second
	}
	if c.RestartAttempts == 0 {
		c.RestartAttempts = 3
	}
	return c
}

// Prompter is the capability the driver consumes to resolve a CAPTCHA. In
// tests, inject a scripted Prompter; in production, Prompt blocks on stdin
// with a terminal bell (see captchaconsole).
type Prompter interface {
	Prompt(ctx context.Context, message string) (PromptResult, error)
}

// PromptResult is the operator's answer to a CAPTCHA prompt.
type PromptResult int

const (
	PromptContinue PromptResult = iota
	PromptSkip
	PromptQuit
)

// Driver automates one logical browsing session against the registry.
type Driver struct {
	cfg      Config
	logger   *log.Logger
	prompter Prompter

	allocCtx   context.Context
	allocCancel context.CancelFunc
	taskCtx    context.Context
	taskCancel context.CancelFunc
}

// New launches a browser session. It self-restarts up to cfg.RestartAttempts
// times with 5/10/15s backoffs if the initial launch fails.
func New(ctx context.Context, cfg Config, logger *log.Logger, prompter Prompter) (*Driver, error) {
	cfg = cfg.withDefaults()
	d := &Driver{cfg: cfg, logger: logger, prompter: prompter}

	backoffs := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}
	var lastErr error
	for attempt := 0; attempt <= cfg.RestartAttempts; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying browser launch", "attempt", attempt+1, "backoff", backoffs[attempt-1])
			time.Sleep(backoffs[attempt-1])
		}
		if err := d.launch(ctx); err != nil {
			lastErr = err
			continue
		}
		return d, nil
	}
	return nil, coreerror.Wrap(lastErr, "browser failed to launch after retries").
		WithCode(coreerror.CodeServiceInitialization).WithOperation("browser.New")
}

func (d *Driver) launch(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", d.cfg.Headless))
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(taskCtx); err != nil {
		taskCancel()
		allocCancel()
		return err
	}

	d.allocCtx, d.allocCancel = allocCtx, allocCancel
	d.taskCtx, d.taskCancel = taskCtx, taskCancel
	return nil
}

// Healthy reports whether the underlying browser process still responds.
func (d *Driver) Healthy() bool {
	if d.taskCtx == nil {
		return false
	}
	return chromedp.Run(d.taskCtx, chromedp.ActionFunc(func(ctx context.Context) error { return nil })) == nil
}

// Close tears down the browser process.
func (d *Driver) Close() {
	if d.taskCancel != nil {
		d.taskCancel()
	}
	if d.allocCancel != nil {
		d.allocCancel()
	}
}

// SearchResult is the outcome of SubmitSearch or NextPage.
type SearchResult struct {
	TotalRecords int
	PageHTML     string
	EndOfResults bool
}

// ensureHealthy restarts the browser process, with the same 5/10/15s backoff
// schedule as the initial launch, if it has stopped responding. Called before
// each search submission since that begins a long page-iteration sequence.
func (d *Driver) ensureHealthy(ctx context.Context) error {
	if d.Healthy() {
		return nil
	}
	d.logger.Warn("browser process unhealthy, restarting")
	d.Close()

	backoffs := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}
	var lastErr error
	for attempt := 0; attempt < d.cfg.RestartAttempts; attempt++ {
		time.Sleep(backoffs[attempt])
		if err := d.launch(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return coreerror.Wrap(lastErr, "browser failed to restart after retries").
		WithCode(coreerror.CodeServiceInitialization).WithOperation("browser.ensureHealthy")
}

// SubmitSearch fills the registry's search form and submits it, returning
// the declared total-matching-records count and the first page of results.
func (d *Driver) SubmitSearch(ctx context.Context, dateFrom, dateTo, classCodeFrom, classCodeTo string) (SearchResult, error) {
	if err := d.ensureHealthy(ctx); err != nil {
		return SearchResult{}, err
	}

	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(searchFormPath),
		chromedp.WaitVisible(`input[name="searchCriteria.dateCompletedFrom"]`, chromedp.ByQuery),
		chromedp.SetValue(`input[name="searchCriteria.dateCompletedFrom"]`, dateFrom, chromedp.ByQuery),
		chromedp.SetValue(`input[name="searchCriteria.dateCompletedTo"]`, dateTo, chromedp.ByQuery),
	}
	if classCodeFrom != "" {
		actions = append(actions,
			chromedp.SetValue(`input[name="searchCriteria.classTypeFrom"]`, classCodeFrom, chromedp.ByQuery),
			chromedp.SetValue(`input[name="searchCriteria.classTypeTo"]`, classCodeTo, chromedp.ByQuery),
		)
	}
	actions = append(actions,
		chromedp.Click(`input[type="submit"]`, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(d.taskCtx, actions...); err != nil {
		return SearchResult{}, &SessionError{Reason: "search form submission failed: " + err.Error()}
	}

	if d.DetectCaptcha(html) {
		if err := d.HandleCaptcha(ctx); err != nil {
			return SearchResult{}, err
		}
		if err := chromedp.Run(d.taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			return SearchResult{}, &SessionError{Reason: "failed to re-read page after captcha: " + err.Error()}
		}
	}

	total, err := ParseTotalRecords(html)
	if err != nil {
		return SearchResult{}, &SessionError{Reason: err.Error()}
	}

	return SearchResult{TotalRecords: total, PageHTML: html}, nil
}

// NextPage advances one page in the result set. It returns EndOfResults =
// true when no next-page anchor is present.
func (d *Driver) NextPage(ctx context.Context) (SearchResult, error) {
	var html string
	const nextAnchor = `a[href*="goToPage"]`
	var exists bool
	if err := chromedp.Run(d.taskCtx, chromedp.Evaluate(
		`!!document.querySelector('`+nextAnchor+`')`, &exists,
	)); err != nil {
		return SearchResult{}, &SessionError{Reason: "failed to probe next-page anchor: " + err.Error()}
	}
	if !exists {
		return SearchResult{EndOfResults: true}, nil
	}

	if err := chromedp.Run(d.taskCtx,
		chromedp.Click(nextAnchor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return SearchResult{}, &SessionError{Reason: "next page click failed: " + err.Error()}
	}

	return SearchResult{PageHTML: html}, nil
}

// LoadDetail loads a detail page, retrying up to cfg.DetailRetries times on
// load timeout with a 2-second backoff.
func (d *Driver) LoadDetail(ctx context.Context, ttbID string) (string, error) {
	url := detailBaseURL + ttbID
	var html string
	var lastErr error

	for attempt := 0; attempt < d.cfg.DetailRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(2 * time.Second)
		}
		loadCtx, cancel := context.WithTimeout(d.taskCtx, d.cfg.DetailTimeout)
		err := chromedp.Run(loadCtx,
			chromedp.Navigate(url),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		cancel()
		if err == nil {
			return html, nil
		}
		lastErr = err
	}
	return "", coreerror.Wrap(lastErr, "failed to load detail page after retries").
		WithCode(coreerror.CodeServiceTimeout).
		WithOperation("browser.LoadDetail").
		WithDetail("ttb_id", ttbID)
}

// DetectCaptcha checks page text for any of the known CAPTCHA indicators,
// case-insensitively.
func (d *Driver) DetectCaptcha(html string) bool {
	lower := strings.ToLower(html)
	for _, indicator := range captchaIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// HandleCaptcha surfaces a blocking prompt to the operator and re-checks the
// page for CAPTCHA indicators before accepting "continue". In non-interactive
// mode (prompter is nil), it polls every two seconds up to cfg.CaptchaTimeout.
func (d *Driver) HandleCaptcha(ctx context.Context) error {
	if d.prompter == nil {
		return d.pollForCaptchaClearance(ctx)
	}

	promptCtx, cancel := context.WithTimeout(ctx, d.cfg.CaptchaTimeout)
	defer cancel()

	for {
		result, err := d.prompter.Prompt(promptCtx, "solve in the browser, then acknowledge")
		if err != nil {
			return &SessionError{Reason: "captcha prompt failed: " + err.Error()}
		}
		switch result {
		case PromptQuit:
			return &SessionError{Reason: "operator quit during captcha"}
		case PromptSkip:
			return nil
		case PromptContinue:
			var html string
			if err := chromedp.Run(d.taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
				return &SessionError{Reason: "failed to re-read page after captcha acknowledgement: " + err.Error()}
			}
			if d.DetectCaptcha(html) {
				continue // rejects continue while indicators still present
			}
			return nil
		}
	}
}

func (d *Driver) pollForCaptchaClearance(ctx context.Context) error {
	deadline := time.Now().Add(d.cfg.CaptchaTimeout)
	for time.Now().Before(deadline) {
		var html string
		if err := chromedp.Run(d.taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err == nil && !d.DetectCaptcha(html) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return &SessionError{Reason: "captcha not resolved before timeout"}
}
