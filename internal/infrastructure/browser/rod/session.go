package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

var _ output.BrowserPort = (*Session)(nil)
var _ output.BrowserFactory = (*Factory)(nil)

var ErrLastTab = fmt.Errorf("cannot close the last remaining tab")

const (
	elementTimeout = 10 * time.Second
	maxImageWidth  = 1024
)

// Factory launches one browser per task.
type Factory struct {
	logger output.LoggerPort
}

func NewFactory(logger output.LoggerPort) *Factory {
	return &Factory{logger: logger}
}

func (f *Factory) New(ctx context.Context, cfg entity.BrowserConfig) (output.BrowserPort, error) {
	return NewSession(ctx, cfg, f.logger)
}

// Session wraps one rod browser instance and its tab set. The tab set is
// never empty and the current index is always valid.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      entity.BrowserConfig
	logger   output.LoggerPort

	mu      sync.Mutex
	tabs    []*rod.Page
	current int
}

func NewSession(ctx context.Context, cfg entity.BrowserConfig, logger output.LoggerPort) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true)

	if cfg.DisableSecurity {
		l = l.
			Set("disable-web-security").
			Set("allow-running-insecure-content").
			Set("disable-setuid-sandbox").
			Set("disable-features", "IsolateOrigins,site-per-process")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &Session{
		browser:  browser,
		launcher: l,
		cfg:      cfg,
		logger:   logger,
	}

	page, err := s.newPage("about:blank")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open initial tab: %w", err)
	}
	s.tabs = []*rod.Page{page}

	return s, nil
}

func (s *Session) newPage(url string) (*rod.Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, err
	}
	if s.cfg.WindowWidth > 0 && s.cfg.WindowHeight > 0 {
		_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             s.cfg.WindowWidth,
			Height:            s.cfg.WindowHeight,
			DeviceScaleFactor: 1,
		})
	}
	return page, nil
}

func (s *Session) page() *rod.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[s.current]
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page().Context(ctx)

	if err := page.Timeout(s.maxLoadWait()).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(s.maxLoadWait()).WaitLoad(); err != nil {
		s.logger.Warn("page load wait timed out", "url", url, "error", err)
	}

	if s.cfg.MinPageLoadWait > 0 {
		select {
		case <-time.After(s.cfg.MinPageLoadWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Network-idle waiting is best-effort; a timeout is logged, not fatal.
	if s.cfg.WaitForNetworkIdle > 0 {
		if err := page.WaitIdle(s.cfg.WaitForNetworkIdle); err != nil {
			s.logger.Warn("network idle wait timed out", "url", url, "error", err)
		}
	}
	return nil
}

// element resolves a CSS or XPath selector (XPath when it starts with "/").
func (s *Session) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := s.page().Context(ctx).Timeout(elementTimeout)
	if strings.HasPrefix(selector, "/") {
		return page.ElementX(selector)
	}
	return page.Element(selector)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	_ = s.page().WaitIdle(2 * time.Second)
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, text string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}
	// Typing over a full selection replaces any existing value.
	_ = el.SelectAllText()
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (s *Session) PressEnter(ctx context.Context) error {
	el, err := s.page().Context(ctx).Timeout(elementTimeout).Element("body")
	if err != nil {
		return fmt.Errorf("body not found: %w", err)
	}
	if err := el.Input("\r"); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
	_ = s.page().WaitIdle(2 * time.Second)
	return nil
}

func (s *Session) ScrollBy(ctx context.Context, pixels int) error {
	_, err := s.page().Context(ctx).Eval(`(y) => window.scrollBy(0, y)`, pixels)
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	_ = s.page().WaitIdle(800 * time.Millisecond)
	return nil
}

func (s *Session) ElementText(ctx context.Context, selector string) (string, error) {
	el, err := s.element(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("element not found: %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}

func (s *Session) PageText(ctx context.Context) (string, error) {
	res, err := s.page().Context(ctx).Eval(`() => document.body.innerText`)
	if err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return res.Value.Str(), nil
}

func (s *Session) PageHTML(ctx context.Context) (string, error) {
	html, err := s.page().Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

func (s *Session) Screenshot(ctx context.Context, fullPage bool) (*entity.Screenshot, error) {
	page := s.page().Context(ctx)

	imgBytes, err := page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (s *Session) UploadFile(ctx context.Context, selector, path string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("file input not found: %s: %w", selector, err)
	}
	if err := el.SetFiles([]string{path}); err != nil {
		return fmt.Errorf("file upload failed: %w", err)
	}
	return nil
}

// Highlight outlines the element for a moment. Cosmetic only: every failure
// is swallowed, the action's outcome never depends on it.
func (s *Session) Highlight(ctx context.Context, selector, color string) {
	if strings.HasPrefix(selector, "/") {
		return
	}
	_, _ = s.page().Context(ctx).Eval(`(sel, color) => {
		const el = document.querySelector(sel);
		if (!el) return;
		const original = el.getAttribute('style') || '';
		el.setAttribute('style', original + '; outline: 3px solid ' + color + ';');
		setTimeout(() => el.setAttribute('style', original), 2000);
	}`, selector, color)
}

func (s *Session) OpenTab(ctx context.Context, url string) (int, error) {
	page, err := s.newPage("about:blank")
	if err != nil {
		return 0, fmt.Errorf("failed to open tab: %w", err)
	}

	s.mu.Lock()
	s.tabs = append(s.tabs, page)
	s.current = len(s.tabs) - 1
	index := s.current
	s.mu.Unlock()

	if url != "" {
		if err := s.Navigate(ctx, url); err != nil {
			return index, err
		}
	}
	return index, nil
}

func (s *Session) SwitchTab(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.tabs) {
		return fmt.Errorf("invalid tab index %d, available: 0-%d", index, len(s.tabs)-1)
	}
	s.current = index
	return nil
}

func (s *Session) CloseTab() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) <= 1 {
		return s.current, ErrLastTab
	}

	if err := s.tabs[s.current].Close(); err != nil {
		return s.current, fmt.Errorf("failed to close tab: %w", err)
	}
	s.tabs = append(s.tabs[:s.current], s.tabs[s.current+1:]...)
	if s.current > 0 {
		s.current--
	}
	return s.current, nil
}

func (s *Session) TabCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

func (s *Session) CurrentTab() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) CurrentURL() string {
	info, err := s.page().Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *Session) Close() {
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}

func (s *Session) maxLoadWait() time.Duration {
	if s.cfg.MaxPageLoadWait > 0 {
		return s.cfg.MaxPageLoadWait
	}
	return 30 * time.Second
}
