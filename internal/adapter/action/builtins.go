package action

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"taskagent/internal/application/port/output"
	"taskagent/internal/application/service"
	"taskagent/internal/domain/entity"
)

const (
	// maxWaitSeconds clamps the wait action regardless of what the LLM
	// requested, to bound worst-case step latency.
	maxWaitSeconds = 30
	maxLinks       = 30
	maxTextChars   = 4000

	defaultScrollAmount = 500

	searchURL      = "https://www.google.com"
	searchSelector = `input[name="q"]`
)

// Recorder receives the side observations of built-in actions: visited
// URLs and saved screenshot paths, in first-observed order.
type Recorder interface {
	AddURL(url string)
	AddScreenshot(path string)
}

// Deps is everything the built-in action set needs for one task execution.
type Deps struct {
	Config  entity.BrowserConfig
	Vault   *service.Vault
	Shots   output.ScreenshotStorePort
	Rec     Recorder
	Logger  output.LoggerPort
	TaskID  string
	TempDir string
}

// RegisterBuiltins installs the built-in browser actions into the registry.
// Custom actions registered afterwards may override any of them by name.
func RegisterBuiltins(reg *service.ActionRegistry, d Deps) {
	for _, a := range Builtins(d) {
		reg.Register(a)
	}
}

// Builtins returns the built-in action set, bound to one task's config,
// vault and recorder.
func Builtins(d Deps) []service.Action {
	return []service.Action{
		d.navigate(),
		d.click(),
		d.typeText(),
		d.screenshot(),
		d.extractText(),
		d.wait(),
		d.scrollDown(),
		d.scrollUp(),
		d.search(),
		d.openTab(),
		d.switchTab(),
		d.closeTab(),
		d.extractAllLinks(),
		d.extractAllText(),
		d.uploadFile(),
	}
}

func (d Deps) navigate() service.Action {
	return service.Action{
		Name:        "navigate",
		Description: "Navigate the current tab to a URL. The scheme is prepended when missing.",
		Params: []entity.ParamSpec{
			{Name: "url", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			target := NormalizeURL(args[0])

			if err := CheckAllowedDomain(target, d.Config.AllowedDomains); err != nil {
				return entity.Failed(err.Error())
			}

			if err := browser.Navigate(ctx, target); err != nil {
				return entity.Failed(fmt.Sprintf("error navigating to %s: %v", target, err))
			}
			d.Rec.AddURL(target)
			return entity.Extracted(fmt.Sprintf("Navigated to %s", target))
		},
	}
}

func (d Deps) click() service.Action {
	return service.Action{
		Name:        "click",
		Description: "Click an element identified by a CSS or XPath selector.",
		Params: []entity.ParamSpec{
			{Name: "selector", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			selector := args[0]
			if d.Config.HighlightElements {
				browser.Highlight(ctx, selector, "red")
			}
			if err := browser.Click(ctx, selector); err != nil {
				return entity.Failed(fmt.Sprintf("error clicking %s: %v", selector, err))
			}
			return entity.Extracted(fmt.Sprintf("Clicked %s", selector))
		},
	}
}

func (d Deps) typeText() service.Action {
	return service.Action{
		Name:        "type",
		Description: "Type text into a field. Sensitive values may be referenced by their [placeholder].",
		Params: []entity.ParamSpec{
			{Name: "selector", Type: entity.ParamTypeString, Required: true},
			{Name: "text", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			selector := args[0]
			if d.Config.HighlightElements {
				browser.Highlight(ctx, selector, "blue")
			}
			// Secrets surface only here, at the point of interaction.
			if err := browser.Fill(ctx, selector, d.Vault.Unmask(args[1])); err != nil {
				return entity.Failed(fmt.Sprintf("error typing into %s: %v", selector, err))
			}
			return entity.Extracted(fmt.Sprintf("Typed %q into %s", d.Vault.Mask(args[1]), selector))
		},
	}
}

func (d Deps) screenshot() service.Action {
	return service.Action{
		Name:        "screenshot",
		Description: "Capture a screenshot of the current tab.",
		Handler: func(ctx context.Context, browser output.BrowserPort, _ []string) entity.ActionResult {
			shot, err := browser.Screenshot(ctx, d.Config.FullPageScreenshot)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error capturing screenshot: %v", err))
			}
			path, err := d.Shots.Save(d.TaskID, shot.Data)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error saving screenshot: %v", err))
			}
			d.Rec.AddScreenshot(path)
			return entity.Extracted(fmt.Sprintf("Screenshot captured: %s", path))
		},
	}
}

func (d Deps) extractText() service.Action {
	return service.Action{
		Name:        "extract_text",
		Description: "Extract the text content of an element.",
		Params: []entity.ParamSpec{
			{Name: "selector", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			selector := args[0]
			if d.Config.HighlightElements {
				browser.Highlight(ctx, selector, "green")
			}
			text, err := browser.ElementText(ctx, selector)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error extracting text from %s: %v", selector, err))
			}
			return entity.Extracted(fmt.Sprintf("Text extracted from %s: %s", selector, d.Vault.Mask(text)))
		},
	}
}

func (d Deps) wait() service.Action {
	return service.Action{
		Name:        "wait",
		Description: "Wait a number of seconds (capped at 30).",
		Params: []entity.ParamSpec{
			{Name: "seconds", Type: entity.ParamTypeInt, Required: true},
		},
		Handler: func(ctx context.Context, _ output.BrowserPort, args []string) entity.ActionResult {
			seconds, _ := strconv.Atoi(args[0])
			if seconds > maxWaitSeconds {
				seconds = maxWaitSeconds
			}
			if seconds < 0 {
				seconds = 0
			}
			select {
			case <-time.After(time.Duration(seconds) * time.Second):
			case <-ctx.Done():
				return entity.Failed(fmt.Sprintf("wait interrupted: %v", ctx.Err()))
			}
			return entity.Extracted(fmt.Sprintf("Waited %d seconds", seconds))
		},
	}
}

func (d Deps) scrollDown() service.Action {
	return service.Action{
		Name:        "scroll_down",
		Description: "Scroll the page down by an amount of pixels.",
		Params: []entity.ParamSpec{
			{Name: "amount", Type: entity.ParamTypeInt, Default: "500"},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			amount := parseAmount(args[0])
			if err := browser.ScrollBy(ctx, amount); err != nil {
				return entity.Failed(fmt.Sprintf("error scrolling down: %v", err))
			}
			return entity.Extracted(fmt.Sprintf("Scrolled down %d pixels", amount))
		},
	}
}

func (d Deps) scrollUp() service.Action {
	return service.Action{
		Name:        "scroll_up",
		Description: "Scroll the page up by an amount of pixels.",
		Params: []entity.ParamSpec{
			{Name: "amount", Type: entity.ParamTypeInt, Default: "500"},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			amount := parseAmount(args[0])
			if err := browser.ScrollBy(ctx, -amount); err != nil {
				return entity.Failed(fmt.Sprintf("error scrolling up: %v", err))
			}
			return entity.Extracted(fmt.Sprintf("Scrolled up %d pixels", amount))
		},
	}
}

func (d Deps) search() service.Action {
	return service.Action{
		Name:        "search",
		Description: "Search the web: navigates to the search engine, fills the query and submits.",
		Params: []entity.ParamSpec{
			{Name: "query", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			query := args[0]
			if err := CheckAllowedDomain(searchURL, d.Config.AllowedDomains); err != nil {
				return entity.Failed(err.Error())
			}
			if err := browser.Navigate(ctx, searchURL); err != nil {
				return entity.Failed(fmt.Sprintf("error opening search engine: %v", err))
			}
			d.Rec.AddURL(searchURL)
			if err := browser.Fill(ctx, searchSelector, query); err != nil {
				return entity.Failed(fmt.Sprintf("error filling search query: %v", err))
			}
			if err := browser.PressEnter(ctx); err != nil {
				return entity.Failed(fmt.Sprintf("error submitting search: %v", err))
			}
			return entity.Extracted(fmt.Sprintf("Searched for %q", query))
		},
	}
}

func (d Deps) openTab() service.Action {
	return service.Action{
		Name:        "open_tab",
		Description: "Open a new tab, optionally navigating it to a URL.",
		Params: []entity.ParamSpec{
			{Name: "url", Type: entity.ParamTypeString},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			target := ""
			if args[0] != "" {
				target = NormalizeURL(args[0])
				if err := CheckAllowedDomain(target, d.Config.AllowedDomains); err != nil {
					return entity.Failed(err.Error())
				}
			}
			index, err := browser.OpenTab(ctx, target)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error opening tab: %v", err))
			}
			if target != "" {
				d.Rec.AddURL(target)
				return entity.Extracted(fmt.Sprintf("Opened tab %d at %s", index, target))
			}
			return entity.Extracted(fmt.Sprintf("Opened tab %d", index))
		},
	}
}

func (d Deps) switchTab() service.Action {
	return service.Action{
		Name:        "switch_tab",
		Description: "Switch to the tab at the given index.",
		Params: []entity.ParamSpec{
			{Name: "index", Type: entity.ParamTypeInt, Required: true},
		},
		Handler: func(_ context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			index, _ := strconv.Atoi(args[0])
			if err := browser.SwitchTab(index); err != nil {
				return entity.Failed(fmt.Sprintf("error switching tab: %v", err))
			}
			return entity.Extracted(fmt.Sprintf("Switched to tab %d", index))
		},
	}
}

func (d Deps) closeTab() service.Action {
	return service.Action{
		Name:        "close_tab",
		Description: "Close the current tab. The last remaining tab cannot be closed.",
		Handler: func(_ context.Context, browser output.BrowserPort, _ []string) entity.ActionResult {
			current, err := browser.CloseTab()
			if err != nil {
				return entity.Failed(fmt.Sprintf("error closing tab: %v", err))
			}
			return entity.Extracted(fmt.Sprintf("Tab closed, now on tab %d", current))
		},
	}
}

func (d Deps) extractAllLinks() service.Action {
	return service.Action{
		Name:        "extract_all_links",
		Description: "List the links on the page (first 30, remainder summarized by count).",
		Handler: func(ctx context.Context, browser output.BrowserPort, _ []string) entity.ActionResult {
			html, err := browser.PageHTML(ctx)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error extracting links: %v", err))
			}
			links := ExtractLinks(html, browser.CurrentURL())

			var b strings.Builder
			shown := links
			if len(shown) > maxLinks {
				shown = shown[:maxLinks]
			}
			for i, l := range shown {
				fmt.Fprintf(&b, "%d. %q - %s\n", i+1, l.Text, l.Href)
			}
			if len(links) > maxLinks {
				fmt.Fprintf(&b, "... and %d more links (showing the first %d)\n", len(links)-maxLinks, maxLinks)
			}
			return entity.Extracted("Links found on the page:\n" + b.String())
		},
	}
}

func (d Deps) extractAllText() service.Action {
	return service.Action{
		Name:        "extract_all_text",
		Description: "Extract the page's visible text (first 4000 characters, remainder summarized by count).",
		Handler: func(ctx context.Context, browser output.BrowserPort, _ []string) entity.ActionResult {
			text, err := browser.PageText(ctx)
			if err != nil {
				return entity.Failed(fmt.Sprintf("error extracting text: %v", err))
			}
			total := len(text)
			if total > maxTextChars {
				text = text[:maxTextChars] + fmt.Sprintf("\n... (truncated, showing %d of %d characters)", maxTextChars, total)
			}
			// Page content can echo secrets (e.g. a form we just filled).
			return entity.Extracted("Page text:\n" + d.Vault.Mask(text))
		},
	}
}

func (d Deps) uploadFile() service.Action {
	return service.Action{
		Name:        "upload_file",
		Description: "Upload a file to a file input. A bare file name creates a placeholder file to upload.",
		Params: []entity.ParamSpec{
			{Name: "selector", Type: entity.ParamTypeString, Required: true},
			{Name: "path", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult {
			selector, path := args[0], args[1]
			if d.Config.HighlightElements {
				browser.Highlight(ctx, selector, "purple")
			}

			if _, err := os.Stat(path); err != nil {
				// The LLM often names a file that does not exist; create it
				// in the task's temp dir so the upload can proceed.
				tmp := filepath.Join(d.TempDir, filepath.Base(path))
				content := fmt.Sprintf("Placeholder file for upload: %s", filepath.Base(path))
				if writeErr := os.WriteFile(tmp, []byte(content), 0o644); writeErr != nil {
					return entity.Failed(fmt.Sprintf("error preparing upload file: %v", writeErr))
				}
				path = tmp
			}

			if err := browser.UploadFile(ctx, selector, path); err != nil {
				return entity.Failed(fmt.Sprintf("error uploading file via %s: %v", selector, err))
			}
			return entity.Extracted(fmt.Sprintf("File %q uploaded via %s", filepath.Base(path), selector))
		},
	}
}

func parseAmount(s string) int {
	amount, err := strconv.Atoi(s)
	if err != nil || amount <= 0 {
		return defaultScrollAmount
	}
	return amount
}

// NormalizeURL prepends https:// when the scheme is missing.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// CheckAllowedDomain enforces the navigation allow-list. An empty list
// allows everything.
func CheckAllowedDomain(target string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("invalid URL: %s", target)
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimPrefix(a, "."))
		if host == a || strings.HasSuffix(host, "."+a) {
			return nil
		}
	}
	return fmt.Errorf("domain not allowed: %s (allowed: %s)", host, strings.Join(allowed, ", "))
}
