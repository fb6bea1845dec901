package output

import (
	"context"

	"taskagent/internal/domain/entity"
)

// BrowserPort is the live automation handle over one browser instance and
// its tabs. Implementations are never shared across tasks.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context) error
	ScrollBy(ctx context.Context, pixels int) error

	ElementText(ctx context.Context, selector string) (string, error)
	PageText(ctx context.Context) (string, error)
	PageHTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) (*entity.Screenshot, error)
	UploadFile(ctx context.Context, selector, path string) error

	// Highlight draws a temporary outline around the element. Best-effort
	// and cosmetic: failures are swallowed.
	Highlight(ctx context.Context, selector, color string)

	OpenTab(ctx context.Context, url string) (int, error)
	SwitchTab(index int) error
	CloseTab() (int, error)
	TabCount() int
	CurrentTab() int

	CurrentURL() string
	Close()
}

// BrowserFactory creates one BrowserPort per task execution.
type BrowserFactory interface {
	New(ctx context.Context, cfg entity.BrowserConfig) (BrowserPort, error)
}
