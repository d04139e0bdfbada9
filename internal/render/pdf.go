package render

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 landscape, inches. preferCSSPageSize lets the @page rule in the shell
// win when the browser honors it.
const (
	paperWidthIn  = 11.69
	paperHeightIn = 8.27
)

// Engine runs the headless layout/paint step. Stateless per call; safe for
// concurrent use across requests.
type Engine interface {
	PDF(ctx context.Context, markup string) ([]byte, error)
}

// ChromeEngine renders markup through a headless Chrome instance. Each call
// gets its own browser context and a bounded budget; a render that cannot
// finish inside the budget is failed, not waited on.
type ChromeEngine struct {
	timeout time.Duration
}

func NewChromeEngine(timeout time.Duration) *ChromeEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeEngine{timeout: timeout}
}

func (e *ChromeEngine) PDF(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html,"+url.PathEscape(markup)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithLandscape(true).
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless render: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("headless render produced an empty document")
	}
	return pdf, nil
}
