package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/pharmakart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second

	// A4 in inches
	a4Width  = 8.27
	a4Height = 11.69
)

// ChromedpRenderer renders purchase order documents to PDF through the
// Chrome DevTools Protocol. With ChromeURL set it attaches to a remote
// headless Chrome; otherwise it launches a local browser instance
type ChromedpRenderer struct {
	cfg         config.PrintingConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new ChromedpRenderer
func NewChromedpRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpRenderer {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRenderTimeout
	}

	r := &ChromedpRenderer{cfg: cfg, logger: logger}

	if cfg.ChromeURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.ChromeURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// RenderPurchaseOrder produces the printable PDF for a purchase order
func (r *ChromedpRenderer) RenderPurchaseOrder(ctx context.Context, order *procurement.PurchaseOrder, supplier *partner.Supplier) ([]byte, error) {
	html, err := RenderPurchaseOrderHTML(order, supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to render document HTML: %w", err)
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(r.cfg.MarginTop).
				WithMarginBottom(r.cfg.MarginTop).
				WithMarginLeft(r.cfg.MarginRight).
				WithMarginRight(r.cfg.MarginRight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			r.logger.Error("PDF rendering timed out",
				zap.String("po_number", order.PONumber),
				zap.Duration("timeout", r.cfg.Timeout),
			)
			return nil, shared.NewDomainError("DEPENDENCY_FAILED",
				fmt.Sprintf("PDF rendering timed out after %v", r.cfg.Timeout))
		}
		r.logger.Error("PDF rendering failed",
			zap.String("po_number", order.PONumber),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("DEPENDENCY_FAILED", "PDF rendering failed")
	}
	if len(pdfData) == 0 {
		return nil, shared.NewDomainError("DEPENDENCY_FAILED", "generated PDF is empty")
	}

	r.logger.Info("Purchase order document rendered",
		zap.String("po_number", order.PONumber),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdfData, nil
}

// Close releases the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
