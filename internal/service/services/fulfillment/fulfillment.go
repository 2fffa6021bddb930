package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teamthreads/storefront/order/internal/dal/interfaces/iarchiverepo"
	"github.com/teamthreads/storefront/order/internal/dal/interfaces/inotifier"
	"github.com/teamthreads/storefront/order/internal/metric"
	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/ledger"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/pkg/logger/sl"
)

// Step names, in execution order.
const (
	StepOrderRows     = "order_rows"
	StepInvoicePDF    = "invoice_pdf"
	StepArchiveUpload = "archive_upload"
	StepCustomerEmail = "customer_email"
	StepAdminEmail    = "admin_email"
)

type stepStatus string

const (
	statusOK      stepStatus = "ok"
	statusError   stepStatus = "error"
	statusSkipped stepStatus = "skipped"
)

// ledgerRepository is the subset of the ledger store the orchestrator needs.
type ledgerRepository interface {
	InsertOrderRows(ctx context.Context, rows []ledger.OrderRow) error
}

// renderer produces the invoice document and its deterministic filename.
type renderer interface {
	Render(o *order.Order, cfg catalog.StoreConfig) ([]byte, error)
	Filename(o *order.Order) string
}

// stepResult records one executed step for the timing breakdown.
type stepResult struct {
	Name     string
	Status   stepStatus
	Duration time.Duration
	Err      error
}

// Orchestrator runs the ordered post-acceptance pipeline: persistence,
// document generation, archival and notification. The order-rows write is
// the only fatal step; every later step has its own error boundary so one
// failure never suppresses the remaining steps.
type Orchestrator struct {
	ledgerRepo  ledgerRepository
	renderer    renderer
	archiveRepo iarchiverepo.IArchiveRepository
	notifier    inotifier.INotifier
}

// option is a function that configures the Orchestrator.
type option func(*Orchestrator)

// MustNewOrchestrator creates a new Orchestrator.
func MustNewOrchestrator(opts ...option) *Orchestrator {
	f := &Orchestrator{}
	for _, opt := range opts {
		opt(f)
	}
	if f.ledgerRepo == nil {
		panic("fulfillment: ledger repository is required")
	}

	return f
}

// WithLedgerRepository sets the order-history store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLedgerRepository(repo ledgerRepository) option {
	return func(f *Orchestrator) {
		f.ledgerRepo = repo
	}
}

// WithRenderer sets the invoice renderer.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRenderer(r renderer) option {
	return func(f *Orchestrator) {
		f.renderer = r
	}
}

// WithArchiveRepository sets the long-term document store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithArchiveRepository(repo iarchiverepo.IArchiveRepository) option {
	return func(f *Orchestrator) {
		f.archiveRepo = repo
	}
}

// WithNotifier sets the customer/admin notifier.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n inotifier.INotifier) option {
	return func(f *Orchestrator) {
		f.notifier = n
	}
}

func runStep(results *[]stepResult, name string, run func() error) error {
	start := time.Now()
	err := run()

	status := statusOK
	if err != nil {
		status = statusError
	}
	duration := time.Since(start)
	metric.FulfillmentStepDuration.WithLabelValues(name, string(status)).Observe(duration.Seconds())
	*results = append(*results, stepResult{Name: name, Status: status, Duration: duration, Err: err})

	return err
}

func skipStep(results *[]stepResult, name string) {
	metric.FulfillmentStepDuration.WithLabelValues(name, string(statusSkipped)).Observe(0)
	*results = append(*results, stepResult{Name: name, Status: statusSkipped})
}

// Fulfill executes the pipeline for an accepted order. An error from the
// order-rows step is returned to the caller; all other step failures are
// logged and swallowed.
func (f *Orchestrator) Fulfill(ctx context.Context, o *order.Order, cfg catalog.StoreConfig) error {
	results := make([]stepResult, 0, 5)
	started := time.Now()
	defer func() {
		f.logBreakdown(ctx, o, results, time.Since(started))
	}()

	filename := ""
	if f.renderer != nil {
		filename = f.renderer.Filename(o)
	}

	// Step 1: the durable order record. The order must not be lost even if
	// nothing after this succeeds.
	if err := runStep(&results, StepOrderRows, func() error {
		return f.ledgerRepo.InsertOrderRows(ctx, ledger.RowsFromOrder(o, filename))
	}); err != nil {
		slog.Error("Order record write failed, aborting fulfillment",
			"order_number", o.OrderNumber,
			"store", o.StoreSlug,
			"error", err,
			sl.Traced(ctx),
		)

		return fmt.Errorf("order record write failed for %s: %w", o.OrderNumber, err)
	}

	// Step 2: invoice document. Non-fatal: the order record already exists.
	var document []byte
	if f.renderer == nil {
		skipStep(&results, StepInvoicePDF)
	} else if err := runStep(&results, StepInvoicePDF, func() error {
		rendered, err := f.renderer.Render(o, cfg)
		if err != nil {
			return err
		}
		document = rendered

		return nil
	}); err != nil {
		slog.Error("Invoice generation failed, continuing without document",
			"order_number", o.OrderNumber, "error", err, sl.Traced(ctx))
	}

	// Step 3: archival. Never blocks customer notification.
	if f.archiveRepo == nil || document == nil {
		skipStep(&results, StepArchiveUpload)
	} else if err := runStep(&results, StepArchiveUpload, func() error {
		namespace := f.archiveNamespace(o)
		if err := f.archiveRepo.EnsureNamespace(ctx, namespace); err != nil {
			return err
		}
		_, err := f.archiveRepo.Upload(ctx, namespace, filename, document)

		return err
	}); err != nil {
		slog.Error("Invoice archival failed",
			"order_number", o.OrderNumber, "error", err, sl.Traced(ctx))
	}

	// Step 4: customer confirmation, with the invoice attached when it
	// exists. A missing document downgrades the mail, never cancels it.
	if f.notifier == nil {
		skipStep(&results, StepCustomerEmail)
	} else if err := runStep(&results, StepCustomerEmail, func() error {
		return f.notifier.Send(ctx, f.customerMessage(o, cfg, filename, document))
	}); err != nil {
		slog.Error("Customer notification failed",
			"order_number", o.OrderNumber, "error", err, sl.Traced(ctx))
	}

	// Step 5: admin notification. No configured address is not an error.
	if f.notifier == nil || cfg.AdminEmail == "" {
		skipStep(&results, StepAdminEmail)
	} else if err := runStep(&results, StepAdminEmail, func() error {
		return f.notifier.Send(ctx, f.adminMessage(o, cfg, filename, document))
	}); err != nil {
		slog.Error("Admin notification failed",
			"order_number", o.OrderNumber, "error", err, sl.Traced(ctx))
	}

	return nil
}

func (f *Orchestrator) archiveNamespace(o *order.Order) string {
	return "invoices-" + strings.ToLower(o.Environment.String())
}

func attachments(filename string, document []byte) []inotifier.Attachment {
	if document == nil {
		return nil
	}

	return []inotifier.Attachment{{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        document,
	}}
}

func (f *Orchestrator) customerMessage(
	o *order.Order,
	cfg catalog.StoreConfig,
	filename string,
	document []byte,
) inotifier.Message {
	var summary strings.Builder
	for _, item := range o.Items {
		fmt.Fprintf(&summary, "<li>%d x %s (%s) - %.2f</li>",
			item.Quantity, item.ProductName, item.Size, item.TotalPrice*float64(item.Quantity))
	}

	html := fmt.Sprintf(
		"<h2>Thank you for your order, %s!</h2>"+
			"<p>Your order number is <b>%s</b>.</p>"+
			"<ul>%s</ul>"+
			"<p><b>Total: %.2f</b></p>",
		o.ContactInfo.FirstName, o.ShortOrderNumber, summary.String(), o.TotalAmount,
	)
	if cfg.PaymentInstructions != "" {
		html += "<p>" + cfg.PaymentInstructions + "</p>"
	}

	return inotifier.Message{
		To:          o.ContactInfo.Email,
		ReplyTo:     cfg.ReplyToEmail,
		Subject:     fmt.Sprintf("Order confirmation %s", o.ShortOrderNumber),
		HTML:        html,
		Attachments: attachments(filename, document),
	}
}

func (f *Orchestrator) adminMessage(
	o *order.Order,
	cfg catalog.StoreConfig,
	filename string,
	document []byte,
) inotifier.Message {
	html := fmt.Sprintf(
		"<h2>New order %s</h2>"+
			"<p>%s %s &lt;%s&gt;, %s</p>"+
			"<p>%d item line(s), total %.2f</p>",
		o.OrderNumber,
		o.ContactInfo.FirstName, o.ContactInfo.LastName,
		o.ContactInfo.Email, o.ContactInfo.Phone,
		len(o.Items), o.TotalAmount,
	)

	return inotifier.Message{
		To:          cfg.AdminEmail,
		Subject:     fmt.Sprintf("New order %s (%s)", o.OrderNumber, o.StoreSlug),
		HTML:        html,
		Attachments: attachments(filename, document),
	}
}

func (f *Orchestrator) logBreakdown(
	ctx context.Context,
	o *order.Order,
	results []stepResult,
	total time.Duration,
) {
	attrs := make([]any, 0, len(results)*2+6)
	attrs = append(attrs, "order_number", o.OrderNumber, "total", total.String())
	for _, res := range results {
		attrs = append(attrs, res.Name, fmt.Sprintf("%s/%s", res.Status, res.Duration))
	}
	attrs = append(attrs, sl.Traced(ctx))

	slog.Info("Fulfillment completed", attrs...)
}
