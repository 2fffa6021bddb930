package invoicesvc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
)

var filenameSafe = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// InvoiceService renders order invoices into in-memory PDF buffers.
type InvoiceService struct{}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService() *InvoiceService {
	return &InvoiceService{}
}

// Filename computes the deterministic invoice filename from the order
// number, sanitized customer surname, order timestamp and environment.
func (s *InvoiceService) Filename(o *order.Order) string {
	surname := filenameSafe.ReplaceAllString(o.ContactInfo.LastName, "")
	if surname == "" {
		surname = "customer"
	}

	return fmt.Sprintf("%s_%s_%s_%s.pdf",
		o.OrderNumber,
		surname,
		o.OrderDate.Format("20060102-150405"),
		o.Environment.String(),
	)
}

// Render produces the invoice document for an accepted order.
func (s *InvoiceService) Render(o *order.Order, cfg catalog.StoreConfig) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+o.OrderNumber, false)
	pdf.AddPage()

	business := cfg.BusinessName
	if business == "" {
		business = strings.ToUpper(o.StoreSlug)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, business, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Order "+o.OrderNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, o.OrderDate.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 6,
		fmt.Sprintf("%s %s", o.ContactInfo.FirstName, o.ContactInfo.LastName),
		"", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, o.ContactInfo.Email, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, o.ContactInfo.Phone, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Size", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range o.Items {
		lineTotal := item.TotalPrice * float64(item.Quantity)
		pdf.CellFormat(80, 7, item.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, item.Size, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", item.TotalPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", lineTotal), "", 1, "R", false, 0, "")

		for _, opt := range item.DesignOptions {
			pdf.CellFormat(185, 5,
				fmt.Sprintf("   design #%d %s (%.2f)", opt.OptionNumber, opt.Title, opt.Price),
				"", 1, "L", false, 0, "")
		}
		for _, opt := range item.CustomizationOptions {
			label := fmt.Sprintf("   custom #%d %s (%.2f)", opt.OptionNumber, opt.Title, opt.Price)
			if opt.CustomName != "" {
				label += " - " + opt.CustomName
			}
			if opt.CustomNumber != "" {
				label += " #" + opt.CustomNumber
			}
			pdf.CellFormat(185, 5, label, "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(155, 8, "Order total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", o.TotalAmount), "T", 1, "R", false, 0, "")

	if cfg.PaymentInstructions != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, cfg.PaymentInstructions, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice for %s: %w", o.OrderNumber, err)
	}

	return buf.Bytes(), nil
}
