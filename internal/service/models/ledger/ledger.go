package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
)

// OrderRow is one persisted order-history row. Orders are flattened to one
// row per unit of quantity.
type OrderRow struct {
	OrderNumber      string
	OrderDate        time.Time
	Environment      string
	StoreSlug        string
	CustomerEmail    string
	CustomerName     string
	CustomerPhone    string
	ProductID        string
	ProductName      string
	Size             string
	ItemPrice        float64
	DesignOptions    string
	CustomOptions    string
	ItemTotal        float64
	OrderTotal       float64
	DocumentFilename string
}

func describeOptions(opts []orderitem.OptionSelection) string {
	parts := make([]string, 0, len(opts))
	for _, opt := range opts {
		desc := fmt.Sprintf("#%d %s (%.2f)", opt.OptionNumber, opt.Title, opt.Price)
		if opt.CustomName != "" {
			desc += " name=" + opt.CustomName
		}
		if opt.CustomNumber != "" {
			desc += " number=" + opt.CustomNumber
		}
		parts = append(parts, desc)
	}

	return strings.Join(parts, "; ")
}

// RowsFromOrder flattens an accepted order into ledger rows, one per unit of
// quantity. The document filename may be empty when invoice generation failed.
func RowsFromOrder(o *order.Order, documentFilename string) []OrderRow {
	rows := make([]OrderRow, 0, len(o.Items))
	for _, item := range o.Items {
		for unit := 0; unit < item.Quantity; unit++ {
			rows = append(rows, OrderRow{
				OrderNumber:      o.OrderNumber,
				OrderDate:        o.OrderDate,
				Environment:      o.Environment.String(),
				StoreSlug:        o.StoreSlug,
				CustomerEmail:    o.ContactInfo.Email,
				CustomerName:     o.ContactInfo.FirstName + " " + o.ContactInfo.LastName,
				CustomerPhone:    o.ContactInfo.Phone,
				ProductID:        item.ProductID,
				ProductName:      item.ProductName,
				Size:             item.Size,
				ItemPrice:        item.ItemPrice,
				DesignOptions:    describeOptions(item.DesignOptions),
				CustomOptions:    describeOptions(item.CustomizationOptions),
				ItemTotal:        item.TotalPrice,
				OrderTotal:       o.TotalAmount,
				DocumentFilename: documentFilename,
			})
		}
	}

	return rows
}
