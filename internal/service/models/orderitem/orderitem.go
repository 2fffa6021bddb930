package orderitem

// OptionSelection is one design or customization option chosen for an item.
// Title and Price are snapshots of the catalog at order time.
type OptionSelection struct {
	OptionNumber int     `json:"optionNumber"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	CustomName   string  `json:"customName,omitempty"`
	CustomNumber string  `json:"customNumber,omitempty"`
}

// OrderItem represents one configured product line within an order.
// It is never mutated after the order is accepted.
type OrderItem struct {
	ProductID            string            `json:"productId"`
	ProductName          string            `json:"productName"`
	Size                 string            `json:"size"`
	SizeUpcharge         float64           `json:"sizeUpcharge"`
	ItemPrice            float64           `json:"itemPrice"`
	Quantity             int               `json:"quantity"`
	DesignOptions        []OptionSelection `json:"designOptions"`
	CustomizationOptions []OptionSelection `json:"customizationOptions"`
	TotalPrice           float64           `json:"totalPrice"`
}

// OptionsTotal sums the snapshot prices of all selected options.
func (i *OrderItem) OptionsTotal() float64 {
	total := 0.0
	for _, opt := range i.DesignOptions {
		total += opt.Price
	}
	for _, opt := range i.CustomizationOptions {
		total += opt.Price
	}

	return total
}
