package catalog

// SizeOption is one available size of a product with its upcharge.
type SizeOption struct {
	Size     string  `json:"size"`
	Upcharge float64 `json:"upcharge"`
}

// Product is a catalog product as the storefront sells it.
type Product struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	BasePrice      float64      `json:"basePrice"`
	AvailableSizes []SizeOption `json:"availableSizes"`
	StoreSlug      string       `json:"storeSlug,omitempty"`
}

// UpchargeFor returns the upcharge for a size and whether the size exists.
func (p *Product) UpchargeFor(size string) (float64, bool) {
	for _, s := range p.AvailableSizes {
		if s.Size == size {
			return s.Upcharge, true
		}
	}

	return 0, false
}

// DesignOption is a selectable design with its catalog price.
type DesignOption struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// CustomizationOption is a selectable personalization with its catalog price.
type CustomizationOption struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// Snapshot is the read-only catalog state fetched fresh per submission.
type Snapshot struct {
	Products             []Product             `json:"products"`
	DesignOptions        []DesignOption        `json:"designOptions"`
	CustomizationOptions []CustomizationOption `json:"customizationOptions"`
}

// ProductByID looks up a product in the snapshot.
func (s *Snapshot) ProductByID(id string) (*Product, bool) {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i], true
		}
	}

	return nil, false
}

// DesignOptionByNumber looks up a design option in the snapshot.
func (s *Snapshot) DesignOptionByNumber(n int) (*DesignOption, bool) {
	for i := range s.DesignOptions {
		if s.DesignOptions[i].Number == n {
			return &s.DesignOptions[i], true
		}
	}

	return nil, false
}

// CustomizationOptionByNumber looks up a customization option in the snapshot.
func (s *Snapshot) CustomizationOptionByNumber(n int) (*CustomizationOption, bool) {
	for i := range s.CustomizationOptions {
		if s.CustomizationOptions[i].Number == n {
			return &s.CustomizationOptions[i], true
		}
	}

	return nil, false
}
