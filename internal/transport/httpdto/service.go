package httpdto

type ListingRequest struct {
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	CustomService string   `json:"customService"`
	PriceType     string   `json:"priceType"`
	Price         *float64 `json:"price"`
	City          string   `json:"city"`
	Description   string   `json:"description"`
	Mode          string   `json:"mode"`
}
