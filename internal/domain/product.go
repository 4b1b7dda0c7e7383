package domain

// Product is the read-only catalog record supplied by the surrounding shop layer.
type Product struct {
	Code       string `json:"productCode"`
	Name       string `json:"productName"`
	SaleActive bool   `json:"saleActive"`
	// DetailBlob is base64-encoded rich text (HTML) that may carry hashtags.
	DetailBlob string `json:"detailBlob,omitempty"`
	Category   string `json:"category,omitempty"`
}
