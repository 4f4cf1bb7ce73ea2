package verifier

// Wire types for the receipt verification API. Raw emails travel as a
// base64-encoded eml inside a JSON envelope.

type emlRequest struct {
	Eml string `json:"eml"`
}

type vendorRecord struct {
	Domain      string `json:"domain"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category,omitempty"`
}

type allowedVendorsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Vendors []vendorRecord `json:"vendors"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

type lineItemRecord struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
}

type verifyResponse struct {
	Success bool        `json:"success"`
	Data    *verifyData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Domain  string      `json:"domain,omitempty"`
}

type verifyData struct {
	DkimVerified bool             `json:"dkimVerified"`
	DkimDomain   string           `json:"dkimDomain"`
	Provider     string           `json:"provider"`
	TotalCents   int64            `json:"totalCents"`
	Date         string           `json:"date"`
	InvoiceID    *string          `json:"invoiceId"`
	Subject      string           `json:"subject"`
	Currency     string           `json:"currency"`
	LineItems    []lineItemRecord `json:"lineItems"`
}

type submitResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status,omitempty"`
	Data    *submitData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Domain  string      `json:"domain,omitempty"`
}

type submitData struct {
	SubmissionID string `json:"submissionId"`
	Store        string `json:"store"`
	TotalCents   int64  `json:"totalCents"`
	Status       string `json:"status"`
	Currency     string `json:"currency"`
	InvoiceID    *string `json:"invoiceId"`
	DkimDomain   string `json:"dkimDomain"`
}
