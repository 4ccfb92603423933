// Package invoicing integrates with the eNotas gateway to manage issuing
// companies and emit NFS-e (Brazilian municipal service invoices) for billed
// services.
package invoicing

// Address locates a company or customer for fiscal purposes.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
}

// Company is an invoice-issuing legal entity registered with the gateway.
type Company struct {
	ID                    string  `json:"id,omitempty"`
	LegalName             string  `json:"legal_name"`
	TradeName             string  `json:"trade_name,omitempty"`
	CNPJ                  string  `json:"cnpj"`
	MunicipalRegistration string  `json:"municipal_registration"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone,omitempty"`
	SimplesNacional       bool    `json:"simples_nacional"`
	MunicipalServiceCode  string  `json:"municipal_service_code,omitempty"`
	ISSRate               float64 `json:"iss_rate,omitempty"`
	Address               Address `json:"address"`
}

// InvoiceCustomer identifies the service taker on the invoice.
type InvoiceCustomer struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Document string   `json:"document"`
	Phone    string   `json:"phone,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

// InvoiceRequest describes one service line to invoice.
type InvoiceRequest struct {
	ExternalID  string          `json:"external_id,omitempty"`
	Customer    InvoiceCustomer `json:"customer"`
	Description string          `json:"description"`
	UnitValue   float64         `json:"unit_value"`
	Quantity    int             `json:"quantity,omitempty"`
}

// IssuedInvoice is the gateway's reference to an emitted document.
type IssuedInvoice struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
	PDFURL string `json:"pdf_url,omitempty"`
	XMLURL string `json:"xml_url,omitempty"`
}

// MunicipalService is a city-specific service code usable on NFS-e.
type MunicipalService struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
