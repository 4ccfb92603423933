package invoicing

import (
	"context"
	"fmt"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Gateway is the outbound contract the service depends on; *Client satisfies
// it, tests substitute a fake.
type Gateway interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id string) (Company, error)
	CreateCompany(ctx context.Context, company Company) (Company, error)
	UpdateCompany(ctx context.Context, id string, company Company) (Company, error)
	DeleteCompany(ctx context.Context, id string) error
	UploadCertificate(ctx context.Context, companyID string, certificate []byte, password string) error
	IssueInvoice(ctx context.Context, companyID string, inv InvoiceRequest) (IssuedInvoice, error)
	GetInvoice(ctx context.Context, companyID, invoiceID string) (IssuedInvoice, error)
	CancelInvoice(ctx context.Context, companyID, invoiceID, reason string) error
	MunicipalServices(ctx context.Context, state, city string) ([]MunicipalService, error)
}

// Service validates invoicing input before handing it to the gateway.
type Service struct {
	gateway Gateway
}

// NewService builds the invoicing service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.gateway.ListCompanies(ctx)
}

func (s *Service) GetCompany(ctx context.Context, id string) (Company, error) {
	return s.gateway.GetCompany(ctx, id)
}

// RegisterCompany validates and registers an issuing company.
func (s *Service) RegisterCompany(ctx context.Context, company Company) (Company, error) {
	company.CNPJ = NormalizeCNPJ(company.CNPJ)
	if err := validateCompany(company); err != nil {
		return Company{}, err
	}
	return s.gateway.CreateCompany(ctx, company)
}

// UpdateCompany validates and updates an issuing company.
func (s *Service) UpdateCompany(ctx context.Context, id string, company Company) (Company, error) {
	company.CNPJ = NormalizeCNPJ(company.CNPJ)
	if err := validateCompany(company); err != nil {
		return Company{}, err
	}
	return s.gateway.UpdateCompany(ctx, id, company)
}

func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	return s.gateway.DeleteCompany(ctx, id)
}

// AttachCertificate uploads the A1 certificate the company signs invoices with.
func (s *Service) AttachCertificate(ctx context.Context, companyID string, certificate []byte, password string) error {
	if companyID == "" {
		return fmt.Errorf("%w: company id is required", httpx.ErrValidation)
	}
	return s.gateway.UploadCertificate(ctx, companyID, certificate, password)
}

func (s *Service) GetInvoice(ctx context.Context, companyID, invoiceID string) (IssuedInvoice, error) {
	return s.gateway.GetInvoice(ctx, companyID, invoiceID)
}

// IssueServiceInvoice emits an NFS-e for one billed service. The description
// carries the formatted amount so the document reads naturally in Portuguese.
func (s *Service) IssueServiceInvoice(ctx context.Context, companyID string, inv InvoiceRequest) (IssuedInvoice, error) {
	if companyID == "" {
		return IssuedInvoice{}, fmt.Errorf("%w: company id is required", httpx.ErrValidation)
	}
	if inv.Customer.Name == "" || inv.Customer.Document == "" {
		return IssuedInvoice{}, fmt.Errorf("%w: customer name and document are required", httpx.ErrValidation)
	}
	if inv.UnitValue <= 0 {
		return IssuedInvoice{}, fmt.Errorf("%w: unit value must be positive", httpx.ErrValidation)
	}
	if inv.Quantity <= 0 {
		inv.Quantity = 1
	}
	if inv.Description == "" {
		return IssuedInvoice{}, fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}
	inv.Description = fmt.Sprintf("%s - %s", inv.Description, FormatBRL(inv.UnitValue))
	return s.gateway.IssueInvoice(ctx, companyID, inv)
}

// CancelInvoice cancels an emitted invoice; the fiscal authority requires a
// justification.
func (s *Service) CancelInvoice(ctx context.Context, companyID, invoiceID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", httpx.ErrValidation)
	}
	return s.gateway.CancelInvoice(ctx, companyID, invoiceID, reason)
}

func (s *Service) MunicipalServices(ctx context.Context, state, city string) ([]MunicipalService, error) {
	return s.gateway.MunicipalServices(ctx, state, city)
}
