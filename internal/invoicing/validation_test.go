package invoicing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

func TestValidateCNPJ(t *testing.T) {
	require.NoError(t, ValidateCNPJ("11222333000181"))

	require.ErrorIs(t, ValidateCNPJ("112223330001"), httpx.ErrValidation)    // short
	require.ErrorIs(t, ValidateCNPJ("11111111111111"), httpx.ErrValidation) // repeated digits
	require.ErrorIs(t, ValidateCNPJ("11222333000182"), httpx.ErrValidation) // bad check digit
}

func TestNormalizeCNPJ(t *testing.T) {
	require.Equal(t, "11222333000181", NormalizeCNPJ("11.222.333/0001-81"))
}

func TestFormatBRL(t *testing.T) {
	require.Equal(t, "R$ 1.234,56", FormatBRL(1234.56))
	require.Equal(t, "R$ 100,00", FormatBRL(100))
}

type fakeGateway struct {
	Gateway
	lastInvoice InvoiceRequest
	lastCompany Company
}

func (f *fakeGateway) CreateCompany(ctx context.Context, company Company) (Company, error) {
	f.lastCompany = company
	company.ID = "emp-1"
	return company, nil
}

func (f *fakeGateway) IssueInvoice(ctx context.Context, companyID string, inv InvoiceRequest) (IssuedInvoice, error) {
	f.lastInvoice = inv
	return IssuedInvoice{ID: "nf-1", Number: "2024-0001", Status: "issued"}, nil
}

func TestRegisterCompanyValidates(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw)

	_, err := svc.RegisterCompany(ctx, Company{LegalName: "ITA Digital Ltda"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	company, err := svc.RegisterCompany(ctx, Company{
		LegalName:             "ITA Digital Ltda",
		CNPJ:                  "11.222.333/0001-81",
		MunicipalRegistration: "12345",
		Email:                 "fiscal@itadigital.com.br",
		Address:               Address{City: "São Paulo", State: "SP"},
	})
	require.NoError(t, err)
	require.Equal(t, "emp-1", company.ID)
	require.Equal(t, "11222333000181", gw.lastCompany.CNPJ)
}

func TestIssueServiceInvoiceAppendsFormattedAmount(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw)

	_, err := svc.IssueServiceInvoice(ctx, "emp-1", InvoiceRequest{
		Customer:    InvoiceCustomer{Name: "Acme", Document: "12345678000195"},
		Description: "Hospedagem mensal",
		UnitValue:   1234.56,
	})
	require.NoError(t, err)
	require.Equal(t, "Hospedagem mensal - R$ 1.234,56", gw.lastInvoice.Description)
	require.Equal(t, 1, gw.lastInvoice.Quantity)

	_, err = svc.IssueServiceInvoice(ctx, "", InvoiceRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
