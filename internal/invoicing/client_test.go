package invoicing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

func TestClientSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Basic test-key", r.Header.Get("Authorization"))
		require.Equal(t, "/v1/empresas", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Company{{ID: "emp-1", LegalName: "ITA Digital Ltda"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	companies, err := client.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 1)
	require.Equal(t, "emp-1", companies[0].ID)
}

func TestClientIssueInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/empresas/emp-1/nfes", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req InvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Hospedagem mensal", req.Description)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(IssuedInvoice{ID: "nf-1", Number: "42", Status: "issued"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	issued, err := client.IssueInvoice(context.Background(), "emp-1", InvoiceRequest{
		Customer:    InvoiceCustomer{Name: "Acme", Email: "a@a.com", Document: "12345678000195"},
		Description: "Hospedagem mensal",
		UnitValue:   100,
	})
	require.NoError(t, err)
	require.Equal(t, "42", issued.Number)
}

func TestClientMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.GetCompany(context.Background(), "ghost")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestClientSurfacesGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"erro":"inscricao municipal invalida"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.CreateCompany(context.Background(), Company{LegalName: "X"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
	require.Contains(t, err.Error(), "inscricao municipal invalida")
}

func TestClientUploadCertificate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/empresas/emp-1/certificadoDigital", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "s3nha", r.FormValue("senha"))
		file, _, err := r.FormFile("arquivo")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte{0x30, 0x82}, data)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	err := client.UploadCertificate(context.Background(), "emp-1", []byte{0x30, 0x82}, "s3nha")
	require.NoError(t, err)

	err = client.UploadCertificate(context.Background(), "emp-1", nil, "s3nha")
	require.ErrorIs(t, err, httpx.ErrValidation)

	err = client.UploadCertificate(context.Background(), "emp-1", []byte{0x30}, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMunicipalServicesNormalisesLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/estados/SP/municipios/Ribeirão Preto/servicos", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]MunicipalService{{Code: "1.05", Description: "Licenciamento de software"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	services, err := client.MunicipalServices(context.Background(), " sp ", "  Ribeirão   Preto ")
	require.NoError(t, err)
	require.Len(t, services, 1)

	_, err = client.MunicipalServices(context.Background(), "", "Ribeirão Preto")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
