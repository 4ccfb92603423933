package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Client wraps interactions with the eNotas gateway API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new gateway client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return httpx.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("enotas returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// ListCompanies returns every issuing company registered with the gateway.
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.do(ctx, http.MethodGet, "/v1/empresas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompany fetches one issuing company.
func (c *Client) GetCompany(ctx context.Context, id string) (Company, error) {
	var out Company
	err := c.do(ctx, http.MethodGet, "/v1/empresas/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateCompany registers an issuing company.
func (c *Client) CreateCompany(ctx context.Context, company Company) (Company, error) {
	var out Company
	err := c.do(ctx, http.MethodPost, "/v1/empresas", company, &out)
	return out, err
}

// UpdateCompany updates an issuing company.
func (c *Client) UpdateCompany(ctx context.Context, id string, company Company) (Company, error) {
	var out Company
	err := c.do(ctx, http.MethodPut, "/v1/empresas/"+url.PathEscape(id), company, &out)
	return out, err
}

// DeleteCompany removes an issuing company from the gateway.
func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/empresas/"+url.PathEscape(id), nil, nil)
}

// UploadCertificate sends the company's A1 digital certificate to the gateway.
// The gateway expects multipart form data with the certificate bytes under
// "arquivo" and its password under "senha".
func (c *Client) UploadCertificate(ctx context.Context, companyID string, certificate []byte, password string) error {
	if len(certificate) == 0 {
		return fmt.Errorf("%w: certificate file is required", httpx.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: certificate password is required", httpx.ErrValidation)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("arquivo", "certificado.pfx")
	if err != nil {
		return err
	}
	if _, err := part.Write(certificate); err != nil {
		return err
	}
	if err := form.WriteField("senha", password); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/empresas/"+url.PathEscape(companyID)+"/certificadoDigital", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return httpx.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("enotas returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// IssueInvoice emits an NFS-e through the given company.
func (c *Client) IssueInvoice(ctx context.Context, companyID string, inv InvoiceRequest) (IssuedInvoice, error) {
	var out IssuedInvoice
	err := c.do(ctx, http.MethodPost, "/v1/empresas/"+url.PathEscape(companyID)+"/nfes", inv, &out)
	return out, err
}

// GetInvoice fetches an emitted invoice.
func (c *Client) GetInvoice(ctx context.Context, companyID, invoiceID string) (IssuedInvoice, error) {
	var out IssuedInvoice
	err := c.do(ctx, http.MethodGet,
		"/v1/empresas/"+url.PathEscape(companyID)+"/nfes/"+url.PathEscape(invoiceID), nil, &out)
	return out, err
}

// CancelInvoice cancels an emitted invoice with a justification.
func (c *Client) CancelInvoice(ctx context.Context, companyID, invoiceID, reason string) error {
	payload := map[string]string{"motivo": reason}
	return c.do(ctx, http.MethodPost,
		"/v1/empresas/"+url.PathEscape(companyID)+"/nfes/"+url.PathEscape(invoiceID)+"/cancelar", payload, nil)
}

// MunicipalServices lists the NFS-e service codes available in a city. The
// state code is upper-cased and the city name collapsed to single spaces
// before the lookup.
func (c *Client) MunicipalServices(ctx context.Context, state, city string) ([]MunicipalService, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	city = strings.Join(strings.Fields(city), " ")
	if state == "" || city == "" {
		return nil, fmt.Errorf("%w: state and city are required", httpx.ErrValidation)
	}
	var out []MunicipalService
	err := c.do(ctx, http.MethodGet,
		"/v2/estados/"+url.PathEscape(state)+"/municipios/"+url.PathEscape(city)+"/servicos", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
