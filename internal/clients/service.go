package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Service handles client registry business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	if id == "" {
		return Client{}, httpx.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	if err := validate(client); err != nil {
		return Client{}, err
	}
	client.Document = digitsOnly(client.Document)
	return s.repo.Create(ctx, client)
}

func (s *Service) Update(ctx context.Context, id string, client Client) error {
	if err := validate(client); err != nil {
		return err
	}
	client.Document = digitsOnly(client.Document)
	return s.repo.Update(ctx, id, client)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(c Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: client name is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: client email is required", httpx.ErrValidation)
	}
	if doc := digitsOnly(c.Document); doc != "" && len(doc) != 11 && len(doc) != 14 {
		return fmt.Errorf("%w: document must be a CPF (11 digits) or CNPJ (14 digits)", httpx.ErrValidation)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
