package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"clientregistry/internal/platform/config"
	"clientregistry/pkg/sentinel"
)

// ViaCEP queries the public ViaCEP service. Identical concurrent lookups
// are collapsed into a single request; the bounded timeout on the HTTP
// client makes a slow upstream degrade into a miss for callers.
type ViaCEP struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
	logger  *slog.Logger
}

func NewViaCEP(cfg config.LookupConfig, logger *slog.Logger) *ViaCEP {
	return &ViaCEP{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type viaCEPResponse struct {
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro"`
}

// notFound handles both encodings ViaCEP has used for misses: a bare
// boolean and a quoted "true".
func (r viaCEPResponse) notFound() bool {
	s := string(r.Erro)
	return s == "true" || s == `"true"`
}

func (v *ViaCEP) Lookup(ctx context.Context, code string) (Result, error) {
	code = Normalize(code)
	if !Valid(code) {
		return Result{}, sentinel.ErrNotFound
	}

	res, err, _ := v.group.Do(code, func() (any, error) {
		return v.fetch(ctx, code)
	})
	if err != nil {
		return Result{}, err
	}
	return res.(Result), nil
}

func (v *ViaCEP) fetch(ctx context.Context, code string) (Result, error) {
	url := fmt.Sprintf("%s/%s/json/", v.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("cep lookup failed", "code", code, "error", err)
		return Result{}, fmt.Errorf("cep lookup: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Debug("cep lookup bad status", "code", code, "status", resp.StatusCode)
		return Result{}, fmt.Errorf("cep lookup status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if body.notFound() {
		return Result{}, sentinel.ErrNotFound
	}

	return Result{
		Street:   body.Logradouro,
		District: body.Bairro,
		Locality: body.Localidade,
		Region:   body.UF,
	}, nil
}
