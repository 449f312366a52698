// Package mercadopublico is the client for the Mercado Público tender API.
package mercadopublico

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/httpclient"
)

const (
	// DefaultBaseURL is the public API root
	DefaultBaseURL = "https://api.mercadopublico.cl/servicios/v1/publico"

	// DateLayout is the ddMMyyyy format expected by the fecha parameter
	DateLayout = "02012006"

	ticketParam = "ticket"
	listPath    = "/licitaciones.json"

	opFetchByDate = "fetch by date"
	opFetchDetail = "fetch detail"
)

// Client reads tenders from the remote API. Callers issuing several detail requests
// in a row are responsible for pacing them.
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico Client
type Client interface {
	// FetchByDate lists the tenders of a single day
	FetchByDate(ctx context.Context, date time.Time) (*ListResponse, error)

	// FetchDetail returns the full record of one tender
	FetchDetail(ctx context.Context, code string) (*Tender, error)
}

// apiClient is the HTTP implementation of Client
type apiClient struct {
	baseURL string
	ticket  string
	http    httpclient.Client
}

// NewClient creates a Client. The ticket is added to every request and redacted
// from every error produced by the underlying HTTP client.
func NewClient(baseURL, ticket string, timeout time.Duration, opts ...httpclient.Option) (Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if strings.TrimSpace(ticket) == "" {
		return nil, fmt.Errorf("API ticket is required")
	}

	opts = append(opts, httpclient.WithRedactedParams(ticketParam))
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		ticket:  ticket,
		http:    httpclient.NewDefaultClient(timeout, opts...),
	}, nil
}

// NewClientWithHTTP creates a Client over an existing httpclient.Client
func NewClientWithHTTP(baseURL, ticket string, hc httpclient.Client) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		ticket:  ticket,
		http:    hc,
	}
}

// FetchByDate lists the tenders of the given day
func (c *apiClient) FetchByDate(ctx context.Context, date time.Time) (*ListResponse, error) {
	fecha := date.Format(DateLayout)
	slog.Info("Fetching tenders", "date", fecha)

	resp, err := c.get(ctx, opFetchByDate, "", url.Values{"fecha": {fecha}})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchDetail returns the first record of a codigo lookup
func (c *apiClient) FetchDetail(ctx context.Context, code string) (*Tender, error) {
	slog.Debug("Fetching tender detail", "code", code)

	resp, err := c.get(ctx, opFetchDetail, code, url.Values{"codigo": {code}})
	if err != nil {
		return nil, err
	}
	if len(resp.Listado) == 0 {
		slog.Warn("No detail found for tender", "code", code)
		return nil, &Failure{Kind: FailureNotFound, Op: opFetchDetail, Code: code}
	}
	return &resp.Listado[0], nil
}

func (c *apiClient) get(ctx context.Context, op, code string, params url.Values) (*ListResponse, error) {
	params.Set(ticketParam, c.ticket)
	endpoint := c.baseURL + listPath + "?" + params.Encode()

	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		failure := classify(op, code, c.ticket, err)
		if failure.Kind == FailureHTTP {
			slog.Error("Remote API call failed", "operation", op, "code", code, "status", failure.StatusCode)
		} else {
			slog.Error("Remote API call failed", "operation", op, "code", code, "kind", failure.Kind)
		}
		return nil, failure
	}

	var resp ListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Error("Failed to decode remote API response", "operation", op, "code", code, "error", err)
		return nil, &Failure{Kind: FailureDecode, Op: op, Code: code, Err: err}
	}
	return &resp, nil
}
