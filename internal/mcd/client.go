// Package mcd is a client for the restaurant chain's mobile ordering API.
package mcd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"gopkg.in/resty.v1"

	"mcorder/internal/config"
	"mcorder/internal/geo"
	"mcorder/internal/knownitems"
	"mcorder/internal/logger"
)

const (
	signInPath         = "/customer/session/sign-in-and-authenticate"
	registerPath       = "/customer/registration"
	offersPath         = "/customer/offer"
	profilePath        = "/customer/profile"
	storesPath         = "/restaurant/location"
	storeInfoPath      = "/restaurant/information"
	menuCategoriesPath = "/nutrition/category/list"
	menuCategoryPath   = "/nutrition/category/detail"
	lookupItemPath     = "/item/nutrition/listExternal"
	orderTotalPath     = "/order/total"
	orderInitialPath   = "/order/pickup"
	orderPickupPath    = "/orders/pickup/"

	resultSuccess = 1
)

// Client holds one customer session. It is not safe for concurrent use.
type Client struct {
	cfg      config.APIConfig
	http     *resty.Client
	geocoder *geo.Geocoder
	items    *knownitems.Table
	logger   *logger.Logger

	username string
	token    string
	zipCode  string
}

type Option func(*Client)

// WithKnownItems replaces the in-memory known items table, e.g. with a file backed one
func WithKnownItems(t *knownitems.Table) Option {
	return func(c *Client) {
		c.items = t
	}
}

// WithGeocoder replaces the geocoder built from the configured URL
func WithGeocoder(g *geo.Geocoder) Option {
	return func(c *Client) {
		c.geocoder = g
	}
}

// New creates a client that is not signed in yet
func New(cfg config.APIConfig, log *logger.Logger, opts ...Option) *Client {
	httpClient := resty.New().
		SetHostURL(cfg.BaseURL).
		SetHeader("marketId", cfg.Market).
		SetHeader("mcd_apikey", cfg.Key)
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if !cfg.VerifyCertificates {
		httpClient.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	c := &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.items == nil {
		c.items = knownitems.NewMemory()
	}
	if c.geocoder == nil {
		c.geocoder = geo.NewGeocoder(cfg.GeocoderURL, cfg.Timeout, log)
	}

	return c
}

// KnownItems exposes the code to name table the client fills while browsing
func (c *Client) KnownItems() *knownitems.Table {
	return c.items
}

func (c *Client) requireSignIn() error {
	if c.username == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// appParams are the identifiers most query strings carry
func (c *Client) appParams() url.Values {
	return url.Values{
		"application":  {c.cfg.Application},
		"languageName": {c.cfg.Language},
		"marketId":     {c.cfg.Market},
		"platform":     {c.cfg.Platform},
	}
}

// menuParams are the identifiers the nutrition endpoints expect
func (c *Client) menuParams() url.Values {
	language := c.cfg.Language
	if len(language) > 2 {
		language = language[:2]
	}
	return url.Values{
		"country":      {c.cfg.Market},
		"language":     {language},
		"languageName": {c.cfg.Language},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, endpoint, params, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	return c.execute(ctx, http.MethodPost, endpoint, nil, body)
}

// execute sends one request. Transport failures and HTTP error statuses are errors,
// the result code inside the body is left to the caller.
func (c *Client) execute(ctx context.Context, method, endpoint string, params url.Values, body interface{}) ([]byte, error) {
	requestID := logger.GenerateRequestID()

	req := c.http.R().SetContext(ctx)
	if params != nil {
		req.SetMultiValueQueryParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}

	c.logger.Debug("api_request", "Calling ordering API", requestID, map[string]interface{}{
		"method":   method,
		"endpoint": endpoint,
	})

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		c.logger.Error("api_request_failed", "Request to ordering API failed", requestID, err, map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
		})
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		c.logger.Error("api_request_failed", "Ordering API returned an error status", requestID, nil, map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"status":   resp.StatusCode(),
		})
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}

	return resp.Body(), nil
}

type resultEnvelope struct {
	ResultCode int `json:"ResultCode"`
}

// decodeResult unmarshals a response that carries a ResultCode and fails unless it signals success
func decodeResult(endpoint string, body []byte, out interface{}) error {
	var envelope resultEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	if envelope.ResultCode != resultSuccess {
		return &APIError{Endpoint: endpoint, StatusCode: http.StatusOK, ResultCode: envelope.ResultCode, Body: body}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
