// Package rest implements the remote patient collection over a
// PostgREST-style HTTP API.
package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"healthreg/internal/patient/models"
	"healthreg/pkg/platform/circuit"
	"healthreg/pkg/platform/sentinel"
)

// Client talks to /<table> on the configured base URL. Calls fail fast with
// sentinel.ErrUnavailable while the breaker is open.
type Client struct {
	http    *resty.Client
	path    string
	breaker *circuit.Breaker
	logger  *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithTable overrides the default "patients" resource.
func WithTable(table string) Option {
	return func(c *Client) {
		if table != "" {
			c.path = "/" + table
		}
	}
}

// New builds a client. apiKey is sent both as the apikey header and as a
// bearer token, which is what PostgREST gateways expect.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		hc.SetHeader("apikey", apiKey).SetAuthToken(apiKey)
	}

	c := &Client{
		http:    hc,
		path:    "/patients",
		breaker: circuit.New("remote-rest"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type insertBody struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	DOB       *string `json:"dob"`
	Gender    string  `json:"gender"`
	Address   string  `json:"address"`
	Contact   string  `json:"contact"`
	FamilyID  string  `json:"family_id"`
	Status    *string `json:"status"`
	LastVisit *string `json:"last_visit"`
}

func (c *Client) Insert(ctx context.Context, record models.RemoteRecord) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("insert patient: %w: circuit %s open", sentinel.ErrUnavailable, c.breaker.Name())
	}

	body := insertBody{
		ID:        record.ID,
		Name:      record.Name,
		DOB:       record.DateOfBirth,
		Gender:    string(record.Gender),
		Address:   record.Address,
		Contact:   record.Contact,
		FamilyID:  record.FamilyID,
		LastVisit: record.LastVisit,
	}
	if record.Status != nil {
		s := string(*record.Status)
		body.Status = &s
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody([]insertBody{body}).
		Post(c.path)
	return c.settle("insert patient", resp, err)
}

// QueryAll returns every record ordered by created_at descending.
func (c *Client) QueryAll(ctx context.Context) ([]models.RemoteRecord, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("query patients: %w: circuit %s open", sentinel.ErrUnavailable, c.breaker.Name())
	}

	var out []models.RemoteRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "*",
			"order":  "created_at.desc",
		}).
		SetResult(&out).
		Get(c.path)
	if err := c.settle("query patients", resp, err); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RemoteRecord{}
	}
	return out, nil
}

// settle classifies a response and feeds the breaker.
func (c *Client) settle(op string, resp *resty.Response, err error) error {
	if err == nil && resp.IsError() {
		err = fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("remote circuit opened", zap.String("breaker", c.breaker.Name()), zap.Error(err))
		}
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("remote circuit closed", zap.String("breaker", c.breaker.Name()))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
