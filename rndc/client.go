package rndc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SOAPAction is the fixed action header for AtenderMensajeRNDC.
const SOAPAction = `"urn:BPMServicesIntf-IBPMServices#AtenderMensajeRNDC"`

// DefaultTimeout bounds each endpoint attempt.
const DefaultTimeout = 30 * time.Second

// TransportResult is the outcome of delivering one message. Success only
// means some endpoint answered 2xx; business acceptance is decided by
// Classify.
type TransportResult struct {
	Success      bool
	RawBody      string
	ErrorMessage string
	Endpoint     string
}

// Client posts messages to the primary RNDC endpoint and fails over to the
// backup. Each endpoint gets exactly one attempt per Send.
type Client struct {
	primary    string
	backup     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(primary, backup string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		primary: primary,
		backup:  backup,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Send delivers body to the primary endpoint, then to the backup if the
// primary attempt failed for any reason.
func (c *Client) Send(ctx context.Context, body string) TransportResult {
	raw, primaryErr := c.post(ctx, c.primary, body)
	if primaryErr == nil {
		return TransportResult{Success: true, RawBody: raw, Endpoint: c.primary}
	}
	c.logger.Warn("rndc primary endpoint failed",
		zap.String("endpoint", c.primary),
		zap.Error(primaryErr),
	)

	if c.backup == "" {
		return TransportResult{
			ErrorMessage: fmt.Sprintf("primary: %v; no backup endpoint configured", primaryErr),
		}
	}

	raw, backupErr := c.post(ctx, c.backup, body)
	if backupErr == nil {
		c.logger.Info("rndc backup endpoint answered", zap.String("endpoint", c.backup))
		return TransportResult{Success: true, RawBody: raw, Endpoint: c.backup}
	}
	c.logger.Error("rndc backup endpoint failed",
		zap.String("endpoint", c.backup),
		zap.Error(backupErr),
	)
	return TransportResult{
		ErrorMessage: fmt.Sprintf("primary: %v; backup: %v", primaryErr, backupErr),
	}
}

func (c *Client) post(ctx context.Context, url, body string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("empty endpoint url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("rndc request %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", SOAPAction)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("rndc POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("rndc read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("rndc HTTP %d: %s", resp.StatusCode, snippet(data))
	}
	return string(data), nil
}

func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
