package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// VerifyWebhookSignature checks the provider's signature header
// ("t=<unix>,v1=<hex>") against the shared webhook secret. The signed
// payload is "<t>.<body>"; the comparison is constant-time and the
// timestamp must fall within maxSkew of now. Payload contents are not
// trusted before this check passes.
func VerifyWebhookSignature(payload []byte, header, secret string, maxSkew time.Duration, now time.Time) error {
	if secret == "" {
		return apperr.New(apperr.ConstraintViolation, "webhook secret is not configured")
	}
	if header == "" {
		return apperr.New(apperr.ConstraintViolation, "missing signature header")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return apperr.New(apperr.ConstraintViolation, "malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return apperr.New(apperr.ConstraintViolation, "malformed signature timestamp")
	}
	signedAt := time.Unix(ts, 0)
	if signedAt.After(now.Add(maxSkew)) || signedAt.Before(now.Add(-maxSkew)) {
		return apperr.New(apperr.ConstraintViolation, "signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return apperr.New(apperr.ConstraintViolation, "signature verification failed")
}

// SignWebhookPayload produces a valid signature header for a payload,
// used by tests and local tooling.
func SignWebhookPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// StripeClient is the outbound payment-provider client.
type StripeClient struct {
	http *resty.Client
	log  *zap.Logger
}

// NewStripeClient builds the provider client with retries and timeouts.
func NewStripeClient(cfg *config.StripeConfig, log *zap.Logger) *StripeClient {
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json")

	return &StripeClient{http: client, log: log}
}

type stripeInvoiceResponse struct {
	ID string `json:"id"`
}

// CreateInvoice registers a local invoice with the provider. The
// metadata carries our invoice id so later webhook events can be
// correlated back. Organizations without a provider customer are
// skipped.
func (c *StripeClient) CreateInvoice(ctx context.Context, invoice *model.Invoice, org *model.Organization) (string, error) {
	if org.StripeCustomerID == "" {
		c.log.Debug("Organization has no payment customer, skipping provider invoice",
			zap.String("org_id", org.ID))
		return "", nil
	}

	var result stripeInvoiceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"customer":              org.StripeCustomerID,
			"currency":              "eur",
			"metadata[invoice_id]":  invoice.ID,
			"metadata[invoice_nr]":  invoice.InvoiceNumber,
			"metadata[org_id]":      invoice.OrgID,
			"collection_method":     "send_invoice",
			"days_until_due":        strconv.Itoa(14),
			"pending_invoice_items": "false",
		}).
		SetResult(&result).
		Post("/invoices")
	if err != nil {
		return "", apperr.Wrap(apperr.ExternalServiceFailure, "payment provider unreachable", err)
	}
	if resp.IsError() {
		return "", apperr.Newf(apperr.ExternalServiceFailure, "payment provider returned %d", resp.StatusCode())
	}
	return result.ID, nil
}
