package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/stretchr/testify/assert"
)

const webhookSecret = "whsec_test"

func TestVerifyWebhookSignatureAccepts(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	now := time.Now()
	header := SignWebhookPayload(payload, webhookSecret, now)

	err := VerifyWebhookSignature(payload, header, webhookSecret, 5*time.Minute, now)

	assert.NoError(t, err)
}

func TestVerifyWebhookSignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignWebhookPayload(payload, webhookSecret, now)

	err := VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), header, webhookSecret, 5*time.Minute, now)

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
}

func TestVerifyWebhookSignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignWebhookPayload(payload, "whsec_other", now)

	err := VerifyWebhookSignature(payload, header, webhookSecret, 5*time.Minute, now)

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
}

func TestVerifyWebhookSignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignWebhookPayload(payload, webhookSecret, now.Add(-10*time.Minute))

	err := VerifyWebhookSignature(payload, header, webhookSecret, 5*time.Minute, now)

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
}

func TestVerifyWebhookSignatureRejectsMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	cases := []string{
		"",
		"t=123",
		"v1=deadbeef",
		fmt.Sprintf("t=notanumber,v1=%s", "deadbeef"),
	}
	for _, header := range cases {
		err := VerifyWebhookSignature(payload, header, webhookSecret, 5*time.Minute, now)
		assert.Error(t, err, "header %q", header)
	}
}

func TestVerifyWebhookSignatureRequiresSecret(t *testing.T) {
	err := VerifyWebhookSignature([]byte("{}"), "t=1,v1=aa", "", 5*time.Minute, time.Now())

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
}
