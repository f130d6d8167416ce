package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/prometheus"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Payment-provider event kinds the reconciler understands. Anything
// else is accepted and ignored.
const (
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
)

const dedupeTTL = 24 * time.Hour

// ProviderEvent is the envelope of a payment-provider delivery.
type ProviderEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type invoiceObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			Price struct {
				UnitAmount int64 `json:"unit_amount"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// Reconciler applies payment-provider events onto invoice and
// subscription state. Every operation is safe under at-least-once
// delivery: duplicates short-circuit on the recorded provider event
// id (with a redis fast path), and invoice status never regresses
// from paid.
type Reconciler struct {
	invoices InvoiceStore
	subs     SubscriptionStore
	events   EventStore
	dedupe   *redis.Client
	log      *zap.Logger
}

func NewReconciler(invoices InvoiceStore, subs SubscriptionStore, events EventStore, dedupe *redis.Client, log *zap.Logger) *Reconciler {
	return &Reconciler{
		invoices: invoices,
		subs:     subs,
		events:   events,
		dedupe:   dedupe,
		log:      log,
	}
}

// HandleEvent consumes one verified provider delivery. A nil return
// means the delivery was accepted, including the benign no-op cases
// (unknown kind, no matching record, replay).
func (r *Reconciler) HandleEvent(ctx context.Context, payload []byte) error {
	var event ProviderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed event payload", err)
	}
	if event.ID == "" || event.Type == "" {
		return apperr.New(apperr.ConstraintViolation, "event id and type are required")
	}

	if r.isReplay(ctx, event.ID) {
		prometheus.RecordWebhookEvent(event.Type, "duplicate")
		r.log.Info("Duplicate webhook delivery skipped", zap.String("event_id", event.ID))
		return nil
	}

	first, err := r.events.Record(&model.WebhookEvent{
		ProviderID: event.ID,
		Type:       event.Type,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	if !first {
		prometheus.RecordWebhookEvent(event.Type, "duplicate")
		r.log.Info("Webhook delivery already recorded", zap.String("event_id", event.ID))
		return nil
	}

	switch event.Type {
	case EventInvoicePaymentSucceeded:
		return r.handlePaymentSucceeded(event)
	case EventInvoicePaymentFailed:
		return r.handlePaymentFailed(event)
	case EventSubscriptionCreated:
		return r.handleSubscriptionCreated(event)
	case EventSubscriptionUpdated:
		return r.handleSubscriptionUpdated(event)
	case EventSubscriptionDeleted:
		return r.handleSubscriptionDeleted(event)
	default:
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("Unhandled event type", zap.String("type", event.Type))
		return nil
	}
}

// isReplay is the redis fast path for duplicate deliveries. Redis
// being down only loses the fast path; the recorded event id still
// guards correctness.
func (r *Reconciler) isReplay(ctx context.Context, eventID string) bool {
	if r.dedupe == nil {
		return false
	}
	set, err := r.dedupe.SetNX(ctx, "webhook:event:"+eventID, 1, dedupeTTL).Result()
	if err != nil {
		r.log.Warn("Webhook dedupe cache unavailable", zap.Error(err))
		return false
	}
	return !set
}

func (r *Reconciler) handlePaymentSucceeded(event ProviderEvent) error {
	var obj invoiceObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed invoice object", err)
	}

	invoiceID := obj.Metadata["invoice_id"]
	if invoiceID == "" {
		// The event may belong to a different subsystem; not an error.
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("No invoice reference in event metadata", zap.String("event_id", event.ID))
		return nil
	}

	changed, err := r.invoices.MarkPaid(invoiceID, time.Now().UTC())
	if err != nil {
		prometheus.RecordWebhookEvent(event.Type, "error")
		return err
	}
	if !changed {
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("Invoice already paid or unknown", zap.String("invoice_id", invoiceID))
		return nil
	}

	prometheus.RecordWebhookEvent(event.Type, "applied")
	r.log.Info("Invoice marked as paid", zap.String("invoice_id", invoiceID))
	return nil
}

func (r *Reconciler) handlePaymentFailed(event ProviderEvent) error {
	var obj invoiceObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed invoice object", err)
	}

	invoiceID := obj.Metadata["invoice_id"]
	if invoiceID == "" {
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("No invoice reference in event metadata", zap.String("event_id", event.ID))
		return nil
	}

	changed, err := r.invoices.MarkOverdue(invoiceID)
	if err != nil {
		prometheus.RecordWebhookEvent(event.Type, "error")
		return err
	}
	if !changed {
		// Paid and void invoices never regress on stale failures.
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("Failure event did not change invoice", zap.String("invoice_id", invoiceID))
		return nil
	}

	prometheus.RecordWebhookEvent(event.Type, "applied")
	r.log.Info("Invoice marked as overdue", zap.String("invoice_id", invoiceID))
	return nil
}

func (r *Reconciler) handleSubscriptionCreated(event ProviderEvent) error {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed subscription object", err)
	}

	orgID := obj.Metadata["org_id"]
	propertyID := obj.Metadata["property_id"]
	serviceKind := obj.Metadata["service"]
	if orgID == "" || propertyID == "" || serviceKind == "" {
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("Missing required metadata in subscription event", zap.String("event_id", event.ID))
		return nil
	}

	const frequencyMonths = 6
	next := time.Now().UTC().AddDate(0, frequencyMonths, 0)
	sub := &model.Subscription{
		OrgID:           orgID,
		PropertyID:      propertyID,
		Service:         serviceKind,
		Status:          model.SubscriptionStatusActive,
		FrequencyMonths: frequencyMonths,
		PricePerService: unitPrice(obj),
		NextServiceDate: &next,
	}
	if err := r.subs.Create(sub); err != nil {
		prometheus.RecordWebhookEvent(event.Type, "error")
		return err
	}

	prometheus.RecordWebhookEvent(event.Type, "applied")
	r.log.Info("Subscription created", zap.String("org_id", orgID))
	return nil
}

func (r *Reconciler) handleSubscriptionUpdated(event ProviderEvent) error {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed subscription object", err)
	}

	subscriptionID := obj.Metadata["subscription_id"]
	if subscriptionID == "" {
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("No subscription reference in event metadata", zap.String("event_id", event.ID))
		return nil
	}

	status := model.SubscriptionStatusCancelled
	switch obj.Status {
	case "active":
		status = model.SubscriptionStatusActive
	case "past_due":
		status = model.SubscriptionStatusPastDue
	}

	err := r.subs.UpdateFields(subscriptionID, map[string]interface{}{
		"status":            status,
		"price_per_service": unitPrice(obj),
	})
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			prometheus.RecordWebhookEvent(event.Type, "ignored")
			return nil
		}
		prometheus.RecordWebhookEvent(event.Type, "error")
		return err
	}

	prometheus.RecordWebhookEvent(event.Type, "applied")
	r.log.Info("Subscription updated",
		zap.String("subscription_id", subscriptionID),
		zap.String("status", status))
	return nil
}

func (r *Reconciler) handleSubscriptionDeleted(event ProviderEvent) error {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return apperr.Wrap(apperr.ConstraintViolation, "malformed subscription object", err)
	}

	subscriptionID := obj.Metadata["subscription_id"]
	if subscriptionID == "" {
		prometheus.RecordWebhookEvent(event.Type, "ignored")
		r.log.Info("No subscription reference in event metadata", zap.String("event_id", event.ID))
		return nil
	}

	err := r.subs.UpdateFields(subscriptionID, map[string]interface{}{
		"status": model.SubscriptionStatusCancelled,
	})
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			prometheus.RecordWebhookEvent(event.Type, "ignored")
			return nil
		}
		prometheus.RecordWebhookEvent(event.Type, "error")
		return err
	}

	prometheus.RecordWebhookEvent(event.Type, "applied")
	r.log.Info("Subscription cancelled", zap.String("subscription_id", subscriptionID))
	return nil
}

// unitPrice converts the provider's cent amount on the first
// subscription item.
func unitPrice(obj subscriptionObject) float64 {
	if len(obj.Items.Data) == 0 {
		return 0
	}
	return float64(obj.Items.Data[0].Price.UnitAmount) / 100
}
