package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/pkg/config"
)

// renderInvoiceHTML produces the fixed-layout printable invoice: issuer
// block, recipient block, work details, itemized lines, subtotal, tax
// and total, and the payment-terms footer.
func renderInvoiceHTML(billing config.BillingConfig, invoice *model.Invoice, order *model.WorkOrder, org *model.Organization) ([]byte, error) {
	data := invoiceDocument{
		Billing:  billing,
		Invoice:  invoice,
		Order:    order,
		Org:      org,
		Property: order.Property,
		Items:    order.Items,
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type invoiceDocument struct {
	Billing  config.BillingConfig
	Invoice  *model.Invoice
	Order    *model.WorkOrder
	Org      *model.Organization
	Property *model.Property
	Items    []model.WorkOrderItem
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// formatEuro renders an amount in the German notation used on the
// printed invoice, e.g. 1.234,56 €.
func formatEuro(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := strings.Join(grouped, ".") + "," + fracPart + " €"
	if negative {
		out = "-" + out
	}
	return out
}

func serviceLabel(service string) string {
	switch service {
	case model.ServiceMaintenance:
		return "Wartung"
	case model.ServiceRepair:
		return "Reparatur"
	case model.ServiceInspection:
		return "Inspektion"
	default:
		return service
	}
}

func taxLabel(rate float64) string {
	return fmt.Sprintf("MwSt. (%.0f%%)", rate*100)
}

func lineTotal(item model.WorkOrderItem) string {
	return formatEuro(item.TotalPrice())
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"date":         formatDate,
	"dateptr":      formatDatePtr,
	"euro":         formatEuro,
	"serviceLabel": serviceLabel,
	"taxLabel":     taxLabel,
	"lineTotal":    lineTotal,
}).Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="UTF-8">
<title>Rechnung {{.Invoice.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
.header { display: flex; justify-content: space-between; margin-bottom: 40px; border-bottom: 2px solid #2563eb; padding-bottom: 20px; }
.company-name { font-size: 24px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
.invoice-info { text-align: right; }
.invoice-number { font-size: 20px; font-weight: bold; margin-bottom: 10px; }
.customer-info, .work-details { margin: 30px 0; padding: 20px; background-color: #f8fafc; border-radius: 8px; }
.section-title { font-size: 18px; font-weight: bold; margin-bottom: 15px; color: #2563eb; }
.items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
.items-table th, .items-table td { border: 1px solid #e2e8f0; padding: 12px; text-align: left; }
.items-table th { background-color: #f1f5f9; font-weight: bold; }
.items-table .number { text-align: right; }
.totals { margin-top: 30px; text-align: right; }
.total-row { display: flex; justify-content: space-between; margin: 10px 0; }
.total-row.final { border-top: 2px solid #2563eb; font-weight: bold; font-size: 18px; padding-top: 15px; }
.footer { margin-top: 60px; padding-top: 20px; border-top: 1px solid #e2e8f0; font-size: 12px; color: #64748b; }
</style>
</head>
<body>
<div class="header">
  <div class="company-info">
    <div class="company-name">{{.Billing.IssuerName}}</div>
    <div>{{.Billing.IssuerTagline}}</div>
    <div>{{.Billing.IssuerAddress}}</div>
    <div>{{.Billing.IssuerCity}}</div>
    <div>{{.Billing.IssuerCountry}}</div>
    <div>Tel: {{.Billing.IssuerPhone}}</div>
    <div>E-Mail: {{.Billing.IssuerEmail}}</div>
  </div>
  <div class="invoice-info">
    <div class="invoice-number">Rechnung {{.Invoice.InvoiceNumber}}</div>
    <div>Datum: {{date .Invoice.CreatedAt}}</div>
    {{if .Invoice.DueDate}}<div>Fällig: {{dateptr .Invoice.DueDate}}</div>{{end}}
  </div>
</div>

<div class="customer-info">
  <div class="section-title">Rechnungsadresse</div>
  <div><strong>{{.Org.Name}}</strong></div>
  {{if .Property}}
  <div>{{.Property.Name}}</div>
  <div>{{.Property.AddressLine1}}</div>
  {{if .Property.AddressLine2}}<div>{{.Property.AddressLine2}}</div>{{end}}
  <div>{{.Property.PostalCode}} {{.Property.City}}</div>
  {{end}}
</div>

<div class="work-details">
  <div class="section-title">Arbeitsdetails</div>
  <div><strong>Service:</strong> {{serviceLabel .Order.Service}}</div>
  <div><strong>Beschreibung:</strong> {{.Order.Description}}</div>
  {{if .Order.CompletedAt}}<div><strong>Abgeschlossen am:</strong> {{dateptr .Order.CompletedAt}}</div>{{end}}
  {{if .Order.WorkPerformed}}
  <div style="margin-top: 15px;">
    <strong>Durchgeführte Arbeiten:</strong>
    <div style="margin-top: 5px; white-space: pre-line;">{{.Order.WorkPerformed}}</div>
  </div>
  {{end}}
</div>

{{if .Items}}
<table class="items-table">
  <thead>
    <tr>
      <th>Beschreibung</th>
      <th class="number">Menge</th>
      <th class="number">Einzelpreis</th>
      <th class="number">Gesamt</th>
    </tr>
  </thead>
  <tbody>
    {{range .Items}}
    <tr>
      <td>{{.Description}}</td>
      <td class="number">{{.Quantity}}</td>
      <td class="number">{{euro .UnitPrice}}</td>
      <td class="number">{{lineTotal .}}</td>
    </tr>
    {{end}}
  </tbody>
</table>
{{end}}

<div class="totals">
  <div class="total-row">
    <span>Zwischensumme:</span>
    <span>{{euro .Invoice.Amount}}</span>
  </div>
  <div class="total-row">
    <span>{{taxLabel .Billing.TaxRate}}:</span>
    <span>{{euro .Invoice.TaxAmount}}</span>
  </div>
  <div class="total-row final">
    <span>Gesamtbetrag:</span>
    <span>{{euro .Invoice.TotalAmount}}</span>
  </div>
</div>

{{if .Invoice.Notes}}
<div style="margin-top: 40px;">
  <div class="section-title">Bemerkungen</div>
  <div style="white-space: pre-line;">{{.Invoice.Notes}}</div>
</div>
{{end}}

<div class="footer">
  <div><strong>Zahlungsbedingungen:</strong> Zahlbar innerhalb von {{.Billing.DueDays}} Tagen nach Rechnungsdatum.</div>
  <div><strong>Bankverbindung:</strong> IBAN: {{.Billing.IBAN}}, BIC: {{.Billing.BIC}}</div>
  <div style="margin-top: 20px;">{{.Billing.IssuerName}} • {{.Billing.RegistryFooter}}</div>
</div>
</body>
</html>
`))
