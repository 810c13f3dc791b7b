package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const orderEmailTemplate = `<html>
<body style="font-family: Arial, sans-serif;">
<p>Dear {{.SupplierName}},</p>
<p>Please find below purchase order <strong>{{.PONumber}}</strong> dated {{.OrderDate}}.</p>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
	<tr><th>Product</th><th>Code</th><th>Quantity</th><th>Unit Price</th><th>Tax %</th><th>Total</th></tr>
	{{range .Items}}
	<tr>
		<td>{{.ProductName}}</td>
		<td>{{.ProductCode}}</td>
		<td align="right">{{.Quantity}}</td>
		<td align="right">{{.UnitPrice}}</td>
		<td align="right">{{.TaxPercentage}}</td>
		<td align="right">{{.Total}}</td>
	</tr>
	{{end}}
</table>
<p><strong>Order total: INR {{.TotalAmount}}</strong></p>
{{if .ExpectedDate}}<p>Expected delivery: {{.ExpectedDate}}</p>{{end}}
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
<p>Regards,<br/>{{.FromName}}</p>
</body>
</html>`

type emailItem struct {
	ProductName   string
	ProductCode   string
	Quantity      string
	UnitPrice     string
	TaxPercentage string
	Total         string
}

type emailData struct {
	SupplierName string
	PONumber     string
	OrderDate    string
	ExpectedDate string
	Items        []emailItem
	TotalAmount  string
	Notes        string
	FromName     string
}

// SMTPGateway dispatches purchase orders to suppliers by email
type SMTPGateway struct {
	cfg      config.SMTPConfig
	tmpl     *template.Template
	logger   *zap.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPGateway creates a new SMTPGateway
func NewSMTPGateway(cfg config.SMTPConfig, logger *zap.Logger) *SMTPGateway {
	return &SMTPGateway{
		cfg:      cfg,
		tmpl:     template.Must(template.New("purchase_order_email").Parse(orderEmailTemplate)),
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// SendPurchaseOrder emails the order to the supplier's contact address
func (g *SMTPGateway) SendPurchaseOrder(ctx context.Context, order *procurement.PurchaseOrder, supplier *partner.Supplier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !supplier.HasEmail() {
		return fmt.Errorf("supplier %s has no email address", supplier.Code)
	}

	body, err := g.renderBody(order, supplier)
	if err != nil {
		return fmt.Errorf("failed to render order email: %w", err)
	}

	subject := fmt.Sprintf("Purchase Order %s", order.PONumber)
	msg := g.buildMessage(supplier.Email, subject, body)

	addr := fmt.Sprintf("%s:%d", g.cfg.Host, g.cfg.Port)
	var auth smtp.Auth
	if g.cfg.Username != "" {
		auth = smtp.PlainAuth("", g.cfg.Username, g.cfg.Password, g.cfg.Host)
	}

	if err := g.sendMail(addr, auth, g.cfg.FromAddress, []string{supplier.Email}, msg); err != nil {
		g.logger.Warn("Purchase order dispatch failed",
			zap.String("po_number", order.PONumber),
			zap.String("supplier_code", supplier.Code),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send order email: %w", err)
	}

	g.logger.Info("Purchase order dispatched",
		zap.String("po_number", order.PONumber),
		zap.String("supplier_code", supplier.Code),
	)
	return nil
}

func (g *SMTPGateway) renderBody(order *procurement.PurchaseOrder, supplier *partner.Supplier) (string, error) {
	data := emailData{
		SupplierName: supplier.Name,
		PONumber:     order.PONumber,
		OrderDate:    order.OrderDate.Format("02 Jan 2006"),
		TotalAmount:  order.TotalAmount.StringFixed(2),
		Notes:        order.Notes,
		FromName:     g.cfg.FromName,
	}
	if order.ExpectedDate != nil {
		data.ExpectedDate = order.ExpectedDate.Format("02 Jan 2006")
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, emailItem{
			ProductName:   item.ProductName,
			ProductCode:   item.ProductCode,
			Quantity:      item.Quantity.String(),
			UnitPrice:     item.UnitPrice.StringFixed(2),
			TaxPercentage: item.TaxPercentage.String(),
			Total:         item.Total.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *SMTPGateway) buildMessage(to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", g.cfg.FromName, g.cfg.FromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}
