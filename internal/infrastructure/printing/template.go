package printing

import (
	"bytes"
	"html/template"

	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
)

const purchaseOrderTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
	body { font-family: Arial, sans-serif; font-size: 12px; color: #222; }
	h1 { font-size: 20px; margin-bottom: 2px; }
	.meta { margin: 12px 0; }
	.meta td { padding: 2px 16px 2px 0; }
	table.items { width: 100%; border-collapse: collapse; margin-top: 12px; }
	table.items th, table.items td { border: 1px solid #999; padding: 6px; }
	table.items th { background: #f0f0f0; text-align: left; }
	td.num { text-align: right; }
	.total { margin-top: 12px; font-size: 14px; font-weight: bold; text-align: right; }
	.notes { margin-top: 16px; font-size: 11px; color: #555; }
	.status { text-transform: uppercase; letter-spacing: 1px; }
</style>
</head>
<body>
<h1>Purchase Order {{.PONumber}}</h1>
<div class="status">{{.Status}}</div>

<table class="meta">
	<tr><td>Supplier</td><td>{{.SupplierName}} ({{.SupplierCode}})</td></tr>
	{{if .SupplierGSTIN}}<tr><td>GSTIN</td><td>{{.SupplierGSTIN}}</td></tr>{{end}}
	{{if .SupplierAddress}}<tr><td>Address</td><td>{{.SupplierAddress}}</td></tr>{{end}}
	<tr><td>Order date</td><td>{{.OrderDate}}</td></tr>
	{{if .ExpectedDate}}<tr><td>Expected delivery</td><td>{{.ExpectedDate}}</td></tr>{{end}}
	<tr><td>Payment status</td><td>{{.PaymentStatus}}</td></tr>
</table>

<table class="items">
	<tr>
		<th>#</th><th>Product</th><th>Code</th><th>Qty</th><th>Received</th>
		<th>Unit Price</th><th>Tax %</th><th>Tax</th><th>Line Total</th>
	</tr>
	{{range .Items}}
	<tr>
		<td class="num">{{.Index}}</td>
		<td>{{.ProductName}}</td>
		<td>{{.ProductCode}}</td>
		<td class="num">{{.Quantity}}</td>
		<td class="num">{{.ReceivedQuantity}}</td>
		<td class="num">{{.UnitPrice}}</td>
		<td class="num">{{.TaxPercentage}}</td>
		<td class="num">{{.TaxAmount}}</td>
		<td class="num">{{.Total}}</td>
	</tr>
	{{end}}
</table>

<div class="total">Total: INR {{.TotalAmount}}</div>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>`

type documentItem struct {
	Index            int
	ProductName      string
	ProductCode      string
	Quantity         string
	ReceivedQuantity string
	UnitPrice        string
	TaxPercentage    string
	TaxAmount        string
	Total            string
}

type documentData struct {
	PONumber        string
	Status          string
	SupplierName    string
	SupplierCode    string
	SupplierGSTIN   string
	SupplierAddress string
	OrderDate       string
	ExpectedDate    string
	PaymentStatus   string
	Items           []documentItem
	TotalAmount     string
	Notes           string
}

var poTemplate = template.Must(template.New("purchase_order_document").Parse(purchaseOrderTemplate))

// RenderPurchaseOrderHTML renders the printable HTML for a purchase order
func RenderPurchaseOrderHTML(order *procurement.PurchaseOrder, supplier *partner.Supplier) (string, error) {
	data := documentData{
		PONumber:      order.PONumber,
		Status:        order.Status.String(),
		SupplierName:  supplier.Name,
		SupplierCode:  supplier.Code,
		SupplierGSTIN: supplier.GSTIN,
		OrderDate:     order.OrderDate.Format("02 Jan 2006"),
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Notes:         order.Notes,
	}
	data.SupplierAddress = supplier.Address
	if order.ExpectedDate != nil {
		data.ExpectedDate = order.ExpectedDate.Format("02 Jan 2006")
	}
	for i, item := range order.Items {
		data.Items = append(data.Items, documentItem{
			Index:            i + 1,
			ProductName:      item.ProductName,
			ProductCode:      item.ProductCode,
			Quantity:         item.Quantity.String(),
			ReceivedQuantity: item.ReceivedQuantity.String(),
			UnitPrice:        item.UnitPrice.StringFixed(2),
			TaxPercentage:    item.TaxPercentage.String(),
			TaxAmount:        item.TaxAmount.StringFixed(2),
			Total:            item.Total.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := poTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
