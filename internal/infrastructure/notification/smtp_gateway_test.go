package notification

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGatewayOrder(t *testing.T) (*procurement.PurchaseOrder, *partner.Supplier) {
	t.Helper()
	supplier, err := partner.NewSupplier("SUP-001", "MedSupply Distributors")
	require.NoError(t, err)
	supplier.UpdateContact("Ravi", "", "orders@medsupply.example", "")

	order, err := procurement.NewPurchaseOrder("PO-2026-00001", supplier.ID, supplier.Name, time.Now())
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Paracetamol 500mg", "PARA-500",
		decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(12))
	require.NoError(t, err)
	return order, supplier
}

func TestSMTPGateway_SendPurchaseOrder(t *testing.T) {
	ctx := context.Background()
	cfg := config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        587,
		FromAddress: "procurement@pharmakart.example",
		FromName:    "PharmaKart Procurement",
	}

	t.Run("sends rendered order email", func(t *testing.T) {
		order, supplier := testGatewayOrder(t)
		gateway := NewSMTPGateway(cfg, zap.NewNop())

		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte
		gateway.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		}

		require.NoError(t, gateway.SendPurchaseOrder(ctx, order, supplier))
		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.Equal(t, "procurement@pharmakart.example", gotFrom)
		assert.Equal(t, []string{"orders@medsupply.example"}, gotTo)
		assert.Contains(t, string(gotMsg), "Subject: Purchase Order PO-2026-00001")
		assert.Contains(t, string(gotMsg), "Paracetamol 500mg")
		assert.Contains(t, string(gotMsg), "1120.00")
	})

	t.Run("propagates transport failure", func(t *testing.T) {
		order, supplier := testGatewayOrder(t)
		gateway := NewSMTPGateway(cfg, zap.NewNop())
		gateway.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		}

		err := gateway.SendPurchaseOrder(ctx, order, supplier)
		assert.Error(t, err)
	})

	t.Run("rejects supplier without email", func(t *testing.T) {
		order, supplier := testGatewayOrder(t)
		supplier.UpdateContact("", "", "", "")
		gateway := NewSMTPGateway(cfg, zap.NewNop())

		err := gateway.SendPurchaseOrder(ctx, order, supplier)
		assert.Error(t, err)
	})
}
