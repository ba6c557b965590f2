package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront-orders/internal/notification/application"
	"github.com/dmehra2102/storefront-orders/internal/notification/domain"
	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/logging"
)

type senderMock struct {
	mock.Mock
}

func (m *senderMock) Send(ctx context.Context, orderCode string, body []byte) error {
	return m.Called(orderCode, body).Error(0)
}

func placedOrder() (order.OrderHeader, []order.LineItem) {
	s := order.Submission{
		OrderCode: "ORD-1700000000000-AB12C",
		Customer:  order.Customer{FirstName: "Asha", LastName: "Odhiambo", Phone: "0700000000"},
		Shipping:  order.ShippingAddress{Line1: "1 Market St", City: "Nairobi", Notes: "gate B"},
		Items: []order.SubmissionItem{
			{ProductID: "P1", ProductName: "Rice 2kg", Quantity: 2, Price: decimal.RequireFromString("4.50")},
			{ProductID: "P2", ProductName: "Sugar 1kg", Quantity: 1, Price: decimal.RequireFromString("2"), PriceType: order.PriceWholesale},
		},
	}
	s.Normalize()
	h := order.NewOrderHeader(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return h, order.NewLineItems(h.ID, s)
}

func TestDispatcherFullPayload(t *testing.T) {
	h, items := placedOrder()
	sender := new(senderMock)
	var body []byte
	sender.On("Send", h.OrderCode, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).([]byte)
	}).Return(nil).Once()

	d := application.NewDispatcher(logging.Discard(), domain.ModeFull, "KES", sender)
	require.NoError(t, d.Dispatch(context.Background(), h, items))

	var p map[string]any
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "ORD-1700000000000-AB12C", p["order_code"])
	assert.Equal(t, "KES", p["currency"])
	assert.Equal(t, 11.0, p["total_amount"])
	assert.Equal(t, "Asha Odhiambo", p["customer"].(map[string]any)["name"])
	assert.Equal(t, "gate B", p["shipping_address"].(map[string]any)["notes"])
	require.Len(t, p["items"], 2)
	assert.Equal(t, "wholesale", p["items"].([]any)[1].(map[string]any)["price_type"])
	sku, ok := p["items"].([]any)[0].(map[string]any)["sku"]
	assert.True(t, ok, "sku is always sent")
	assert.Equal(t, "", sku)
	sender.AssertExpectations(t)
}

func TestDispatcherMinimalPayload(t *testing.T) {
	h, items := placedOrder()
	sender := new(senderMock)
	sender.On("Send", h.OrderCode, mock.MatchedBy(func(b []byte) bool {
		var p domain.MinimalPayload
		return json.Unmarshal(b, &p) == nil && p.ItemCount == 3 && p.CustomerPhone == "0700000000"
	})).Return(nil).Once()

	d := application.NewDispatcher(logging.Discard(), domain.ModeMinimal, "", sender)
	require.NoError(t, d.Dispatch(context.Background(), h, items))
	sender.AssertExpectations(t)
}

func TestDispatcherReturnsSenderError(t *testing.T) {
	h, items := placedOrder()
	sender := new(senderMock)
	sender.On("Send", h.OrderCode, mock.Anything).Return(errors.New("connection refused")).Once()

	d := application.NewDispatcher(logging.Discard(), domain.ModeFull, "", sender)
	assert.EqualError(t, d.Dispatch(context.Background(), h, items), "connection refused")
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, application.NewNoopSender(logging.Discard()).Send(context.Background(), "ORD-1", nil))
}

func TestParseMode(t *testing.T) {
	m, err := domain.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFull, m)

	m, err = domain.ParseMode("minimal")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMinimal, m)

	_, err = domain.ParseMode("verbose")
	assert.Error(t, err)
}
