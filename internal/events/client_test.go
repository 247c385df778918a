package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	deadline bool
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	_, f.deadline = ctx.Deadline()
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func savedDeclaration() *domain.Declaration {
	return &domain.Declaration{
		ID:            42,
		TaxpayerID:    1,
		Year:          2025,
		ExpenseMethod: domain.LumpSum,
		Status:        domain.StatusFinal,
		CalculatedTax: decimal.NewFromInt(12500),
		NetTaxToPay:   decimal.NewFromInt(-7500),
	}
}

func TestPublishDeclarationSaved(t *testing.T) {
	ch := &fakeChannel{}
	client := &Client{channel: ch, exchangeName: "mtax", routingKey: "declaration.saved"}
	client.log = nopLogger()

	require.NoError(t, client.PublishDeclarationSaved(context.Background(), savedDeclaration()))

	assert.Equal(t, "mtax", ch.exchange)
	assert.Equal(t, "declaration.saved", ch.key)
	assert.True(t, ch.deadline, "publish must carry a timeout")
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	msg, err := DeclarationSavedMessageFromJSON(ch.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, EventDeclarationSaved, msg.Event)
	assert.Equal(t, int64(42), msg.DeclarationID)
	assert.Equal(t, domain.StatusFinal, msg.Status)
	assert.True(t, msg.NetTaxToPay.Equal(decimal.NewFromInt(-7500)))
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}

func TestPublishDeclarationSaved_Error(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	client := &Client{channel: ch, exchangeName: "mtax", routingKey: "declaration.saved", log: nopLogger()}

	err := client.PublishDeclarationSaved(context.Background(), savedDeclaration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	client := &Client{channel: ch}
	assert.NoError(t, client.Close())
	assert.True(t, ch.closed)
}

func TestDeclarationSavedMessageFromJSON_Invalid(t *testing.T) {
	_, err := DeclarationSavedMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)
}

func nopLogger() *zap.Logger { return zap.NewNop() }
