package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	ctxErr error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.ctxErr = ctx.Err()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() core.OrderEvent {
	return core.OrderEvent{
		Type:     core.TransactionSale,
		OrderID:  "sale_01",
		TenantID: "tenant-a",
		Total:    decimal.RequireFromString("44.80"),
		Movements: []core.LedgerEntry{
			{ID: "txn_01", TenantID: "tenant-a", BatchID: "bat_01", QuantityChange: -8, Type: core.TransactionSale, ReferenceID: "sale_01"},
		},
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_PublishOrder(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.PublishOrder(ctx, sampleEvent()))
	assert.NoError(t, w.ctxErr, "a cancelled request must not abort publication")

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "tenant-a", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "event-type", Value: []byte("SALE")},
		{Key: "order-id", Value: []byte("sale_01")},
	}, msg.Headers)

	var decoded core.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "sale_01", decoded.OrderID)
	assert.True(t, decoded.Total.Equal(decimal.RequireFromString("44.80")))
	require.Len(t, decoded.Movements, 1)
	assert.Equal(t, int64(-8), decoded.Movements[0].QuantityChange)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WrapsWriteErrors(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}
	err := p.PublishOrder(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sale_01")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewPublisher_WithoutBrokers(t *testing.T) {
	p := NewPublisher(nil, "pharmacy.ledger")
	_, ok := p.(core.NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.PublishOrder(context.Background(), sampleEvent()))
}
