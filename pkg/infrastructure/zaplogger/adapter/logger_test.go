package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/van-bff/pkg/application"
)

func TestZapAdapterAddsRequestIDAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewFromZap(zap.New(core))

	ctx := context.WithValue(context.Background(), application.RequestIDKey, "req-1")
	logger.Info(ctx, "viagem criada", map[string]interface{}{"trip_id": 7})
	logger.Trace(context.Background(), "detalhe", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "viagem criada", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["requestID"])
	assert.EqualValues(t, 7, fields["trip_id"])

	assert.Equal(t, zap.DebugLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "requestID")
}

func TestNewZapAppLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewZapAppLogger("van-bff", "verbose")
	assert.Error(t, err)
}
