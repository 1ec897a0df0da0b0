package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"tally/internal/amqp"
	applog "tally/internal/log"
)

type scriptedConsumer struct {
	err error
}

func (s scriptedConsumer) ConsumeTransactionImports(context.Context, amqp.Handler) error {
	return s.err
}

func (scriptedConsumer) Close() error { return nil }

func TestConsumeWithReconnect_RedialsOnConnectionLoss(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dials := 0
	err := consumeWithReconnect(ctx, logger, func() (consumer, error) {
		dials++
		if dials == 1 {
			return scriptedConsumer{err: amqp.ErrChannelClosed}, nil
		}
		cancel()
		return scriptedConsumer{err: context.Canceled}, nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, dials)
}

func TestConsumeWithReconnect_ReturnsOtherErrors(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	boom := errors.New("declare queue: access refused")

	err := consumeWithReconnect(context.Background(), logger, func() (consumer, error) {
		return scriptedConsumer{err: boom}, nil
	}, nil)
	assert.ErrorIs(t, err, boom)
}
