// Package forward implements the forward action fired by the scheduler:
// deliver one catalog item to every destination channel, each delivery
// wrapped in the retry envelope.
package forward

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relaybot/internal/retry"
)

// Transport is the outbound call the forwarder depends on.
type Transport interface {
	ForwardMessage(chatID, fromChatID string, messageID int) error
}

// Forwarder forwards catalog items from the source chat to the configured
// destination channels.
type Forwarder struct {
	transport Transport
	source    string
	targets   []string
	logger    *zap.Logger

	newEnvelope func() *retry.Envelope
}

// New creates a Forwarder.
func New(transport Transport, source string, targets []string, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		transport:   transport,
		source:      source,
		targets:     targets,
		logger:      logger,
		newEnvelope: retry.New,
	}
}

// Forward delivers the item's message to every destination, sequentially.
// One envelope spans the whole request, so backoff carries over between
// destinations and resets on the next request.
//
// A permanently failed destination is logged and skipped; the remaining
// destinations still get the message. The only error returned is context
// cancellation (shutdown), which abandons the request.
func (f *Forwarder) Forward(ctx context.Context, item string, messageID int) error {
	requestID := uuid.NewString()
	log := f.logger.With(
		zap.String("request_id", requestID),
		zap.String("item", item),
		zap.Int("message_id", messageID),
	)
	log.Info("Forward requested")

	env := f.newEnvelope()
	env.OnRetry = func(attempt int, kind retry.Kind, wait time.Duration) {
		log.Warn("Forward attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("kind", kind.String()),
			zap.Duration("wait", wait),
		)
	}

	for _, target := range f.targets {
		err := env.Do(ctx, func() error {
			return f.transport.ForwardMessage(target, f.source, messageID)
		})
		switch {
		case err == nil:
			log.Info("Forwarded", zap.String("target", target))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			log.Warn("Forward abandoned", zap.String("target", target), zap.Error(err))
			return err
		default:
			// Permanent: not delivered, never retried.
			log.Error("Forward failed permanently",
				zap.String("target", target),
				zap.Error(err),
			)
		}
	}
	return nil
}
