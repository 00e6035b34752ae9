// Package feed consumes the bot backend event feed over WebSocket.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/metrics"
	"github.com/AlexZinkM/trade-relay/internal/model"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// CopyTradeHandler processes one copy_trade event. It runs in its own
// goroutine so slow submissions do not hold up the feed.
type CopyTradeHandler func(ctx context.Context, ev model.CopyTradeEvent) error

// Options configures the consumer.
type Options struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	Header            http.Header
}

// Consumer keeps a connection to the feed open until its context ends.
type Consumer struct {
	opts    Options
	handle  CopyTradeHandler
	log     *logrus.Logger
	dialer  websocket.Dialer
	pending sync.WaitGroup
}

// NewConsumer creates a Consumer.
func NewConsumer(opts Options, handle CopyTradeHandler, log *logrus.Logger) *Consumer {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.MaxReconnectDelay < opts.ReconnectDelay {
		opts.MaxReconnectDelay = 30 * opts.ReconnectDelay
	}
	return &Consumer{
		opts:   opts,
		handle: handle,
		log:    log,
		dialer: websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Run connects and reads events, reconnecting with exponential backoff when
// the connection drops. It returns nil once ctx is done and every handler
// started so far has returned.
func (c *Consumer) Run(ctx context.Context) error {
	if c.opts.URL == "" {
		return errors.New("event feed URL is not configured")
	}
	defer c.pending.Wait()

	delay := c.opts.ReconnectDelay
	for {
		connected, err := c.session(ctx)
		metrics.FeedConnectionStatus.Set(0)
		if ctx.Err() != nil {
			c.log.Info("event feed stopped")
			return nil
		}
		if connected {
			delay = c.opts.ReconnectDelay
		}

		c.log.WithError(err).WithField("retry_in", delay.String()).Warn("event feed disconnected")
		metrics.FeedReconnects.Inc()

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			c.log.Info("event feed stopped")
			return nil
		case <-t.C:
		}

		delay *= 2
		if delay > c.opts.MaxReconnectDelay {
			delay = c.opts.MaxReconnectDelay
		}
	}
}

// session runs one connection. connected reports whether the handshake succeeded.
func (c *Consumer) session(ctx context.Context) (connected bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return false, fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()

	metrics.FeedConnectionStatus.Set(1)
	c.log.WithField("url", c.opts.URL).Info("event feed connected")

	// Unblock ReadMessage on shutdown.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("websocket read: %w", err)
		}
		c.dispatch(ctx, data)
	}
}

func (c *Consumer) dispatch(ctx context.Context, data []byte) {
	var ev model.FeedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.log.WithError(err).Warn("ignoring malformed feed message")
		metrics.FeedEvents.WithLabelValues("malformed").Inc()
		return
	}
	metrics.FeedEvents.WithLabelValues(ev.EventType).Inc()

	if ev.EventType != model.EventTypeCopyTrade {
		c.log.WithField("event_type", ev.EventType).Debug("ignoring feed event")
		return
	}

	var trade model.CopyTradeEvent
	if err := json.Unmarshal(ev.Data, &trade); err != nil || trade.SwapTransaction == "" {
		c.log.WithError(err).Warn("ignoring copy_trade event without swap transaction")
		return
	}

	c.log.WithField("user", trade.UserID).Info("copy_trade event received")
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := c.handle(ctx, trade); err != nil {
			c.log.WithError(err).Error("copy trade failed")
		}
	}()
}
