// Package supplier implements the websocket client for the upstream record
// feed. Suppliers push loosely-typed JSON payloads; the feed normalizes them
// through internal/ingest and delivers resolved records on a channel.
package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phuslu/log"

	"procwatch/internal/domain"
	"procwatch/internal/ingest"
	"procwatch/internal/observability"
)

// FeedConfig configures websocket feed behavior.
type FeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Feed is a websocket client for a supplier record feed. Each text message
// is either a single raw record object or an array of them.
type Feed struct {
	endpoint string
	config   FeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// out delivers normalized records. Large buffer absorbs bursts;
	// blocking send ensures no record loss.
	out chan *domain.Record

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewFeed creates a new feed client and connects to the endpoint.
func NewFeed(ctx context.Context, endpoint string, config *FeedConfig) (*Feed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &Feed{
		endpoint: endpoint,
		config:   cfg,
		out:      make(chan *domain.Record, 10000),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// connect establishes the websocket connection.
func (f *Feed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// Records returns the channel of normalized records. The channel is closed
// when the feed is closed.
func (f *Feed) Records() <-chan *domain.Record {
	return f.out
}

// Close closes the websocket connection and the record channel.
func (f *Feed) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.out)
	return nil
}

// readLoop reads messages from the websocket and dispatches records.
func (f *Feed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !f.reconnecting.Swap(true) {
				go f.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > f.config.MaxReconnectDelay {
				reconnectDelay = f.config.MaxReconnectDelay
			}

			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = f.config.ReconnectDelay

		f.handleMessage(message)
	}
}

// reconnect attempts to reconnect after a delay.
func (f *Feed) reconnect(delay time.Duration) {
	defer f.reconnecting.Store(false)

	if f.closed.Load() {
		return
	}

	select {
	case <-f.done:
		return
	case <-time.After(delay):
	}

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		log.Error().Err(err).Str("endpoint", f.endpoint).Msg("feed reconnect failed")
		return
	}

	observability.RecordFeedReconnect()
	log.Info().Str("endpoint", f.endpoint).Msg("feed reconnected")
}

// handleMessage normalizes one message's payload and delivers the records.
func (f *Feed) handleMessage(message []byte) {
	raws, err := decodeMessage(message)
	if err != nil {
		observability.RecordFeedError("decode")
		log.Error().Err(err).Msg("feed message dropped")
		return
	}

	for _, rec := range ingest.NormalizeAll(raws) {
		if rec.ID == "" {
			observability.RecordFeedError("missing_id")
			log.Warn().Str("org", rec.OrgCode).Msg("feed record without id dropped")
			continue
		}

		// Block until we can send - never drop records
		select {
		case f.out <- rec:
			observability.RecordFeedRecord()
		case <-f.done:
			return
		}
	}
}

// decodeMessage parses either a single raw record or an array of them.
func decodeMessage(message []byte) ([]*ingest.RawRecord, error) {
	var batch []*ingest.RawRecord
	if err := json.Unmarshal(message, &batch); err == nil {
		return batch, nil
	}

	var single ingest.RawRecord
	if err := json.Unmarshal(message, &single); err != nil {
		return nil, fmt.Errorf("decode feed message: %w", err)
	}
	return []*ingest.RawRecord{&single}, nil
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (f *Feed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			f.connMu.Unlock()
		}
	}
}
