// Package realtime keeps the store in step with server-side changes by
// subscribing to a websocket change feed and reloading the affected table.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one change notification from the feed.
type Event struct {
	Table string `json:"table"`
	Type  string `json:"type"`
}

// Reloader refreshes one table of the store.
type Reloader interface {
	Reload(ctx context.Context, table string) error
}

// Subscriber maintains the feed connection and dispatches reloads.
type Subscriber struct {
	url     string
	store   Reloader
	log     *zap.Logger
	backoff time.Duration
}

func NewSubscriber(url string, store Reloader, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{
		url:     url,
		store:   store,
		log:     log,
		backoff: 5 * time.Second,
	}
}

// Run connects and processes events until the context is cancelled,
// reconnecting with a fixed backoff after any connection loss.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.log.Warn("change feed dial failed", zap.String("url", s.url), zap.Error(err))
			if err := s.wait(ctx); err != nil {
				return err
			}
			continue
		}

		s.log.Info("change feed connected", zap.String("url", s.url))
		s.readLoop(ctx, conn)

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.wait(ctx); err != nil {
			return err
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("change feed read failed", zap.Error(err))
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn("undecodable change event", zap.ByteString("data", data))
			continue
		}
		if ev.Table == "" {
			continue
		}
		if err := s.store.Reload(ctx, ev.Table); err != nil {
			s.log.Warn("reload after change event failed",
				zap.String("table", ev.Table), zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func (s *Subscriber) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.backoff):
		return nil
	}
}
