package arena

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
)

// SessionID は観戦セッションの識別子です。
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Transport は観戦クライアントとの双方向ストリームです。
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}

// Session は戦闘フィードを受信する観戦接続です。
// コアには一切書き込まず、イベントフレームを受け取るだけです。
type Session struct {
	id        SessionID
	transport Transport
	writeCh   chan []byte
}

func NewSession(transport Transport) *Session {
	return &Session{
		id:        NewSessionID(),
		transport: transport,
		writeCh:   make(chan []byte, 1024),
	}
}

func (s *Session) ID() SessionID { return s.id }

// Send はフレームを書き込みキューへ積みます。満杯時はブロックせず
// エラーを返します（遅いクライアントがtickを止めないための方針）。
func (s *Session) Send(data []byte) error {
	select {
	case s.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Run は読み書きループを回し、どちらかが終了するまでブロックします。
func (s *Session) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.readLoop(ctx)
	})
	eg.Go(func() error {
		return s.writeLoop(ctx)
	})
	return eg.Wait()
}

// readLoop は接続の生存確認のために読み続けます。観戦者からの
// 入力は現状解釈せず破棄します。
func (s *Session) readLoop(ctx context.Context) error {
	for {
		if _, err := s.transport.Read(ctx); err != nil {
			return err
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-s.writeCh:
			if err := s.transport.Write(ctx, data); err != nil {
				slog.DebugContext(ctx, "session write failed", "session_id", s.id, "err", err)
				return err
			}
		}
	}
}
