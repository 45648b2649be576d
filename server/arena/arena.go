package arena

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"barrage/application"
	"barrage/domain"
)

// Arena は60FPSの固定tickで戦闘コアを駆動し、発生したイベントを
// 観戦セッションへ配信するループです。コアのシミュレーション時刻は
// tick間隔の累積のみで進み、壁時計には依存しません。
type Arena struct {
	field   *Field
	manager *application.Manager
	feed    *domain.FeedSink

	mu       sync.Mutex
	sessions map[SessionID]*Session

	seq          uint16
	tickInterval time.Duration
}

func New(field *Field, manager *application.Manager, feed *domain.FeedSink) *Arena {
	return &Arena{
		field:        field,
		manager:      manager,
		feed:         feed,
		sessions:     make(map[SessionID]*Session),
		tickInterval: time.Second / 60,
	}
}

// Attach は観戦セッションを登録し、その読み書きループを回します。
// セッションが終了したら登録を解除します。ブロックします。
func (a *Arena) Attach(ctx context.Context, transport Transport) error {
	session := NewSession(transport)

	a.mu.Lock()
	a.sessions[session.ID()] = session
	a.mu.Unlock()

	slog.DebugContext(ctx, "spectator attached", "session_id", session.ID())

	err := session.Run(ctx)

	a.mu.Lock()
	delete(a.sessions, session.ID())
	a.mu.Unlock()

	slog.DebugContext(ctx, "spectator detached", "session_id", session.ID(), "err", err)
	return err
}

// Run は ctx が取り消されるまでtickループを回します。
func (a *Arena) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.tickInterval)
	defer ticker.Stop()

	deltaMs := a.tickInterval.Milliseconds()
	dt := float32(deltaMs) / 1000

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.field.Tick(dt)
			a.manager.Update(ctx, deltaMs)
			a.broadcast(ctx)
		}
	}
}

// broadcast は1tickぶんのイベントをフレームに変換して全セッションへ送ります。
// 送信キューが満杯のセッションにはそのフレームを配らず落とします。
func (a *Arena) broadcast(ctx context.Context) {
	events := a.feed.Drain()
	if len(events) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.sessions) == 0 {
		return
	}

	for _, ev := range events {
		a.seq++
		frame := domain.EncodeEvent(a.seq, ev)
		for _, session := range a.sessions {
			if err := session.Send(frame); err != nil {
				slog.WarnContext(ctx, "frame dropped", "session_id", session.ID(), "err", err)
			}
		}
	}
}
