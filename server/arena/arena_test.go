package arena

import (
	"context"
	"sync"
	"testing"
	"time"

	"barrage/application"
	"barrage/domain"
)

// pipeTransport はチャネルで繋がったテスト用の Transport です。
type pipeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	readCh chan []byte
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{readCh: make(chan []byte)}
}

func (t *pipeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data := <-t.readCh:
		return data, nil
	}
}

func (t *pipeTransport) Write(_ context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, data)
	return nil
}

func (t *pipeTransport) Close(int32, string) error { return nil }

func (t *pipeTransport) frameCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

func newTestArena(t *testing.T) (*Arena, *Field, *domain.FeedSink) {
	t.Helper()
	lib, err := application.DefaultLibrary()
	if err != nil {
		t.Fatalf("DefaultLibrary() error = %v", err)
	}
	field := NewField(640, 480, 8, 1)
	feed := domain.NewFeedSink(1024)
	manager := application.NewManager(lib, field, field, field, feed, application.ManagerOptions{Seed: 1})
	if err := manager.AddWeapon(context.Background(), "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	return New(field, manager, feed), field, feed
}

func TestArenaBroadcastsFrames(t *testing.T) {
	a, _, _ := newTestArena(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := newPipeTransport()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Attach(ctx, transport)
	}()

	go func() { _ = a.Run(ctx) }()

	// 武器が発射されイベントフレームが届くまで待つ
	deadline := time.After(3 * time.Second)
	for transport.frameCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("no frames broadcast within deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestArenaFramesParse(t *testing.T) {
	a, _, feed := newTestArena(t)
	_ = a

	// 装備時のイベントを先に吸い出してから検証対象を投入する
	feed.Drain()
	feed.Publish(context.Background(), domain.Event{
		Type:   domain.EventImpact,
		Weapon: "bolt",
		Target: "enemy-001",
		Damage: 12,
	})
	events := feed.Drain()
	if len(events) != 1 {
		t.Fatalf("Drain count = %v, want 1", len(events))
	}

	frame := domain.EncodeEvent(1, events[0])
	parsed, err := domain.ParseEventFrame(frame)
	if err != nil {
		t.Fatalf("ParseEventFrame error = %v", err)
	}
	if parsed.Weapon != "bolt" || parsed.Target != "enemy-001" || parsed.Damage != 12 {
		t.Errorf("parsed = %+v, want original event", parsed)
	}
}

func TestArenaDetachOnContextCancel(t *testing.T) {
	a, _, _ := newTestArena(t)

	ctx, cancel := context.WithCancel(context.Background())
	transport := newPipeTransport()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Attach(ctx, transport)
	}()

	// 登録されるまで待ってから取り消す
	for {
		a.mu.Lock()
		n := len(a.sessions)
		a.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Attach did not return after cancel")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.sessions) != 0 {
		t.Errorf("sessions after detach = %v, want 0", len(a.sessions))
	}
}
