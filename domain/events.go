package domain

import (
	"context"
	"log/slog"
)

// EventType は戦闘イベントの種別です。
type EventType uint8

const (
	EventUnknown EventType = iota

	// 武器ライフサイクル
	EventWeaponAdded
	EventWeaponRemoved
	EventWeaponUpgraded

	// 発射サイクル
	EventFireStarted
	EventFireEnded
	EventFireSkipped // プール枯渇などで発射を見送った（テレメトリ用）

	// 着弾
	EventImpact
)

// Event は演出レイヤーへ通知する戦闘イベントです。
// コアは描画や音声を一切行わず、イベントの発行のみを行います。
type Event struct {
	Type      EventType
	SimTimeMs int64
	Weapon    WeaponKey
	Target    TargetID // 対象がないイベントでは空
	Position  Vec2
	Damage    float32 // Impact のみ。クリティカル込みの実効値
	Crit      bool
	Level     int // WeaponAdded / WeaponUpgraded のみ
}

// EventSink は戦闘イベントの通知先です。
type EventSink interface {
	Publish(ctx context.Context, ev Event)
}

// SinkFunc は関数を EventSink として扱うためのアダプタです。
type SinkFunc func(ctx context.Context, ev Event)

func (f SinkFunc) Publish(ctx context.Context, ev Event) { f(ctx, ev) }

// Bus は複数の EventSink へ同期的にファンアウトするディスパッチャです。
// コアはシングルスレッドで動くため、購読側の処理も同一tick内で完了します。
type Bus struct {
	sinks []EventSink
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Attach(sink EventSink) {
	if sink == nil {
		return
	}
	b.sinks = append(b.sinks, sink)
}

func (b *Bus) Publish(ctx context.Context, ev Event) {
	for _, sink := range b.sinks {
		sink.Publish(ctx, ev)
	}
}

// FeedSink はイベントをバッファリングして別ループへ渡すシンクです。
// バッファが満杯の場合は破棄して警告を出します（バックプレッシャー方針）。
type FeedSink struct {
	ch chan Event
}

func NewFeedSink(buffer int) *FeedSink {
	if buffer <= 0 {
		buffer = 1024
	}
	return &FeedSink{ch: make(chan Event, buffer)}
}

func (f *FeedSink) Publish(ctx context.Context, ev Event) {
	select {
	case f.ch <- ev:
	default:
		slog.WarnContext(ctx, "feed sink full, event dropped", "type", ev.Type, "weapon", ev.Weapon)
	}
}

// Drain はバッファに溜まったイベントをすべて取り出します。
func (f *FeedSink) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-f.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
