package application

import (
	"context"

	"barrage/domain"
)

// fakeField は Owner / TargetRegistry / DamagePipeline を1つで兼ねる
// テスト用の実装です。Apply は対象のHPを実際に減らします。
type fakeField struct {
	ownerPos   domain.Vec2
	facing     domain.Vec2
	cannotFire bool
	targets    []*fakeTarget
	applied    []float32
}

type fakeTarget struct {
	id  domain.TargetID
	pos domain.Vec2
	hp  float32
}

func (f *fakeField) addTarget(id domain.TargetID, pos domain.Vec2, hp float32) {
	f.targets = append(f.targets, &fakeTarget{id: id, pos: pos, hp: hp})
}

func (f *fakeField) hp(id domain.TargetID) float32 {
	for _, t := range f.targets {
		if t.id == id {
			return t.hp
		}
	}
	return 0
}

func (f *fakeField) Position() domain.Vec2 { return f.ownerPos }
func (f *fakeField) Facing() domain.Vec2   { return f.facing }
func (f *fakeField) CanFire() bool         { return !f.cannotFire }

func (f *fakeField) ActiveTargets() []domain.Target {
	var out []domain.Target
	for _, t := range f.targets {
		if t.hp > 0 {
			out = append(out, domain.Target{ID: t.id, Position: t.pos, HP: t.hp})
		}
	}
	return out
}

func (f *fakeField) Target(id domain.TargetID) (domain.Target, bool) {
	for _, t := range f.targets {
		if t.id == id && t.hp > 0 {
			return domain.Target{ID: t.id, Position: t.pos, HP: t.hp}, true
		}
	}
	return domain.Target{}, false
}

func (f *fakeField) Resolve(raw float32, _ domain.TargetID) float32 { return raw }

func (f *fakeField) Apply(raw float32, id domain.TargetID) float32 {
	for _, t := range f.targets {
		if t.id == id {
			t.hp -= raw
		}
	}
	f.applied = append(f.applied, raw)
	return raw
}

// recordSink は発行されたイベントをそのまま記録します。
type recordSink struct {
	events []domain.Event
}

func (s *recordSink) Publish(_ context.Context, ev domain.Event) {
	s.events = append(s.events, ev)
}

func (s *recordSink) count(kind domain.EventType) int {
	n := 0
	for _, ev := range s.events {
		if ev.Type == kind {
			n++
		}
	}
	return n
}

func (s *recordSink) byType(kind domain.EventType) []domain.Event {
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

// testProjectileDef はテスト用の単純な直進弾の定義を返します。
func testProjectileDef(key domain.WeaponKey, delayMs int64, speed float32) *Definition {
	return &Definition{
		Key:       key,
		Name:      string(key),
		Archetype: Archetype{Kind: KindProjectile},
		Targeting: TargetNearest,
		Cadence:   CadenceSpec{DelayMs: delayMs, Salvo: 1},
		Damage:    DamageSpec{Base: 10},
		Projectile: ProjectileSpec{
			Speed: speed, LifetimeMs: 5000, HitRadius: 12,
		},
		PoolSize: 16,
		MaxLevel: 3,
		Levels: map[int]LevelDelta{
			2: {DamageBaseMult: f32(1.5)},
			3: {CadenceDelayMsMult: f32(0.5)},
		},
	}
}

// newTestController は1武器分のコントローラーを既定の接続で構築します。
func newTestController(def *Definition, field *fakeField, sink domain.EventSink) (*Controller, *Coordinator) {
	coord := NewCoordinator(field, DefaultCoordinatorOptions())
	ctrl := NewController(def, resolveConfig(def), field, field, field, coord, sink, 1)
	return ctrl, coord
}

// runTicks は16ms刻みで untilMs までコントローラーを更新します。
func runTicks(ctrl *Controller, untilMs int64) {
	ctx := context.Background()
	for now := int64(16); now <= untilMs; now += 16 {
		ctrl.Update(ctx, now, 0.016)
	}
}
