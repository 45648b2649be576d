package application

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"barrage/domain"
	"barrage/domain/mocks"
)

func newTestManager(t *testing.T, field *fakeField, sink domain.EventSink, opts ManagerOptions) *Manager {
	t.Helper()
	lib, err := DefaultLibrary()
	if err != nil {
		t.Fatalf("DefaultLibrary() error = %v", err)
	}
	return NewManager(lib, field, field, field, sink, opts)
}

func TestManagerAddRemove(t *testing.T) {
	ctx := context.Background()
	field := &fakeField{}
	sink := &recordSink{}
	m := newTestManager(t, field, sink, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon(bolt) error = %v", err)
	}
	if err := m.AddWeapon(ctx, "bolt"); !errors.Is(err, ErrWeaponEquipped) {
		t.Errorf("duplicate AddWeapon error = %v, want ErrWeaponEquipped", err)
	}
	if err := m.AddWeapon(ctx, "no-such"); !errors.Is(err, ErrUnknownWeapon) {
		t.Errorf("unknown AddWeapon error = %v, want ErrUnknownWeapon", err)
	}

	if got := m.Weapons(); len(got) != 1 || got[0] != "bolt" {
		t.Errorf("Weapons = %v, want [bolt]", got)
	}
	if lvl, ok := m.Level("bolt"); !ok || lvl != 1 {
		t.Errorf("Level = (%v, %v), want (1, true)", lvl, ok)
	}

	if err := m.RemoveWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("RemoveWeapon error = %v", err)
	}
	if err := m.RemoveWeapon(ctx, "bolt"); !errors.Is(err, ErrWeaponNotEquipped) {
		t.Errorf("second RemoveWeapon error = %v, want ErrWeaponNotEquipped", err)
	}

	if got := sink.count(domain.EventWeaponAdded); got != 1 {
		t.Errorf("WeaponAdded count = %v, want 1", got)
	}
	if got := sink.count(domain.EventWeaponRemoved); got != 1 {
		t.Errorf("WeaponRemoved count = %v, want 1", got)
	}
}

func TestManagerAllowList(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{
		Allowed: []domain.WeaponKey{"bolt"},
	})

	if err := m.AddWeapon(ctx, "saber"); !errors.Is(err, ErrWeaponNotAllowed) {
		t.Errorf("AddWeapon(saber) error = %v, want ErrWeaponNotAllowed", err)
	}
	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Errorf("AddWeapon(bolt) error = %v", err)
	}
}

func TestManagerLoadoutLimit(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{MaxWeapons: 1})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon(bolt) error = %v", err)
	}
	if err := m.AddWeapon(ctx, "saber"); !errors.Is(err, ErrLoadoutFull) {
		t.Errorf("AddWeapon over limit error = %v, want ErrLoadoutFull", err)
	}
}

func TestManagerSetLoadout(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.SetLoadout(ctx, []domain.WeaponKey{"bolt", "saber"}); err != nil {
		t.Fatalf("SetLoadout error = %v", err)
	}
	if err := m.SetLoadout(ctx, []domain.WeaponKey{"saber", "spark"}); err != nil {
		t.Fatalf("second SetLoadout error = %v", err)
	}
	got := m.Weapons()
	want := map[domain.WeaponKey]bool{"saber": true, "spark": true}
	if len(got) != 2 || !want[got[0]] || !want[got[1]] {
		t.Errorf("Weapons = %v, want saber and spark", got)
	}
}

func TestManagerRemoveReleasesProjectiles(t *testing.T) {
	ctx := context.Background()
	field := &fakeField{}
	field.addTarget("a", domain.Vec2{X: 400}, 1000)
	m := newTestManager(t, field, nil, ManagerOptions{})

	// nova はリング3発を展開する
	if err := m.AddWeapon(ctx, "nova"); err != nil {
		t.Fatalf("AddWeapon(nova) error = %v", err)
	}
	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon(bolt) error = %v", err)
	}

	for i := 0; i < 20; i++ {
		m.Update(ctx, 16)
	}
	novaPool := m.entries["nova"].controller.Pool()
	if novaPool.ActiveCount() == 0 {
		t.Fatalf("nova spawned no projectiles")
	}
	boltReservations := m.Coordinator().Len()
	if boltReservations == 0 {
		t.Fatalf("bolt registered no reservations")
	}

	// 装備解除で飛行中の弾と予約が即時解放される
	if err := m.RemoveWeapon(ctx, "nova"); err != nil {
		t.Fatalf("RemoveWeapon(nova) error = %v", err)
	}
	if got := novaPool.ActiveCount(); got != 0 {
		t.Errorf("nova ActiveCount after removal = %v, want 0", got)
	}

	if err := m.RemoveWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("RemoveWeapon(bolt) error = %v", err)
	}
	if got := m.Coordinator().Len(); got != 0 {
		t.Errorf("reservations after removal = %v, want 0", got)
	}
}

func TestManagerUpgrade(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, &recordSink{}, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	base := m.entries["bolt"].controller.cfg.Damage.Base

	if err := m.UpgradeWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("UpgradeWeapon error = %v", err)
	}
	if lvl, _ := m.Level("bolt"); lvl != 2 {
		t.Errorf("Level = %v, want 2", lvl)
	}
	upgraded := m.entries["bolt"].controller.cfg.Damage.Base
	if upgraded != base*1.2 {
		t.Errorf("Damage.Base after upgrade = %v, want %v", upgraded, base*1.2)
	}

	// 最大レベルで止まる
	for {
		if err := m.UpgradeWeapon(ctx, "bolt"); err != nil {
			if !errors.Is(err, ErrMaxLevelReached) {
				t.Fatalf("UpgradeWeapon error = %v, want ErrMaxLevelReached", err)
			}
			break
		}
	}
	if lvl, _ := m.Level("bolt"); lvl != 5 {
		t.Errorf("final Level = %v, want 5", lvl)
	}
}

func TestManagerDescribeUpgrade(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	lines, err := m.DescribeUpgrade("bolt")
	if err != nil {
		t.Fatalf("DescribeUpgrade error = %v", err)
	}
	if len(lines) != 1 || lines[0] != "damage +20%" {
		t.Errorf("DescribeUpgrade = %v, want [damage +20%%]", lines)
	}
}

func TestManagerGlobalModifier(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	if err := m.ApplyGlobalModifier([]Modifier{
		{Op: ModifierMul, Path: PathCadenceDelayMs, Value: 0.5},
	}); err != nil {
		t.Fatalf("ApplyGlobalModifier error = %v", err)
	}
	if got := m.entries["bolt"].controller.cfg.Cadence.DelayMs; got != 300 {
		t.Errorf("DelayMs with global modifier = %v, want 300", got)
	}

	if err := m.ApplyGlobalModifier([]Modifier{
		{Op: ModifierAdd, Path: "bogus.path", Value: 1},
	}); !errors.Is(err, ErrInvalidModifier) {
		t.Errorf("invalid global modifier error = %v, want ErrInvalidModifier", err)
	}
}

func TestManagerGlobalModifierStacks(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	base := m.entries["bolt"].def.Damage.Base

	// 2回の適用はレイヤーに累積し、後の適用が前の適用を消さない
	if err := m.ApplyGlobalModifier([]Modifier{
		{Op: ModifierMul, Path: PathDamageBase, Value: 2},
	}); err != nil {
		t.Fatalf("first ApplyGlobalModifier error = %v", err)
	}
	if err := m.ApplyGlobalModifier([]Modifier{
		{Op: ModifierMul, Path: PathCadenceDelayMs, Value: 0.5},
	}); err != nil {
		t.Fatalf("second ApplyGlobalModifier error = %v", err)
	}
	cfg := m.entries["bolt"].controller.cfg
	if cfg.Damage.Base != base*2 {
		t.Errorf("Damage.Base = %v, want %v", cfg.Damage.Base, base*2)
	}
	if cfg.Cadence.DelayMs != 300 {
		t.Errorf("Cadence.DelayMs = %v, want 300", cfg.Cadence.DelayMs)
	}

	// 適用後に装備した武器にも累積レイヤーが効く
	if err := m.AddWeapon(ctx, "saber"); err != nil {
		t.Fatalf("AddWeapon(saber) error = %v", err)
	}
	saberBase := m.entries["saber"].def.Damage.Base
	if got := m.entries["saber"].controller.cfg.Damage.Base; got != saberBase*2 {
		t.Errorf("saber Damage.Base = %v, want %v", got, saberBase*2)
	}
}

func TestManagerSetLoadoutRejectsAtomically(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.SetLoadout(ctx, []domain.WeaponKey{"bolt", "saber"}); err != nil {
		t.Fatalf("SetLoadout error = %v", err)
	}

	// 不正なキーを含む指定は装備を一切変更しない
	if err := m.SetLoadout(ctx, []domain.WeaponKey{"saber", "no-such"}); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("SetLoadout with unknown key error = %v, want ErrUnknownWeapon", err)
	}
	got := m.Weapons()
	if len(got) != 2 || got[0] != "bolt" || got[1] != "saber" {
		t.Errorf("Weapons after rejected loadout = %v, want [bolt saber] untouched", got)
	}

	// 許可リスト外・装備数超過も同様に事前に弾く
	m2 := newTestManager(t, &fakeField{}, nil, ManagerOptions{
		MaxWeapons: 1,
		Allowed:    []domain.WeaponKey{"bolt", "saber"},
	})
	if err := m2.SetLoadout(ctx, []domain.WeaponKey{"bolt"}); err != nil {
		t.Fatalf("SetLoadout error = %v", err)
	}
	if err := m2.SetLoadout(ctx, []domain.WeaponKey{"spark"}); !errors.Is(err, ErrWeaponNotAllowed) {
		t.Errorf("disallowed loadout error = %v, want ErrWeaponNotAllowed", err)
	}
	if err := m2.SetLoadout(ctx, []domain.WeaponKey{"bolt", "saber"}); !errors.Is(err, ErrLoadoutFull) {
		t.Errorf("oversized loadout error = %v, want ErrLoadoutFull", err)
	}
	if got := m2.Weapons(); len(got) != 1 || got[0] != "bolt" {
		t.Errorf("Weapons after rejected loadouts = %v, want [bolt] untouched", got)
	}
}

func TestManagerWeaponModifiers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	if err := m.SetModifiersForWeapon("bolt", []Modifier{
		{Op: ModifierAdd, Path: PathDamageBase, Value: 8},
	}); err != nil {
		t.Fatalf("SetModifiersForWeapon error = %v", err)
	}
	if got := m.entries["bolt"].controller.cfg.Damage.Base; got != 20 {
		t.Errorf("Damage.Base = %v, want 20", got)
	}
}

func TestManagerSimClockAccumulates(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeField{}, nil, ManagerOptions{})

	m.Update(ctx, 16)
	m.Update(ctx, 16)
	m.Update(ctx, 0) // 非正の差分は無視される
	m.Update(ctx, -5)
	if got := m.NowMs(); got != 32 {
		t.Errorf("NowMs = %v, want 32", got)
	}
}

func TestManagerDestroy(t *testing.T) {
	ctx := context.Background()
	field := &fakeField{}
	m := newTestManager(t, field, nil, ManagerOptions{})

	if err := m.SetLoadout(ctx, []domain.WeaponKey{"nova", "saber"}); err != nil {
		t.Fatalf("SetLoadout error = %v", err)
	}
	for i := 0; i < 10; i++ {
		m.Update(ctx, 16)
	}
	m.Destroy()
	if got := m.Weapons(); len(got) != 0 {
		t.Errorf("Weapons after destroy = %v, want empty", got)
	}
	if got := m.Coordinator().Len(); got != 0 {
		t.Errorf("reservations after destroy = %v, want 0", got)
	}
}

func TestManagerWithMockCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)

	owner := mocks.NewMockOwner(ctrl)
	owner.EXPECT().Position().Return(domain.Vec2{X: 100, Y: 100}).AnyTimes()
	owner.EXPECT().Facing().Return(domain.Vec2{X: 1}).AnyTimes()
	owner.EXPECT().CanFire().Return(true).AnyTimes()

	registry := mocks.NewMockTargetRegistry(ctrl)
	registry.EXPECT().ActiveTargets().Return(nil).AnyTimes()
	registry.EXPECT().Target(gomock.Any()).Return(domain.Target{}, false).AnyTimes()

	pipeline := mocks.NewMockDamagePipeline(ctrl)
	pipeline.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(float32(0)).AnyTimes()
	pipeline.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(float32(0)).AnyTimes()

	lib, err := DefaultLibrary()
	if err != nil {
		t.Fatalf("DefaultLibrary() error = %v", err)
	}
	sink := &recordSink{}
	m := NewManager(lib, owner, registry, pipeline, sink, ManagerOptions{})

	ctx := context.Background()
	if err := m.AddWeapon(ctx, "bolt"); err != nil {
		t.Fatalf("AddWeapon error = %v", err)
	}
	for i := 0; i < 50; i++ {
		m.Update(ctx, 16)
	}
	// 対象がいないので一度も発射されない
	if got := sink.count(domain.EventFireStarted); got != 0 {
		t.Errorf("FireStarted = %v, want 0", got)
	}
}
