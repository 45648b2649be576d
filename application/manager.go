package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"barrage/domain"
)

var (
	ErrWeaponNotEquipped = errors.New("application: weapon is not equipped")
	ErrWeaponEquipped    = errors.New("application: weapon is already equipped")
	ErrWeaponNotAllowed  = errors.New("application: weapon is not in the allow list")
	ErrLoadoutFull       = errors.New("application: loadout is full")
	ErrMaxLevelReached   = errors.New("application: weapon is already at max level")
)

// ManagerOptions は Manager の構築パラメータです。
type ManagerOptions struct {
	// MaxWeapons は同時装備数の上限です。0 以下なら無制限です。
	MaxWeapons int
	// Allowed が非nilなら、含まれる武器のみ装備できます。
	Allowed []domain.WeaponKey
	// Seed はクリティカル判定などの乱数シードです。
	Seed uint64
	// Coordinator は照準コーディネーターの調整値です。
	Coordinator CoordinatorOptions
}

// weaponEntry は装備中の武器1つ分の状態です。
type weaponEntry struct {
	def        *Definition
	level      int
	custom     []Modifier
	controller *Controller
}

// Manager は1所有者が装備する武器群のライフサイクルを管理します。
// 全武器が単一のコーディネーターを共有するため、予約は武器を跨いで効きます。
type Manager struct {
	library  *Library
	owner    domain.Owner
	registry domain.TargetRegistry
	pipeline domain.DamagePipeline
	sink     domain.EventSink
	coord    *Coordinator

	opts    ManagerOptions
	allowed map[domain.WeaponKey]struct{}
	global  []Modifier

	nowMs   int64
	entries map[domain.WeaponKey]*weaponEntry
	order   []domain.WeaponKey // 装備順。更新順の決定性を保証する
	seedSeq uint64
}

// NewManager は武器マネージャーを構築します。
func NewManager(
	library *Library,
	owner domain.Owner,
	registry domain.TargetRegistry,
	pipeline domain.DamagePipeline,
	sink domain.EventSink,
	opts ManagerOptions,
) *Manager {
	m := &Manager{
		library:  library,
		owner:    owner,
		registry: registry,
		pipeline: pipeline,
		sink:     sink,
		coord:    NewCoordinator(registry, opts.Coordinator),
		opts:     opts,
		entries:  make(map[domain.WeaponKey]*weaponEntry),
	}
	if opts.Allowed != nil {
		m.allowed = make(map[domain.WeaponKey]struct{}, len(opts.Allowed))
		for _, key := range opts.Allowed {
			m.allowed[key] = struct{}{}
		}
	}
	return m
}

// Coordinator はテレメトリ用に共有コーディネーターを公開します。
func (m *Manager) Coordinator() *Coordinator { return m.coord }

// NowMs は現在のシミュレーション時刻を返します。
func (m *Manager) NowMs() int64 { return m.nowMs }

// Weapons は装備中の武器キーを装備順で返します。
func (m *Manager) Weapons() []domain.WeaponKey {
	keys := make([]domain.WeaponKey, len(m.order))
	copy(keys, m.order)
	return keys
}

// Level は装備中の武器の現在レベルを返します。
func (m *Manager) Level(key domain.WeaponKey) (int, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return 0, false
	}
	return entry.level, true
}

// AddWeapon は武器をレベル1で装備します。
// 未知の武器・許可されていない武器・装備数超過はエラーです。
func (m *Manager) AddWeapon(ctx context.Context, key domain.WeaponKey) error {
	if _, ok := m.entries[key]; ok {
		return fmt.Errorf("%w: %q", ErrWeaponEquipped, key)
	}
	if m.allowed != nil {
		if _, ok := m.allowed[key]; !ok {
			return fmt.Errorf("%w: %q", ErrWeaponNotAllowed, key)
		}
	}
	def, ok := m.library.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWeapon, key)
	}
	if m.opts.MaxWeapons > 0 && len(m.entries) >= m.opts.MaxWeapons {
		return fmt.Errorf("%w: limit %d", ErrLoadoutFull, m.opts.MaxWeapons)
	}

	entry := &weaponEntry{def: def, level: 1}
	m.seedSeq++
	entry.controller = NewController(
		def, m.composeConfig(entry),
		m.owner, m.registry, m.pipeline, m.coord, m.sink,
		m.opts.Seed+m.seedSeq,
	)
	m.entries[key] = entry
	m.order = append(m.order, key)

	m.publish(ctx, domain.Event{Type: domain.EventWeaponAdded, Weapon: key, Level: 1})
	return nil
}

// RemoveWeapon は武器を外します。飛行中の弾体はすべて即時解放され、
// その武器が保持していた予約も同時に返却されます。
func (m *Manager) RemoveWeapon(ctx context.Context, key domain.WeaponKey) error {
	entry, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWeaponNotEquipped, key)
	}
	entry.controller.Destroy()
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.publish(ctx, domain.Event{Type: domain.EventWeaponRemoved, Weapon: key})
	return nil
}

// SetLoadout は装備を指定キー群と一致させます。
// 不要になった武器を外し、足りない武器を追加します。既存の武器の
// レベルと弾体は維持されます。不正なキーや装備数超過を含む指定は
// 装備を一切変更せずにエラーを返します。
func (m *Manager) SetLoadout(ctx context.Context, keys []domain.WeaponKey) error {
	want := make(map[domain.WeaponKey]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := want[key]; ok {
			continue
		}
		if m.allowed != nil {
			if _, ok := m.allowed[key]; !ok {
				return fmt.Errorf("%w: %q", ErrWeaponNotAllowed, key)
			}
		}
		if _, ok := m.library.Get(key); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWeapon, key)
		}
		want[key] = struct{}{}
	}
	if m.opts.MaxWeapons > 0 && len(want) > m.opts.MaxWeapons {
		return fmt.Errorf("%w: limit %d", ErrLoadoutFull, m.opts.MaxWeapons)
	}
	for _, key := range m.Weapons() {
		if _, ok := want[key]; !ok {
			if err := m.RemoveWeapon(ctx, key); err != nil {
				return err
			}
		}
	}
	for _, key := range keys {
		if _, ok := m.entries[key]; ok {
			continue
		}
		if err := m.AddWeapon(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// UpgradeWeapon はレベルを1上げ、実効設定を再合成します。
// 飛行中の弾体は発射時の設定のまま飛び続けます。
func (m *Manager) UpgradeWeapon(ctx context.Context, key domain.WeaponKey) error {
	entry, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWeaponNotEquipped, key)
	}
	if entry.level >= entry.def.MaxLevel {
		return fmt.Errorf("%w: %q level %d", ErrMaxLevelReached, key, entry.level)
	}
	entry.level++
	entry.controller.SetConfig(m.composeConfig(entry))

	m.publish(ctx, domain.Event{Type: domain.EventWeaponUpgraded, Weapon: key, Level: entry.level})
	return nil
}

// DescribeUpgrade は次レベルで変化する項目の表示用文字列を返します。
func (m *Manager) DescribeUpgrade(key domain.WeaponKey) ([]string, error) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWeaponNotEquipped, key)
	}
	if entry.level >= entry.def.MaxLevel {
		return nil, nil
	}
	return DescribeLevelUpgrade(entry.def, entry.level, entry.level+1), nil
}

// SetModifiersForWeapon は武器固有の修飾レイヤーを置き換えます。
func (m *Manager) SetModifiersForWeapon(key domain.WeaponKey, mods []Modifier) error {
	entry, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWeaponNotEquipped, key)
	}
	if err := validateModifiers(mods); err != nil {
		return err
	}
	entry.custom = mods
	entry.controller.SetConfig(m.composeConfig(entry))
	return nil
}

// ApplyGlobalModifier は全武器に効く修飾をグローバルレイヤーへ追加し、
// 装備中の全武器の実効設定を再合成します。レイヤーは累積で、
// 以降に装備した武器にも同じ修飾が適用されます。
func (m *Manager) ApplyGlobalModifier(mods []Modifier) error {
	if err := validateModifiers(mods); err != nil {
		return err
	}
	m.global = append(m.global, mods...)
	for _, key := range m.order {
		entry := m.entries[key]
		entry.controller.SetConfig(m.composeConfig(entry))
	}
	return nil
}

// composeConfig はレイヤーを固定順（固有 → レベル → グローバル）で合成します。
func (m *Manager) composeConfig(entry *weaponEntry) ResolvedConfig {
	return resolveConfig(entry.def,
		entry.custom,
		getLevelModifiers(entry.def, entry.level),
		m.global,
	)
}

// Update はシミュレーション時刻を deltaMs だけ進め、全武器を装備順に更新します。
// 時刻は外部から供給される差分の累積で、壁時計には一切依存しません。
func (m *Manager) Update(ctx context.Context, deltaMs int64) {
	if deltaMs <= 0 {
		return
	}
	m.nowMs += deltaMs
	m.coord.Prune(m.nowMs)

	dt := float32(deltaMs) / 1000
	for _, key := range m.order {
		m.entries[key].controller.Update(ctx, m.nowMs, dt)
	}
}

// Destroy は全武器の弾体と予約を強制解放します（所有者の消滅時）。
func (m *Manager) Destroy() {
	for _, key := range m.order {
		m.entries[key].controller.Destroy()
	}
	slog.Debug("weapon manager destroyed", "weapons", len(m.order))
	m.entries = make(map[domain.WeaponKey]*weaponEntry)
	m.order = nil
}

func (m *Manager) publish(ctx context.Context, ev domain.Event) {
	if m.sink == nil {
		return
	}
	ev.SimTimeMs = m.nowMs
	m.sink.Publish(ctx, ev)
}
