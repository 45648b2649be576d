package application

import (
	"errors"
	"fmt"

	"barrage/domain"
)

var (
	// ErrUnknownWeapon は定義テーブルに存在しないキーを指定した場合のエラーです。
	ErrUnknownWeapon = errors.New("application: unknown weapon key")
	// ErrInvalidDefinition は武器定義の検証に失敗した場合のエラーです。
	ErrInvalidDefinition = errors.New("application: invalid weapon definition")
	// ErrInvalidModifier は未知のパスや演算を含む修飾を指定した場合のエラーです。
	ErrInvalidModifier = errors.New("application: invalid modifier")
)

// ArchetypeKind は武器の振る舞いを選択するタグです。
// ディスパッチは常にこのタグに対する網羅的な switch で行います。
type ArchetypeKind string

const (
	KindProjectile ArchetypeKind = "projectile"
	KindSlash      ArchetypeKind = "slash"
	KindChain      ArchetypeKind = "chain"
	KindChainThrow ArchetypeKind = "chainThrow"
	KindCluster    ArchetypeKind = "cluster"
	KindBallistic  ArchetypeKind = "ballistic"
	KindBazooka    ArchetypeKind = "bazooka"
	KindCircular   ArchetypeKind = "circular"
	KindCross      ArchetypeKind = "cross"
	KindStrike     ArchetypeKind = "strike"
)

// TargetingMode は発射時の照準方法です。
type TargetingMode string

const (
	TargetNearest TargetingMode = "nearest" // 射程内の最近接敵
	TargetSelf    TargetingMode = "self"    // 対象不要（所有者中心）
	TargetFacing  TargetingMode = "facing"  // 所有者の向いている方向
)

// CritSpec はクリティカルの確率と倍率です。
type CritSpec struct {
	Chance float32 // 0..1
	Mult   float32
}

// DamageSpec は全アーキタイプ共通のダメージブロックです。
type DamageSpec struct {
	Base float32
	Crit CritSpec
}

// CadenceSpec は発射間隔の設定です。
type CadenceSpec struct {
	DelayMs   int64   // 発射アクティベーション間の最小間隔
	WarmupMs  int64   // 発射前の任意の待機時間
	Salvo     int     // 1アクティベーションで同時に発射する弾数（>= 1）
	SpreadDeg float32 // salvo > 1 のとき照準角の周囲に展開する角度
}

// ProjectileSpec は弾体の基本パラメータです。
type ProjectileSpec struct {
	Speed       float32 // px/s
	Pierce      int     // 初撃の後に追加で命中できる敵数
	LifetimeMs  int64
	MaxDistance float32 // 0 = 無制限
	HitRadius   float32 // 命中判定半径。0 なら既定値
}

// AoeSpec は範囲効果の設定です。
type AoeSpec struct {
	Radius     float32
	DamageMult float32 // 基本ダメージに対する倍率
}

// SlashArchetype は所有者に追従する短時間の円弧攻撃です。
type SlashArchetype struct {
	TimingMs int64 // 発動からダメージ適用までの遅延
}

// ChainArchetype は近傍の敵へ瞬時に連鎖する攻撃です。
type ChainArchetype struct {
	MaxHops       int
	FalloffPerHop float32 // ホップごとの減衰率 (0..1)
	HopRange      float32 // 次のホップ先を探す半径
}

// ChainThrowArchetype は弾体が物理的にホップ間を移動する連鎖攻撃です。
type ChainThrowArchetype struct {
	MaxHops          int
	FalloffPerHop    float32
	HopRange         float32
	PerHopDurationMs int64
}

// ClusterArchetype はリングまたは扇状に複数の子弾を生成します。
type ClusterArchetype struct {
	Count     int
	StaggerMs int64   // 0 なら同時生成
	SpreadDeg float32 // 0 ならリング (360度均等)
}

// BallisticArchetype は放物線弾道です。地面への帰還または初回命中で着弾します。
type BallisticArchetype struct {
	LaunchAngleDeg float32 // 水平からの射角
	Gravity        float32 // px/s^2、下向き正
}

// BazookaArchetype は一定時間後または命中時に起爆し、二次クラスターを展開します。
type BazookaArchetype struct {
	DetonateSeconds float32
	Secondary       ClusterArchetype
}

// CircularArchetype は所有者の周囲を周回し続ける弾体です。
// 命中は離散的な着弾ではなく、毎tickの再評価で判定します。
type CircularArchetype struct {
	Radius     float32
	AngularVel float32 // rad/s
	Clockwise  bool
	Count      int
	RehitMs    int64 // 同一対象への再命中間隔
}

// CrossArchetype は二軸方向へ拡大するパターンです。先端部分が判定を持ちます。
type CrossArchetype struct {
	StepPx   float32 // 1tickあたりの拡大量
	MaxSteps int
}

// StrikeTiming は strike のダメージ適用タイミングの基準です。
type StrikeTiming string

const (
	StrikeOnAnimation StrikeTiming = "animation"
	StrikeOnImpact    StrikeTiming = "impact"
)

// StrikeArchetype は対象の位置に固定される遅延着弾の範囲攻撃です。
type StrikeArchetype struct {
	Timing  StrikeTiming
	DelayMs int64
}

// Archetype は kind タグと、それに対応する設定をひとつだけ持つ直和型です。
// Validate が「タグに一致する設定のみが非nil」であることを強制します。
type Archetype struct {
	Kind       ArchetypeKind
	Projectile *struct{} // 共有フィールドのみ使用するため追加設定なし
	Slash      *SlashArchetype
	Chain      *ChainArchetype
	ChainThrow *ChainThrowArchetype
	Cluster    *ClusterArchetype
	Ballistic  *BallisticArchetype
	Bazooka    *BazookaArchetype
	Circular   *CircularArchetype
	Cross      *CrossArchetype
	Strike     *StrikeArchetype
}

// baseHops は連鎖系アーキタイプの基準ホップ数を返します。
func (a *Archetype) baseHops() int {
	switch a.Kind {
	case KindChain:
		if a.Chain != nil {
			return a.Chain.MaxHops
		}
	case KindChainThrow:
		if a.ChainThrow != nil {
			return a.ChainThrow.MaxHops
		}
	}
	return 0
}

// baseCount はクラスター・周回系アーキタイプの基準弾数を返します。
func (a *Archetype) baseCount() int {
	switch a.Kind {
	case KindCluster:
		if a.Cluster != nil {
			return a.Cluster.Count
		}
	case KindBazooka:
		if a.Bazooka != nil {
			return a.Bazooka.Secondary.Count
		}
	case KindCircular:
		if a.Circular != nil {
			return a.Circular.Count
		}
	}
	return 0
}

func (a *Archetype) validate() error {
	configs := 0
	var matched bool
	check := func(set bool, kind ArchetypeKind) {
		if set {
			configs++
			if a.Kind == kind {
				matched = true
			}
		}
	}
	check(a.Projectile != nil, KindProjectile)
	check(a.Slash != nil, KindSlash)
	check(a.Chain != nil, KindChain)
	check(a.ChainThrow != nil, KindChainThrow)
	check(a.Cluster != nil, KindCluster)
	check(a.Ballistic != nil, KindBallistic)
	check(a.Bazooka != nil, KindBazooka)
	check(a.Circular != nil, KindCircular)
	check(a.Cross != nil, KindCross)
	check(a.Strike != nil, KindStrike)

	switch a.Kind {
	case KindProjectile, KindSlash, KindChain, KindChainThrow, KindCluster,
		KindBallistic, KindBazooka, KindCircular, KindCross, KindStrike:
	default:
		return fmt.Errorf("%w: unknown archetype kind %q", ErrInvalidDefinition, a.Kind)
	}

	// projectile は追加設定なしでもよい
	if a.Kind == KindProjectile && configs == 0 {
		return nil
	}
	if !matched || configs != 1 {
		return fmt.Errorf("%w: archetype config does not match kind %q", ErrInvalidDefinition, a.Kind)
	}
	return nil
}

// Definition は不変の武器定義です。複数の WeaponInstance から共有されます。
type Definition struct {
	Key       domain.WeaponKey
	Name      string
	Archetype Archetype
	Targeting TargetingMode

	Cadence    CadenceSpec
	Damage     DamageSpec
	Projectile ProjectileSpec
	Aoe        AoeSpec

	Range    float32 // 照準スキャンの半径。0 = 無制限
	PoolSize int

	MaxLevel int
	Levels   map[int]LevelDelta // レベル2以降の累積デルタ
}

// Validate は定義を検証します。不正な定義は装備時ではなくロード時に弾きます。
func (d *Definition) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidDefinition)
	}
	if err := d.Archetype.validate(); err != nil {
		return fmt.Errorf("weapon %q: %w", d.Key, err)
	}
	switch d.Targeting {
	case TargetNearest, TargetSelf, TargetFacing:
	case "":
		return fmt.Errorf("%w: weapon %q: targeting mode is required", ErrInvalidDefinition, d.Key)
	default:
		return fmt.Errorf("%w: weapon %q: unknown targeting mode %q", ErrInvalidDefinition, d.Key, d.Targeting)
	}
	if d.Cadence.DelayMs <= 0 {
		return fmt.Errorf("%w: weapon %q: cadence delayMs must be positive", ErrInvalidDefinition, d.Key)
	}
	if d.Damage.Base <= 0 {
		return fmt.Errorf("%w: weapon %q: damage base must be positive", ErrInvalidDefinition, d.Key)
	}
	if d.Damage.Crit.Chance < 0 || d.Damage.Crit.Chance > 1 {
		return fmt.Errorf("%w: weapon %q: crit chance must be in [0,1]", ErrInvalidDefinition, d.Key)
	}
	if d.PoolSize <= 0 {
		return fmt.Errorf("%w: weapon %q: pool size must be positive", ErrInvalidDefinition, d.Key)
	}
	if d.MaxLevel < 1 {
		return fmt.Errorf("%w: weapon %q: max level must be >= 1", ErrInvalidDefinition, d.Key)
	}
	for level := range d.Levels {
		if level < 2 || level > d.MaxLevel {
			return fmt.Errorf("%w: weapon %q: level delta %d outside 2..%d", ErrInvalidDefinition, d.Key, level, d.MaxLevel)
		}
	}
	return nil
}

// Library は検証済みの武器定義テーブルです。起動時に一度だけ構築します。
type Library struct {
	version string
	defs    map[domain.WeaponKey]*Definition
	keys    []domain.WeaponKey
}

// NewLibrary は定義群を検証してライブラリを構築します。
// 1つでも不正な定義があれば全体が失敗します（握りつぶして既定値にしない）。
func NewLibrary(version string, defs []*Definition) (*Library, error) {
	lib := &Library{
		version: version,
		defs:    make(map[domain.WeaponKey]*Definition, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := lib.defs[def.Key]; exists {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidDefinition, def.Key)
		}
		lib.defs[def.Key] = def
		lib.keys = append(lib.keys, def.Key)
	}
	return lib, nil
}

func (l *Library) Version() string { return l.version }

func (l *Library) Get(key domain.WeaponKey) (*Definition, bool) {
	def, ok := l.defs[key]
	return def, ok
}

// Keys は登録順のキー一覧を返します。
func (l *Library) Keys() []domain.WeaponKey {
	out := make([]domain.WeaponKey, len(l.keys))
	copy(out, l.keys)
	return out
}
