package application

// ModifierOp はステータス修飾の演算種別です。
type ModifierOp uint8

const (
	ModifierAdd ModifierOp = iota + 1
	ModifierMul
)

// ModifierPath は修飾対象のパスです。パスは既知の閉じた集合で、
// 未知のパスは適用時に無視されず検証エラーになります。
type ModifierPath string

const (
	PathDamageBase           ModifierPath = "damage.base"
	PathCritChance           ModifierPath = "damage.crit.chance"
	PathCritMult             ModifierPath = "damage.crit.mult"
	PathCadenceDelayMs       ModifierPath = "cadence.delayMs"
	PathCadenceSalvo         ModifierPath = "cadence.salvo"
	PathCadenceSpreadDeg     ModifierPath = "cadence.spreadDeg"
	PathProjectileSpeed      ModifierPath = "projectile.speed"
	PathProjectilePierce     ModifierPath = "projectile.pierce"
	PathProjectileLifetimeMs ModifierPath = "projectile.lifetimeMs"
	PathProjectileMaxDist    ModifierPath = "projectile.maxDistance"
	PathAoeRadius            ModifierPath = "aoe.radius"
	PathAoeDamageMult        ModifierPath = "aoe.damageMult"
	PathArchetypeHops        ModifierPath = "archetype.hops"
	PathArchetypeCount       ModifierPath = "archetype.count"
)

// modifierPathOrder は解決とアップグレード説明文の出力順を固定します。
var modifierPathOrder = []ModifierPath{
	PathDamageBase,
	PathCritChance,
	PathCritMult,
	PathCadenceDelayMs,
	PathCadenceSalvo,
	PathCadenceSpreadDeg,
	PathProjectileSpeed,
	PathProjectilePierce,
	PathProjectileLifetimeMs,
	PathProjectileMaxDist,
	PathAoeRadius,
	PathAoeDamageMult,
	PathArchetypeHops,
	PathArchetypeCount,
}

var knownPaths = func() map[ModifierPath]struct{} {
	m := make(map[ModifierPath]struct{}, len(modifierPathOrder))
	for _, p := range modifierPathOrder {
		m[p] = struct{}{}
	}
	return m
}()

// Modifier は1つのステータス修飾操作です。
type Modifier struct {
	Op    ModifierOp
	Path  ModifierPath
	Value float32
}

// ResolvedConfig は全修飾レイヤーを適用した後の実効設定です。
// Controller はこの値のみを参照し、Definition の生値には戻りません。
type ResolvedConfig struct {
	Damage     DamageSpec
	Cadence    CadenceSpec
	Projectile ProjectileSpec
	Aoe        AoeSpec
	Hops       int
	Count      int
}

// resolveConfig は定義の基準値に修飾レイヤーを順に合成します。
// パスごとに「加算をすべて適用してから乗算をすべて適用する」固定順で
// 評価するため、同一レイヤー内の並び順に依存せず再現可能です。
func resolveConfig(def *Definition, layers ...[]Modifier) ResolvedConfig {
	adds := make(map[ModifierPath]float32)
	muls := make(map[ModifierPath]float32)
	for _, layer := range layers {
		for _, m := range layer {
			switch m.Op {
			case ModifierAdd:
				adds[m.Path] += m.Value
			case ModifierMul:
				if _, ok := muls[m.Path]; !ok {
					muls[m.Path] = 1
				}
				muls[m.Path] *= m.Value
			}
		}
	}

	apply := func(path ModifierPath, base float32) float32 {
		v := base + adds[path]
		if mul, ok := muls[path]; ok {
			v *= mul
		}
		return v
	}

	cfg := ResolvedConfig{
		Damage: DamageSpec{
			Base: apply(PathDamageBase, def.Damage.Base),
			Crit: CritSpec{
				Chance: clamp01(apply(PathCritChance, def.Damage.Crit.Chance)),
				Mult:   apply(PathCritMult, def.Damage.Crit.Mult),
			},
		},
		Cadence: CadenceSpec{
			DelayMs:   int64(apply(PathCadenceDelayMs, float32(def.Cadence.DelayMs))),
			WarmupMs:  def.Cadence.WarmupMs,
			Salvo:     int(apply(PathCadenceSalvo, float32(def.Cadence.Salvo))),
			SpreadDeg: apply(PathCadenceSpreadDeg, def.Cadence.SpreadDeg),
		},
		Projectile: ProjectileSpec{
			Speed:       apply(PathProjectileSpeed, def.Projectile.Speed),
			Pierce:      int(apply(PathProjectilePierce, float32(def.Projectile.Pierce))),
			LifetimeMs:  int64(apply(PathProjectileLifetimeMs, float32(def.Projectile.LifetimeMs))),
			MaxDistance: apply(PathProjectileMaxDist, def.Projectile.MaxDistance),
			HitRadius:   def.Projectile.HitRadius,
		},
		Aoe: AoeSpec{
			Radius:     apply(PathAoeRadius, def.Aoe.Radius),
			DamageMult: apply(PathAoeDamageMult, def.Aoe.DamageMult),
		},
		Hops:  int(apply(PathArchetypeHops, float32(def.Archetype.baseHops()))),
		Count: int(apply(PathArchetypeCount, float32(def.Archetype.baseCount()))),
	}

	if cfg.Cadence.DelayMs < 1 {
		cfg.Cadence.DelayMs = 1
	}
	if cfg.Cadence.Salvo < 1 {
		cfg.Cadence.Salvo = 1
	}
	return cfg
}

// validateModifiers は未知のパスや不正な演算を拒否します。
func validateModifiers(mods []Modifier) error {
	for _, m := range mods {
		if m.Op != ModifierAdd && m.Op != ModifierMul {
			return ErrInvalidModifier
		}
		if _, ok := knownPaths[m.Path]; !ok {
			return ErrInvalidModifier
		}
	}
	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
