package application

// DefaultLibraryVersion は同梱の武器定義テーブルのバージョンです。
const DefaultLibraryVersion = "2026.08"

func f32(v float32) *float32 { return &v }
func iptr(v int) *int        { return &v }

// DefaultLibrary は同梱の武器定義テーブルを構築します。
// テーブルはロード時に検証され、不正があればエラーを返します。
func DefaultLibrary() (*Library, error) {
	return NewLibrary(DefaultLibraryVersion, []*Definition{
		{
			Key:       "bolt",
			Name:      "Bolt Launcher",
			Archetype: Archetype{Kind: KindProjectile},
			Targeting: TargetNearest,
			Cadence:   CadenceSpec{DelayMs: 600, Salvo: 1},
			Damage:    DamageSpec{Base: 12, Crit: CritSpec{Chance: 0.1, Mult: 2.0}},
			Projectile: ProjectileSpec{
				Speed: 480, Pierce: 5, LifetimeMs: 2000, HitRadius: 12,
			},
			Range:    420,
			PoolSize: 120,
			MaxLevel: 5,
			Levels: map[int]LevelDelta{
				2: {DamageBaseMult: f32(1.2)},
				3: {CadenceDelayMsMult: f32(0.9)},
				4: {SalvoAdd: iptr(1), SpreadDegAdd: f32(10)},
				5: {DamageBaseMult: f32(1.5), PierceAdd: iptr(2)},
			},
		},
		{
			Key:       "saber",
			Name:      "Arc Saber",
			Archetype: Archetype{Kind: KindSlash, Slash: &SlashArchetype{TimingMs: 120}},
			Targeting: TargetSelf,
			Cadence:   CadenceSpec{DelayMs: 900, Salvo: 1},
			Damage:    DamageSpec{Base: 18, Crit: CritSpec{Chance: 0.05, Mult: 1.5}},
			Aoe:       AoeSpec{Radius: 90, DamageMult: 1.0},
			PoolSize:  8,
			MaxLevel:  4,
			Levels: map[int]LevelDelta{
				2: {AoeRadiusMult: f32(1.15)},
				3: {DamageBaseMult: f32(1.25)},
				4: {CadenceDelayMsMult: f32(0.85), AoeRadiusMult: f32(1.3)},
			},
		},
		{
			Key:       "spark",
			Name:      "Chain Spark",
			Archetype: Archetype{Kind: KindChain, Chain: &ChainArchetype{MaxHops: 3, FalloffPerHop: 0.2, HopRange: 160}},
			Targeting: TargetNearest,
			Cadence:   CadenceSpec{DelayMs: 1100, WarmupMs: 150, Salvo: 1},
			Damage:    DamageSpec{Base: 14, Crit: CritSpec{Chance: 0.15, Mult: 1.8}},
			Range:     360,
			PoolSize:  8,
			MaxLevel:  4,
			Levels: map[int]LevelDelta{
				2: {HopsAdd: iptr(1)},
				3: {DamageBaseMult: f32(1.2)},
				4: {HopsAdd: iptr(2), DamageBaseMult: f32(1.35)},
			},
		},
		{
			Key:  "boomerang",
			Name: "Hurled Fang",
			Archetype: Archetype{Kind: KindChainThrow, ChainThrow: &ChainThrowArchetype{
				MaxHops: 3, FalloffPerHop: 0.15, HopRange: 200, PerHopDurationMs: 250,
			}},
			Targeting:  TargetNearest,
			Cadence:    CadenceSpec{DelayMs: 1400, Salvo: 1},
			Damage:     DamageSpec{Base: 16, Crit: CritSpec{Chance: 0.1, Mult: 2.0}},
			Projectile: ProjectileSpec{Speed: 520, LifetimeMs: 4000, HitRadius: 14},
			Range:      380,
			PoolSize:   6,
			MaxLevel:   3,
			Levels: map[int]LevelDelta{
				2: {HopsAdd: iptr(1)},
				3: {DamageBaseMult: f32(1.3)},
			},
		},
		{
			Key:  "nova",
			Name: "Scatter Nova",
			Archetype: Archetype{Kind: KindCluster, Cluster: &ClusterArchetype{
				Count: 8, StaggerMs: 40,
			}},
			Targeting:  TargetSelf,
			Cadence:    CadenceSpec{DelayMs: 1600, Salvo: 1},
			Damage:     DamageSpec{Base: 8, Crit: CritSpec{Chance: 0.05, Mult: 1.5}},
			Projectile: ProjectileSpec{Speed: 360, Pierce: 1, LifetimeMs: 900, HitRadius: 10},
			PoolSize:   48,
			MaxLevel:   4,
			Levels: map[int]LevelDelta{
				2: {CountAdd: iptr(2)},
				3: {DamageBaseMult: f32(1.2)},
				4: {CountAdd: iptr(4), LifetimeMsMult: f32(1.25)},
			},
		},
		{
			Key:  "mortar",
			Name: "Lob Mortar",
			Archetype: Archetype{Kind: KindBallistic, Ballistic: &BallisticArchetype{
				LaunchAngleDeg: 55, Gravity: 900,
			}},
			Targeting:  TargetNearest,
			Cadence:    CadenceSpec{DelayMs: 1800, Salvo: 1},
			Damage:     DamageSpec{Base: 24, Crit: CritSpec{Chance: 0.1, Mult: 2.0}},
			Projectile: ProjectileSpec{Speed: 420, LifetimeMs: 5000, HitRadius: 14},
			Aoe:        AoeSpec{Radius: 70, DamageMult: 0.6},
			Range:      520,
			PoolSize:   10,
			MaxLevel:   3,
			Levels: map[int]LevelDelta{
				2: {AoeRadiusMult: f32(1.2)},
				3: {DamageBaseMult: f32(1.4)},
			},
		},
		{
			Key:  "rocket",
			Name: "Rocket Tube",
			Archetype: Archetype{Kind: KindBazooka, Bazooka: &BazookaArchetype{
				DetonateSeconds: 1.2,
				Secondary:       ClusterArchetype{Count: 6},
			}},
			Targeting:  TargetNearest,
			Cadence:    CadenceSpec{DelayMs: 2200, WarmupMs: 200, Salvo: 1},
			Damage:     DamageSpec{Base: 30, Crit: CritSpec{Chance: 0.1, Mult: 2.0}},
			Projectile: ProjectileSpec{Speed: 300, LifetimeMs: 3000, HitRadius: 16},
			Aoe:        AoeSpec{Radius: 80, DamageMult: 0.5},
			Range:      480,
			PoolSize:   24,
			MaxLevel:   3,
			Levels: map[int]LevelDelta{
				2: {CountAdd: iptr(2)},
				3: {DamageBaseMult: f32(1.3), AoeRadiusMult: f32(1.25)},
			},
		},
		{
			Key:  "halo",
			Name: "Orbiting Halo",
			Archetype: Archetype{Kind: KindCircular, Circular: &CircularArchetype{
				Radius: 110, AngularVel: 2.4, Clockwise: true, Count: 2, RehitMs: 500,
			}},
			Targeting:  TargetSelf,
			Cadence:    CadenceSpec{DelayMs: 4000, Salvo: 1},
			Damage:     DamageSpec{Base: 6, Crit: CritSpec{Chance: 0.05, Mult: 1.5}},
			Projectile: ProjectileSpec{LifetimeMs: 3500, HitRadius: 18},
			PoolSize:   8,
			MaxLevel:   4,
			Levels: map[int]LevelDelta{
				2: {CountAdd: iptr(1)},
				3: {DamageBaseMult: f32(1.25)},
				4: {CountAdd: iptr(2), LifetimeMsMult: f32(1.3)},
			},
		},
		{
			Key:  "grid",
			Name: "Cross Grid",
			Archetype: Archetype{Kind: KindCross, Cross: &CrossArchetype{
				StepPx: 6, MaxSteps: 40,
			}},
			Targeting:  TargetFacing,
			Cadence:    CadenceSpec{DelayMs: 1300, Salvo: 1},
			Damage:     DamageSpec{Base: 10, Crit: CritSpec{Chance: 0.05, Mult: 1.5}},
			Projectile: ProjectileSpec{Pierce: 12, LifetimeMs: 1500, HitRadius: 12},
			PoolSize:   16,
			MaxLevel:   3,
			Levels: map[int]LevelDelta{
				2: {DamageBaseMult: f32(1.2)},
				3: {MaxDistanceMult: f32(1.5)},
			},
		},
		{
			Key:  "meteor",
			Name: "Meteor Call",
			Archetype: Archetype{Kind: KindStrike, Strike: &StrikeArchetype{
				Timing: StrikeOnImpact, DelayMs: 650,
			}},
			Targeting: TargetNearest,
			Cadence:   CadenceSpec{DelayMs: 2000, Salvo: 1},
			Damage:    DamageSpec{Base: 28, Crit: CritSpec{Chance: 0.1, Mult: 2.0}},
			Aoe:       AoeSpec{Radius: 100, DamageMult: 1.0},
			Range:     600,
			PoolSize:  6,
			MaxLevel:  3,
			Levels: map[int]LevelDelta{
				2: {AoeRadiusMult: f32(1.2)},
				3: {DamageBaseMult: f32(1.35), CadenceDelayMsMult: f32(0.85)},
			},
		},
	})
}
