package application

import "fmt"

// LevelDelta はレベルアップ1段分の累積デルタです。
// スキーマは閉じており、未知のフィールドは存在し得ません（構造体のため）。
// nil のフィールドは「このレベルでは変更なし」を意味します。
type LevelDelta struct {
	DamageBaseMult      *float32
	DamageBaseAdd       *float32
	CritChanceAdd       *float32
	CadenceDelayMsMult  *float32
	ProjectileSpeedMult *float32
	PierceAdd           *int
	LifetimeMsMult      *float32
	MaxDistanceMult     *float32
	AoeRadiusMult       *float32
	AoeDamageMult       *float32
	SalvoAdd            *int
	SpreadDegAdd        *float32
	HopsAdd             *int
	CountAdd            *int
}

// accumulateLevelSpec はレベル2から level までのデルタをマージした累積仕様を返します。
// 後のレベルがスカラーを上書きします。レベル1は常に空の仕様です。
// マージは単調で、レベルLの影響パス集合はレベルL-1の上位集合になります。
func accumulateLevelSpec(def *Definition, level int) LevelDelta {
	acc := LevelDelta{}
	if level > def.MaxLevel {
		level = def.MaxLevel
	}
	for l := 2; l <= level; l++ {
		delta, ok := def.Levels[l]
		if !ok {
			continue
		}
		mergeDelta(&acc, &delta)
	}
	return acc
}

// mergeDelta は閉じたスキーマに対する明示的なフィールド単位のマージです。
func mergeDelta(dst, src *LevelDelta) {
	if src.DamageBaseMult != nil {
		dst.DamageBaseMult = src.DamageBaseMult
	}
	if src.DamageBaseAdd != nil {
		dst.DamageBaseAdd = src.DamageBaseAdd
	}
	if src.CritChanceAdd != nil {
		dst.CritChanceAdd = src.CritChanceAdd
	}
	if src.CadenceDelayMsMult != nil {
		dst.CadenceDelayMsMult = src.CadenceDelayMsMult
	}
	if src.ProjectileSpeedMult != nil {
		dst.ProjectileSpeedMult = src.ProjectileSpeedMult
	}
	if src.PierceAdd != nil {
		dst.PierceAdd = src.PierceAdd
	}
	if src.LifetimeMsMult != nil {
		dst.LifetimeMsMult = src.LifetimeMsMult
	}
	if src.MaxDistanceMult != nil {
		dst.MaxDistanceMult = src.MaxDistanceMult
	}
	if src.AoeRadiusMult != nil {
		dst.AoeRadiusMult = src.AoeRadiusMult
	}
	if src.AoeDamageMult != nil {
		dst.AoeDamageMult = src.AoeDamageMult
	}
	if src.SalvoAdd != nil {
		dst.SalvoAdd = src.SalvoAdd
	}
	if src.SpreadDegAdd != nil {
		dst.SpreadDegAdd = src.SpreadDegAdd
	}
	if src.HopsAdd != nil {
		dst.HopsAdd = src.HopsAdd
	}
	if src.CountAdd != nil {
		dst.CountAdd = src.CountAdd
	}
}

// deltaField は累積仕様から修飾操作と説明文を導出するための対応表の1行です。
type deltaField struct {
	path  ModifierPath
	label string
	op    ModifierOp
	value func(*LevelDelta) *float32
}

// deltaFields は出力順を固定した対応表です。ここに無いフィールドは存在しません。
var deltaFields = []deltaField{
	{PathDamageBase, "damage", ModifierMul, func(d *LevelDelta) *float32 { return d.DamageBaseMult }},
	{PathDamageBase, "damage", ModifierAdd, func(d *LevelDelta) *float32 { return d.DamageBaseAdd }},
	{PathCritChance, "crit chance", ModifierAdd, func(d *LevelDelta) *float32 { return d.CritChanceAdd }},
	{PathCadenceDelayMs, "attack interval", ModifierMul, func(d *LevelDelta) *float32 { return d.CadenceDelayMsMult }},
	{PathProjectileSpeed, "projectile speed", ModifierMul, func(d *LevelDelta) *float32 { return d.ProjectileSpeedMult }},
	{PathProjectilePierce, "pierce", ModifierAdd, func(d *LevelDelta) *float32 { return intValue(d.PierceAdd) }},
	{PathProjectileLifetimeMs, "duration", ModifierMul, func(d *LevelDelta) *float32 { return d.LifetimeMsMult }},
	{PathProjectileMaxDist, "range", ModifierMul, func(d *LevelDelta) *float32 { return d.MaxDistanceMult }},
	{PathAoeRadius, "area radius", ModifierMul, func(d *LevelDelta) *float32 { return d.AoeRadiusMult }},
	{PathAoeDamageMult, "area damage", ModifierMul, func(d *LevelDelta) *float32 { return d.AoeDamageMult }},
	{PathCadenceSalvo, "salvo", ModifierAdd, func(d *LevelDelta) *float32 { return intValue(d.SalvoAdd) }},
	{PathCadenceSpreadDeg, "spread", ModifierAdd, func(d *LevelDelta) *float32 { return d.SpreadDegAdd }},
	{PathArchetypeHops, "hops", ModifierAdd, func(d *LevelDelta) *float32 { return intValue(d.HopsAdd) }},
	{PathArchetypeCount, "count", ModifierAdd, func(d *LevelDelta) *float32 { return intValue(d.CountAdd) }},
}

func intValue(p *int) *float32 {
	if p == nil {
		return nil
	}
	v := float32(*p)
	return &v
}

// getLevelModifiers は累積仕様を修飾操作のリストに写像します。
// 出力順は deltaFields の順で固定され、同じ入力から常に同じ結果が得られます。
func getLevelModifiers(def *Definition, level int) []Modifier {
	acc := accumulateLevelSpec(def, level)
	var mods []Modifier
	for _, field := range deltaFields {
		if v := field.value(&acc); v != nil {
			mods = append(mods, Modifier{Op: field.op, Path: field.path, Value: *v})
		}
	}
	return mods
}

// DescribeLevelUpgrade は currentLevel から nextLevel への変化点のみを
// 符号・百分率つきで整形して返します。変化のないフィールドは出力しません。
func DescribeLevelUpgrade(def *Definition, currentLevel, nextLevel int) []string {
	cur := accumulateLevelSpec(def, currentLevel)
	next := accumulateLevelSpec(def, nextLevel)

	var lines []string
	for _, field := range deltaFields {
		c := field.value(&cur)
		n := field.value(&next)
		if n == nil {
			continue
		}
		if c != nil && *c == *n {
			continue
		}
		line, ok := formatDeltaLine(field, c, n)
		if ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func formatDeltaLine(field deltaField, cur, next *float32) (string, bool) {
	switch field.op {
	case ModifierMul:
		// 累積倍率 next を現在の倍率 cur に対する変化率で表す
		base := float32(1)
		if cur != nil {
			base = *cur
		}
		if base == 0 {
			return "", false
		}
		pct := (*next/base - 1) * 100
		if pct == 0 {
			return "", false
		}
		return fmt.Sprintf("%s %+.0f%%", field.label, pct), true
	case ModifierAdd:
		base := float32(0)
		if cur != nil {
			base = *cur
		}
		diff := *next - base
		if diff == 0 {
			return "", false
		}
		return fmt.Sprintf("%s %+g", field.label, diff), true
	}
	return "", false
}
