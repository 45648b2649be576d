package application

import (
	"context"
	"math"

	"barrage/domain"
)

func radFromDeg(deg float32) float32 {
	return deg * float32(math.Pi) / 180
}

// fanDirections は照準方向を中心に spreadDeg 度の扇状の方向群を返します。
// spreadDeg が 0 または count が 1 のときは照準方向のみ、
// 照準方向がゼロベクトルのときは360度リングになります。
func fanDirections(aim domain.Vec2, count int, spreadDeg float32) []domain.Vec2 {
	if count < 1 {
		count = 1
	}
	dirs := make([]domain.Vec2, 0, count)
	if aim == (domain.Vec2{}) || (spreadDeg <= 0 && count > 1) {
		// リング展開
		for i := 0; i < count; i++ {
			dirs = append(dirs, domain.VecFromAngle(2*float32(math.Pi)*float32(i)/float32(count)))
		}
		return dirs
	}
	if count == 1 {
		return append(dirs, aim)
	}
	base := aim.Angle()
	spread := radFromDeg(spreadDeg)
	for i := 0; i < count; i++ {
		offset := -spread/2 + spread*float32(i)/float32(count-1)
		dirs = append(dirs, domain.VecFromAngle(base+offset))
	}
	return dirs
}

// fireProjectileSalvo は直進弾を salvo 数ぶん同時に展開します。
// 照準対象への予約は中央の1発のみが持ちます。
func (c *Controller) fireProjectileSalvo(ctx context.Context) {
	origin := c.owner.Position()
	salvo := c.cfg.Cadence.Salvo
	dirs := fanDirections(c.aimDir, salvo, c.cfg.Cadence.SpreadDeg)
	center := len(dirs) / 2
	for i, dir := range dirs {
		target := domain.TargetID("")
		if i == center {
			target = c.aimTarget
		}
		c.spawnShot(ctx, origin, dir, target, nil)
	}
}

// fireSlash は所有者に追従する円弧攻撃を予告します。
// ダメージは TimingMs 後、その時点の所有者位置を中心に適用されます。
func (c *Controller) fireSlash(ctx context.Context) {
	arch := c.def.Archetype.Slash
	damage, crit := c.rollDamage()
	c.pendingAreas = append(c.pendingAreas, pendingArea{
		dueAt:       c.nowMs + arch.TimingMs,
		followOwner: true,
		radius:      c.cfg.Aoe.Radius,
		damage:      damage,
		crit:        crit,
	})
}

// buildHopChain は開始対象から近傍連鎖の訪問列を構築します。
// 同一対象は一度しか訪れず、hopRange 内に次がなければそこで途切れます。
func (c *Controller) buildHopChain(start domain.Target, maxExtra int, hopRange float32) []domain.TargetID {
	chain := []domain.TargetID{start.ID}
	visited := map[domain.TargetID]struct{}{start.ID: {}}
	cur := start.Position
	for len(chain) <= maxExtra {
		var next domain.Target
		var bestDist float32
		found := false
		for _, t := range c.registry.ActiveTargets() {
			if _, seen := visited[t.ID]; seen {
				continue
			}
			d := cur.Dist(t.Position)
			if d > hopRange {
				continue
			}
			if !found || d < bestDist || (d == bestDist && t.ID < next.ID) {
				next = t
				bestDist = d
				found = true
			}
		}
		if !found {
			break
		}
		chain = append(chain, next.ID)
		visited[next.ID] = struct{}{}
		cur = next.Position
	}
	return chain
}

// fireChain は弾体を生成せず、連鎖全体を同一tick内で瞬時に解決します。
// ダメージはホップごとに乗算的に減衰します。
func (c *Controller) fireChain(ctx context.Context) {
	arch := c.def.Archetype.Chain
	start, ok := c.registry.Target(c.aimTarget)
	if !ok {
		return
	}
	damage, crit := c.rollDamage()
	for _, id := range c.buildHopChain(start, c.cfg.Hops, arch.HopRange) {
		t, ok := c.registry.Target(id)
		if !ok {
			continue
		}
		c.applyHit(ctx, damage, crit, t)
		damage *= 1 - arch.FalloffPerHop
	}
}

// fireChainThrow は連鎖先を発射時に確定し、弾体がホップ間を補間移動します。
// 予約は初撃の着弾予測に対してのみ張ります。
func (c *Controller) fireChainThrow(ctx context.Context) {
	arch := c.def.Archetype.ChainThrow
	start, ok := c.registry.Target(c.aimTarget)
	if !ok {
		return
	}
	h, ok := c.pool.Acquire()
	if !ok {
		c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: c.owner.Position()})
		return
	}
	hops := c.buildHopChain(start, c.cfg.Hops, arch.HopRange)
	damage, crit := c.rollDamage()
	reservation := c.reserveFor(start.ID, damage, c.nowMs+arch.PerHopDurationMs)

	c.pool.Fire(h, c.nowMs, FireParams{
		Kind:             MotionHop,
		Origin:           c.owner.Position(),
		Damage:           damage,
		Crit:             crit,
		HitRadius:        c.cfg.Projectile.HitRadius,
		LifetimeMs:       arch.PerHopDurationMs*int64(len(hops)) + 1000,
		HopTargets:       hops,
		PerHopDurationMs: arch.PerHopDurationMs,
		FalloffPerHop:    arch.FalloffPerHop,
		Reservation:      reservation,
		Target:           start.ID,
	})
}

// fireCluster は子弾をリングまたは扇状に展開します。
// StaggerMs が正なら子弾は時間差で順次発射されます。
func (c *Controller) fireCluster(ctx context.Context) {
	arch := c.def.Archetype.Cluster
	origin := c.owner.Position()
	dirs := fanDirections(c.aimDir, c.cfg.Count, arch.SpreadDeg)
	if arch.StaggerMs <= 0 {
		for _, dir := range dirs {
			c.spawnShot(ctx, origin, dir, "", nil)
		}
		return
	}
	for i, dir := range dirs {
		c.pendingShots = append(c.pendingShots, pendingShot{
			dueAt: c.nowMs + int64(i)*arch.StaggerMs,
			dir:   dir,
		})
	}
}

// spawnClusterRing は起爆地点から二次クラスターを即時展開します。
// 二次弾は再帰を避けるため起爆設定を持ちません。
func (c *Controller) spawnClusterRing(ctx context.Context, center domain.Vec2, spec ClusterArchetype, count int) {
	if count <= 0 {
		count = spec.Count
	}
	for _, dir := range fanDirections(domain.Vec2{}, count, spec.SpreadDeg) {
		c.spawnShot(ctx, center, dir, "", nil)
	}
}

// fireBallistic は放物線弾を発射します。照準対象の方向へ射角をつけて
// 打ち上げ、重力で落下します。着弾判定は updateBallistic と衝突判定が担います。
func (c *Controller) fireBallistic(ctx context.Context) {
	arch := c.def.Archetype.Ballistic
	h, ok := c.pool.Acquire()
	if !ok {
		c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: c.owner.Position()})
		return
	}
	damage, crit := c.rollDamage()

	angle := radFromDeg(arch.LaunchAngleDeg)
	horiz := float32(1)
	if c.aimDir.X < 0 {
		horiz = -1
	}
	dir := domain.Vec2{
		X: horiz * float32(math.Cos(float64(angle))),
		Y: -float32(math.Sin(float64(angle))),
	}

	// 滞空時間から着弾予測時刻を見積もる
	var reservation domain.ReservationID
	if c.aimTarget != "" && arch.Gravity > 0 {
		flightMs := int64(2 * c.cfg.Projectile.Speed * float32(math.Sin(float64(angle))) / arch.Gravity * 1000)
		reservation = c.reserveFor(c.aimTarget, damage*c.cfg.Aoe.DamageMult, c.nowMs+flightMs)
	}

	c.pool.Fire(h, c.nowMs, FireParams{
		Kind:        MotionLinear,
		Origin:      c.owner.Position(),
		Direction:   dir,
		Speed:       c.cfg.Projectile.Speed,
		Gravity:     arch.Gravity,
		LifetimeMs:  c.cfg.Projectile.LifetimeMs,
		HitRadius:   c.cfg.Projectile.HitRadius,
		Damage:      damage,
		Crit:        crit,
		Explode:     &ExplodeSpec{Radius: c.cfg.Aoe.Radius, DamageMult: c.cfg.Aoe.DamageMult},
		Reservation: reservation,
		Target:      c.aimTarget,
	})
}

// fireBazooka は一定時間後または初回命中で起爆する弾を発射します。
// 起爆時は範囲ダメージに続けて二次クラスターを展開します。
func (c *Controller) fireBazooka(ctx context.Context) {
	arch := c.def.Archetype.Bazooka
	h, ok := c.pool.Acquire()
	if !ok {
		c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: c.owner.Position()})
		return
	}
	damage, crit := c.rollDamage()

	lifetime := int64(arch.DetonateSeconds * 1000)
	if lifetime <= 0 {
		lifetime = c.cfg.Projectile.LifetimeMs
	}

	var reservation domain.ReservationID
	if c.aimTarget != "" {
		if t, ok := c.registry.Target(c.aimTarget); ok {
			eta := c.etaMs(c.owner.Position().Dist(t.Position))
			reservation = c.reserveFor(c.aimTarget, damage*c.cfg.Aoe.DamageMult, c.nowMs+eta)
		}
	}

	c.pool.Fire(h, c.nowMs, FireParams{
		Kind:        MotionLinear,
		Origin:      c.owner.Position(),
		Direction:   c.aimDir,
		Speed:       c.cfg.Projectile.Speed,
		LifetimeMs:  lifetime,
		HitRadius:   c.cfg.Projectile.HitRadius,
		MaxDistance: c.cfg.Projectile.MaxDistance,
		Damage:      damage,
		Crit:        crit,
		Explode: &ExplodeSpec{
			Radius:     c.cfg.Aoe.Radius,
			DamageMult: c.cfg.Aoe.DamageMult,
			Secondary:  &arch.Secondary,
		},
		Reservation: reservation,
		Target:      c.aimTarget,
	})
}

// fireCircular は所有者の周囲を周回する弾体を補充します。
// 既に周回中の弾は維持され、不足分だけを追加します。全弾が同じ角速度で
// 回るため位相差は発射後も不変で、欠けたリング位置を位相から逆算できます。
func (c *Controller) fireCircular(ctx context.Context) {
	arch := c.def.Archetype.Circular
	desired := c.cfg.Count
	if desired <= 0 {
		return
	}
	angular := arch.AngularVel
	if arch.Clockwise {
		angular = -angular
	}

	// 生存弾の位相からリング上の占有スロットを復元する
	step := 2 * float32(math.Pi) / float32(desired)
	used := make([]bool, desired)
	var base float32
	first := true
	c.pool.ForEachActive(func(_ Handle, slot *Projectile) {
		if first {
			base = slot.orbitPhase
			first = false
		}
		rel := int(math.Round(float64((slot.orbitPhase - base) / step)))
		rel = ((rel % desired) + desired) % desired
		used[rel] = true
	})

	missing := desired - c.pool.ActiveCount()
	next := 0
	for i := 0; i < missing; i++ {
		h, ok := c.pool.Acquire()
		if !ok {
			c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: c.owner.Position()})
			return
		}
		damage, crit := c.rollDamage()
		for next < desired && used[next] {
			next++
		}
		phase := base + float32(next)*step
		if next < desired {
			used[next] = true
		}
		c.pool.Fire(h, c.nowMs, FireParams{
			Kind:        MotionOrbit,
			Origin:      c.owner.Position(),
			LifetimeMs:  c.cfg.Projectile.LifetimeMs,
			HitRadius:   c.cfg.Projectile.HitRadius,
			Damage:      damage,
			Crit:        crit,
			OrbitRadius: arch.Radius,
			AngularVel:  angular,
			OrbitPhase:  phase,
		})
	}
}

// fireCross は上下左右の4方向へ直進する先端弾を展開します。
// 拡大速度はtick基準の StepPx を秒基準に換算したものです。
func (c *Controller) fireCross(ctx context.Context) {
	arch := c.def.Archetype.Cross
	origin := c.owner.Position()
	speed := arch.StepPx * 60
	maxDist := arch.StepPx * float32(arch.MaxSteps)
	dirs := []domain.Vec2{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	for _, dir := range dirs {
		h, ok := c.pool.Acquire()
		if !ok {
			c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: origin})
			return
		}
		damage, crit := c.rollDamage()
		c.pool.Fire(h, c.nowMs, FireParams{
			Kind:        MotionLinear,
			Origin:      origin,
			Direction:   dir,
			Speed:       speed,
			LifetimeMs:  c.cfg.Projectile.LifetimeMs,
			MaxDistance: maxDist,
			HitRadius:   c.cfg.Projectile.HitRadius,
			Pierce:      c.cfg.Projectile.Pierce,
			Damage:      damage,
			Crit:        crit,
		})
	}
}

// fireStrike は対象の位置へ範囲攻撃を予告します。
// Timing が animation ならアニメーション開始と同時に、impact なら
// DelayMs 後の着弾フレームでダメージが適用されます。
// 中心は発動時点で生存していれば対象の現在位置に追従します。
func (c *Controller) fireStrike(ctx context.Context) {
	arch := c.def.Archetype.Strike
	t, ok := c.registry.Target(c.aimTarget)
	if !ok {
		return
	}
	damage, crit := c.rollDamage()
	areaDamage := damage * c.cfg.Aoe.DamageMult
	if c.cfg.Aoe.DamageMult <= 0 {
		areaDamage = damage
	}
	dueAt := c.nowMs
	if arch.Timing == StrikeOnImpact {
		dueAt += arch.DelayMs
	}
	reservation := c.reserveFor(t.ID, areaDamage, dueAt)
	c.pendingAreas = append(c.pendingAreas, pendingArea{
		dueAt:       dueAt,
		target:      t.ID,
		center:      t.Position,
		radius:      c.cfg.Aoe.Radius,
		damage:      areaDamage,
		crit:        crit,
		reservation: reservation,
	})
}
