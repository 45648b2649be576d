package application

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"

	"barrage/domain"
)

// controllerState は発射サイクルの状態です。
type controllerState uint8

const (
	stateIdle controllerState = iota
	stateWarmup
	stateFiring
	stateCooldown
)

// pendingShot はスタッガー付きクラスターなどで予約された個別の発射です。
type pendingShot struct {
	dueAt int64
	dir   domain.Vec2
}

// pendingArea は遅延発動する範囲効果です（slash / strike）。
type pendingArea struct {
	dueAt       int64
	target      domain.TargetID // 非空なら対象に追従（strike）
	center      domain.Vec2
	followOwner bool // 所有者に追従（slash）
	radius      float32
	damage      float32
	crit        bool
	reservation domain.ReservationID
}

// Controller は装備済み武器1つ分の状態機械です。
// いつ・どこへ発射するかを決定し、アーキタイプに従ってプールを駆動します。
type Controller struct {
	key domain.WeaponKey
	def *Definition
	cfg ResolvedConfig

	owner    domain.Owner
	registry domain.TargetRegistry
	pipeline domain.DamagePipeline
	coord    *Coordinator
	pool     *Pool
	sink     domain.EventSink
	rng      *rand.Rand

	state      controllerState
	stateUntil int64
	nowMs      int64

	pendingShots []pendingShot
	pendingAreas []pendingArea

	aimTarget domain.TargetID
	aimDir    domain.Vec2
}

// NewController は武器1つ分のコントローラーと専有プールを構築します。
func NewController(
	def *Definition,
	cfg ResolvedConfig,
	owner domain.Owner,
	registry domain.TargetRegistry,
	pipeline domain.DamagePipeline,
	coord *Coordinator,
	sink domain.EventSink,
	seed uint64,
) *Controller {
	c := &Controller{
		key:      def.Key,
		def:      def,
		cfg:      cfg,
		owner:    owner,
		registry: registry,
		pipeline: pipeline,
		coord:    coord,
		sink:     sink,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	c.pool = NewPool(def.PoolSize, coord)
	c.pool.centerFn = owner.Position
	c.pool.targetPosFn = func(id domain.TargetID) (domain.Vec2, bool) {
		t, ok := registry.Target(id)
		return t.Position, ok
	}
	c.pool.onExpire = c.handleExpire
	c.pool.onHopArrive = c.handleHopArrive
	return c
}

func (c *Controller) Key() domain.WeaponKey { return c.key }
func (c *Controller) Pool() *Pool           { return c.pool }

// SetConfig はアップグレード・修飾変更後の実効設定を差し替えます。
// 飛行中の弾体には影響せず、次の発射から反映されます。
func (c *Controller) SetConfig(cfg ResolvedConfig) {
	c.cfg = cfg
}

// Update は1tick分の処理を進めます。now は外部から供給される
// 単調なシミュレーション時刻で、壁時計は一切参照しません。
func (c *Controller) Update(ctx context.Context, nowMs int64, dt float32) {
	c.nowMs = nowMs
	c.pool.Update(ctx, nowMs, dt)
	c.updateBallistic(ctx)
	c.scanCollisions(ctx)
	c.processPendingAreas(ctx)
	c.processPendingShots(ctx)
	c.advanceState(ctx)
}

// Destroy は飛行中の弾体・保留中の効果・予約をすべて強制解放します。
func (c *Controller) Destroy() {
	c.pool.ReleaseAll()
	c.pendingShots = nil
	c.pendingAreas = nil
	c.coord.ReleaseByWeapon(c.key)
	c.state = stateIdle
}

func (c *Controller) advanceState(ctx context.Context) {
	if c.state == stateCooldown && c.nowMs >= c.stateUntil {
		c.state = stateIdle
	}

	switch c.state {
	case stateIdle:
		c.tryBeginActivation(ctx)
	case stateWarmup:
		if c.nowMs >= c.stateUntil {
			c.fireActivation(ctx)
		}
	case stateFiring:
		if len(c.pendingShots) == 0 {
			c.endActivation(ctx)
		}
	case stateCooldown:
	}
}

// tryBeginActivation は有効な対象がある場合のみ発射サイクルを開始します。
// 対象依存モードでは対象が現れるまでケイデンスは進みません。
// self / facing モードは対象不要で、常にケイデンス通りに発射します。
func (c *Controller) tryBeginActivation(ctx context.Context) {
	if !c.owner.CanFire() {
		return
	}

	switch c.def.Targeting {
	case TargetNearest:
		target, ok := c.selectTarget()
		if !ok {
			return
		}
		c.aimTarget = target.ID
		c.aimDir = target.Position.Sub(c.owner.Position()).Normalize()
	case TargetFacing:
		c.aimTarget = ""
		c.aimDir = c.owner.Facing()
		if c.aimDir == (domain.Vec2{}) {
			c.aimDir = domain.Vec2{X: 1}
		}
	case TargetSelf:
		c.aimTarget = ""
		c.aimDir = domain.Vec2{}
	}

	if c.cfg.Cadence.WarmupMs > 0 {
		c.state = stateWarmup
		c.stateUntil = c.nowMs + c.cfg.Cadence.WarmupMs
		return
	}
	c.fireActivation(ctx)
}

// fireActivation はアーキタイプごとの発射ルーチンを実行します。
// ディスパッチはタグに対する網羅的な switch で、継承は使いません。
func (c *Controller) fireActivation(ctx context.Context) {
	c.publish(ctx, domain.Event{
		Type:     domain.EventFireStarted,
		Weapon:   c.key,
		Target:   c.aimTarget,
		Position: c.owner.Position(),
	})

	switch c.def.Archetype.Kind {
	case KindProjectile:
		c.fireProjectileSalvo(ctx)
	case KindSlash:
		c.fireSlash(ctx)
	case KindChain:
		c.fireChain(ctx)
	case KindChainThrow:
		c.fireChainThrow(ctx)
	case KindCluster:
		c.fireCluster(ctx)
	case KindBallistic:
		c.fireBallistic(ctx)
	case KindBazooka:
		c.fireBazooka(ctx)
	case KindCircular:
		c.fireCircular(ctx)
	case KindCross:
		c.fireCross(ctx)
	case KindStrike:
		c.fireStrike(ctx)
	}

	if len(c.pendingShots) > 0 {
		c.state = stateFiring
		return
	}
	c.endActivation(ctx)
}

func (c *Controller) endActivation(ctx context.Context) {
	c.publish(ctx, domain.Event{
		Type:     domain.EventFireEnded,
		Weapon:   c.key,
		Position: c.owner.Position(),
	})
	c.state = stateCooldown
	c.stateUntil = c.nowMs + c.cfg.Cadence.DelayMs
}

// selectTarget は射程内の候補をスコアリングして選びます。
//
// スコア = -距離 + killShotBonus・[この一撃で倒せる] - overkillPenalty・[死亡予測済み]
//
// 死亡が予測されている候補は強く減点され、全候補が死亡予測の場合は
// ペナルティが同値になるため、素の最近接へ自然にフォールバックします。
// 同距離の候補はIDの辞書順で安定的に決着します。
func (c *Controller) selectTarget() (domain.Target, bool) {
	origin := c.owner.Position()
	all := c.registry.ActiveTargets()

	candidates := make([]domain.Target, 0, len(all))
	for _, t := range all {
		if c.def.Range > 0 && origin.Dist(t.Position) > c.def.Range {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return domain.Target{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := origin.Dist(candidates[i].Position)
		dj := origin.Dist(candidates[j].Position)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	opts := c.coord.Options()
	if len(candidates) > opts.CandidatePoolSize {
		candidates = candidates[:opts.CandidatePoolSize]
	}

	best := -1
	var bestScore float32
	for i, t := range candidates {
		dist := origin.Dist(t.Position)
		eta := c.nowMs + c.etaMs(dist)
		predicted := c.coord.PredictedHPAtImpact(t.ID, t.HP, eta, opts.EtaToleranceMs)
		myDamage := c.pipeline.Resolve(c.cfg.Damage.Base, t.ID)

		score := -dist
		if predicted > 0 && predicted-myDamage <= 0 {
			score += opts.KillShotBonus
		}
		if predicted <= 0 {
			score -= opts.OverkillPenalty
		}
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return candidates[best], true
}

// etaMs は距離から着弾予測時刻までの所要時間を見積もります。
// 瞬時に命中するアーキタイプは 0 を返します。
func (c *Controller) etaMs(dist float32) int64 {
	speed := c.cfg.Projectile.Speed
	if speed <= 0 {
		return 0
	}
	return int64(dist / speed * 1000)
}

// rollDamage はクリティカルを判定し、実際に載せる生ダメージを返します。
func (c *Controller) rollDamage() (float32, bool) {
	dmg := c.cfg.Damage.Base
	if c.cfg.Damage.Crit.Chance > 0 && c.rng.Float32() < c.cfg.Damage.Crit.Chance {
		return dmg * c.cfg.Damage.Crit.Mult, true
	}
	return dmg, false
}

// scanCollisions はアクティブな弾体と対象の重なりを判定します。
func (c *Controller) scanCollisions(ctx context.Context) {
	targets := c.registry.ActiveTargets()
	if len(targets) == 0 {
		return
	}
	circular := c.def.Archetype.Kind == KindCircular
	var rehitMs int64
	if circular && c.def.Archetype.Circular != nil {
		rehitMs = c.def.Archetype.Circular.RehitMs
		if rehitMs <= 0 {
			rehitMs = 500
		}
	}

	c.pool.ForEachActive(func(h Handle, slot *Projectile) {
		if slot.kind == MotionHop {
			// ホップ弾のダメージは到達フック側だけが適用する
			return
		}
		for _, t := range targets {
			if slot.pos.Dist(t.Position) > slot.hitRadius {
				continue
			}
			if circular {
				// 周回弾は離散的な着弾ではなく毎tick再評価で命中する
				if !slot.canRehit(t.ID, c.nowMs, rehitMs) {
					continue
				}
				c.applyHit(ctx, slot.damage, slot.crit, t)
				continue
			}
			if slot.alreadyHit(t.ID) {
				continue
			}
			slot.markHit(t.ID)
			c.applyHit(ctx, slot.damage, slot.crit, t)

			if slot.reservation != "" && slot.target == t.ID {
				c.coord.ConsumeReservation(slot.reservation)
				slot.reservation = ""
			}

			if c.def.Archetype.Kind == KindBazooka || c.def.Archetype.Kind == KindBallistic {
				// 着弾で起爆するアーキタイプは貫通せずその場で終わる
				c.detonate(ctx, h, slot)
				return
			}

			if slot.pierce <= 0 {
				c.pool.Release(h)
				return
			}
			slot.pierce--
		}
	})
}

// applyHit はダメージパイプラインを通して実効ダメージを適用し、着弾を通知します。
func (c *Controller) applyHit(ctx context.Context, raw float32, crit bool, t domain.Target) {
	effective := c.pipeline.Apply(raw, t.ID)
	c.publish(ctx, domain.Event{
		Type:     domain.EventImpact,
		Weapon:   c.key,
		Target:   t.ID,
		Position: t.Position,
		Damage:   effective,
		Crit:     crit,
	})
}

// applyArea は中心から半径内の全対象にダメージを適用します。
func (c *Controller) applyArea(ctx context.Context, center domain.Vec2, radius, damage float32, crit bool) {
	for _, t := range c.registry.ActiveTargets() {
		if center.Dist(t.Position) > radius {
			continue
		}
		c.applyHit(ctx, damage, crit, t)
	}
}

// updateBallistic は放物線弾の地面帰還を判定します。
// 発射高度まで落下してきた弾はその場で起爆します。
func (c *Controller) updateBallistic(ctx context.Context) {
	if c.def.Archetype.Kind != KindBallistic {
		return
	}
	c.pool.ForEachActive(func(h Handle, slot *Projectile) {
		if slot.vel.Y > 0 && slot.pos.Y >= slot.spawnPos.Y {
			c.detonate(ctx, h, slot)
		}
	})
}

// detonate は起爆処理です。範囲効果と二次展開を発動してから解放します。
func (c *Controller) detonate(ctx context.Context, h Handle, slot *Projectile) {
	if slot.explode != nil {
		spec := *slot.explode
		pos := slot.pos
		damage := slot.damage * spec.DamageMult
		crit := slot.crit
		c.applyArea(ctx, pos, spec.Radius, damage, crit)
		if spec.Secondary != nil {
			c.spawnClusterRing(ctx, pos, *spec.Secondary, c.cfg.Count)
		}
	}
	c.pool.Release(h)
}

// handleExpire は寿命・射程切れの弾体の起爆フックです。
func (c *Controller) handleExpire(ctx context.Context, h Handle, slot *Projectile) {
	if slot.explode == nil {
		return
	}
	// 解放前に起爆する。Release 自体は expire 側が行う
	spec := *slot.explode
	c.applyArea(ctx, slot.pos, spec.Radius, slot.damage*spec.DamageMult, slot.crit)
	if spec.Secondary != nil {
		c.spawnClusterRing(ctx, slot.pos, *spec.Secondary, c.cfg.Count)
	}
	slot.explode = nil
}

// handleHopArrive は chainThrow のホップ到達時のダメージ適用です。
func (c *Controller) handleHopArrive(ctx context.Context, h Handle, slot *Projectile, id domain.TargetID) {
	t, ok := c.registry.Target(id)
	if !ok {
		return
	}
	falloff := float32(1)
	for i := 0; i < slot.hopIndex; i++ {
		falloff *= 1 - slot.falloffPerHop
	}
	c.applyHit(ctx, slot.damage*falloff, slot.crit, t)
	if slot.reservation != "" && slot.hopIndex == 0 {
		c.coord.ConsumeReservation(slot.reservation)
		slot.reservation = ""
	}
}

// processPendingShots はスタッガー予約された発射を期日順に実行します。
func (c *Controller) processPendingShots(ctx context.Context) {
	if len(c.pendingShots) == 0 {
		return
	}
	remaining := c.pendingShots[:0]
	for _, shot := range c.pendingShots {
		if c.nowMs < shot.dueAt {
			remaining = append(remaining, shot)
			continue
		}
		c.spawnShot(ctx, c.owner.Position(), shot.dir, "", nil)
	}
	c.pendingShots = remaining
}

// processPendingAreas は遅延発動の範囲効果を期日順に実行します。
func (c *Controller) processPendingAreas(ctx context.Context) {
	if len(c.pendingAreas) == 0 {
		return
	}
	remaining := c.pendingAreas[:0]
	for _, area := range c.pendingAreas {
		if c.nowMs < area.dueAt {
			remaining = append(remaining, area)
			continue
		}
		center := area.center
		if area.followOwner {
			center = c.owner.Position()
		} else if area.target != "" {
			// 対象固定: 生存していれば現在位置に追従する
			if t, ok := c.registry.Target(area.target); ok {
				center = t.Position
			}
		}
		c.applyArea(ctx, center, area.radius, area.damage, area.crit)
		if area.reservation != "" {
			c.coord.ConsumeReservation(area.reservation)
		}
	}
	c.pendingAreas = remaining
}

func (c *Controller) publish(ctx context.Context, ev domain.Event) {
	if c.sink == nil {
		return
	}
	ev.SimTimeMs = c.nowMs
	c.sink.Publish(ctx, ev)
}

// reserveFor は対象つきの発射に対してダメージ予約を登録します。
func (c *Controller) reserveFor(target domain.TargetID, damage float32, impactAtMs int64) domain.ReservationID {
	if target == "" {
		return ""
	}
	predicted := c.pipeline.Resolve(damage, target)
	return c.coord.Reserve(c.key, target, impactAtMs, predicted)
}

// spawnShot は1発の直進弾を発射する共通ルーチンです。
// プール枯渇は tick 内の no-op で、テレメトリ用のイベントのみ発行します。
func (c *Controller) spawnShot(ctx context.Context, origin, dir domain.Vec2, target domain.TargetID, explode *ExplodeSpec) Handle {
	h, ok := c.pool.Acquire()
	if !ok {
		c.publish(ctx, domain.Event{Type: domain.EventFireSkipped, Weapon: c.key, Position: origin})
		slog.DebugContext(ctx, "pool exhausted, fire skipped", "weapon", c.key)
		return NoHandle
	}
	damage, crit := c.rollDamage()

	var reservation domain.ReservationID
	if target != "" {
		if t, ok := c.registry.Target(target); ok {
			eta := c.etaMs(origin.Dist(t.Position))
			reservation = c.reserveFor(target, damage, c.nowMs+eta)
		}
	}

	c.pool.Fire(h, c.nowMs, FireParams{
		Kind:        MotionLinear,
		Origin:      origin,
		Direction:   dir,
		Speed:       c.cfg.Projectile.Speed,
		LifetimeMs:  c.cfg.Projectile.LifetimeMs,
		Pierce:      c.cfg.Projectile.Pierce,
		MaxDistance: c.cfg.Projectile.MaxDistance,
		HitRadius:   c.cfg.Projectile.HitRadius,
		Damage:      damage,
		Crit:        crit,
		Explode:     explode,
		Reservation: reservation,
		Target:      target,
	})
	return h
}
