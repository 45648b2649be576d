package application

import (
	"context"
	"math"

	"barrage/domain"
)

// Handle はプール内のスロットを指すインデックスです。
type Handle int

const NoHandle Handle = -1

// defaultHitRadius は定義が HitRadius を省略した場合の命中判定半径です。
const defaultHitRadius float32 = 12

// MotionKind は弾体の移動スクリプトの種別です。
type MotionKind uint8

const (
	// MotionLinear は速度ベクトル（＋任意の重力）で積分される移動です。
	MotionLinear MotionKind = iota + 1
	// MotionOrbit は内部の位相角から毎tick位置を計算する周回移動です。
	MotionOrbit
	// MotionHop はホップ対象の間を一定時間かけて補間移動します。
	MotionHop
	// MotionAnchored は移動しません（対象固定の遅延攻撃など）。
	MotionAnchored
)

// ExplodeSpec は寿命切れ・起爆時に発動する範囲効果の設定です。
type ExplodeSpec struct {
	Radius     float32
	DamageMult float32
	// Secondary が非nilなら、起爆地点から二次クラスターを展開します。
	Secondary *ClusterArchetype
}

// FireParams は1回の発射で弾体スロットに書き込むパラメータです。
type FireParams struct {
	Kind      MotionKind
	Origin    domain.Vec2
	Direction domain.Vec2 // 単位ベクトル
	Speed     float32     // px/s
	Gravity   float32     // px/s^2, 下向き正

	LifetimeMs  int64
	Pierce      int
	MaxDistance float32 // 0 = 無制限
	HitRadius   float32

	Damage float32 // クリティカル適用済みの生ダメージ
	Crit   bool

	Explode *ExplodeSpec

	// MotionOrbit 用
	OrbitRadius float32
	AngularVel  float32 // rad/s。符号が回転方向
	OrbitPhase  float32

	// MotionHop 用
	HopTargets       []domain.TargetID
	PerHopDurationMs int64
	FalloffPerHop    float32

	// 予約との紐付け。解放時にコーディネーターへ返却されます。
	Reservation domain.ReservationID
	Target      domain.TargetID
}

// Projectile はプールが再利用する可変スロットです。
// 解放時にフライトごとのフィールドはすべてクリアされます。
type Projectile struct {
	active bool

	kind    MotionKind
	pos     domain.Vec2
	vel     domain.Vec2
	heading domain.Vec2
	gravity float32
	speed   float32

	spawnPos    domain.Vec2
	traveled    float32
	maxDistance float32
	hitRadius   float32

	pierce  int
	hitSet  map[domain.TargetID]struct{}
	rehitAt map[domain.TargetID]int64

	firedAt   int64
	expiresAt int64
	explode   *ExplodeSpec

	damage float32
	crit   bool

	orbitRadius float32
	orbitPhase  float32
	angularVel  float32

	hopTargets       []domain.TargetID
	hopIndex         int
	hopStart         domain.Vec2
	hopStartedAt     int64
	perHopDurationMs int64
	falloffPerHop    float32

	reservation domain.ReservationID
	target      domain.TargetID
}

func (p *Projectile) Active() bool            { return p.active }
func (p *Projectile) Position() domain.Vec2   { return p.pos }
func (p *Projectile) Heading() domain.Vec2    { return p.heading }
func (p *Projectile) Damage() float32         { return p.damage }
func (p *Projectile) Pierce() int             { return p.pierce }
func (p *Projectile) Target() domain.TargetID { return p.target }

// alreadyHit は1フライト内で同じ対象を二重にカウントしないための判定です。
func (p *Projectile) alreadyHit(id domain.TargetID) bool {
	_, ok := p.hitSet[id]
	return ok
}

func (p *Projectile) markHit(id domain.TargetID) {
	if p.hitSet == nil {
		p.hitSet = make(map[domain.TargetID]struct{}, 8)
	}
	p.hitSet[id] = struct{}{}
}

// canRehit は周回アーキタイプ用の再命中判定です。
func (p *Projectile) canRehit(id domain.TargetID, nowMs, intervalMs int64) bool {
	if next, ok := p.rehitAt[id]; ok && nowMs < next {
		return false
	}
	if p.rehitAt == nil {
		p.rehitAt = make(map[domain.TargetID]int64, 8)
	}
	p.rehitAt[id] = nowMs + intervalMs
	return true
}

// Pool は1武器が専有する固定容量の弾体アリーナです。
// acquire はブロックせず、枯渇時は「弾なし」を返すだけでエラーにはなりません。
type Pool struct {
	slots []Projectile
	free  []Handle
	coord *Coordinator

	// centerFn は MotionOrbit の中心（所有者位置）を毎tick解決します。
	centerFn func() domain.Vec2
	// targetPosFn は MotionHop の移動先を毎tick解決します。
	targetPosFn func(domain.TargetID) (domain.Vec2, bool)

	// onExpire は寿命・射程切れで解放される直前に呼ばれます（起爆処理用）。
	onExpire func(ctx context.Context, h Handle, p *Projectile)
	// onHopArrive はホップ先に到達した瞬間に呼ばれます。
	onHopArrive func(ctx context.Context, h Handle, p *Projectile, target domain.TargetID)

	activeCount  int
	skippedFires int
}

// NewPool は容量 capacity のプールを構築します。
func NewPool(capacity int, coord *Coordinator) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	p := &Pool{
		slots: make([]Projectile, capacity),
		free:  make([]Handle, 0, capacity),
		coord: coord,
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, Handle(i))
	}
	return p
}

// Acquire は未使用スロットを返します。枯渇時は (NoHandle, false) です。
func (p *Pool) Acquire() (Handle, bool) {
	n := len(p.free)
	if n == 0 {
		p.skippedFires++
		return NoHandle, false
	}
	h := p.free[n-1]
	p.free = p.free[:n-1]
	return h, true
}

// Fire はスロットに発射パラメータを書き込み、アクティブにします。
// 同じハンドルを再発射した場合、期限は積み重ならず置き換えられます。
func (p *Pool) Fire(h Handle, nowMs int64, params FireParams) {
	if !p.valid(h) {
		return
	}
	slot := &p.slots[h]
	wasActive := slot.active

	hitRadius := params.HitRadius
	if hitRadius <= 0 {
		hitRadius = defaultHitRadius
	}

	slot.active = true
	slot.kind = params.Kind
	slot.pos = params.Origin
	slot.heading = params.Direction
	slot.vel = params.Direction.Scale(params.Speed)
	slot.gravity = params.Gravity
	slot.speed = params.Speed
	slot.spawnPos = params.Origin
	slot.traveled = 0
	slot.maxDistance = params.MaxDistance
	slot.hitRadius = hitRadius
	slot.pierce = params.Pierce
	clear(slot.hitSet)
	clear(slot.rehitAt)
	slot.firedAt = nowMs
	slot.expiresAt = nowMs + params.LifetimeMs
	slot.explode = params.Explode
	slot.damage = params.Damage
	slot.crit = params.Crit
	slot.orbitRadius = params.OrbitRadius
	slot.orbitPhase = params.OrbitPhase
	slot.angularVel = params.AngularVel
	slot.hopTargets = params.HopTargets
	slot.hopIndex = 0
	slot.hopStart = params.Origin
	slot.hopStartedAt = nowMs
	slot.perHopDurationMs = params.PerHopDurationMs
	slot.falloffPerHop = params.FalloffPerHop
	slot.reservation = params.Reservation
	slot.target = params.Target

	if !wasActive {
		p.activeCount++
	}
}

// Release はスロットを解放します。冪等であり、二重解放は何もしません。
// 保持していた予約はコーディネーターへ返却されます。
func (p *Pool) Release(h Handle) {
	if !p.valid(h) {
		return
	}
	slot := &p.slots[h]
	if !slot.active {
		return
	}

	if slot.reservation != "" && p.coord != nil {
		p.coord.ConsumeReservation(slot.reservation)
	}

	slot.active = false
	clear(slot.hitSet)
	clear(slot.rehitAt)
	slot.hopTargets = nil
	slot.explode = nil
	slot.reservation = ""
	slot.target = ""
	slot.expiresAt = 0

	p.activeCount--
	p.free = append(p.free, h)
}

// ReleaseAll は全アクティブスロットを強制解放します（武器破棄時）。
func (p *Pool) ReleaseAll() {
	for i := range p.slots {
		if p.slots[i].active {
			p.Release(Handle(i))
		}
	}
}

// Update はスクリプト移動を進め、寿命・最大飛距離を強制します。
// 期限はtick時刻の比較で判定するため、解放済みスロットの期限発火は
// 構造的に起こりません（タイマーを持たないため取り消しも不要）。
func (p *Pool) Update(ctx context.Context, nowMs int64, dt float32) {
	for i := range p.slots {
		slot := &p.slots[i]
		if !slot.active {
			continue
		}
		h := Handle(i)

		switch slot.kind {
		case MotionLinear:
			if slot.gravity != 0 {
				slot.vel.Y += slot.gravity * dt
			}
			step := slot.vel.Scale(dt)
			slot.pos = slot.pos.Add(step)
			slot.traveled += step.Len()
			// 進行方向へ姿勢を合わせる
			if v := slot.vel.Normalize(); v != (domain.Vec2{}) {
				slot.heading = v
			}
		case MotionOrbit:
			slot.orbitPhase += slot.angularVel * dt
			if slot.orbitPhase > 2*math.Pi {
				slot.orbitPhase -= 2 * math.Pi
			} else if slot.orbitPhase < -2*math.Pi {
				slot.orbitPhase += 2 * math.Pi
			}
			center := slot.spawnPos
			if p.centerFn != nil {
				center = p.centerFn()
			}
			slot.pos = center.Add(domain.VecFromAngle(slot.orbitPhase).Scale(slot.orbitRadius))
			slot.heading = domain.VecFromAngle(slot.orbitPhase + float32(math.Pi)/2)
		case MotionHop:
			p.advanceHop(ctx, h, slot, nowMs)
		case MotionAnchored:
			// 位置は固定
		}

		if !slot.active {
			continue // ホップ完了などで解放済み
		}

		if slot.maxDistance > 0 && slot.traveled >= slot.maxDistance {
			p.expire(ctx, h, slot)
			continue
		}
		if nowMs >= slot.expiresAt {
			p.expire(ctx, h, slot)
		}
	}
}

func (p *Pool) advanceHop(ctx context.Context, h Handle, slot *Projectile, nowMs int64) {
	if slot.hopIndex >= len(slot.hopTargets) {
		p.Release(h)
		return
	}
	target := slot.hopTargets[slot.hopIndex]
	dest, ok := domain.Vec2{}, false
	if p.targetPosFn != nil {
		dest, ok = p.targetPosFn(target)
	}
	if !ok {
		// ホップ先が消えたら次へ進む
		slot.hopIndex++
		slot.hopStart = slot.pos
		slot.hopStartedAt = nowMs
		return
	}

	dur := slot.perHopDurationMs
	if dur <= 0 {
		dur = 1
	}
	t := float32(nowMs-slot.hopStartedAt) / float32(dur)
	if t >= 1 {
		slot.pos = dest
		if delta := dest.Sub(slot.hopStart).Normalize(); delta != (domain.Vec2{}) {
			slot.heading = delta
		}
		if p.onHopArrive != nil {
			p.onHopArrive(ctx, h, slot, target)
		}
		if !slot.active {
			return
		}
		slot.hopIndex++
		slot.hopStart = dest
		slot.hopStartedAt = nowMs
		if slot.hopIndex >= len(slot.hopTargets) {
			p.Release(h)
		}
		return
	}
	slot.pos = slot.hopStart.Add(dest.Sub(slot.hopStart).Scale(t))
}

// expire は寿命・射程切れの共通処理です。起爆フックを呼んでから解放します。
func (p *Pool) expire(ctx context.Context, h Handle, slot *Projectile) {
	if p.onExpire != nil {
		p.onExpire(ctx, h, slot)
	}
	if slot.active {
		p.Release(h)
	}
}

// ForEachActive はアクティブなスロットを走査します。
func (p *Pool) ForEachActive(fn func(h Handle, slot *Projectile)) {
	for i := range p.slots {
		if p.slots[i].active {
			fn(Handle(i), &p.slots[i])
		}
	}
}

// ActiveCount は現在アクティブなスロット数を返します。
func (p *Pool) ActiveCount() int { return p.activeCount }

// Capacity はプール容量を返します。
func (p *Pool) Capacity() int { return len(p.slots) }

// SkippedFires は枯渇によって見送られた発射の累計です（テレメトリ用）。
func (p *Pool) SkippedFires() int { return p.skippedFires }

func (p *Pool) valid(h Handle) bool {
	return h >= 0 && int(h) < len(p.slots)
}

// slot はテスト用の内部アクセサです。
func (p *Pool) slot(h Handle) *Projectile {
	return &p.slots[h]
}
