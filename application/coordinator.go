package application

import (
	"barrage/domain"
)

// CoordinatorOptions は照準コーディネーターの調整ノブです。
type CoordinatorOptions struct {
	// CandidatePoolSize は1回の照準パスで評価する候補数の上限です。
	CandidatePoolSize int
	// EtaToleranceMs は着弾予測時刻の比較に許容する誤差です。
	EtaToleranceMs int64
	// ExpiryBufferMs は予約の有効期限を着弾予測時刻からどれだけ延長するかです。
	ExpiryBufferMs int64
	// KillShotBonus は「この一撃で倒せる」候補に加点するスコアです。
	KillShotBonus float32
	// OverkillPenalty は既に死亡が予測されている候補への減点スコアです。
	OverkillPenalty float32
}

// DefaultCoordinatorOptions は実測で調整した既定値を返します。
func DefaultCoordinatorOptions() CoordinatorOptions {
	return CoordinatorOptions{
		CandidatePoolSize: 12,
		EtaToleranceMs:    50,
		ExpiryBufferMs:    250,
		KillShotBonus:     150,
		OverkillPenalty:   1e6,
	}
}

// Reservation は「特定の対象に特定の時刻にダメージが着弾する」という予測です。
type Reservation struct {
	ID         domain.ReservationID
	Weapon     domain.WeaponKey
	Target     domain.TargetID
	ImpactAtMs int64
	Damage     float32
	ExpiresAt  int64
}

// Coordinator は武器間で共有される唯一の可変状態で、
// ダメージ予約台帳によって複数武器が同じ敵を過剰に倒し切るのを防ぎます。
// すべてのアクセスはこの狭いAPIを経由します。
type Coordinator struct {
	opts     CoordinatorOptions
	registry domain.TargetRegistry

	byID     map[domain.ReservationID]*Reservation
	byTarget map[domain.TargetID]map[domain.ReservationID]*Reservation
}

func NewCoordinator(registry domain.TargetRegistry, opts CoordinatorOptions) *Coordinator {
	if opts.CandidatePoolSize <= 0 {
		opts.CandidatePoolSize = DefaultCoordinatorOptions().CandidatePoolSize
	}
	return &Coordinator{
		opts:     opts,
		registry: registry,
		byID:     make(map[domain.ReservationID]*Reservation),
		byTarget: make(map[domain.TargetID]map[domain.ReservationID]*Reservation),
	}
}

func (c *Coordinator) Options() CoordinatorOptions { return c.opts }

// Reserve は予約を登録し、そのIDを返します。
// 同一の対象に対する複数の予約は共存できます。
func (c *Coordinator) Reserve(weapon domain.WeaponKey, target domain.TargetID, impactAtMs int64, damage float32) domain.ReservationID {
	r := &Reservation{
		ID:         domain.NewReservationID(),
		Weapon:     weapon,
		Target:     target,
		ImpactAtMs: impactAtMs,
		Damage:     damage,
		ExpiresAt:  impactAtMs + c.opts.ExpiryBufferMs,
	}
	c.byID[r.ID] = r
	if c.byTarget[target] == nil {
		c.byTarget[target] = make(map[domain.ReservationID]*Reservation)
	}
	c.byTarget[target][r.ID] = r
	return r.ID
}

// PredictedDamageBefore は horizon+tolerance までに着弾が予測される
// 未失効の予約のダメージ合計を返します。
func (c *Coordinator) PredictedDamageBefore(target domain.TargetID, horizonMs, toleranceMs int64) float32 {
	var total float32
	for _, r := range c.byTarget[target] {
		if r.ImpactAtMs <= horizonMs+toleranceMs {
			total += r.Damage
		}
	}
	return total
}

// PredictedHPAtImpact は着弾時点で予測される残りHPを返します。
// 0以下なら、その対象は既に他の武器によって倒されることが予測されています。
func (c *Coordinator) PredictedHPAtImpact(target domain.TargetID, currentHP float32, impactAtMs, toleranceMs int64) float32 {
	return currentHP - c.PredictedDamageBefore(target, impactAtMs, toleranceMs)
}

// ConsumeReservation は予約をひとつ取り除きます。
// 既に消費済み・失効済みの場合は false を返します（二重解放への防御）。
func (c *Coordinator) ConsumeReservation(id domain.ReservationID) bool {
	r, ok := c.byID[id]
	if !ok {
		return false
	}
	c.remove(r)
	return true
}

// ReleaseByWeapon は指定武器の予約をすべて解放します（装備解除時）。
func (c *Coordinator) ReleaseByWeapon(weapon domain.WeaponKey) {
	for _, r := range c.byID {
		if r.Weapon == weapon {
			c.remove(r)
		}
	}
}

// ClearForEnemy は指定対象への予約をすべて解放します（死亡時）。
func (c *Coordinator) ClearForEnemy(target domain.TargetID) {
	for _, r := range c.byTarget[target] {
		c.remove(r)
	}
}

// Prune は失効した予約と、対象が非アクティブになった予約を破棄します。
// 毎tick最低1回呼ぶこと。呼び忘れは台帳の無限成長につながります。
func (c *Coordinator) Prune(nowMs int64) {
	for _, r := range c.byID {
		if nowMs > r.ExpiresAt {
			c.remove(r)
			continue
		}
		if c.registry != nil {
			if _, ok := c.registry.Target(r.Target); !ok {
				c.remove(r)
			}
		}
	}
}

// Len は現在の予約数を返します（テレメトリ・テスト用）。
func (c *Coordinator) Len() int {
	return len(c.byID)
}

func (c *Coordinator) remove(r *Reservation) {
	delete(c.byID, r.ID)
	if m := c.byTarget[r.Target]; m != nil {
		delete(m, r.ID)
		if len(m) == 0 {
			delete(c.byTarget, r.Target)
		}
	}
}
