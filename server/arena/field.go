package arena

import (
	"fmt"
	"math/rand/v2"

	"barrage/domain"
	"barrage/utils"
)

// Enemy はフィールド上の標的です。
type Enemy struct {
	ID           domain.TargetID
	Position     domain.Vec2
	HP           float32
	MaxHP        float32
	Armor        float32 // 0..1 の被ダメージ軽減率
	vel          domain.Vec2
	steerTimer   float32
	respawnTimer float32
}

// Field はデモ用の戦闘フィールドです。中央のアバターが所有者となり、
// 周囲を徘徊する標的に対して武器群が自律的に発射されます。
// domain.Owner / TargetRegistry / DamagePipeline をすべて実装します。
type Field struct {
	width  float32
	height float32

	avatarPos    domain.Vec2
	avatarFacing domain.Vec2

	enemies []*Enemy
	rng     *rand.Rand

	kills int
}

// NewField は指定サイズのフィールドを作り、enemyCount 体の標的を配置します。
func NewField(width, height float32, enemyCount int, seed uint64) *Field {
	f := &Field{
		width:        width,
		height:       height,
		avatarPos:    domain.Vec2{X: width / 2, Y: height / 2},
		avatarFacing: domain.Vec2{X: 1},
		rng:          rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
	}
	for i := 0; i < enemyCount; i++ {
		e := &Enemy{
			ID:    domain.TargetID(fmt.Sprintf("enemy-%03d", i)),
			MaxHP: 40 + f.rng.Float32()*80,
			Armor: f.rng.Float32() * 0.3,
		}
		f.spawn(e)
		f.enemies = append(f.enemies, e)
	}
	return f
}

func (f *Field) spawn(e *Enemy) {
	e.Position = domain.Vec2{
		X: f.rng.Float32() * f.width,
		Y: f.rng.Float32() * f.height,
	}
	e.HP = e.MaxHP
	e.respawnTimer = 0
	e.steerTimer = 0
}

// Tick は標的の徘徊と再出現を1フレームぶん進めます。
func (f *Field) Tick(dt float32) {
	for _, e := range f.enemies {
		if e.HP <= 0 {
			e.respawnTimer -= dt
			if e.respawnTimer <= 0 {
				f.spawn(e)
			}
			continue
		}

		e.steerTimer -= dt
		if e.steerTimer <= 0 {
			// 数秒ごとに進行方向を変える
			angle := f.rng.Float32() * 6.2832
			speed := 20 + f.rng.Float32()*40
			e.vel = domain.VecFromAngle(angle).Scale(speed)
			e.steerTimer = 1 + f.rng.Float32()*3
		}
		e.Position = e.Position.Add(e.vel.Scale(dt))
		if !utils.FiniteVec(e.Position) {
			f.spawn(e)
			continue
		}
		e.Position.X = clamp(e.Position.X, 0, f.width)
		e.Position.Y = clamp(e.Position.Y, 0, f.height)
	}
}

// Kills は撃破数の累計を返します。
func (f *Field) Kills() int { return f.kills }

// Position は所有者アバターの現在位置を返します。
func (f *Field) Position() domain.Vec2 { return f.avatarPos }

// Facing は所有者アバターの向きを返します。
func (f *Field) Facing() domain.Vec2 { return f.avatarFacing }

// CanFire はデモフィールドでは常に真です。
func (f *Field) CanFire() bool { return true }

// ActiveTargets は生存中の標的を返します。
func (f *Field) ActiveTargets() []domain.Target {
	out := make([]domain.Target, 0, len(f.enemies))
	for _, e := range f.enemies {
		if e.HP > 0 {
			out = append(out, domain.Target{ID: e.ID, Position: e.Position, HP: e.HP})
		}
	}
	return out
}

// Target は指定IDの標的を返します。死亡中は見つかりません。
func (f *Field) Target(id domain.TargetID) (domain.Target, bool) {
	for _, e := range f.enemies {
		if e.ID == id && e.HP > 0 {
			return domain.Target{ID: e.ID, Position: e.Position, HP: e.HP}, true
		}
	}
	return domain.Target{}, false
}

// Resolve は装甲を適用した実効ダメージを副作用なしで返します。
// 予約の予測値と実際の適用値はこの同じ式を通るためズレません。
func (f *Field) Resolve(raw float32, id domain.TargetID) float32 {
	for _, e := range f.enemies {
		if e.ID == id {
			return raw * (1 - e.Armor)
		}
	}
	return raw
}

// Apply は実効ダメージを標的に適用し、適用した値を返します。
func (f *Field) Apply(raw float32, id domain.TargetID) float32 {
	for _, e := range f.enemies {
		if e.ID != id {
			continue
		}
		effective := raw * (1 - e.Armor)
		e.HP -= effective
		if e.HP <= 0 {
			f.kills++
			e.respawnTimer = 2 + f.rng.Float32()*3
		}
		return effective
	}
	return 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
