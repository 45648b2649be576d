package domain

//go:generate go tool mockgen -destination=./mocks/collaborators_mock.go -package=mocks . Owner,TargetRegistry,DamagePipeline

// Target は対象レジストリから観測した敵のスナップショットです。
type Target struct {
	ID       TargetID
	Position Vec2
	HP       float32
}

// Owner は武器を装備しているエンティティへの読み取り専用の参照です。
type Owner interface {
	// Position は所有者の現在位置を返します。
	Position() Vec2
	// Facing は所有者が最後に向いていた方向の単位ベクトルを返します。
	Facing() Vec2
	// CanFire は所有者が発射可能な状態かを返します（スタン中などは false）。
	CanFire() bool
}

// TargetRegistry はアクティブな攻撃対象を問い合わせるインターフェースです。
type TargetRegistry interface {
	// ActiveTargets は生存している全対象のスナップショットを返します。
	ActiveTargets() []Target
	// Target は指定IDの対象を返します。存在しない・死亡済みなら ok=false。
	Target(id TargetID) (Target, bool)
}

// DamagePipeline は生ダメージ値を外部バフ適用後の実効値に解決します。
// Resolve と Apply は同じ計算を共有するため、予約値と実際の適用値は一致します。
type DamagePipeline interface {
	// Resolve は適用せずに実効ダメージを計算します（予約の予測値用）。
	Resolve(raw float32, target TargetID) float32
	// Apply は対象にダメージを適用し、実際に適用された値を返します。
	Apply(raw float32, target TargetID) float32
}
