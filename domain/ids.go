package domain

import "github.com/google/uuid"

// WeaponKey は武器定義を一意に識別するキーです。
type WeaponKey string

func (k WeaponKey) String() string { return string(k) }

// TargetID は攻撃対象（敵）を一意に識別するIDです。
type TargetID string

func (t TargetID) String() string { return string(t) }

// ReservationID はダメージ予約を一意に識別するIDです。
type ReservationID string

func NewReservationID() ReservationID {
	return ReservationID(uuid.NewString())
}
