package domain

import (
	"encoding/binary"
	"errors"
	"math"
)

const Vec2Size = 8 // 2 * float32

// Vec2 はワールド座標上の 2 次元ベクトルを表す値オブジェクトです。
type Vec2 struct {
	X, Y float32
}

var ErrInvalidVec2Data = errors.New("invalid vec2 data: expected 8 bytes")

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec2) Dist(o Vec2) float32 {
	return v.Sub(o).Len()
}

func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Normalize は単位ベクトルを返します。ゼロベクトルはそのまま返します。
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-6 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Angle はベクトルの向きをラジアンで返します。
func (v Vec2) Angle() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// Rotate はベクトルを rad ラジアン回転させた結果を返します。
func (v Vec2) Rotate(rad float32) Vec2 {
	sin, cos := math.Sincos(float64(rad))
	return Vec2{
		X: v.X*float32(cos) - v.Y*float32(sin),
		Y: v.X*float32(sin) + v.Y*float32(cos),
	}
}

// VecFromAngle は rad ラジアン方向の単位ベクトルを返します。
func VecFromAngle(rad float32) Vec2 {
	sin, cos := math.Sincos(float64(rad))
	return Vec2{X: float32(cos), Y: float32(sin)}
}

func ParseVec2(data []byte) (Vec2, error) {
	if len(data) < Vec2Size {
		return Vec2{}, ErrInvalidVec2Data
	}
	return Vec2{
		X: math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
	}, nil
}

func (v Vec2) Encode() []byte {
	buf := make([]byte, Vec2Size)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y))
	return buf
}
