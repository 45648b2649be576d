package domain

import (
	"encoding/binary"
	"errors"
	"math"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	ProtocolVersion = 1
	FrameHeaderSize = 10
)

// FrameHeader はテレメトリフレームのヘッダー (10バイト)
//
//	version  u8  (1)
//	seq      u16 (2)
//	simTime  u32 (4)  - シミュレーション時刻 (ms)
//	kind     u8  (1)  - EventType
//	length   u16 (2)  - ペイロード長
type FrameHeader struct {
	Version uint8
	Seq     uint16
	SimTime uint32
	Kind    EventType
	Length  uint16
}

var (
	ErrInvalidFrameHeader  = errors.New("invalid frame header size")
	ErrInvalidFramePayload = errors.New("invalid frame payload size")
)

func (h *FrameHeader) Encode() []byte {
	buf := make([]byte, FrameHeaderSize)
	buf[0] = h.Version
	byteOrder.PutUint16(buf[1:3], h.Seq)
	byteOrder.PutUint32(buf[3:7], h.SimTime)
	buf[7] = uint8(h.Kind)
	byteOrder.PutUint16(buf[8:10], h.Length)
	return buf
}

// ParseFrameHeader はバイト列から FrameHeader をパースします。
func ParseFrameHeader(data []byte) (*FrameHeader, error) {
	if len(data) < FrameHeaderSize {
		return nil, ErrInvalidFrameHeader
	}
	return &FrameHeader{
		Version: data[0],
		Seq:     byteOrder.Uint16(data[1:3]),
		SimTime: byteOrder.Uint32(data[3:7]),
		Kind:    EventType(data[7]),
		Length:  byteOrder.Uint16(data[8:10]),
	}, nil
}

// EncodeEvent は Event を1フレームにエンコードします。
//
//	weaponLen u8, weapon []byte
//	targetLen u8, target []byte
//	position  8バイト (Vec2)
//	damage    f32 (4)
//	crit      u8  (1)
//	level     u8  (1)
func EncodeEvent(seq uint16, ev Event) []byte {
	weapon := []byte(ev.Weapon)
	target := []byte(ev.Target)

	payload := make([]byte, 0, 2+len(weapon)+len(target)+Vec2Size+6)
	payload = append(payload, uint8(len(weapon)))
	payload = append(payload, weapon...)
	payload = append(payload, uint8(len(target)))
	payload = append(payload, target...)
	payload = append(payload, ev.Position.Encode()...)

	var tail [6]byte
	byteOrder.PutUint32(tail[0:4], math.Float32bits(ev.Damage))
	if ev.Crit {
		tail[4] = 1
	}
	tail[5] = uint8(ev.Level)
	payload = append(payload, tail[:]...)

	header := FrameHeader{
		Version: ProtocolVersion,
		Seq:     seq,
		SimTime: uint32(ev.SimTimeMs),
		Kind:    ev.Type,
		Length:  uint16(len(payload)),
	}
	return append(header.Encode(), payload...)
}

// ParseEventFrame はフレームをデコードして Event に戻します。
func ParseEventFrame(data []byte) (*Event, error) {
	header, err := ParseFrameHeader(data)
	if err != nil {
		return nil, err
	}
	payload := data[FrameHeaderSize:]
	if len(payload) < int(header.Length) {
		return nil, ErrInvalidFramePayload
	}

	off := 0
	readString := func() (string, error) {
		if off >= len(payload) {
			return "", ErrInvalidFramePayload
		}
		n := int(payload[off])
		off++
		if off+n > len(payload) {
			return "", ErrInvalidFramePayload
		}
		s := string(payload[off : off+n])
		off += n
		return s, nil
	}

	weapon, err := readString()
	if err != nil {
		return nil, err
	}
	target, err := readString()
	if err != nil {
		return nil, err
	}
	if off+Vec2Size+6 > len(payload) {
		return nil, ErrInvalidFramePayload
	}
	pos, err := ParseVec2(payload[off : off+Vec2Size])
	if err != nil {
		return nil, err
	}
	off += Vec2Size

	return &Event{
		Type:      header.Kind,
		SimTimeMs: int64(header.SimTime),
		Weapon:    WeaponKey(weapon),
		Target:    TargetID(target),
		Position:  pos,
		Damage:    math.Float32frombits(byteOrder.Uint32(payload[off : off+4])),
		Crit:      payload[off+4] == 1,
		Level:     int(payload[off+5]),
	}, nil
}
