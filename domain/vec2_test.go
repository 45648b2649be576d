package domain

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{X: 3, Y: 4}.Normalize()
	if !almostEqual(v.Len(), 1.0) {
		t.Errorf("Len = %f, want 1.0", v.Len())
	}
	if !almostEqual(v.X, 0.6) || !almostEqual(v.Y, 0.8) {
		t.Errorf("Normalize = %+v, want (0.6, 0.8)", v)
	}
}

func TestVec2Normalize_Zero(t *testing.T) {
	v := Vec2{}.Normalize()
	if v != (Vec2{}) {
		t.Errorf("Normalize(zero) = %+v, want zero", v)
	}
}

func TestVec2Dist(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 3, Y: 4}
	if !almostEqual(a.Dist(b), 5.0) {
		t.Errorf("Dist = %f, want 5.0", a.Dist(b))
	}
}

func TestVec2Rotate(t *testing.T) {
	v := Vec2{X: 1, Y: 0}.Rotate(float32(math.Pi / 2))
	if !almostEqual(v.X, 0) || !almostEqual(v.Y, 1) {
		t.Errorf("Rotate = %+v, want (0, 1)", v)
	}
}

func TestVecFromAngle(t *testing.T) {
	v := VecFromAngle(0)
	if !almostEqual(v.X, 1) || !almostEqual(v.Y, 0) {
		t.Errorf("VecFromAngle(0) = %+v, want (1, 0)", v)
	}
}

func TestVec2RoundTrip(t *testing.T) {
	original := Vec2{X: 1.5, Y: -2.75}

	encoded := original.Encode()
	if len(encoded) != Vec2Size {
		t.Errorf("encoded size = %d, want %d", len(encoded), Vec2Size)
	}

	decoded, err := ParseVec2(encoded)
	if err != nil {
		t.Fatalf("ParseVec2 failed: %v", err)
	}
	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestParseVec2_TooShort(t *testing.T) {
	_, err := ParseVec2([]byte{1, 2, 3})
	if err != ErrInvalidVec2Data {
		t.Errorf("err = %v, want ErrInvalidVec2Data", err)
	}
}
