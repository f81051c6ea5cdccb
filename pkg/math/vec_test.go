package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}

	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec2Cross(t *testing.T) {
	x := Vec2{1, 0}
	y := Vec2{0, 1}
	if got := x.Cross(y); got != 1 {
		t.Errorf("Vec2.Cross() = %v, want 1", got)
	}
	if got := y.Cross(x); got != -1 {
		t.Errorf("Vec2.Cross() = %v, want -1", got)
	}
}

func TestFromAngle(t *testing.T) {
	tests := []struct {
		deg  float32
		want Vec2
	}{
		{0, Vec2{1, 0}},
		{90, Vec2{0, 1}},
		{180, Vec2{-1, 0}},
		{-90, Vec2{0, -1}},
	}
	for _, tt := range tests {
		got := FromAngle(tt.deg)
		if !got.ApproxEqual(tt.want, 1e-5) {
			t.Errorf("FromAngle(%v) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

func TestVec2AngleTo(t *testing.T) {
	got := Vec2{1, 0}.AngleTo(Vec2{1, 1})
	if Abs(got-45) > 1e-3 {
		t.Errorf("AngleTo() = %v, want 45", got)
	}
	if got := (Vec2{}).AngleTo(Vec2{1, 1}); got != 0 {
		t.Errorf("AngleTo(zero) = %v, want 0", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp returned an out-of-range value")
	}
}

func TestOptVec2(t *testing.T) {
	var unset OptVec2
	if unset.IsSet() {
		t.Error("zero OptVec2 should be unset")
	}

	origin := Some(Vec2{})
	v, ok := origin.Get()
	if !ok || v != (Vec2{}) {
		t.Errorf("Some(origin).Get() = %v, %v; want origin, true", v, ok)
	}

	if got := None().Or(Vec2{1, 2}); got != (Vec2{1, 2}) {
		t.Errorf("None().Or() = %v, want default", got)
	}
	if got := None().String(); got != "None" {
		t.Errorf("None().String() = %q", got)
	}
}
