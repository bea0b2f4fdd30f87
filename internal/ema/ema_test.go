package ema

import "testing"

func TestGetValueBeforeAnyAdd(t *testing.T) {
	t.Parallel()
	e := New(0.5)
	if _, ok := e.GetValue(); ok {
		t.Error("GetValue() ok = true before any AddValue")
	}
}

func TestFirstAddValuePrimesExactly(t *testing.T) {
	t.Parallel()
	e := New(0.5)
	e.AddValue(10)
	v, ok := e.GetValue()
	if !ok || v != 10 {
		t.Errorf("GetValue() = (%v,%v), want (10,true)", v, ok)
	}
}

func TestSmoothing(t *testing.T) {
	t.Parallel()
	e := New(0.5)
	e.AddValue(10)
	e.AddValue(20)
	v, _ := e.GetValue()
	if v != 15 {
		t.Errorf("GetValue() after two adds = %v, want 15", v)
	}
}
