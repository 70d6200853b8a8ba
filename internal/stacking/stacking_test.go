package stacking

import (
	"reflect"
	"testing"
)

func TestPaintOrder(t *testing.T) {
	if got, want := PaintOrder(4, None), []int{0, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("no raise: %v, want %v", got, want)
	}
	if got, want := PaintOrder(4, 1), []int{0, 2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("raise 1: %v, want %v", got, want)
	}
	if got, want := PaintOrder(3, 7), []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("out of range raise: %v, want %v", got, want)
	}
	if got := PaintOrder(0, 0); len(got) != 0 {
		t.Errorf("empty board: %v", got)
	}
}

func TestOnlyCurrentRaiseIsLast(t *testing.T) {
	strategies := map[string]Strategy{
		"sorted": NewSorted(8),
		"layer":  NewLayer(8),
	}
	want := []int{0, 1, 3, 4, 5, 6, 7, 2}
	for name, s := range strategies {
		s.SetRaised(5)
		s.SetRaised(2)
		if got := s.Order(); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: raise 5 then 2 = %v, want %v", name, got, want)
		}
		s.SetRaised(None)
		if got := s.Order(); !reflect.DeepEqual(got, PaintOrder(8, None)) {
			t.Errorf("%s: after lower %v, want natural order", name, got)
		}
	}
}

func TestStrategiesAgree(t *testing.T) {
	sorted, layer := NewSorted(6), NewLayer(6)
	seq := []int{3, 3, 0, 5, None, 4, 1, None, None, 2, 6, 1, -3, 2, 99}
	for step, r := range seq {
		sorted.SetRaised(r)
		layer.SetRaised(r)
		if a, b := sorted.Order(), layer.Order(); !reflect.DeepEqual(a, b) {
			t.Fatalf("step %d raise %d: sorted %v, layer %v", step, r, a, b)
		}
		if sorted.Raised() != layer.Raised() {
			t.Fatalf("step %d: raised %d vs %d", step, sorted.Raised(), layer.Raised())
		}
	}
}

func TestLayer_LowerReinsertsByIndex(t *testing.T) {
	l := NewLayer(5)
	l.Raise(0)
	if got, want := l.Order(), []int{1, 2, 3, 4, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("raise 0: %v, want %v", got, want)
	}
	l.Lower()
	if got, want := l.Order(), []int{0, 1, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("lower: %v, want %v", got, want)
	}
	l.Raise(4)
	l.Lower()
	if got, want := l.Order(), []int{0, 1, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("raise and lower last: %v, want %v", got, want)
	}
	l.Lower()
	if l.Raised() != None {
		t.Errorf("Raised %d, want None", l.Raised())
	}
}

func TestLayer_IgnoresOutOfRange(t *testing.T) {
	l := NewLayer(3)
	l.Raise(3)
	l.Raise(-2)
	if l.Raised() != None {
		t.Errorf("Raised %d, want None", l.Raised())
	}
	order := l.Order()
	order[0] = 99
	if l.Order()[0] != 0 {
		t.Error("Order should return a copy")
	}
}
