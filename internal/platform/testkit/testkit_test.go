package testkit

import (
	"sync/atomic"
	"testing"
)

func TestMustPanicReturnsValue(t *testing.T) {
	if got := MustPanic(t, func() { panic("root path is required") }); got != "root path is required" {
		t.Fatalf("recovered = %v", got)
	}
}

func TestMustContain(t *testing.T) {
	MustContain(t, `{"level":"warn","message":"slow request"}`, "slow request")
}

var clock = func() string { return "real" }

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &clock, func() string { return "fake" })
		if clock() != "fake" {
			t.Fatal("not swapped")
		}
	})
	if clock() != "real" {
		t.Fatal("not restored")
	}
}

func TestSerialExcludes(t *testing.T) {
	var inside, overlaps atomic.Int32
	t.Run("group", func(t *testing.T) {
		for range 4 {
			t.Run("worker", func(t *testing.T) {
				t.Parallel()
				Serial(t)
				if inside.Add(1) > 1 {
					overlaps.Add(1)
				}
				inside.Add(-1)
			})
		}
	})
	if overlaps.Load() != 0 {
		t.Fatalf("%d overlapping runs", overlaps.Load())
	}
}
