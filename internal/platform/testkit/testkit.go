// Package testkit holds the assertions and seam helpers shared by package tests
package testkit

import (
	"strings"
	"sync"
	"testing"
)

// MustPanic fails t unless fn panics and returns what it panicked with
func MustPanic(t *testing.T, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
	return nil
}

// MustContain fails t unless out contains want, out is printed on failure
func MustContain(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("want %q in:\n%s", want, out)
	}
}

// Swap replaces *target for the rest of the test
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

var serial sync.Mutex

// Serial keeps tests that Swap package state from overlapping
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
