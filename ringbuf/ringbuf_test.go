package ringbuf

import "testing"

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := New(-3); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

func TestAddAndGetValue(t *testing.T) {
	rb, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rb.AddValue(3, 1.5)
	rb.AddValue(3, 2.5)
	if got := rb.GetValue(3); got != 4.0 {
		t.Fatalf("GetValue(3) = %v, want 4.0", got)
	}
}

// TestDestructiveRead covers invariant #5: a second read at the same lag,
// before any new write, must return zero.
func TestDestructiveRead(t *testing.T) {
	rb, _ := New(8)
	rb.AddValue(1, 7.0)
	if got := rb.GetValue(1); got != 7.0 {
		t.Fatalf("first read = %v, want 7.0", got)
	}
	if got := rb.GetValue(1); got != 0.0 {
		t.Fatalf("second read = %v, want 0.0", got)
	}
}

func TestClear(t *testing.T) {
	rb, _ := New(4)
	rb.AddValue(0, 1)
	rb.AddValue(1, 2)
	rb.AddValue(2, 3)
	rb.Clear()
	for lag := 0; lag < 4; lag++ {
		if got := rb.GetValue(lag); got != 0 {
			t.Fatalf("lag %d = %v after Clear, want 0", lag, got)
		}
	}
}

func TestOutOfRangeLagPanics(t *testing.T) {
	rb, _ := New(4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative lag")
		}
	}()
	rb.AddValue(-1, 1.0)
}

func TestStats(t *testing.T) {
	rb, _ := New(4)
	rb.AddValue(0, 1)
	rb.AddValue(0, 1)
	rb.GetValue(0)
	adds, reads := rb.Stats()
	if adds != 2 || reads != 1 {
		t.Fatalf("Stats() = (%d, %d), want (2, 1)", adds, reads)
	}
}
