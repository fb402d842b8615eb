package cleanup

import (
	"errors"
	"testing"
)

func TestRunAll(t *testing.T) {
	errClose := errors.New("already closed")
	var order []string
	Register("log file", func() error { order = append(order, "log file"); return nil })
	Register("nil", nil)
	Register("gemini client", func() error { order = append(order, "gemini client"); return errClose })
	Register("listener", func() error { order = append(order, "listener"); return nil })

	if got := Pending(); got != 3 {
		t.Fatalf("pending = %d, want 3", got)
	}

	err := RunAll()
	if err == nil || err.Error() != "cleanup failed: close gemini client: already closed" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, errClose) {
		t.Fatalf("hook error must stay reachable through errors.Is")
	}
	want := []string{"listener", "gemini client", "log file"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if Pending() != 0 {
		t.Fatalf("hooks must be cleared after RunAll")
	}
	if err := RunAll(); err != nil {
		t.Fatalf("second RunAll = %v", err)
	}
}
