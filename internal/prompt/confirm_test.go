package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	cases := []struct {
		name        string
		input       string
		interactive bool
		force       bool
		want        bool
		wantErr     bool
	}{
		{"Force", "n\n", false, true, true, false},
		{"NonInteractive", "y\n", false, false, false, true},
		{"Yes", "y\n", true, false, true, false},
		{"YesWord", " YES \n", true, false, true, false},
		{"No", "n\n", true, false, false, false},
		{"EOFWithoutNewline", "y", true, false, true, false},
		{"Empty", "", true, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			c := Confirmer{
				In:            strings.NewReader(tc.input),
				Out:           out,
				IsInteractive: func() bool { return tc.interactive },
			}
			ok, err := c.Confirm("Delete the Gemini API key?", tc.force)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if ok != tc.want {
				t.Fatalf("ok = %v, want %v", ok, tc.want)
			}
			if tc.interactive && !tc.force && !strings.Contains(out.String(), "(y/n)") {
				t.Fatalf("question not printed: %q", out.String())
			}
		})
	}
}
