package diag

import "testing"

func TestDiagnostic_Error(t *testing.T) {
	cases := []struct {
		d    Diagnostic
		want string
	}{
		{New(StageParser, "Expected ';'", 14, 14), "Parse error at position 14: Expected ';'"},
		{New(StageTypeCheck, "Undefined variable: x", 3, 8), "Type error at 3:8: Undefined variable: x"},
		{New(StageCompile, "Undefined variable: x", 0, 0), "Undefined variable: x"},
	}

	for _, tc := range cases {
		if got := tc.d.Error(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestNew_Severity(t *testing.T) {
	d := New(StageParser, "msg", 0, 0)
	if d.Severity != SeverityError {
		t.Errorf("got %q, want error severity", d.Severity)
	}
}
