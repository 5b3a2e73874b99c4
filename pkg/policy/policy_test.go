package policy

import (
	"testing"
)

func TestGateAllow(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		input Input
		want  bool
	}{
		{
			name:  "old image matches",
			expr:  "age_days > 365.0",
			input: Input{AgeDays: 4000},
			want:  true,
		},
		{
			name:  "young image filtered",
			expr:  "age_days > 365.0",
			input: Input{AgeDays: 30},
			want:  false,
		},
		{
			name:  "deprecated only",
			expr:  "deprecated",
			input: Input{Deprecated: true},
			want:  true,
		},
		{
			name:  "skip truncated chains",
			expr:  "!truncated",
			input: Input{Truncated: true},
			want:  false,
		},
		{
			name:  "project allowlist",
			expr:  `project in ["p2", "vendor-images"]`,
			input: Input{Project: "p2"},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := gate.Allow(tt.input)
			if err != nil {
				t.Fatalf("allow: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow(%+v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNilGateAllowsEverything(t *testing.T) {
	var gate *Gate
	allow, err := gate.Allow(Input{})
	if err != nil || !allow {
		t.Errorf("nil gate: allow=%v err=%v, want true, nil", allow, err)
	}
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	if _, err := Compile("age_days >"); err == nil {
		t.Error("expected compile error for truncated expression")
	}
	if _, err := Compile("no_such_var == 1"); err == nil {
		t.Error("expected compile error for undeclared variable")
	}
}

func TestAllowRejectsNonBoolResult(t *testing.T) {
	gate, err := Compile("age_days + 1.0")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := gate.Allow(Input{AgeDays: 1}); err == nil {
		t.Error("expected error for non-bool expression result")
	}
}
