package constraint

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want Constraint
	}{
		{"*", Constraint{nil}},
		{"", Constraint{nil}},
		{"^3.8", Constraint{{{">=", "3.8"}, {"<", "4.0"}}}},
		{"^1.2.3", Constraint{{{">=", "1.2.3"}, {"<", "2.0.0"}}}},
		{"^0.2.3", Constraint{{{">=", "0.2.3"}, {"<", "0.3.0"}}}},
		{"^0.0.3", Constraint{{{">=", "0.0.3"}, {"<", "0.0.4"}}}},
		{"^0.0", Constraint{{{">=", "0.0"}, {"<", "0.1"}}}},
		{"^0", Constraint{{{">=", "0"}, {"<", "1"}}}},
		{"~1.2.3", Constraint{{{">=", "1.2.3"}, {"<", "1.3.0"}}}},
		{"~1.2", Constraint{{{">=", "1.2"}, {"<", "1.3"}}}},
		{"~1", Constraint{{{">=", "1"}, {"<", "2"}}}},
		{"~=1.4", Constraint{{{"~=", "1.4"}}}},
		{"1.2.3", Constraint{{{"==", "1.2.3"}}}},
		{"3.8.*", Constraint{{{"==", "3.8.*"}}}},
		{">=1.0,<2.0", Constraint{{{">=", "1.0"}, {"<", "2.0"}}}},
		{">= 1.0 < 2.0", Constraint{{{">=", "1.0"}, {"<", "2.0"}}}},
		{">=1.0, !=1.5", Constraint{{{">=", "1.0"}, {"!=", "1.5"}}}},
		{"^2.7 || ^3.5", Constraint{
			{{">=", "2.7"}, {"<", "3.0"}},
			{{">=", "3.5"}, {"<", "4.0"}},
		}},
		{"1.0rc1", Constraint{{{"==", "1.0rc1"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.expr, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.expr, diff)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, expr := range []string{"^abc", ">=1.0,<", ">=3.*", "latest"} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", expr)
			}
			if !errors.Is(err, errors.ErrCodeInvalidConstraint) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConstraint)
			}
		})
	}
}

func TestFormatPython(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"^3.8", ">=3.8,<4.0"},
		{">=3.9,<3.13", ">=3.9,<3.13"},
		{"~3.10", ">=3.10,<3.11"},
		{"3.8.1", "==3.8.1"},
		{"3.8", ">=3.8,<3.9"},
		{"3", ">=3.0,<4.0"},
		{"*", ""},
		{"^2.7 || ^3.5", ">=2.7, !=3.0.*, !=3.1.*, !=3.2.*, !=3.3.*, !=3.4.*"},
		{"~3.8 || ~3.10", ">=3.8, !=3.9.*, !=3.11.*, !=3.12.*, !=3.13.*, !=3.14.*"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := FormatPython(tt.expr)
			if err != nil {
				t.Fatalf("FormatPython(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("FormatPython(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestFormatPythonNoInterpreter(t *testing.T) {
	_, err := FormatPython("^1.0 || ^5.0")
	if !errors.Is(err, errors.ErrCodeInvalidConstraint) {
		t.Fatalf("FormatPython error = %v, want %v", err, errors.ErrCodeInvalidConstraint)
	}
}

func TestSpecifier(t *testing.T) {
	tests := []struct {
		expr        string
		want        string
		wantWidened bool
	}{
		{"^2.31", ">=2.31,<3.0", false},
		{"*", "", false},
		{"==1.4.2", "==1.4.2", false},
		{"1.4.2", "==1.4.2", false},
		{"~=0.9", "~=0.9", false},
		{"^1.0 || ^2.0", ">=1.0,<3.0", true},
		{"<1.0 || >=2.0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, widened, err := Specifier(tt.expr)
			if err != nil {
				t.Fatalf("Specifier(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Specifier(%q) = %q, want %q", tt.expr, got, tt.want)
			}
			if widened != tt.wantWidened {
				t.Errorf("Specifier(%q) widened = %v, want %v", tt.expr, widened, tt.wantWidened)
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"^3.8", `python_version >= "3.8" and python_version < "4.0"`},
		{">=3.10", `python_version >= "3.10"`},
		{"*", ""},
		{"<3.8 || >=3.11", `python_version < "3.8" or python_version >= "3.11"`},
		{"~2.7 || ^3.6", `(python_version >= "2.7" and python_version < "2.8") or (python_version >= "3.6" and python_version < "4.0")`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Markers("python_version", tt.expr)
			if err != nil {
				t.Fatalf("Markers(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Markers(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}
