package syntax

import "testing"

func TestPos(t *testing.T) {
	tests := []struct {
		name    string
		pos     Pos
		wantStr string
		valid   bool
	}{
		{"origin", MakePos(1, 1), "1:1", true},
		{"later line", MakePos(10, 5), "10:5", true},
		{"zero", Pos{}, "0:0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.wantStr {
				t.Errorf("Pos.String() = %q, want %q", got, tt.wantStr)
			}
			if got := tt.pos.IsValid(); got != tt.valid {
				t.Errorf("Pos.IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestPosAccessors(t *testing.T) {
	p := MakePos(7, 12)
	if p.Line() != 7 || p.Col() != 12 {
		t.Errorf("MakePos(7, 12) = line %d col %d", p.Line(), p.Col())
	}
}
