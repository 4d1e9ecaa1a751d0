package domain

import "testing"

func TestNormalizeUrgency(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", UrgencyNormal, true},
		{"MEDIUM", UrgencyNormal, true},
		{"LOW", UrgencyLow, true},
		{"NORMAL", UrgencyNormal, true},
		{"HIGH", UrgencyHigh, true},
		{"CRITICAL", UrgencyCritical, true},
		{"ASAP", "", false},
		{"medium", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeUrgency(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeUrgency(%q) = %q/%v, want %q/%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSourceLocation(t *testing.T) {
	request := &InventoryRequest{}
	if request.SourceLocation() != nil {
		t.Error("source location set on a request never approved")
	}
}
