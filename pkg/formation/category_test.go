package formation

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"stunts", Stunts},
		{"pyramid", Pyramid},
		{"block", Block},
		{"wide", Wide},
		{"  Pyramid ", Pyramid},
		{"WIDE", Wide},
		{"1", Block},
		{"2", Block},
		{"3", Wide},
		{"4", Block},
		{"", Block},
		{"diamond", Block},
	}

	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsKnown(t *testing.T) {
	for _, s := range []string{"stunts", "Block", "3"} {
		if !IsKnown(s) {
			t.Errorf("IsKnown(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "diamond", "0"} {
		if IsKnown(s) {
			t.Errorf("IsKnown(%q) = true, want false", s)
		}
	}
}

func TestCategoryString(t *testing.T) {
	for _, c := range Categories() {
		if got := ParseCategory(c.String()); got != c {
			t.Errorf("ParseCategory(%q) = %s, want %s", c.String(), got, c)
		}
		if c.Description() == "" {
			t.Errorf("%s has no description", c)
		}
	}
	if got := Category(-1).String(); got != "block" {
		t.Errorf("out-of-range String() = %q, want block", got)
	}
}

func TestCategoryJSON(t *testing.T) {
	var v struct {
		Formation Category `json:"formation"`
	}
	if err := json.Unmarshal([]byte(`{"formation":"pyramid"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Formation != Pyramid {
		t.Errorf("Formation = %s, want pyramid", v.Formation)
	}

	if err := json.Unmarshal([]byte(`{"formation":"zigzag"}`), &v); err != nil {
		t.Fatalf("Unmarshal unknown: %v", err)
	}
	if v.Formation != Block {
		t.Errorf("unknown Formation = %s, want block", v.Formation)
	}

	data, err := json.Marshal(struct {
		Formation Category `json:"formation"`
	}{Wide})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"formation":"wide"}` {
		t.Errorf("Marshal = %s", data)
	}
}
