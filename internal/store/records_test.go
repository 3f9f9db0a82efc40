package store

import (
	"testing"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mbuchner/millwright/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Flange Plate v2", "flange-plate-v2"},
		{"  spaced  out  ", "spaced-out"},
		{"UPPER_case.name", "upper-case-name"},
		{"bracket (rev B)", "bracket-rev-b"},
		{"---", ""},
		{"", ""},
		{"already-fine", "already-fine"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordIDString(t *testing.T) {
	id := surrealmodels.RecordID{Table: "program", ID: "abc123"}
	s, err := RecordIDString(id)
	if err != nil {
		t.Fatalf("RecordIDString: %v", err)
	}
	if s != "abc123" {
		t.Errorf("got %q, want %q", s, "abc123")
	}

	badID := surrealmodels.RecordID{Table: "program", ID: 42}
	if _, err := RecordIDString(badID); err == nil {
		t.Error("expected error for non-string ID")
	}
}

func TestMustRecordIDStringPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-string ID")
		}
	}()
	MustRecordIDString(surrealmodels.RecordID{Table: "program", ID: 42})
}

func TestProgramRecordDecodeSetup(t *testing.T) {
	rec := ProgramRecord{
		SetupJSON: `{
			"stock": {"shape": "CYLINDRICAL", "diameter": 50, "height": 20},
			"operations": [
				{"type": "DRILL", "x": 10, "y": 0, "z_depth": 8, "tool_type": "DRILL", "tool_diameter": 5}
			]
		}`,
	}

	setup, err := rec.DecodeSetup()
	if err != nil {
		t.Fatalf("DecodeSetup: %v", err)
	}
	if setup.Stock.Shape != model.StockCylindrical {
		t.Errorf("shape = %v", setup.Stock.Shape)
	}
	if len(setup.Operations) != 1 || setup.Operations[0].Type != model.OpDrill {
		t.Errorf("operations = %+v", setup.Operations)
	}

	bad := ProgramRecord{SetupJSON: "not json"}
	if _, err := bad.DecodeSetup(); err == nil {
		t.Error("expected error for malformed setup JSON")
	}
}
