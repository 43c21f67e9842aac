package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	want := []string{"CICS", "CTE", "CHS", "CAS", "CABEIHM", "CCJE"}
	got := c.Colleges()
	if len(got) != len(want) {
		t.Fatalf("colleges = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("college %d = %s, want %s", i, got[i], want[i])
		}
	}
	if !c.HasCollegeProgram("CHS", "BSND") {
		t.Fatal("expected CHS to offer BSND")
	}
	if c.HasCollegeProgram("CHS", "BSIT") {
		t.Fatal("CHS does not offer BSIT")
	}
	if c.Programs("NOPE") != nil {
		t.Fatal("unknown college should have no programs")
	}
	if !c.HasMunicipality("Nasugbu") {
		t.Fatal("expected Nasugbu")
	}
	s, ok := c.Scholarship("bcd scholarship")
	if !ok || s.Name != "BCD SCHOLARSHIP" || s.MaxAverage != 2.5 {
		t.Fatalf("unexpected scholarship lookup %+v %v", s, ok)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := []byte(`
colleges:
  - code: CENG
    programs: [BSCE, BSEE]
municipalities: [Tanauan]
scholarships:
  - name: CITY GRANT
    max_average: 3.0
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.Colleges(); len(got) != 1 || got[0] != "CENG" {
		t.Fatalf("colleges = %v", got)
	}
	if !c.HasYearLevel("anything") {
		t.Fatal("empty year level list accepts any value")
	}

	if c, err := Load(""); err != nil || len(c.Scholarships()) != 3 {
		t.Fatalf("empty path should load default, got %v", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no colleges":      "scholarships: [{name: A}]",
		"no scholarships":  "colleges: [{code: A}]",
		"duplicate":        "colleges: [{code: A}, {code: A}]\nscholarships: [{name: X}]",
		"ceiling too high": "colleges: [{code: A}]\nscholarships: [{name: X, max_average: 7}]",
		"not yaml":         "colleges: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
