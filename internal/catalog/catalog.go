// Package catalog holds the institution's reference lists: colleges and their
// degree programs, municipalities, year levels and the scholarship programs
// students can apply to. Reports use these lists as stable chart axes.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type College struct {
	Code     string   `yaml:"code" json:"code"`
	Programs []string `yaml:"programs" json:"programs"`
}

type Scholarship struct {
	Name       string  `yaml:"name" json:"name"`
	MaxAverage float64 `yaml:"max_average" json:"maxAverage"`
}

type Catalog struct {
	CollegeList      []College     `yaml:"colleges" json:"colleges"`
	MunicipalityList []string      `yaml:"municipalities" json:"municipalities"`
	YearLevelList    []string      `yaml:"year_levels" json:"yearLevels"`
	ScholarshipList  []Scholarship `yaml:"scholarships" json:"scholarships"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if len(c.CollegeList) == 0 {
		return errors.New("catalog has no colleges")
	}
	if len(c.ScholarshipList) == 0 {
		return errors.New("catalog has no scholarships")
	}
	seen := map[string]bool{}
	for _, col := range c.CollegeList {
		if strings.TrimSpace(col.Code) == "" {
			return errors.New("college with empty code")
		}
		if seen[col.Code] {
			return fmt.Errorf("duplicate college %q", col.Code)
		}
		seen[col.Code] = true
	}
	for _, s := range c.ScholarshipList {
		if strings.TrimSpace(s.Name) == "" {
			return errors.New("scholarship with empty name")
		}
		if s.MaxAverage < 0 || s.MaxAverage > 5 {
			return fmt.Errorf("scholarship %q: max_average out of range", s.Name)
		}
	}
	return nil
}

// Colleges returns college codes in catalog order.
func (c *Catalog) Colleges() []string {
	out := make([]string, len(c.CollegeList))
	for i, col := range c.CollegeList {
		out[i] = col.Code
	}
	return out
}

// Programs returns the degree programs of college, or nil when unknown.
func (c *Catalog) Programs(college string) []string {
	for _, col := range c.CollegeList {
		if col.Code == college {
			return append([]string(nil), col.Programs...)
		}
	}
	return nil
}

func (c *Catalog) HasCollegeProgram(college, program string) bool {
	for _, p := range c.Programs(college) {
		if p == program {
			return true
		}
	}
	return false
}

func (c *Catalog) Municipalities() []string {
	return append([]string(nil), c.MunicipalityList...)
}

func (c *Catalog) HasMunicipality(name string) bool {
	return contains(c.MunicipalityList, name)
}

func (c *Catalog) HasYearLevel(level string) bool {
	return len(c.YearLevelList) == 0 || contains(c.YearLevelList, level)
}

// Scholarships returns scholarship names in catalog order.
func (c *Catalog) Scholarships() []string {
	out := make([]string, len(c.ScholarshipList))
	for i, s := range c.ScholarshipList {
		out[i] = s.Name
	}
	return out
}

// Scholarship looks a program up by name, ignoring case.
func (c *Catalog) Scholarship(name string) (Scholarship, bool) {
	for _, s := range c.ScholarshipList {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Scholarship{}, false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
