package google

import (
	"sort"
	"time"

	"scholarhub/internal/core"
)

// dashboardRows lays the dashboard out as blocks separated by blank rows:
// scholar totals, scholars per municipality, accepted per scholarship,
// the municipality by scholarship matrix, then accepted per college.
func dashboardRows(d core.Dashboard, generatedAt time.Time) [][]interface{} {
	blank := []interface{}{}
	rows := [][]interface{}{
		{"Scholarship report", generatedAt.UTC().Format(time.RFC3339)},
		blank,
		{"Scholars", "Non-scholars", "Total"},
		{d.Scholars.Overall.Scholars, d.Scholars.Overall.NonScholars, d.Scholars.Overall.Total()},
		blank,
		{"Municipality", "Scholars", "Non-scholars"},
	}
	for _, m := range d.Scholars.ByMunicipality {
		rows = append(rows, []interface{}{m.Municipality, m.Scholars, m.NonScholars})
	}

	rows = append(rows, blank, []interface{}{"Scholarship", "Accepted"})
	names := make([]string, 0, len(d.Programs.ByScholarship))
	for _, p := range d.Programs.ByScholarship {
		rows = append(rows, []interface{}{p.Scholarship, p.Accepted})
		names = append(names, p.Scholarship)
	}
	rows = append(rows, []interface{}{"Total applications", d.Programs.TotalApplications})

	if len(d.Programs.ByMunicipality) > 0 {
		header := []interface{}{"Municipality"}
		for _, n := range names {
			header = append(header, n)
		}
		rows = append(rows, blank, header)
		for _, m := range d.Programs.ByMunicipality {
			counts := make(map[string]int64, len(m.Programs))
			for _, p := range m.Programs {
				counts[p.Scholarship] = p.Accepted
			}
			row := []interface{}{m.Municipality}
			for _, n := range names {
				row = append(row, counts[n])
			}
			rows = append(rows, row)
		}
	}

	if len(d.Colleges) > 0 {
		rows = append(rows, blank, []interface{}{"Scholarship", "College", "Accepted"})
		for _, n := range collegeKeys(d.Colleges, names) {
			for _, c := range d.Colleges[n] {
				rows = append(rows, []interface{}{n, c.College, c.Accepted})
			}
		}
	}
	return rows
}

// collegeKeys orders the breakdown by scholarship order, extras sorted last.
func collegeKeys(colleges map[string][]core.CollegeCount, order []string) []string {
	keys := make([]string, 0, len(colleges))
	seen := make(map[string]bool, len(colleges))
	for _, n := range order {
		if _, ok := colleges[n]; ok {
			keys = append(keys, n)
			seen[n] = true
		}
	}
	var extra []string
	for n := range colleges {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
