package core

// ScholarCounts splits the STUDENT population by reconciled status.
type ScholarCounts struct {
	Scholars    int64
	NonScholars int64
}

func (c ScholarCounts) Total() int64 {
	return c.Scholars + c.NonScholars
}

// MunicipalityScholarCounts is ScholarCounts for one municipality.
type MunicipalityScholarCounts struct {
	Municipality string
	ScholarCounts
}

// ProgramCount is the number of accepted applications for a scholarship program.
type ProgramCount struct {
	Scholarship string
	Accepted    int64
}

// CollegeCount is the number of accepted applications from a college.
type CollegeCount struct {
	College  string
	Accepted int64
}

// DegreeProgramCount is the number of accepted applications from a degree program.
type DegreeProgramCount struct {
	Program  string
	Accepted int64
}

// MunicipalityProgramCounts breaks one municipality down by scholarship program.
type MunicipalityProgramCounts struct {
	Municipality string
	Programs     []ProgramCount
}

// ScholarSummary holds overall and per-municipality scholar counts.
type ScholarSummary struct {
	Overall        ScholarCounts
	ByMunicipality []MunicipalityScholarCounts
}

// ProgramSummary holds accepted counts per scholarship program.
type ProgramSummary struct {
	TotalApplications int64
	ByScholarship     []ProgramCount
	ByMunicipality    []MunicipalityProgramCounts
}

// Dashboard bundles every admin report, computed after one reconciliation.
type Dashboard struct {
	Scholars ScholarSummary
	Programs ProgramSummary
	Colleges map[string][]CollegeCount // keyed by scholarship program
}

// StatusMismatch is a student whose stored status disagrees with their applications.
type StatusMismatch struct {
	Username string
	Stored   ScholarStatus
	Expected ScholarStatus
}

// UnspecifiedMunicipality labels students whose profile has no municipality yet.
const UnspecifiedMunicipality = "Unspecified"

// MunicipalityLabel returns name, or UnspecifiedMunicipality when it is blank.
func MunicipalityLabel(name string) string {
	if name == "" {
		return UnspecifiedMunicipality
	}
	return name
}

// ZeroFillScholarCounts returns one entry per name in known, in order, followed
// by any extra municipality present in rows. Missing names get zero counts and
// blank names are reported under UnspecifiedMunicipality.
func ZeroFillScholarCounts(known []string, rows []MunicipalityScholarCounts) []MunicipalityScholarCounts {
	byName := make(map[string]ScholarCounts, len(rows))
	var extras []string
	for _, r := range rows {
		name := MunicipalityLabel(r.Municipality)
		c, ok := byName[name]
		if !ok {
			extras = append(extras, name)
		}
		c.Scholars += r.Scholars
		c.NonScholars += r.NonScholars
		byName[name] = c
	}
	out := make([]MunicipalityScholarCounts, 0, len(known)+len(extras))
	seen := make(map[string]struct{}, len(known))
	for _, name := range known {
		seen[name] = struct{}{}
		out = append(out, MunicipalityScholarCounts{Municipality: name, ScholarCounts: byName[name]})
	}
	for _, name := range extras {
		if _, ok := seen[name]; ok {
			continue
		}
		out = append(out, MunicipalityScholarCounts{Municipality: name, ScholarCounts: byName[name]})
	}
	return out
}

// ZeroFillPrograms returns one entry per known scholarship program, then extras.
func ZeroFillPrograms(known []string, rows []ProgramCount) []ProgramCount {
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Scholarship] += r.Accepted
	}
	out := make([]ProgramCount, 0, len(known)+len(rows))
	seen := make(map[string]struct{}, len(known))
	for _, name := range known {
		seen[name] = struct{}{}
		out = append(out, ProgramCount{Scholarship: name, Accepted: counts[name]})
	}
	for _, r := range rows {
		if _, ok := seen[r.Scholarship]; ok {
			continue
		}
		seen[r.Scholarship] = struct{}{}
		out = append(out, ProgramCount{Scholarship: r.Scholarship, Accepted: counts[r.Scholarship]})
	}
	return out
}

// ZeroFillColleges keeps exactly the known colleges; rows for unknown colleges are dropped.
func ZeroFillColleges(known []string, rows []CollegeCount) []CollegeCount {
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.College] = r.Accepted
	}
	out := make([]CollegeCount, len(known))
	for i, name := range known {
		out[i] = CollegeCount{College: name, Accepted: counts[name]}
	}
	return out
}

// ZeroFillDegreePrograms keeps exactly the known programs of a college.
func ZeroFillDegreePrograms(known []string, rows []DegreeProgramCount) []DegreeProgramCount {
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Program] = r.Accepted
	}
	out := make([]DegreeProgramCount, len(known))
	for i, name := range known {
		out[i] = DegreeProgramCount{Program: name, Accepted: counts[name]}
	}
	return out
}
