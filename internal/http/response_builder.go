package http

import (
	"time"

	"scholarhub/internal/core"
)

type profileResponse struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	MiddleInitial string `json:"middleInitial"`
	Suffix        string `json:"suffix"`
	FullName      string `json:"fullName"`
	CivilStatus   string `json:"civilStatus"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"dateOfBirth"`
	Age           int    `json:"age"`
	StudentID     string `json:"studentId"`
	College       string `json:"college"`
	YearLevel     string `json:"yearLevel"`
	Program       string `json:"program"`
	Municipality  string `json:"municipality"`
	PhoneNumber   string `json:"phoneNumber"`
	HasPhoto      bool   `json:"hasPhoto"`
	Complete      bool   `json:"complete"`
}

type accountResponse struct {
	ID                int64           `json:"id"`
	AccountType       string          `json:"accountType"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	ScholarshipStatus string          `json:"scholarshipStatus"`
	Profile           profileResponse `json:"profile"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func newAccountResponse(a core.Account) accountResponse {
	p := a.Profile
	return accountResponse{
		ID:                a.ID,
		AccountType:       a.Type.String(),
		Username:          a.Username,
		Email:             a.Email,
		ScholarshipStatus: a.ScholarStatus.String(),
		Profile: profileResponse{
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			MiddleInitial: p.MiddleInitial,
			Suffix:        p.Suffix,
			FullName:      p.FullName(),
			CivilStatus:   p.CivilStatus,
			Gender:        p.Gender,
			DateOfBirth:   p.DateOfBirth,
			Age:           p.Age,
			StudentID:     p.StudentID,
			College:       p.College,
			YearLevel:     p.YearLevel,
			Program:       p.Program,
			Municipality:  p.Municipality,
			PhoneNumber:   p.PhoneNumber,
			HasPhoto:      len(p.Photo) > 0,
			Complete:      p.Complete(a.Type),
		},
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type loginResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"tokenType"`
	ExpiresIn int             `json:"expiresIn"`
	Account   accountResponse `json:"account"`
}

type applicationResponse struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Scholarship  string    `json:"scholarship"`
	Status       string    `json:"status"`
	Terminal     bool      `json:"terminal"`
	Average      float64   `json:"average"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	MiddleName   string    `json:"middleName"`
	Suffix       string    `json:"suffix"`
	Email        string    `json:"email"`
	Municipality string    `json:"municipality"`
	College      string    `json:"college"`
	Program      string    `json:"program"`
	YearLevel    string    `json:"yearLevel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newApplicationResponse(a core.Application) applicationResponse {
	return applicationResponse{
		ID:           a.ID,
		Username:     a.Username,
		Scholarship:  a.Scholarship,
		Status:       string(a.Status),
		Terminal:     a.Status.IsTerminal(),
		Average:      a.Average,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		MiddleName:   a.MiddleName,
		Suffix:       a.Suffix,
		Email:        a.Email,
		Municipality: a.Municipality,
		College:      a.College,
		Program:      a.Program,
		YearLevel:    a.YearLevel,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func newApplicationList(apps []core.Application) []applicationResponse {
	out := make([]applicationResponse, len(apps))
	for i, a := range apps {
		out[i] = newApplicationResponse(a)
	}
	return out
}

type transitionResponse struct {
	Application       applicationResponse `json:"application"`
	From              string              `json:"from"`
	To                string              `json:"to"`
	ScholarshipStatus string              `json:"scholarshipStatus"`
}

func newTransitionResponse(t core.Transition) transitionResponse {
	return transitionResponse{
		Application:       newApplicationResponse(t.Application),
		From:              string(t.From),
		To:                string(t.To),
		ScholarshipStatus: string(t.ScholarStatus),
	}
}

type scholarCountsResponse struct {
	Municipality string `json:"municipality,omitempty"`
	Scholars     int64  `json:"scholars"`
	NonScholars  int64  `json:"nonScholars"`
	Total        int64  `json:"total"`
}

func newScholarCounts(municipality string, c core.ScholarCounts) scholarCountsResponse {
	return scholarCountsResponse{
		Municipality: municipality,
		Scholars:     c.Scholars,
		NonScholars:  c.NonScholars,
		Total:        c.Total(),
	}
}

type scholarSummaryResponse struct {
	Overall        scholarCountsResponse   `json:"overall"`
	ByMunicipality []scholarCountsResponse `json:"byMunicipality"`
}

func newScholarSummary(s core.ScholarSummary) scholarSummaryResponse {
	rows := make([]scholarCountsResponse, len(s.ByMunicipality))
	for i, m := range s.ByMunicipality {
		rows[i] = newScholarCounts(m.Municipality, m.ScholarCounts)
	}
	return scholarSummaryResponse{
		Overall:        newScholarCounts("", s.Overall),
		ByMunicipality: rows,
	}
}

type countResponse struct {
	Name     string `json:"name"`
	Accepted int64  `json:"accepted"`
}

func newProgramCounts(rows []core.ProgramCount) []countResponse {
	out := make([]countResponse, len(rows))
	for i, r := range rows {
		out[i] = countResponse{Name: r.Scholarship, Accepted: r.Accepted}
	}
	return out
}

func newCollegeCounts(rows []core.CollegeCount) []countResponse {
	out := make([]countResponse, len(rows))
	for i, r := range rows {
		out[i] = countResponse{Name: r.College, Accepted: r.Accepted}
	}
	return out
}

func newDegreeProgramCounts(rows []core.DegreeProgramCount) []countResponse {
	out := make([]countResponse, len(rows))
	for i, r := range rows {
		out[i] = countResponse{Name: r.Program, Accepted: r.Accepted}
	}
	return out
}

type municipalityProgramsResponse struct {
	Municipality string          `json:"municipality"`
	Programs     []countResponse `json:"programs"`
}

type programSummaryResponse struct {
	TotalApplications int64                          `json:"totalApplications"`
	ByScholarship     []countResponse                `json:"byScholarship"`
	ByMunicipality    []municipalityProgramsResponse `json:"byMunicipality"`
}

func newProgramSummary(p core.ProgramSummary) programSummaryResponse {
	rows := make([]municipalityProgramsResponse, len(p.ByMunicipality))
	for i, m := range p.ByMunicipality {
		rows[i] = municipalityProgramsResponse{
			Municipality: m.Municipality,
			Programs:     newProgramCounts(m.Programs),
		}
	}
	return programSummaryResponse{
		TotalApplications: p.TotalApplications,
		ByScholarship:     newProgramCounts(p.ByScholarship),
		ByMunicipality:    rows,
	}
}

type dashboardResponse struct {
	Scholars scholarSummaryResponse     `json:"scholars"`
	Programs programSummaryResponse     `json:"programs"`
	Colleges map[string][]countResponse `json:"colleges"`
}

func newDashboard(d core.Dashboard) dashboardResponse {
	colleges := make(map[string][]countResponse, len(d.Colleges))
	for name, rows := range d.Colleges {
		colleges[name] = newCollegeCounts(rows)
	}
	return dashboardResponse{
		Scholars: newScholarSummary(d.Scholars),
		Programs: newProgramSummary(d.Programs),
		Colleges: colleges,
	}
}
