package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/core"
)

const maxPhotoBytes = 2 << 20

type signupRequest struct {
	AccountType string `json:"accountType"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// loginRequest accepts the login under "login", "username" or "email".
type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) identifier() string {
	for _, v := range []string{r.Login, r.Username, r.Email} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// profileRequest carries the editable profile. Photo is base64 in JSON;
// omitting it keeps the stored photo.
type profileRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	MiddleInitial string `json:"middleInitial"`
	Suffix        string `json:"suffix"`
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
	Photo         []byte `json:"photo"`
}

func (r profileRequest) toProfile() (core.Profile, error) {
	if len(r.Photo) > maxPhotoBytes {
		return core.Profile{}, errPhotoTooLarge
	}
	return core.Profile{
		FirstName:     strings.TrimSpace(r.FirstName),
		LastName:      strings.TrimSpace(r.LastName),
		MiddleInitial: strings.TrimSpace(r.MiddleInitial),
		Suffix:        strings.TrimSpace(r.Suffix),
		CivilStatus:   strings.TrimSpace(r.CivilStatus),
		Gender:        strings.TrimSpace(r.Gender),
		DateOfBirth:   strings.TrimSpace(r.DateOfBirth),
		Age:           r.Age,
		StudentID:     strings.TrimSpace(r.StudentID),
		College:       strings.TrimSpace(r.College),
		YearLevel:     strings.TrimSpace(r.YearLevel),
		Program:       strings.TrimSpace(r.Program),
		Municipality:  strings.TrimSpace(r.Municipality),
		PhoneNumber:   strings.TrimSpace(r.PhoneNumber),
		Photo:         r.Photo,
	}, nil
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type applicationRequest struct {
	Scholarship string   `json:"scholarship"`
	Average     *float64 `json:"average"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// bindJSON decodes the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, c.Param(name))
	}
	return id, nil
}

// parseStatusFilter reads the optional ?status= filter; empty means all.
func parseStatusFilter(c *gin.Context) (core.ApplicationStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	return core.ParseApplicationStatus(raw)
}
