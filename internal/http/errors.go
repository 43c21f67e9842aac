package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/auth"
	"scholarhub/internal/core"
	"scholarhub/internal/log"
)

var (
	errPhotoTooLarge = errors.New("profile photo exceeds 2 MiB")
	errBadRequest    = errors.New("malformed request")
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{errBadRequest, http.StatusBadRequest, "bad_request"},

	{core.ErrUsernameExists, http.StatusConflict, "username_exists"},
	{core.ErrEmailExists, http.StatusConflict, "email_exists"},
	{core.ErrStudentIDExists, http.StatusConflict, "student_id_exists"},
	{core.ErrDuplicateApplication, http.StatusConflict, "duplicate_application"},
	{core.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},

	{core.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{core.ErrApplicationNotFound, http.StatusNotFound, "application_not_found"},

	{core.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{auth.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{auth.ErrInvalidFormat, http.StatusUnauthorized, "invalid_token"},

	{core.ErrNotStudent, http.StatusForbidden, "not_student"},
	{core.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},

	{core.ErrProfileIncomplete, http.StatusUnprocessableEntity, "profile_incomplete"},
	{core.ErrEmptyUsername, http.StatusUnprocessableEntity, "invalid_username"},
	{core.ErrUsernameTooLong, http.StatusUnprocessableEntity, "invalid_username"},
	{core.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_email"},
	{core.ErrEmailDomain, http.StatusUnprocessableEntity, "invalid_email_domain"},
	{core.ErrPasswordTooShort, http.StatusUnprocessableEntity, "password_too_short"},
	{auth.ErrPasswordTooLong, http.StatusUnprocessableEntity, "password_too_long"},
	{core.ErrInvalidAccountType, http.StatusUnprocessableEntity, "invalid_account_type"},
	{core.ErrInvalidAge, http.StatusUnprocessableEntity, "invalid_age"},
	{core.ErrInvalidBirthDate, http.StatusUnprocessableEntity, "invalid_birth_date"},
	{core.ErrUnknownMunicipality, http.StatusUnprocessableEntity, "unknown_municipality"},
	{core.ErrUnknownCollege, http.StatusUnprocessableEntity, "unknown_college"},
	{core.ErrUnknownProgram, http.StatusUnprocessableEntity, "unknown_program"},
	{core.ErrUnknownYearLevel, http.StatusUnprocessableEntity, "unknown_year_level"},
	{core.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_status"},
	{core.ErrEmptyScholarship, http.StatusUnprocessableEntity, "scholarship_required"},
	{core.ErrUnknownScholarship, http.StatusUnprocessableEntity, "unknown_scholarship"},
	{core.ErrInvalidAverage, http.StatusUnprocessableEntity, "invalid_average"},
	{core.ErrAverageAboveCeiling, http.StatusUnprocessableEntity, "average_above_ceiling"},
	{errPhotoTooLarge, http.StatusUnprocessableEntity, "photo_too_large"},
}

// classifyError maps err to an HTTP status and a stable machine-readable code.
func classifyError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError aborts the request with the JSON error body for err. Internal
// errors are logged and replaced by a generic message.
func writeError(c *gin.Context, err error) {
	status, code := classifyError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		log.FromContext(ctx).ErrorContext(ctx, "Request failed",
			log.NewFields().WithError(err, log.ErrorTypeInternal).ToSlice()...)
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}
