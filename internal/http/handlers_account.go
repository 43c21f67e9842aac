package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/core"
	"scholarhub/internal/log"
)

// handleSignup creates a STUDENT account. Admin accounts are provisioned
// with the admin CLI only.
func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	accountType := core.Student
	if strings.TrimSpace(req.AccountType) != "" {
		t, err := core.ParseAccountType(req.AccountType)
		if err != nil {
			writeError(c, err)
			return
		}
		if t != core.Student {
			writeError(c, core.ErrPermissionDenied)
			return
		}
	}

	ctx := c.Request.Context()
	acct, err := s.deps.Accounts.Signup(ctx, core.Signup{
		Type:     accountType,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Account created",
		log.NewFields().WithOperation(log.OpSignup).WithUser(acct.Username, acct.Type.String()).ToSlice()...)
	c.JSON(http.StatusCreated, newAccountResponse(acct))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	login := req.identifier()
	if login == "" || req.Password == "" {
		writeError(c, core.ErrInvalidCredentials)
		return
	}

	acct, err := s.deps.Accounts.Login(ctx, login, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			log.FromContext(ctx).WarnContext(ctx, "Login failed",
				log.NewFields().WithOperation(log.OpLogin).WithError(err, log.ErrorTypeAuth).ToSlice()...)
		}
		writeError(c, err)
		return
	}

	token, expiresIn, err := s.deps.Tokens.Issue(acct)
	if err != nil {
		writeError(c, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Login succeeded",
		log.NewFields().WithOperation(log.OpLogin).WithUser(acct.Username, acct.Type.String()).ToSlice()...)
	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
		Account:   newAccountResponse(acct),
	})
}

func (s *Server) handleMe(c *gin.Context) {
	acct, err := s.deps.Accounts.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(acct))
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	profile, err := req.toProfile()
	if err != nil {
		writeError(c, err)
		return
	}

	acct, err := s.deps.Accounts.UpdateProfile(c.Request.Context(), currentUser(c), profile)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(acct))
}

func (s *Server) handlePhoto(c *gin.Context) {
	acct, err := s.deps.Accounts.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(acct.Profile.Photo) == 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no profile photo", Code: "photo_not_found"})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(acct.Profile.Photo), acct.Profile.Photo)
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.deps.Accounts.ChangePassword(ctx, currentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Password changed", log.FieldOperation, log.OpPassword)
	c.Status(http.StatusNoContent)
}
