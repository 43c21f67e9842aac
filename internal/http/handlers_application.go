package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/core"
	"scholarhub/internal/log"
)

func (s *Server) handleSubmitApplication(c *gin.Context) {
	var req applicationRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if req.Average == nil {
		writeError(c, core.ErrInvalidAverage)
		return
	}

	app, err := s.deps.Applications.Submit(c.Request.Context(), currentUser(c), req.Scholarship, *req.Average)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newApplicationResponse(app))
}

func (s *Server) handleMyApplications(c *gin.Context) {
	apps, err := s.deps.Applications.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": newApplicationList(apps)})
}

func (s *Server) handleListApplications(c *gin.Context) {
	status, err := parseStatusFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	apps, err := s.deps.Applications.ListAll(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": newApplicationList(apps)})
}

func (s *Server) handleTransition(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	next, err := core.ParseApplicationStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	tr, err := s.deps.Applications.Transition(ctx, id, next)
	if err != nil {
		writeError(c, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Application status changed",
		log.NewFields().
			WithOperation(log.OpTransition).
			WithTransition(tr.Application.ID, tr.Application.Scholarship, string(tr.From), string(tr.To), string(tr.ScholarStatus)).
			ToSlice()...)
	c.JSON(http.StatusOK, newTransitionResponse(tr))
}
