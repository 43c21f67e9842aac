package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleReconcile(c *gin.Context) {
	promoted, err := s.deps.Reports.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scholars": promoted})
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := s.deps.Reports.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDashboard(d))
}

func (s *Server) handleScholarSummary(c *gin.Context) {
	summary, err := s.deps.Reports.ScholarSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newScholarSummary(summary))
}

func (s *Server) handleProgramSummary(c *gin.Context) {
	summary, err := s.deps.Reports.ProgramSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProgramSummary(summary))
}

func (s *Server) handleCollegeBreakdown(c *gin.Context) {
	name := c.Param("name")
	rows, err := s.deps.Reports.CollegeBreakdown(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scholarship": name, "colleges": newCollegeCounts(rows)})
}

func (s *Server) handleDegreeProgramBreakdown(c *gin.Context) {
	name, college := c.Param("name"), c.Param("college")
	rows, err := s.deps.Reports.DegreeProgramBreakdown(c.Request.Context(), name, college)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scholarship": name, "college": college, "programs": newDegreeProgramCounts(rows)})
}
