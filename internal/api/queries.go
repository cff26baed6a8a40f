package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orderlens/order-extract-backend/internal/api/dto"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/storage"
)

func (s *Server) getOrders(c *gin.Context) {
	filters := storage.OrderFilters{
		RunID:     c.Query("runId"),
		Limit:     intQuery(c, "limit", 50),
		Offset:    intQuery(c, "offset", 0),
		OrderDesc: c.DefaultQuery("order", "desc") == "desc",
	}

	result, err := s.repo.ListOrders(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) getOrder(c *gin.Context) {
	record, err := s.repo.GetOrder(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("order"))
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) getRuns(c *gin.Context) {
	runs, err := s.repo.ListRuns(intQuery(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if runs == nil {
		runs = []storage.ExtractionRun{}
	}

	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.repo.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, stats)
}

// intQuery parses an integer query parameter with a default value.
func intQuery(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return parsed
}
