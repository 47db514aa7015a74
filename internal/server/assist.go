package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) QuoteSummary(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := s.assistSvc.QuoteSummary(c.Request.Context(), caller, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) SubscriptionInsights(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	result, err := s.assistSvc.SubscriptionInsights(c.Request.Context(), caller)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
