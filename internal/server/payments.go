package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) CreateCheckout(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	quoteID, ok := parseIDParam(c, "quoteId")
	if !ok {
		return
	}

	result, err := s.checkoutSvc.CreateCheckout(c.Request.Context(), uid, quoteID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
