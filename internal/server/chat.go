package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tvnrapp/relationship-os/pkg/db/pagination"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) ListChatMessages(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	other, ok := parseIDParam(c, "otherUserId")
	if !ok {
		return
	}

	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = n
		}
	}

	page, err := s.chatSvc.List(c.Request.Context(), caller, other, pagination.Pagination{
		PageToken: c.Query("pageToken"),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": page.Messages,
		"pageInfo": page.PageInfo,
	})
}

func (s *Server) SendChatMessage(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	other, ok := parseIDParam(c, "otherUserId")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	msg, err := s.chatSvc.Send(c.Request.Context(), caller, other, req.Content)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
