package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitedomain "github.com/tvnrapp/relationship-os/internal/invite/domain"
)

func (s *Server) CreateInvite(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invitedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.inviteSvc.Create(c.Request.Context(), uid, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The raw token is only available in this response.
	c.JSON(http.StatusCreated, gin.H{
		"id":        result.Invite.ID.String(),
		"email":     result.Invite.Email,
		"role":      string(result.Invite.Role),
		"expiresAt": result.Invite.ExpiresAt,
		"token":     result.RawToken,
		"acceptUrl": result.AcceptURL,
	})
}

func (s *Server) ValidateInvite(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		AbortWithError(c, newValidationError("token", "required", "token is required"))
		return
	}

	info, err := s.inviteSvc.Validate(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) AcceptInvite(c *gin.Context) {
	var req invitedomain.AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.inviteSvc.Accept(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAuth(result.Token, result.User))
}

func (s *Server) ListPendingInvites(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	invites, err := s.inviteSvc.ListPending(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]gin.H, 0, len(invites))
	for _, inv := range invites {
		out = append(out, gin.H{
			"id":          inv.ID.String(),
			"email":       inv.Email,
			"role":        string(inv.Role),
			"companyName": inv.CompanyName,
			"expiresAt":   inv.ExpiresAt,
			"createdAt":   inv.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"invites": out})
}
