package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
)

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	CompanyName *string `json:"companyName,omitempty"`
	NeedsEmail  bool    `json:"needsEmail,omitempty"`
}

func presentUser(user *identitydomain.User) userPayload {
	return userPayload{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Role:        string(user.Role),
		CompanyName: user.CompanyName,
		NeedsEmail:  user.NeedsEmail(),
	}
}

func presentAuth(token string, user *identitydomain.User) authResponse {
	return authResponse{Token: token, User: presentUser(user)}
}

func (s *Server) Register(c *gin.Context) {
	var req identitydomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.identitySvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presentAuth(result.Token, result.User))
}

func (s *Server) Login(c *gin.Context) {
	var req identitydomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.identitySvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAuth(result.Token, result.User))
}

func (s *Server) SSOExchange(c *gin.Context) {
	var req identitydomain.SSOExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.identitySvc.SSOExchange(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAuth(result.Token, result.User))
}

func (s *Server) Me(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.identitySvc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentUser(user))
}
