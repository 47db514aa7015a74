package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) SellerDashboard(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	overview, err := s.dashboardSvc.SellerOverview(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) ListSellerQuotes(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	quotes, err := s.quoteSvc.ListBySeller(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (s *Server) ListSellerSubscriptions(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	subs, err := s.subscriptionSvc.ListBySeller(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (s *Server) ListSellerCustomers(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	customers, err := s.dashboardSvc.SellerCustomers(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]userPayload, 0, len(customers))
	for i := range customers {
		out = append(out, presentUser(&customers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"customers": out})
}

func (s *Server) GetSellerCustomer(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := s.dashboardSvc.SellerCustomerDetail(c.Request.Context(), uid, customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer":      presentUser(&detail.Customer),
		"quotes":        detail.Quotes,
		"subscriptions": detail.Subscriptions,
		"messages":      detail.Messages,
	})
}

func (s *Server) CustomerDashboard(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	overview, err := s.dashboardSvc.CustomerOverview(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
