package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tvnrapp/relationship-os/internal/providers/pdf"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
)

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil || id == 0 {
		AbortWithError(c, ErrNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) CreateQuote(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req quotedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.quoteSvc.Create(c.Request.Context(), uid, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (s *Server) ListMyQuotes(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	quotes, err := s.quoteSvc.ListByCustomer(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (s *Server) GetQuote(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := s.quoteSvc.GetOwned(c.Request.Context(), caller.ID, caller.Role, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) GetQuotePDF(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := s.quoteSvc.GetOwned(c.Request.Context(), caller.ID, caller.Role, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateQuote(c.Request.Context(), s.printableQuote(c, quote))
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}
	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quote.QuoteNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// printableQuote flattens a quote into the PDF view. Party name lookups are
// best effort; the document falls back to raw IDs when a lookup fails.
func (s *Server) printableQuote(c *gin.Context, quote *quotedomain.Quote) pdf.QuoteData {
	ctx := c.Request.Context()

	sellerName := quote.SellerID.String()
	customerName := quote.CustomerID.String()
	companyName := ""
	if seller, err := s.identitySvc.CurrentUser(ctx, quote.SellerID); err == nil {
		sellerName = seller.Name
	}
	if customer, err := s.identitySvc.CurrentUser(ctx, quote.CustomerID); err == nil {
		customerName = customer.Name
		if customer.CompanyName != nil {
			companyName = *customer.CompanyName
		}
	}

	data := pdf.QuoteData{
		QuoteNumber:  quote.QuoteNumber,
		Status:       string(quote.Status),
		IssueDate:    quote.CreatedAt.Format("January 2, 2006"),
		SellerName:   sellerName,
		CustomerName: customerName,
		CompanyName:  companyName,
		Total:        formatMoney(quote.Currency, quote.TotalAmount),
	}
	if quote.Notes != nil {
		data.Notes = *quote.Notes
	}

	for _, line := range quote.Lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		cycle := "-"
		if line.BillingCycle != nil && *line.BillingCycle != "" {
			cycle = *line.BillingCycle
		}
		data.Items = append(data.Items, pdf.QuoteItem{
			Name:         line.Name,
			Type:         line.Type,
			Qty:          qty,
			UnitPrice:    formatMoney(quote.Currency, line.UnitPrice),
			BillingCycle: cycle,
			Amount:       formatMoney(quote.Currency, line.UnitPrice*float64(qty)),
		})
	}
	return data
}

func formatMoney(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func (s *Server) SetQuoteStatus(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req quotedomain.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.quoteSvc.SetStatus(c.Request.Context(), uid, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordQuoteTransition(c.Request.Context(), string(result.Quote.Status))

	resp := gin.H{"quote": result.Quote}
	if result.Subscription != nil {
		resp["subscription"] = result.Subscription
	}
	c.JSON(http.StatusOK, resp)
}
