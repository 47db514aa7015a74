package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tvnrapp/relationship-os/internal/authorization"
	chatdomain "github.com/tvnrapp/relationship-os/internal/chat/domain"
	checkoutdomain "github.com/tvnrapp/relationship-os/internal/checkout/domain"
	dashboarddomain "github.com/tvnrapp/relationship-os/internal/dashboard/domain"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/identity/sso"
	invitedomain "github.com/tvnrapp/relationship-os/internal/invite/domain"
	"github.com/tvnrapp/relationship-os/internal/providers/ai"
	"github.com/tvnrapp/relationship-os/internal/providers/payment"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"gorm.io/gorm"
)

func TestMapErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{identitydomain.ErrInvalidEmail, http.StatusBadRequest, "validation_error"},
		{identitydomain.ErrWeakPassword, http.StatusBadRequest, "validation_error"},
		{invitedomain.ErrInviteExpired, http.StatusBadRequest, "validation_error"},
		{quotedomain.ErrNoLines, http.StatusBadRequest, "validation_error"},
		{chatdomain.ErrEmptyMessage, http.StatusBadRequest, "validation_error"},

		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{identitydomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{identitydomain.ErrTokenExpired, http.StatusUnauthorized, "unauthorized"},

		{ErrForbidden, http.StatusForbidden, "forbidden"},
		{authorization.ErrForbidden, http.StatusForbidden, "forbidden"},

		{identitydomain.ErrEmailTaken, http.StatusConflict, "conflict"},
		{invitedomain.ErrInviteAlreadyUsed, http.StatusConflict, "conflict"},
		{quotedomain.ErrQuoteResolved, http.StatusConflict, "conflict"},
		{subscriptiondomain.ErrInvalidState, http.StatusConflict, "conflict"},
		{checkoutdomain.ErrQuoteNotPayable, http.StatusConflict, "conflict"},

		{ErrNotFound, http.StatusNotFound, "not_found"},
		{quotedomain.ErrQuoteNotFound, http.StatusNotFound, "not_found"},
		{subscriptiondomain.ErrSubscriptionNotFound, http.StatusNotFound, "not_found"},
		{dashboarddomain.ErrCustomerNotFound, http.StatusNotFound, "not_found"},
		{chatdomain.ErrCounterpartNotFound, http.StatusNotFound, "not_found"},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},

		{ai.ErrUpstream, http.StatusBadGateway, "upstream_error"},
		{payment.ErrUpstream, http.StatusBadGateway, "upstream_error"},

		{sso.ErrNotConfigured, http.StatusServiceUnavailable, "service_unavailable"},
		{payment.ErrNotConfigured, http.StatusServiceUnavailable, "service_unavailable"},

		{fmt.Errorf("some db failure"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, payload.Type)
		})
	}
}

func TestMapErrorUnwrapsWrappedErrors(t *testing.T) {
	status, payload := mapError(fmt.Errorf("loading quote: %w", quotedomain.ErrQuoteNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
}

func TestMapErrorCarriesValidationDetails(t *testing.T) {
	status, payload := mapError(invalidRequestError())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "request", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	class, kind := classifyErrorForLog(fmt.Errorf("boom"))
	assert.Equal(t, "server_error", class)
	assert.Equal(t, "internal_error", kind)

	class, kind = classifyErrorForLog(quotedomain.ErrQuoteNotFound)
	assert.Equal(t, "client_error", class)
	assert.Equal(t, "not_found", kind)
}
