package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/internal/chat/repository"
	"github.com/tvnrapp/relationship-os/internal/clock"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	identityrepo "github.com/tvnrapp/relationship-os/internal/identity/repository"
	"github.com/tvnrapp/relationship-os/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type chatFixture struct {
	svc      domain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	node     *snowflake.Node
	customer *identitydomain.User
	seller   *identitydomain.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identitydomain.User{}, &domain.ChatMessage{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	customer := &identitydomain.User{ID: node.Generate(), Email: "buyer@example.com", Name: "Bob", Role: identitydomain.RoleCustomer}
	seller := &identitydomain.User{ID: node.Generate(), Email: "seller@example.com", Name: "Sally", Role: identitydomain.RoleSeller}
	require.NoError(t, db.Create(customer).Error)
	require.NoError(t, db.Create(seller).Error)

	svc := New(Params{
		Log:   zap.NewNop(),
		DB:    db,
		Repo:  repository.New(),
		Users: identityrepo.New(),
		GenID: node,
		Clock: clk,
	})
	return &chatFixture{svc: svc, db: db, clock: clk, node: node, customer: customer, seller: seller}
}

func TestPairOrientationIsStable(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	fromCustomer, err := f.svc.Send(ctx, f.customer, f.seller.ID, "hello")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	fromSeller, err := f.svc.Send(ctx, f.seller, f.customer.ID, "hi there")
	require.NoError(t, err)

	// The customer side always lands in customer_id regardless of sender.
	assert.Equal(t, f.customer.ID, fromCustomer.CustomerID)
	assert.Equal(t, f.seller.ID, fromCustomer.SellerID)
	assert.Equal(t, f.customer.ID, fromSeller.CustomerID)
	assert.Equal(t, f.seller.ID, fromSeller.SellerID)

	// Both callers read the same conversation in send order.
	page, err := f.svc.List(ctx, f.customer, f.seller.ID, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "hello", page.Messages[0].Content)
	assert.Equal(t, "hi there", page.Messages[1].Content)

	same, err := f.svc.List(ctx, f.seller, f.customer.ID, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, same.Messages, 2)
}

func TestSendValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.customer, f.seller.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = f.svc.Send(ctx, f.customer, f.seller.ID, strings.Repeat("a", 4001))
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = f.svc.Send(ctx, f.customer, f.node.Generate(), "hello")
	assert.ErrorIs(t, err, domain.ErrCounterpartNotFound)
}

func TestPairRequiresExactlyOneCustomer(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	otherSeller := &identitydomain.User{ID: f.node.Generate(), Email: "seller2@example.com", Name: "Sid", Role: identitydomain.RoleSeller}
	require.NoError(t, f.db.Create(otherSeller).Error)

	_, err := f.svc.Send(ctx, f.seller, otherSeller.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrCounterpartNotFound)
}

func TestListPagination(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Send(ctx, f.customer, f.seller.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	first, err := f.svc.List(ctx, f.customer, f.seller.ID, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, "message 0", first.Messages[0].Content)
	assert.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)

	second, err := f.svc.List(ctx, f.customer, f.seller.ID, pagination.Pagination{
		PageSize:  2,
		PageToken: first.PageInfo.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Messages, 2)
	assert.Equal(t, "message 2", second.Messages[0].Content)
	assert.True(t, second.PageInfo.HasMore)

	third, err := f.svc.List(ctx, f.customer, f.seller.ID, pagination.Pagination{
		PageSize:  2,
		PageToken: second.PageInfo.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, third.Messages, 1)
	assert.Equal(t, "message 4", third.Messages[0].Content)
	assert.False(t, third.PageInfo.HasMore)
	assert.Empty(t, third.PageInfo.NextPageToken)
}
