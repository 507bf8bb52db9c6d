package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, false}, // 确认只能走协议，不走后台改状态
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderCustomer(t *testing.T) {
	o := &Order{}
	assert.Nil(t, o.Customer())

	name, email := "A", "a@x.com"
	o.CustomerName = &name
	assert.Nil(t, o.Customer(), "没有 email 视为未提交付款人")

	o.CustomerEmail = &email
	c := o.Customer()
	assert.NotNil(t, c)
	assert.Equal(t, "A", c.Name)
	assert.Equal(t, "a@x.com", c.Email)
}

func TestProductStockFor(t *testing.T) {
	flat := &Product{SizeType: SizeTypeNone, Stock: 7}
	q, ok := flat.StockFor("")
	assert.True(t, ok)
	assert.Equal(t, 7, q)
	_, ok = flat.StockFor("M")
	assert.False(t, ok)

	sized := &Product{SizeType: SizeTypeClothing, Sizes: []ProductStock{{Size: "M", Quantity: 3}}}
	q, ok = sized.StockFor("M")
	assert.True(t, ok)
	assert.Equal(t, 3, q)
	_, ok = sized.StockFor("XL")
	assert.False(t, ok)
}

func TestUserBanned(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.False(t, u.Banned(now))

	past := now.Add(-time.Hour)
	u.BannedUntil = &past
	assert.False(t, u.Banned(now))

	future := now.Add(time.Hour)
	u.BannedUntil = &future
	assert.True(t, u.Banned(now))
}
