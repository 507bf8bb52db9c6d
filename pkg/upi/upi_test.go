package upi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5.00", FormatAmount(500))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "123.45", FormatAmount(12345))
}

func TestPayURI(t *testing.T) {
	uri := PayURI(Payee{VPA: "club@upi", Name: "Club Store"}, 50000, "REF123")
	require.True(t, strings.HasPrefix(uri, "upi://pay?"))

	u, err := url.Parse(uri)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "club@upi", q.Get("pa"))
	assert.Equal(t, "Club Store", q.Get("pn"))
	assert.Equal(t, "500.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "REF123", q.Get("tn"))
}
