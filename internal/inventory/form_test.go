package inventory

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewItemForm(t *testing.T) {
	t.Parallel()

	in, err := ParseNewItemForm(url.Values{"name": {" Pear "}, "price": {"200"}, "stock": {" 10"}})
	require.NoError(t, err)
	assert.Equal(t, NewItemInput{Name: "Pear", Price: 200, Stock: 10}, in)

	in, err = ParseNewItemForm(url.Values{"name": {"Free sample"}, "price": {"0"}, "stock": {"0"}})
	require.NoError(t, err)
	assert.Equal(t, NewItemInput{Name: "Free sample"}, in)
}

func TestParseNewItemFormRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "missing name", form: url.Values{"price": {"1"}, "stock": {"1"}}},
		{name: "blank name", form: url.Values{"name": {"  "}, "price": {"1"}, "stock": {"1"}}},
		{name: "missing price", form: url.Values{"name": {"Pear"}, "stock": {"1"}}},
		{name: "decimal price", form: url.Values{"name": {"Pear"}, "price": {"1.5"}, "stock": {"1"}}},
		{name: "text stock", form: url.Values{"name": {"Pear"}, "price": {"1"}, "stock": {"many"}}},
		{name: "negative price", form: url.Values{"name": {"Pear"}, "price": {"-1"}, "stock": {"1"}}},
		{name: "negative stock", form: url.Values{"name": {"Pear"}, "price": {"1"}, "stock": {"-5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNewItemForm(tt.form)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseItemID(t *testing.T) {
	t.Parallel()

	id, err := ParseItemID(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	for _, raw := range []string{"", "0", "-2", "three"} {
		_, err := ParseItemID(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", raw)
	}
}

func TestRejectedErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := error(&RejectedError{Op: "add", Status: 500})
	assert.ErrorIs(t, err, ErrServerRejected)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 500, StatusOf(err))
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Zero(t, StatusOf(ErrDecode))
}
