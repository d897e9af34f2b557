package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"inbound", "IN", " 1 "} {
		d, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, Inbound, d)
	}
	for _, in := range []string{"outbound", "out", "0"} {
		d, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, Outbound, d)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestDirection_LabelAndJSON(t *testing.T) {
	assert.Equal(t, "入库", Inbound.Label())
	assert.Equal(t, "出库", Outbound.Label())

	var req StockAdjustment
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":4,"count":2,"direction":"inbound"}`), &req))
	assert.Equal(t, Inbound, req.Direction)

	out, err := json.Marshal(Record{Direction: Outbound})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"direction":"outbound"`)

	_, err = json.Marshal(Record{Direction: Direction(7)})
	assert.Error(t, err)
}

func TestProduct_LowStockAndDisplay(t *testing.T) {
	p := Product{Code: "A1", Name: "Widget", Quantity: 3, MinStock: 5}
	assert.True(t, p.IsLowStock())
	assert.Equal(t, "A1 - Widget (stock: 3)", p.DisplayText())

	p.Quantity = 5
	assert.False(t, p.IsLowStock())
}
