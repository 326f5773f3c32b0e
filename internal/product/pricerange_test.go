package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

func TestPriceRanges_Contiguous(t *testing.T) {
	assert.Len(t, product.PriceRanges, 10)

	for i := 1; i < len(product.PriceRanges); i++ {
		prev, cur := product.PriceRanges[i-1], product.PriceRanges[i]
		assert.Equal(t, prev.Max+1, cur.Min, "gap before %s", cur.Label)
		assert.False(t, prev.Open)
	}

	assert.True(t, product.PriceRanges[len(product.PriceRanges)-1].Open)
}
