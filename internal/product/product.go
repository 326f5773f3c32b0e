package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/month"
)

// ErrNoData is returned when the statistics aggregate yields no row at all.
var ErrNoData = errors.New("no data found for the selected month")

// Transaction is a single product sale record.
type Transaction struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Sold        bool
	DateOfSale  time.Time
}

// Statistics aggregates the sales of one month across all years.
type Statistics struct {
	Month           month.Month
	TotalSaleAmount decimal.Decimal // Sum of prices of sold items
	SoldItems       int64
	NotSoldItems    int64
}

// FlooredSaleAmount truncates the total sale amount to whole units.
func (s Statistics) FlooredSaleAmount() int64 {
	return s.TotalSaleAmount.Floor().IntPart()
}

// Page is one slice of the filtered transaction list.
type Page struct {
	Page         int
	PerPage      int
	Transactions []*Transaction
}

// BucketCount is the number of sales whose price falls within Range.
type BucketCount struct {
	Range PriceRange
	Count int64
}

// CategoryCount is the number of sales in a category.
type CategoryCount struct {
	Category string
	Count    int64
}

// Combined merges every analytics view for one month.
type Combined struct {
	Transactions   Page
	Statistics     Statistics
	PriceHistogram []BucketCount
	Categories     []CategoryCount
}
