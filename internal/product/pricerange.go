package product

// PriceRange is one bar of the price histogram. Max is inclusive; the
// previous range's Max is the exclusive lower edge, which keeps the ranges
// contiguous for fractional prices. Open ranges have no upper edge.
type PriceRange struct {
	Label string
	Min   int64
	Max   int64
	Open  bool
}

// PriceRanges is the fixed, ordered set of histogram buckets.
var PriceRanges = []PriceRange{
	{Label: "0 - 100", Min: 0, Max: 100},
	{Label: "101 - 200", Min: 101, Max: 200},
	{Label: "201 - 300", Min: 201, Max: 300},
	{Label: "301 - 400", Min: 301, Max: 400},
	{Label: "401 - 500", Min: 401, Max: 500},
	{Label: "501 - 600", Min: 501, Max: 600},
	{Label: "601 - 700", Min: 601, Max: 700},
	{Label: "701 - 800", Min: 701, Max: 800},
	{Label: "801 - 900", Min: 801, Max: 900},
	{Label: "901 - above", Min: 901, Open: true},
}

// fillHistogram expands sparse per-bucket counts into the full ordered list.
func fillHistogram(counts map[int]int64) []BucketCount {
	out := make([]BucketCount, len(PriceRanges))
	for i, r := range PriceRanges {
		out[i] = BucketCount{Range: r, Count: counts[i]}
	}

	return out
}
