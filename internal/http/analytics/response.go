package analytics

import (
	"encoding/json"
	"time"

	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

type transactionResponse struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Sold        bool        `json:"sold"`
	DateOfSale  time.Time   `json:"dateOfSale"`
}

type pageResponse struct {
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
	Transactions []transactionResponse `json:"transactions"`
}

type statisticsResponse struct {
	SelectedMonth     string `json:"selectedMonth"`
	TotalSaleAmount   int64  `json:"totalSaleAmount"`
	TotalSoldItems    int64  `json:"totalSoldItems"`
	TotalNotSoldItems int64  `json:"totalNotSoldItems"`
}

type priceRangeResponse struct {
	PriceRange string `json:"priceRange"`
	ItemCount  int64  `json:"itemCount"`
}

type categoryResponse struct {
	Category  string `json:"category"`
	ItemCount int64  `json:"itemCount"`
}

type combinedResponse struct {
	Transactions pageResponse         `json:"transactions"`
	Statistics   statisticsResponse   `json:"statistics"`
	BarChart     []priceRangeResponse `json:"barChart"`
	PieChart     []categoryResponse   `json:"pieChart"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(tx *product.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Title:       tx.Title,
		Price:       json.Number(tx.Price.String()),
		Description: tx.Description,
		Category:    tx.Category,
		Image:       tx.Image,
		Sold:        tx.Sold,
		DateOfSale:  tx.DateOfSale,
	}
}

func toPageResponse(p *product.Page) pageResponse {
	txs := make([]transactionResponse, len(p.Transactions))
	for i, tx := range p.Transactions {
		txs[i] = toTransactionResponse(tx)
	}

	return pageResponse{
		Page:         p.Page,
		PerPage:      p.PerPage,
		Transactions: txs,
	}
}

// toStatisticsResponse labels the result with selectedMonth as the caller
// spelled it.
func toStatisticsResponse(selectedMonth string, s *product.Statistics) statisticsResponse {
	return statisticsResponse{
		SelectedMonth:     selectedMonth,
		TotalSaleAmount:   s.FlooredSaleAmount(),
		TotalSoldItems:    s.SoldItems,
		TotalNotSoldItems: s.NotSoldItems,
	}
}

func toPriceRangeResponse(buckets []product.BucketCount) []priceRangeResponse {
	resp := make([]priceRangeResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = priceRangeResponse{PriceRange: b.Range.Label, ItemCount: b.Count}
	}

	return resp
}

func toCategoryResponse(cats []product.CategoryCount) []categoryResponse {
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = categoryResponse{Category: c.Category, ItemCount: c.Count}
	}

	return resp
}

func toCombinedResponse(c *product.Combined) combinedResponse {
	return combinedResponse{
		Transactions: toPageResponse(&c.Transactions),
		Statistics:   toStatisticsResponse(c.Statistics.Month.Name(), &c.Statistics),
		BarChart:     toPriceRangeResponse(c.PriceHistogram),
		PieChart:     toCategoryResponse(c.Categories),
	}
}
