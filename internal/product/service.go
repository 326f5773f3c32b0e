package product

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/salesdash/internal/month"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	GetStatistics(ctx context.Context, m month.Month) (*Statistics, error)
	CountByPriceRange(ctx context.Context, m month.Month) (map[int]int64, error)
	CountByCategory(ctx context.Context, m month.Month) ([]CategoryCount, error)
}

// ListFilter is the storage-level form of ListParams.
type ListFilter struct {
	Month  month.Month
	Search string
	Limit  int
	Offset int
}

// ListParams are the caller-facing listing options. Zero or negative Page and
// PerPage fall back to the defaults; PerPage has no upper bound.
type ListParams struct {
	Month   month.Month
	Search  string
	Page    int
	PerPage int
}

func (p ListParams) withDefaults() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}

	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}

	if !p.Month.Valid() {
		p.Month = month.Default
	}

	return p
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	params = params.withDefaults()

	// No row can sit past an offset that does not fit in an int.
	if params.Page-1 > math.MaxInt/params.PerPage {
		return &Page{Page: params.Page, PerPage: params.PerPage, Transactions: []*Transaction{}}, nil
	}

	txs, err := s.repo.ListTransactions(ctx, ListFilter{
		Month:  params.Month,
		Search: params.Search,
		Limit:  params.PerPage,
		Offset: (params.Page - 1) * params.PerPage,
	})
	if err != nil {
		return nil, err
	}

	if txs == nil {
		txs = []*Transaction{}
	}

	return &Page{Page: params.Page, PerPage: params.PerPage, Transactions: txs}, nil
}

func (s *Service) Statistics(ctx context.Context, m month.Month) (*Statistics, error) {
	stats, err := s.repo.GetStatistics(ctx, m)
	if err != nil {
		return nil, err
	}

	if stats == nil {
		return nil, ErrNoData
	}

	stats.Month = m

	return stats, nil
}

// PriceHistogram always returns every range in PriceRanges, in order.
func (s *Service) PriceHistogram(ctx context.Context, m month.Month) ([]BucketCount, error) {
	counts, err := s.repo.CountByPriceRange(ctx, m)
	if err != nil {
		return nil, err
	}

	return fillHistogram(counts), nil
}

// CategoryBreakdown lists only categories that have sales in the month.
func (s *Service) CategoryBreakdown(ctx context.Context, m month.Month) ([]CategoryCount, error) {
	cats, err := s.repo.CountByCategory(ctx, m)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryCount, 0, len(cats))
	for _, c := range cats {
		if c.Count > 0 {
			out = append(out, c)
		}
	}

	return out, nil
}

// Combined runs the four views for params.Month concurrently. The first
// failure cancels the remaining reads.
func (s *Service) Combined(ctx context.Context, params ListParams) (*Combined, error) {
	params = params.withDefaults()

	var res Combined

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.List(ctx, params)
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		res.Transactions = *page

		return nil
	})

	g.Go(func() error {
		stats, err := s.Statistics(ctx, params.Month)
		if err != nil {
			return fmt.Errorf("computing statistics: %w", err)
		}

		res.Statistics = *stats

		return nil
	})

	g.Go(func() error {
		hist, err := s.PriceHistogram(ctx, params.Month)
		if err != nil {
			return fmt.Errorf("computing price histogram: %w", err)
		}

		res.PriceHistogram = hist

		return nil
	})

	g.Go(func() error {
		cats, err := s.CategoryBreakdown(ctx, params.Month)
		if err != nil {
			return fmt.Errorf("computing category breakdown: %w", err)
		}

		res.Categories = cats

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &res, nil
}
