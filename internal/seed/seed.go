// Package seed loads the product transaction feed into the store.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/metrics"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

var ErrEmptyFeed = errors.New("feed contains no records")

// Inserter is implemented by the product store.
type Inserter interface {
	InsertTransactions(ctx context.Context, txs []*product.Transaction) (int64, error)
}

// Result summarizes one run. Skipped records already existed; rejected ones
// failed validation.
type Result struct {
	Fetched  int64
	Inserted int64
	Skipped  int64
	Rejected int64
}

type Service struct {
	store    Inserter
	client   *http.Client
	validate *validator.Validate
	metrics  *metrics.Seed
}

func NewService(store Inserter, timeout time.Duration, m *metrics.Seed) *Service {
	return &Service{
		store:    store,
		client:   &http.Client{Timeout: timeout},
		validate: newValidator(),
		metrics:  m,
	}
}

// record is one item of the feed as published.
type record struct {
	ID          int64           `json:"id" validate:"gt=0"`
	Title       string          `json:"title" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image" validate:"omitempty,url"`
	Sold        bool            `json:"sold"`
	DateOfSale  time.Time       `json:"dateOfSale"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}

		return nil
	}, decimal.Decimal{})

	return v
}

func (s *Service) Run(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	res, err := s.run(ctx, url)
	if err != nil {
		s.metrics.ObserveRun(err, 0, 0, 0, time.Since(start))
		return nil, err
	}

	s.metrics.ObserveRun(nil, res.Inserted, res.Skipped, res.Rejected, time.Since(start))

	return res, nil
}

func (s *Service) run(ctx context.Context, url string) (*Result, error) {
	records, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}

	res := &Result{Fetched: int64(len(records))}
	txs := make([]*product.Transaction, 0, len(records))
	seen := make(map[int64]struct{}, len(records))

	for i, rec := range records {
		if err := s.check(rec); err != nil {
			slog.Warn("rejecting feed record", "index", i, "id", rec.ID, "error", err)
			res.Rejected++

			continue
		}

		if _, dup := seen[rec.ID]; dup {
			slog.Warn("rejecting duplicate feed record", "index", i, "id", rec.ID)
			res.Rejected++

			continue
		}

		seen[rec.ID] = struct{}{}
		txs = append(txs, rec.toTransaction())
	}

	if len(txs) > 0 {
		n, err := s.store.InsertTransactions(ctx, txs)
		if err != nil {
			return nil, fmt.Errorf("inserting feed records: %w", err)
		}

		res.Inserted = n
		res.Skipped = int64(len(txs)) - n
	}

	return res, nil
}

func (s *Service) check(rec record) error {
	if err := s.validate.Struct(rec); err != nil {
		return err
	}

	if rec.DateOfSale.IsZero() {
		return errors.New("dateOfSale is missing")
	}

	return nil
}

func (s *Service) fetch(ctx context.Context, url string) ([]record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("fetching feed: unexpected status %d", resp.StatusCode)
	}

	body, err := utf8Body(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	return records, nil
}

func (r record) toTransaction() *product.Transaction {
	return &product.Transaction{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Sold:        r.Sold,
		DateOfSale:  r.DateOfSale.UTC(),
	}
}
