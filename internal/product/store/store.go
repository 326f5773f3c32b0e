package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/salesdash/internal/database"
	"github.com/MrJamesThe3rd/salesdash/internal/month"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

type Store struct {
	db *sql.DB
	d  dialect
}

func New(db *sql.DB, driver database.Driver) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	return &Store{db: db, d: d}, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a row selected with selectTransactionColumns.
func scanTransaction(s scanner) (*product.Transaction, error) {
	var (
		tx   product.Transaction
		date timestamp
	)

	if err := s.Scan(
		&tx.ID, &tx.Title, &tx.Price, &tx.Description, &tx.Category, &tx.Image, &tx.Sold, &date,
	); err != nil {
		return nil, err
	}

	tx.DateOfSale = date.Time

	return &tx, nil
}

const selectTransactionColumns = `id, title, price, description, category, image, sold, date_of_sale`

func (s *Store) ListTransactions(ctx context.Context, filter product.ListFilter) ([]*product.Transaction, error) {
	a := &args{d: s.d}

	query := `SELECT ` + selectTransactionColumns + `
		FROM product_transactions
		WHERE ` + s.d.monthExpr + ` = ` + a.add(filter.Month.Code())

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query += fmt.Sprintf(` AND (
			%s(title) LIKE %s ESCAPE '\'
			OR %s(description) LIKE %s ESCAPE '\'
			OR CAST(price AS TEXT) LIKE %s ESCAPE '\'
		)`, s.d.lowerFn, a.add(pattern), s.d.lowerFn, a.add(pattern), a.add(pattern))
	}

	query += ` ORDER BY id ASC LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, a.vals...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*product.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) GetStatistics(ctx context.Context, m month.Month) (*product.Statistics, error) {
	a := &args{d: s.d}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN sold THEN price ELSE 0 END), 0),
			COUNT(CASE WHEN sold THEN 1 END),
			COUNT(CASE WHEN NOT sold THEN 1 END)
		FROM product_transactions
		WHERE ` + s.d.monthExpr + ` = ` + a.add(m.Code())

	stats := product.Statistics{Month: m}

	err := s.db.QueryRowContext(ctx, query, a.vals...).Scan(
		&stats.TotalSaleAmount, &stats.SoldItems, &stats.NotSoldItems,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNoData
		}

		return nil, fmt.Errorf("computing statistics: %w", err)
	}

	return &stats, nil
}

// priceRangeCase maps price onto its index in product.PriceRanges. The bounds
// come from the fixed range table, never from user input.
func priceRangeCase() string {
	var sb strings.Builder

	sb.WriteString("CASE")

	last := len(product.PriceRanges) - 1
	for i, r := range product.PriceRanges {
		if r.Open || i == last {
			fmt.Fprintf(&sb, " ELSE %d", i)
			break
		}

		fmt.Fprintf(&sb, " WHEN price <= %d THEN %d", r.Max, i)
	}

	sb.WriteString(" END")

	return sb.String()
}

func (s *Store) CountByPriceRange(ctx context.Context, m month.Month) (map[int]int64, error) {
	a := &args{d: s.d}

	query := `
		SELECT ` + priceRangeCase() + ` AS bucket, COUNT(*)
		FROM product_transactions
		WHERE ` + s.d.monthExpr + ` = ` + a.add(m.Code()) + `
		GROUP BY bucket
		ORDER BY bucket ASC`

	rows, err := s.db.QueryContext(ctx, query, a.vals...)
	if err != nil {
		return nil, fmt.Errorf("counting price ranges: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64, len(product.PriceRanges))

	for rows.Next() {
		var (
			bucket int
			count  int64
		)

		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scanning price range: %w", err)
		}

		counts[bucket] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price ranges: %w", err)
	}

	return counts, nil
}

func (s *Store) CountByCategory(ctx context.Context, m month.Month) ([]product.CategoryCount, error) {
	a := &args{d: s.d}

	query := `
		SELECT category, COUNT(*)
		FROM product_transactions
		WHERE ` + s.d.monthExpr + ` = ` + a.add(m.Code()) + `
		GROUP BY category
		ORDER BY category ASC`

	rows, err := s.db.QueryContext(ctx, query, a.vals...)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	var cats []product.CategoryCount

	for rows.Next() {
		var c product.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return cats, nil
}

// InsertTransactions bulk-loads records in one database transaction. Records
// whose id already exists are skipped. It returns the number inserted.
func (s *Store) InsertTransactions(ctx context.Context, txs []*product.Transaction) (int64, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	placeholders := make([]string, 8)
	for i := range placeholders {
		placeholders[i] = s.d.placeholder(i + 1)
	}

	query := `
		INSERT INTO product_transactions (` + selectTransactionColumns + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (id) DO NOTHING`

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64

	for _, tx := range txs {
		res, err := stmt.ExecContext(ctx,
			tx.ID,
			tx.Title,
			tx.Price.StringFixed(2),
			tx.Description,
			tx.Category,
			tx.Image,
			tx.Sold,
			formatTimestamp(tx.DateOfSale),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting transaction %d: %w", tx.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading rows affected: %w", err)
		}

		inserted += n
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return inserted, nil
}

// timestampLayout is understood by both PostgreSQL and SQLite's date functions.
const timestampLayout = "2006-01-02 15:04:05.999999999-07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestamp scans date_of_sale whether the driver returns a time.Time or the
// stored text.
type timestamp struct {
	time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		return errors.New("date_of_sale is null")
	}

	return fmt.Errorf("unsupported date_of_sale type %T", src)
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}

	return fmt.Errorf("parsing date_of_sale %q", s)
}
