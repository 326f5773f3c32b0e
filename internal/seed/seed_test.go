package seed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/salesdash/internal/metrics"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
	"github.com/MrJamesThe3rd/salesdash/internal/seed"
)

// fakeStore treats ids in existing as already stored.
type fakeStore struct {
	existing map[int64]bool
	got      []*product.Transaction
	err      error
}

func (f *fakeStore) InsertTransactions(_ context.Context, txs []*product.Transaction) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.got = append(f.got, txs...)

	var n int64
	for _, tx := range txs {
		if !f.existing[tx.ID] {
			n++
		}
	}

	return n, nil
}

func serve(t *testing.T, contentType string, status int, body []byte) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}

		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

const feed = `[
	{"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing",
	 "image":"https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg","sold":false,"dateOfSale":"2021-11-27T20:29:54+05:30"},
	{"id":2,"title":"Mens Casual T-Shirt","price":"22.3","description":"Slim-fitting","category":"men's clothing",
	 "image":"https://fakestoreapi.com/img/71-3HjGNDUL.jpg","sold":true,"dateOfSale":"2022-03-01T02:00:00+05:30"}
]`

func TestService_Run(t *testing.T) {
	store := &fakeStore{existing: map[int64]bool{2: true}}
	url := serve(t, "application/json", http.StatusOK, []byte(feed))

	res, err := seed.NewService(store, time.Second, nil).Run(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, &seed.Result{Fetched: 2, Inserted: 1, Skipped: 1}, res)
	require.Len(t, store.got, 2)

	first := store.got[0]
	assert.Equal(t, int64(1), first.ID)
	assert.True(t, decimal.RequireFromString("109.95").Equal(first.Price))
	assert.Equal(t, time.UTC, first.DateOfSale.Location())
	assert.Equal(t, time.Date(2021, 11, 27, 14, 59, 54, 0, time.UTC), first.DateOfSale)

	// 02:00 at +05:30 is still February in UTC.
	assert.Equal(t, time.February, store.got[1].DateOfSale.Month())
	assert.True(t, decimal.RequireFromString("22.3").Equal(store.got[1].Price))
}

func TestService_RunRejectsInvalidRecords(t *testing.T) {
	body := `[
		{"id":1,"title":"ok","price":10,"category":"x","sold":true,"dateOfSale":"2022-01-01T00:00:00Z"},
		{"id":0,"title":"no id","price":10,"category":"x","dateOfSale":"2022-01-01T00:00:00Z"},
		{"id":3,"title":"","price":10,"category":"x","dateOfSale":"2022-01-01T00:00:00Z"},
		{"id":4,"title":"negative","price":-1,"category":"x","dateOfSale":"2022-01-01T00:00:00Z"},
		{"id":5,"title":"no date","price":1,"category":"x"},
		{"id":6,"title":"bad image","price":1,"category":"x","image":"not a url","dateOfSale":"2022-01-01T00:00:00Z"},
		{"id":1,"title":"duplicate","price":10,"category":"x","dateOfSale":"2022-01-01T00:00:00Z"}
	]`

	store := &fakeStore{}
	reg := prometheus.NewRegistry()

	res, err := seed.NewService(store, time.Second, metrics.NewSeed(reg)).
		Run(context.Background(), serve(t, "", http.StatusOK, []byte(body)))
	require.NoError(t, err)

	assert.Equal(t, &seed.Result{Fetched: 7, Inserted: 1, Rejected: 6}, res)
	require.Len(t, store.got, 1)
	assert.Equal(t, "ok", store.got[0].Title)

	n, err := testutil.GatherAndCount(reg, "salesdash_seed_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_RunFailures(t *testing.T) {
	type testCase struct {
		name    string
		status  int
		body    string
		store   *fakeStore
		wantErr string
		wantIs  error
	}

	tests := []testCase{
		{name: "BadStatus", status: http.StatusForbidden, body: "AccessDenied", store: &fakeStore{}, wantErr: "unexpected status 403"},
		{name: "NotJSON", status: http.StatusOK, body: "<html>", store: &fakeStore{}, wantErr: "decoding feed"},
		{name: "Empty", status: http.StatusOK, body: "[]", store: &fakeStore{}, wantIs: seed.ErrEmptyFeed},
		{
			name:    "StoreFailure",
			status:  http.StatusOK,
			body:    feed,
			store:   &fakeStore{err: errors.New("disk full")},
			wantErr: "inserting feed records: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := serve(t, "application/json", tt.status, []byte(tt.body))

			_, err := seed.NewService(tt.store, time.Second, nil).Run(context.Background(), url)
			require.Error(t, err)

			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_RunNormalizesEncoding(t *testing.T) {
	const body = `[{"id":7,"title":"Café Crème","price":5,"category":"kitchen","dateOfSale":"2022-05-01T00:00:00Z"}]`

	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(body))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(body))
	require.NoError(t, err)

	type testCase struct {
		name        string
		contentType string
		body        []byte
	}

	tests := []testCase{
		{name: "UTF8", contentType: "application/json; charset=utf-8", body: []byte(body)},
		{name: "UTF8BOM", contentType: "application/json", body: append([]byte{0xEF, 0xBB, 0xBF}, body...)},
		{name: "DeclaredLatin1", contentType: "application/json; charset=ISO-8859-1", body: latin1},
		{name: "UTF16WithBOM", contentType: "application/json", body: utf16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}

			_, err := seed.NewService(store, time.Second, nil).
				Run(context.Background(), serve(t, tt.contentType, http.StatusOK, tt.body))
			require.NoError(t, err)

			require.Len(t, store.got, 1)
			assert.Equal(t, "Café Crème", store.got[0].Title)
		})
	}
}

func TestService_RunHonoursTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := seed.NewService(&fakeStore{}, 50*time.Millisecond, nil).Run(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "fetching feed")
}
