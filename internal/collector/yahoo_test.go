package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PeriodReturns/internal/model"
)

const yahooFixture = `{"chart":{"result":[{
  "meta":{"symbol":"GGAL.BA","exchangeTimezoneName":"America/Argentina/Buenos_Aires","gmtoffset":-10800},
  "timestamp":[1709557200,1709604000,1709643600,1709730000],
  "indicators":{
    "quote":[{"open":[99,100,null,109],"high":[101,102,null,111],"low":[98,99,null,108],
              "close":[100,101,null,110],"volume":[1000,1100,null,1200]}],
    "adjclose":[{"adjclose":[98,99,null,108]}]
  }}],"error":null}}`

func newYahooTestServer(t *testing.T, status int, body string, gotPath *string) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.RequestURI()
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("", 0)
	f.BaseURL = srv.URL
	return f
}

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var path string
	f := newYahooTestServer(t, http.StatusOK, yahooFixture, &path)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchDailyBars(context.Background(), "GGAL.BA", start, end)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/v8/finance/chart/GGAL.BA?"), path)
	assert.Contains(t, path, "interval=1d")
	assert.Contains(t, path, "period1=1709251200")

	require.Len(t, bars, 3, "null session is skipped")
	assert.Equal(t, 98.0, bars[0].AdjClose)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 98.0, bars[0].Price())

	// 02:00 UTC on 03-05 is still 03-04 in Buenos Aires
	assert.Equal(t, "2024-03-04", model.DateOf(bars[1].Time).String())
	assert.Equal(t, "2024-03-06", model.DateOf(bars[2].Time).String())
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	var path string
	f := newYahooTestServer(t, http.StatusOK, yahooFixture, &path)

	_, err := f.FetchDailyBars(context.Background(), "MERVAL", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Contains(t, path, "/v8/finance/chart/%5EMERV")
}

func TestYahooFetcher_Errors(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	f := newYahooTestServer(t, http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, nil)
	_, err := f.FetchDailyBars(ctx, "NOPE", now.AddDate(0, -1, 0), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	f = newYahooTestServer(t, http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, nil)
	_, err = f.FetchDailyBars(ctx, "NOPE", now.AddDate(0, -1, 0), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")

	f = newYahooTestServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[]}}],"error":null}}`, nil)
	_, err = f.FetchDailyBars(ctx, "EMPTY", now.AddDate(0, -1, 0), now)
	assert.ErrorIs(t, err, ErrNoData)

	f = newYahooTestServer(t, http.StatusOK, `not json`, nil)
	_, err = f.FetchDailyBars(ctx, "BAD", now.AddDate(0, -1, 0), now)
	assert.ErrorContains(t, err, "yahoo decode")
}

func TestExchangeLocation_FallsBackToOffset(t *testing.T) {
	loc := exchangeLocation("Not/AZone", -10800)
	ts := time.Unix(1709604000, 0).In(loc)
	assert.Equal(t, "2024-03-04", model.DateOf(ts).String())
}
