package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMolitConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *MolitConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  NewMolitConfig("https://api.example.com", "key"),
			wantErr: nil,
		},
		{
			name:    "missing base url",
			config:  &MolitConfig{ServiceKey: "key"},
			wantErr: ErrMolitConfigMissingBaseURL,
		},
		{
			name:    "missing service key",
			config:  &MolitConfig{BaseURL: "https://api.example.com"},
			wantErr: ErrMolitConfigMissingServiceKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.config.PageSize > 0)
			}
		})
	}
}

func molitItemXML(building, amount, area string, buildYear, dealDay int) string {
	return fmt.Sprintf(`<item>
		<aptNm>%s</aptNm>
		<dealAmount>%s</dealAmount>
		<excluUseAr>%s</excluUseAr>
		<floor>12</floor>
		<buildYear>%d</buildYear>
		<dealYear>2026</dealYear>
		<dealMonth>7</dealMonth>
		<dealDay>%d</dealDay>
		<umdNm>역삼동</umdNm>
	</item>`, building, amount, area, buildYear, dealDay)
}

func molitResponseXML(totalCount int, items ...string) string {
	body := ""
	for _, item := range items {
		body += item
	}
	return fmt.Sprintf(`<response>
		<header><resultCode>000</resultCode><resultMsg>OK</resultMsg></header>
		<body><items>%s</items><numOfRows>100</numOfRows><pageNo>1</pageNo><totalCount>%d</totalCount></body>
	</response>`, body, totalCount)
}

func newTestMolitAdapter(t *testing.T, serverURL string) *MolitAdapter {
	t.Helper()
	cfg := NewMolitConfig(serverURL, "test-key")
	cfg.RequestDelay = 0
	adapter, err := NewMolitAdapter(cfg, nil)
	require.NoError(t, err)
	return adapter.WithClock(func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	})
}

func TestMolitAdapter_FetchRecent(t *testing.T) {
	t.Run("fetches one request per deal month", func(t *testing.T) {
		var dealMonths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.URL.Query().Get("serviceKey"))
			assert.Equal(t, "11680", r.URL.Query().Get("LAWD_CD"))
			dealMonths = append(dealMonths, r.URL.Query().Get("DEAL_YMD"))
			fmt.Fprint(w, molitResponseXML(1, molitItemXML("래미안", "82,500", "84.97", 2019, 15)))
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		records, err := adapter.FetchRecent(context.Background(), "11680", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"202608", "202607", "202606"}, dealMonths)
		require.Len(t, records, 3)

		first := records[0]
		assert.Equal(t, "11680", first.RegionCode)
		assert.Equal(t, "202607", first.YearMonth)
		assert.Equal(t, "래미안", first.BuildingName)
		assert.True(t, first.DealAmount.Equal(decimal.NewFromInt(82500)))
		require.NotNil(t, first.ExclusiveArea)
		assert.InDelta(t, 84.97, *first.ExclusiveArea, 0.001)
		assert.Equal(t, 2019, first.BuildYear)
		assert.Equal(t, "역삼동", first.Neighborhood)
		assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), first.DealDate)
	})

	t.Run("pages within one deal month", func(t *testing.T) {
		var pages []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("pageNo")
			pages = append(pages, page)
			if page == "1" {
				items := make([]string, 0, 100)
				for i := 0; i < 100; i++ {
					items = append(items, molitItemXML("래미안", "82,500", "84.97", 2019, 15))
				}
				fmt.Fprint(w, molitResponseXML(101, items...))
			} else {
				fmt.Fprint(w, molitResponseXML(101, molitItemXML("래미안", "82,500", "84.97", 2019, 15)))
			}
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		records, err := adapter.FetchRecent(context.Background(), "11680", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, pages)
		assert.Len(t, records, 101)
	})

	t.Run("skips rows with unparsable amounts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, molitResponseXML(2,
				molitItemXML("래미안", "", "84.97", 2019, 15),
				molitItemXML("자이", "95,000", "", 2021, 3)))
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		records, err := adapter.FetchRecent(context.Background(), "11680", 1)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "자이", records[0].BuildingName)
		assert.Nil(t, records[0].ExclusiveArea)
	})

	t.Run("upstream result code failure surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<response><header><resultCode>30</resultCode><resultMsg>SERVICE_KEY_IS_NOT_REGISTERED_ERROR</resultMsg></header><body/></response>`)
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		_, err := adapter.FetchRecent(context.Background(), "11680", 1)
		assert.ErrorIs(t, err, ErrMolitUpstream)
	})

	t.Run("http failure surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		_, err := adapter.FetchRecent(context.Background(), "11680", 1)
		assert.ErrorIs(t, err, ErrMolitUpstream)
	})

	t.Run("malformed body surfaces as invalid response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"this":"is not xml"}`)
		}))
		defer server.Close()

		adapter := newTestMolitAdapter(t, server.URL)
		_, err := adapter.FetchRecent(context.Background(), "11680", 1)
		assert.ErrorIs(t, err, ErrMolitInvalidResponse)
	})
}

func TestParseDealAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "82,500", want: 82500},
		{raw: " 1,234,567 ", want: 1234567},
		{raw: "95000", want: 95000},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			amount, err := parseDealAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, amount.Equal(decimal.NewFromInt(tt.want)))
		})
	}
}
