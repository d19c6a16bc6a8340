package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/morikuni/failure/v2"
)

func newBaiduServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != reverseGeocodingURI {
			t.Errorf("path = %q, want %q", r.URL.Path, reverseGeocodingURI)
		}
		if r.URL.Query().Get("sn") == "" {
			t.Errorf("request is not signed: %s", r.URL.RawQuery)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestBaiduCountryOf(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr ErrorCode
	}{
		{
			name:   "country",
			status: http.StatusOK,
			body:   `{"status":0,"result":{"addressComponent":{"country":"中国","province":"上海市"}}}`,
			want:   "中国",
		},
		{
			name:    "no country",
			status:  http.StatusOK,
			body:    `{"status":0,"result":{"addressComponent":{"country":""}}}`,
			wantErr: ErrNoCountry,
		},
		{
			name:    "provider error",
			status:  http.StatusOK,
			body:    `{"status":211,"message":"APP SN校验失败"}`,
			wantErr: ErrNoCountry,
		},
		{
			name:    "empty body",
			status:  http.StatusOK,
			body:    "",
			wantErr: ErrTransport,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    "bad gateway",
			wantErr: ErrTransport,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    "<html></html>",
			wantErr: ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBaiduServer(t, tt.status, tt.body)
			b := NewBaidu(srv.URL, Credentials{AK: "ak", SK: "sk"})

			got, err := b.CountryOf(context.Background(), 31.1, 121.2)
			if tt.wantErr != "" {
				if !failure.Is(err, tt.wantErr) {
					t.Fatalf("CountryOf() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CountryOf() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountryOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

type countingResolver struct {
	calls   int
	answers map[string]string
	err     error
}

func (c *countingResolver) CountryOf(ctx context.Context, lat, lon float64) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	country, ok := c.answers[MemoKey(lat, lon)]
	if !ok {
		return "", failure.New(ErrNoCountry)
	}
	return country, nil
}

func TestMemo(t *testing.T) {
	next := &countingResolver{answers: map[string]string{"31.10,121.20": "China"}}
	m := NewMemo(next)
	ctx := context.Background()

	for _, c := range [][2]float64{{31.1, 121.2}, {31.1042, 121.1963}, {31.1, 121.2}} {
		got, err := m.CountryOf(ctx, c[0], c[1])
		if err != nil {
			t.Fatalf("CountryOf(%v) error = %v", c, err)
		}
		if got != "China" {
			t.Errorf("CountryOf(%v) = %q, want China", c, got)
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := m.CountryOf(ctx, 0, -150); !failure.Is(err, ErrNoCountry) {
			t.Errorf("CountryOf(sea) error = %v, want %v", err, ErrNoCountry)
		}
	}

	if next.calls != 2 {
		t.Errorf("wrapped resolver calls = %d, want 2", next.calls)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoDoesNotCacheTransportErrors(t *testing.T) {
	next := &countingResolver{err: failure.New(ErrTransport)}
	m := NewMemo(next)

	for i := 0; i < 2; i++ {
		if _, err := m.CountryOf(context.Background(), 1, 1); !failure.Is(err, ErrTransport) {
			t.Fatalf("CountryOf() error = %v, want %v", err, ErrTransport)
		}
	}
	if next.calls != 2 {
		t.Errorf("wrapped resolver calls = %d, want 2", next.calls)
	}
}

func TestMemoKey(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{31.1042, 121.1963, "31.10,121.20"},
		{-0.001, 10.004, "0.00,10.00"},
		{-33.8688, 151.2093, "-33.87,151.21"},
	}
	for _, tt := range tests {
		if got := MemoKey(tt.lat, tt.lon); got != tt.want {
			t.Errorf("MemoKey(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
		}
	}
}
