package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morikuni/failure/v2"
	"googlemaps.github.io/maps"
)

func TestGoogleCountryOf(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr ErrorCode
	}{
		{
			name: "country",
			body: `{"status":"OK","results":[{"address_components":[{"long_name":"Japan","short_name":"JP","types":["country","political"]}]}]}`,
			want: "Japan",
		},
		{
			name:    "no country component",
			body:    `{"status":"OK","results":[{"address_components":[{"long_name":"Pacific Ocean","types":["natural_feature"]}]}]}`,
			wantErr: ErrNoCountry,
		},
		{
			name:    "denied",
			body:    `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`,
			wantErr: ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("latlng"); got == "" {
					t.Errorf("latlng is missing: %s", r.URL.RawQuery)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewGoogle("test-key", maps.WithBaseURL(srv.URL))
			if err != nil {
				t.Fatalf("NewGoogle() error = %v", err)
			}

			got, err := g.CountryOf(context.Background(), 35.68, 139.76)
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

func TestNewGoogleRequiresKey(t *testing.T) {
	if _, err := NewGoogle(""); !failure.Is(err, ErrConfiguration) {
		t.Errorf("NewGoogle(\"\") error = %v, want %v", err, ErrConfiguration)
	}
}
