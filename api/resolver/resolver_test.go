package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/selection"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/morikuni/failure/v2"
)

type fakeRemote struct {
	bodies   map[string]string
	requests []string
	fail     map[string]bool
}

func (f *fakeRemote) CountryURL(mapKey string, src source.Type, country string, dayRange int, date time.Time) string {
	return fmt.Sprintf("country/%s/%s/%s/%d/%s", mapKey, src, country, dayRange, date.Format(firms.DateLayout))
}

func (f *fakeRemote) AreaURL(mapKey string, src source.Type, area string, dayRange int, date time.Time) string {
	return fmt.Sprintf("area/%s/%s/%s/%d/%s", mapKey, src, area, dayRange, date.Format(firms.DateLayout))
}

func (f *fakeRemote) FetchTable(ctx context.Context, rawURL string, delim rune) (table.Table, error) {
	f.requests = append(f.requests, rawURL)
	if f.fail[rawURL] {
		return table.Table{}, failure.New(firms.ErrTransport)
	}
	body, ok := f.bodies[rawURL]
	if !ok {
		return table.Table{}, failure.New(firms.ErrParse)
	}
	return table.Parse(strings.NewReader(body), delim)
}

type fakeArchive struct {
	files map[string]string
	loads int
}

const archiveHeader = "latitude,longitude,acq_date\n"

func (f *fakeArchive) Placeholder(ctx context.Context, src source.Type) (table.Table, error) {
	t, err := table.Parse(strings.NewReader(archiveHeader), ',')
	return t.WithColumn("country", ""), err
}

func (f *fakeArchive) Load(ctx context.Context, src source.Type, year int, country string) (table.Table, error) {
	f.loads++
	body, ok := f.files[fmt.Sprintf("%d/%s", year, country)]
	if !ok {
		return f.Placeholder(ctx, src)
	}
	t, err := table.Parse(strings.NewReader(body), ',')
	return t.WithColumn("country", country), err
}

type fakeNames []string

func (n fakeNames) Names() []string { return n }

func onlineSelection(countries ...string) selection.Selection {
	return selection.Selection{
		Mode:      selection.ModeOnline,
		Countries: countries,
		Source:    source.TypeModisSP,
		MapKey:    "KEY",
		Date:      time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		DayRange:  1,
	}
}

const (
	chnBody  = "latitude,longitude,acq_date,country_id\n31.1,121.2,2023-01-10,CHN\n30.2,120.1,2023-01-10,CHN\n"
	usaBody  = "latitude,longitude,acq_date,country_id\n40.0,-120.0,2023-01-10,USA\n"
	htmlBody = "<html>\n<head><title>Error</title></head>\n<body>Invalid country</body>\n</html>\n"
)

func TestResolveOnlineCountries(t *testing.T) {
	remote := &fakeRemote{bodies: map[string]string{
		"country/KEY/MODIS_SP/CHN/1/2023-01-10": chnBody,
		"country/KEY/MODIS_SP/USA/1/2023-01-10": usaBody,
	}}
	r := New(remote, nil, nil)

	got, err := r.Resolve(context.Background(), onlineSelection("chn", "USA"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	wantRequests := []string{
		"country/KEY/MODIS_SP/CHN/1/2023-01-10",
		"country/KEY/MODIS_SP/USA/1/2023-01-10",
	}
	if diff := cmp.Diff(wantRequests, remote.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CHN", "CHN", "USA"}, got.Column("country_id")); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOnlineWorld(t *testing.T) {
	remote := &fakeRemote{bodies: map[string]string{
		"area/KEY/MODIS_SP/world/1/2023-01-10": usaBody,
	}}
	sel := onlineSelection()
	sel.Area = selection.AreaWorld

	got, err := New(remote, nil, nil).Resolve(context.Background(), sel)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(remote.requests) != 1 || got.Len() != 1 {
		t.Errorf("requests = %v, rows = %d; want one request and one row", remote.requests, got.Len())
	}
}

func TestResolveDropsHTMLRows(t *testing.T) {
	remote := &fakeRemote{bodies: map[string]string{
		"country/KEY/MODIS_SP/CHN/1/2023-01-10": chnBody,
		"country/KEY/MODIS_SP/XXX/1/2023-01-10": htmlBody,
		"country/KEY/MODIS_SP/USA/1/2023-01-10": usaBody,
	}}

	got, err := New(remote, nil, nil).Resolve(context.Background(), onlineSelection("CHN", "XXX", "USA"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Has(firms.SentinelColumn) {
		t.Errorf("sentinel column survived: %v", got.Columns)
	}
	if diff := cmp.Diff([]string{"CHN", "CHN", "USA"}, got.Column("country_id")); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDropsHTMLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/country/csv/KEY/MODIS_SP/CHN/1/2023-01-10":
			w.Write([]byte(chnBody))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<html>\n<head><title>500 Internal Server Error</title></head>\n<body><h1>500 Internal Server Error</h1></body>\n</html>\n"))
		}
	}))
	t.Cleanup(srv.Close)

	got, err := New(firms.NewClient(srv.URL), nil, nil).Resolve(context.Background(), onlineSelection("CHN", "USA"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Has(firms.SentinelColumn) {
		t.Errorf("sentinel column survived: %v", got.Columns)
	}
	want := strings.Count(strings.TrimSpace(chnBody), "\n")
	if got.Len() != want {
		t.Errorf("Len() = %d, want %d", got.Len(), want)
	}
	for _, id := range got.Column("country_id") {
		if id != "CHN" {
			t.Errorf("unexpected country_id %q", id)
		}
	}
}

func TestReconcileRemovesExactlyHTMLRows(t *testing.T) {
	var parts []table.Table
	want := 0
	for _, body := range []string{chnBody, htmlBody, usaBody, htmlBody} {
		tbl, err := table.Parse(strings.NewReader(body), ',')
		if err != nil {
			t.Fatal(err)
		}
		if !tbl.Has(firms.SentinelColumn) {
			want += tbl.Len()
		}
		parts = append(parts, tbl)
	}

	got := Reconcile(table.Concat(parts...))
	if got.Len() != want {
		t.Errorf("Reconcile() rows = %d, want %d", got.Len(), want)
	}
	for i := range got.Rows {
		if got.Value(i, "acq_date") == "" {
			t.Errorf("row %d lost its data: %v", i, got.Rows[i])
		}
	}

	clean := table.Concat(parts[0], parts[2])
	if diff := cmp.Diff(clean, Reconcile(clean)); diff != "" {
		t.Errorf("Reconcile() changed a clean table (-want +got):\n%s", diff)
	}
}

func TestResolveTransportFailureAborts(t *testing.T) {
	remote := &fakeRemote{
		bodies: map[string]string{
			"country/KEY/MODIS_SP/CHN/1/2023-01-10": chnBody,
			"country/KEY/MODIS_SP/USA/1/2023-01-10": usaBody,
		},
		fail: map[string]bool{"country/KEY/MODIS_SP/CHN/1/2023-01-10": true},
	}

	got, err := New(remote, nil, nil).Resolve(context.Background(), onlineSelection("CHN", "USA"))
	if !failure.Is(err, firms.ErrTransport) {
		t.Fatalf("Resolve() error = %v, want %v", err, firms.ErrTransport)
	}
	if got.Len() != 0 {
		t.Errorf("Resolve() rows = %d, want 0", got.Len())
	}
	if len(remote.requests) != 1 {
		t.Errorf("requests = %v, want the loop to stop at the failure", remote.requests)
	}
}

func offlineSelection(begin, end int, countries ...string) selection.Selection {
	return selection.Selection{
		Mode:      selection.ModeOffline,
		Countries: countries,
		Source:    source.TypeLocalModis,
		BeginYear: begin,
		EndYear:   end,
	}
}

func TestResolveOffline(t *testing.T) {
	archive := &fakeArchive{files: map[string]string{
		"2020/China":         archiveHeader + "1,1,2020-01-01\n1,1,2020-01-02\n",
		"2021/China":         archiveHeader + "1,1,2021-01-01\n",
		"2021/United States": archiveHeader + "2,2,2021-05-01\n2,2,2021-05-02\n2,2,2021-05-03\n",
	}}
	r := New(nil, archive, nil)

	got, err := r.Resolve(context.Background(), offlineSelection(2020, 2021, "China", "United States"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if archive.loads != 4 {
		t.Errorf("loads = %d, want 4", archive.loads)
	}
	if got.Len() != 6 {
		t.Errorf("rows = %d, want 6", got.Len())
	}
	want := []string{"China", "China", "China", "United States", "United States", "United States"}
	if diff := cmp.Diff(want, got.Column("country")); diff != "" {
		t.Errorf("country tags mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOfflineWorld(t *testing.T) {
	archive := &fakeArchive{files: map[string]string{
		"2021/Japan": archiveHeader + "35,139,2021-04-01\n",
	}}
	sel := offlineSelection(2021, 2021)
	sel.Area = selection.AreaWorld

	got, err := New(nil, archive, fakeNames{"China", "Japan"}).Resolve(context.Background(), sel)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if archive.loads != 2 || got.Len() != 1 {
		t.Errorf("loads = %d, rows = %d; want 2 loads and 1 row", archive.loads, got.Len())
	}

	if _, err := New(nil, archive, nil).Resolve(context.Background(), sel); !failure.Is(err, selection.ErrValidation) {
		t.Errorf("world without catalog error = %v", err)
	}
}

func TestResolveValidationMakesNoRequests(t *testing.T) {
	remote := &fakeRemote{}
	archive := &fakeArchive{}
	r := New(remote, archive, nil)

	got, err := r.Resolve(context.Background(), offlineSelection(2021, 2019, "China"))
	if !failure.Is(err, selection.ErrValidation) {
		t.Fatalf("Resolve() error = %v, want %v", err, selection.ErrValidation)
	}
	if got.Len() != 0 || len(got.Columns) != 0 {
		t.Errorf("Resolve() = %+v, want empty table", got)
	}
	if archive.loads != 0 || len(remote.requests) != 0 {
		t.Errorf("loads = %d, requests = %d; want none", archive.loads, len(remote.requests))
	}
}

func TestResolveOfflineRejectsOnlineSource(t *testing.T) {
	archive := &fakeArchive{}
	sel := offlineSelection(2020, 2021, "China")
	sel.Source = source.TypeModisSP

	_, err := New(nil, archive, nil).Resolve(context.Background(), sel)
	if !failure.Is(err, selection.ErrValidation) {
		t.Fatalf("Resolve() error = %v, want %v", err, selection.ErrValidation)
	}
	if archive.loads != 0 {
		t.Errorf("loads = %d, want 0", archive.loads)
	}
}
