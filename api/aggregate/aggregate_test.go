package aggregate

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/firms/api/catalog"
	"github.com/ka2n/firms/api/geo"
	"github.com/ka2n/firms/api/table"
	"github.com/morikuni/failure/v2"
)

func mustParse(t *testing.T, csv string) table.Table {
	t.Helper()
	tbl, err := table.Parse(strings.NewReader(csv), ',')
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tbl
}

func shuffled(t table.Table, seed int64) table.Table {
	rows := append([][]string(nil), t.Rows...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return table.Table{Columns: t.Columns, Rows: rows}
}

var testCatalog = catalog.New([]catalog.Country{
	{Code: "CHN", Name: "China"},
	{Code: "USA", Name: "United States"},
	{Code: "ATF", Name: "French Southern and Antarctic Lands"},
})

const records = `latitude,longitude,acq_date,country_id,country
31.1,121.2,2023-01-09,CHN,China
30.2,120.1,2023-01-10,CHN,China
29.9,119.0,2023-01-10,CHN,China
40.0,-120.0,2023-01-10,USA,United States
41.5,-119.2,2023-01-08,USA,United States
`

func TestPoints(t *testing.T) {
	tbl := mustParse(t, "latitude,longitude\n1.5,2.5\nbad,3\n-4,-5\n")
	got, err := Points(tbl)
	if err != nil {
		t.Fatalf("Points() error = %v", err)
	}
	want := []Point{{1.5, 2.5}, {-4, -5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}

	c, ok := Centroid(got)
	if !ok || c != (Point{-1.25, -1.25}) {
		t.Errorf("Centroid() = %v, %v", c, ok)
	}

	if _, err := Points(table.New("acq_date")); !failure.Is(err, ErrNotPlottable) {
		t.Errorf("Points() without coordinates error = %v", err)
	}
}

func TestCountByDate(t *testing.T) {
	got, err := CountByDate(mustParse(t, records), false)
	if err != nil {
		t.Fatalf("CountByDate() error = %v", err)
	}
	want := Series{
		Key: ColumnDate,
		Buckets: []Bucket{
			{Key: "2023-01-08", Label: "2023-01-08", Count: 1},
			{Key: "2023-01-09", Label: "2023-01-09", Count: 1},
			{Key: "2023-01-10", Label: "2023-01-10", Count: 3},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByDate() mismatch (-want +got):\n%s", diff)
	}
	if got.Total() != 5 {
		t.Errorf("Total() = %d, want 5", got.Total())
	}
}

func TestCountByDateSplit(t *testing.T) {
	got, err := CountByDate(mustParse(t, records), true)
	if err != nil {
		t.Fatalf("CountByDate() error = %v", err)
	}
	want := []Bucket{
		{Key: "2023-01-08", Split: "United States", Label: "2023-01-08", Count: 1},
		{Key: "2023-01-09", Split: "China", Label: "2023-01-09", Count: 1},
		{Key: "2023-01-10", Split: "China", Label: "2023-01-10", Count: 2},
		{Key: "2023-01-10", Split: "United States", Label: "2023-01-10", Count: 1},
	}
	if diff := cmp.Diff(want, got.Buckets); diff != "" {
		t.Errorf("CountByDate() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"United States", "China"}, got.Splits()); diff != "" {
		t.Errorf("Splits() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByDateNotPlottable(t *testing.T) {
	header := "latitude,longitude,acq_date\n"
	tests := []struct {
		name      string
		csv       string
		plottable bool
	}{
		{name: "no rows", csv: header},
		{name: "one row", csv: header + "1,1,2023-01-10\n"},
		{name: "repeated single date", csv: header + "1,1,2023-01-10\n2,2,2023-01-10\n3,3,2023-01-10\n"},
		{name: "two dates", csv: header + "1,1,2023-01-10\n2,2,2023-01-11\n", plottable: true},
		{name: "repeated dates", csv: header + "1,1,2023-01-10\n2,2,2023-01-11\n3,3,2023-01-10\n", plottable: true},
		{name: "no date column", csv: "latitude,longitude\n1,1\n2,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CountByDate(mustParse(t, tt.csv), false)
			if tt.plottable {
				if err != nil {
					t.Errorf("CountByDate() error = %v", err)
				}
				return
			}
			if !failure.Is(err, ErrNotPlottable) {
				t.Errorf("CountByDate() error = %v, want %v", err, ErrNotPlottable)
			}
		})
	}
}

func TestOrderIndependence(t *testing.T) {
	tbl := mustParse(t, records)
	wantDate, err := CountByDate(tbl, true)
	if err != nil {
		t.Fatal(err)
	}
	wantCountry, err := CountByCountry(tbl, testCatalog)
	if err != nil {
		t.Fatal(err)
	}

	for seed := int64(0); seed < 10; seed++ {
		s := shuffled(tbl, seed)

		gotDate, err := CountByDate(s, true)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(wantDate, gotDate); diff != "" {
			t.Errorf("seed %d: CountByDate() mismatch (-want +got):\n%s", seed, diff)
		}

		gotCountry, err := CountByCountry(s, testCatalog)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(wantCountry, gotCountry); diff != "" {
			t.Errorf("seed %d: CountByCountry() mismatch (-want +got):\n%s", seed, diff)
		}
	}

	again, _ := CountByDate(tbl, true)
	if diff := cmp.Diff(wantDate, again); diff != "" {
		t.Errorf("CountByDate() is not idempotent (-want +got):\n%s", diff)
	}
}

func TestCountByCountry(t *testing.T) {
	chn := mustParse(t, "latitude,longitude,acq_date,country_id\n31.1,121.2,2023-01-10,CHN\n30.2,120.1,2023-01-10,CHN\n")
	usa := mustParse(t, "latitude,longitude,acq_date,country_id\n40.0,-120.0,2023-01-10,USA\n")

	got, err := CountByCountry(table.Concat(chn, usa), testCatalog)
	if err != nil {
		t.Fatalf("CountByCountry() error = %v", err)
	}
	want := Series{
		Key: ColumnCountryID,
		Buckets: []Bucket{
			{Key: "CHN", Label: "China", Count: 2},
			{Key: "USA", Label: "United States", Count: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByCountry() mismatch (-want +got):\n%s", diff)
	}

	if _, err := CountByCountry(chn, testCatalog); !failure.Is(err, ErrNotPlottable) {
		t.Errorf("single country error = %v, want %v", err, ErrNotPlottable)
	}
	if _, err := CountByCountry(table.New("acq_date"), testCatalog); !failure.Is(err, ErrNotPlottable) {
		t.Errorf("missing column error = %v, want %v", err, ErrNotPlottable)
	}

	unknown := mustParse(t, "country_id\nCHN\nZZZ\n")
	if _, err := CountByCountry(unknown, testCatalog); !failure.Is(err, catalog.ErrUnknownCountry) {
		t.Errorf("unknown code error = %v, want %v", err, catalog.ErrUnknownCountry)
	}
}

func TestCountByCountryName(t *testing.T) {
	placeholder := mustParse(t, "latitude,longitude,acq_date\n").WithColumn(ColumnCountry, "")
	china := mustParse(t, "latitude,longitude,acq_date\n1,1,2020-01-01\n2,2,2020-01-02\n").WithColumn(ColumnCountry, "China")
	japan := mustParse(t, "latitude,longitude,acq_date\n3,3,2020-01-01\n").WithColumn(ColumnCountry, "Japan")

	got, err := CountByCountryName(table.Concat(placeholder, china, japan))
	if err != nil {
		t.Fatalf("CountByCountryName() error = %v", err)
	}
	want := []Bucket{
		{Key: "China", Label: "China", Count: 2},
		{Key: "Japan", Label: "Japan", Count: 1},
	}
	if diff := cmp.Diff(want, got.Buckets); diff != "" {
		t.Errorf("CountByCountryName() mismatch (-want +got):\n%s", diff)
	}

	if _, err := CountByCountryName(table.Concat(placeholder, china)); !failure.Is(err, ErrNotPlottable) {
		t.Errorf("single country error = %v, want %v", err, ErrNotPlottable)
	}
}

type fakeGeo struct {
	calls int
	fail  bool
}

func (f *fakeGeo) CountryOf(ctx context.Context, lat, lon float64) (string, error) {
	f.calls++
	if f.fail {
		return "", failure.New(geo.ErrTransport)
	}
	switch {
	case lat == 0 && lon == 0:
		return "", failure.New(geo.ErrNoCountry)
	case lon > 0:
		return "China", nil
	default:
		return "United States", nil
	}
}

func TestCountByCountryFromCoordinates(t *testing.T) {
	tbl := mustParse(t, "latitude,longitude,acq_date\n31.1,121.2,2023-01-10\n30.2,120.1,2023-01-10\n40.0,-120.0,2023-01-10\n0,0,2023-01-10\nbad,1,2023-01-10\n")
	ctx := context.Background()

	g := &fakeGeo{}
	got, err := CountByCountryFromCoordinates(ctx, tbl, testCatalog, g)
	if err != nil {
		t.Fatalf("CountByCountryFromCoordinates() error = %v", err)
	}
	want := []Bucket{
		{Key: "China", Label: "China", Count: 2},
		{Key: "United States", Label: "United States", Count: 1},
	}
	if diff := cmp.Diff(want, got.Buckets); diff != "" {
		t.Errorf("CountByCountryFromCoordinates() mismatch (-want +got):\n%s", diff)
	}
	if g.calls != 4 {
		t.Errorf("geocoder calls = %d, want 4", g.calls)
	}

	memo := geo.NewMemo(&fakeGeo{})
	if _, err := CountByCountryFromCoordinates(ctx, tbl, testCatalog, memo); err != nil {
		t.Errorf("memoized error = %v", err)
	}

	if _, err := CountByCountryFromCoordinates(ctx, tbl, testCatalog, &fakeGeo{fail: true}); !failure.Is(err, geo.ErrTransport) {
		t.Errorf("transport failure error = %v, want %v", err, geo.ErrTransport)
	}

	withCodes := mustParse(t, records)
	g = &fakeGeo{}
	if _, err := CountByCountryFromCoordinates(ctx, withCodes, testCatalog, g); err != nil {
		t.Errorf("with country codes error = %v", err)
	}
	if g.calls != 0 {
		t.Errorf("geocoder called %d times for a table with country codes", g.calls)
	}
}
