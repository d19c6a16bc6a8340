package api

import (
	"context"
	"strings"
	"time"

	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/selection"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

// Defaults applied to empty user input
var (
	DefaultOnlineCountries  = []string{"CHN", "USA"}
	DefaultOfflineCountries = []string{"China", "United States"}
	DefaultBeginYear        = 2020
	DefaultEndYear          = 2022
	DefaultDayRange         = 1
)

// UserInput is a structure that represents input from the user
type UserInput struct {
	Offline bool
	World   bool

	// Countries are codes or display names
	Countries []string
	Source    string

	// Date is YYYY-MM-DD. Empty means the latest date the source has.
	Date     string
	DayRange int
	MapKey   string

	BeginYear int
	EndYear   int

	Geocode bool
}

// Selection turns raw input into a selection, filling defaults and
// resolving country codes and names through the catalog
func (s *Session) Selection(ctx context.Context, in UserInput) (selection.Selection, error) {
	if in.Offline {
		return s.offlineSelection(in)
	}
	return s.onlineSelection(ctx, in)
}

func (s *Session) onlineSelection(ctx context.Context, in UserInput) (selection.Selection, error) {
	sel := selection.Selection{
		Mode:     selection.ModeOnline,
		Area:     selection.AreaCountry,
		Source:   source.Default,
		MapKey:   in.MapKey,
		DayRange: in.DayRange,
		Geocode:  in.Geocode,
	}
	if sel.MapKey == "" {
		sel.MapKey = s.Config.MapKey
	}
	if sel.DayRange == 0 {
		sel.DayRange = DefaultDayRange
	}
	if in.Source != "" {
		src, err := source.Parse(in.Source)
		if err != nil {
			return selection.Selection{}, failure.Translate(err, selection.ErrValidation)
		}
		sel.Source = src
	}

	if in.World {
		sel.Area = selection.AreaWorld
	} else {
		codes, err := s.countryCodes(ctx, in.Countries)
		if err != nil {
			return selection.Selection{}, err
		}
		sel.Countries = codes
	}

	date, err := s.anchorDate(ctx, in.Date, sel)
	if err != nil {
		return selection.Selection{}, err
	}
	sel.Date = date
	return sel, nil
}

func (s *Session) countryCodes(ctx context.Context, input []string) ([]string, error) {
	if len(input) == 0 {
		return append([]string(nil), DefaultOnlineCountries...), nil
	}
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(input))
	for _, c := range input {
		country, err := cat.Resolve(strings.TrimSpace(c))
		if err != nil {
			return nil, failure.New(selection.ErrValidation,
				failure.Message("Unknown country: "+c),
				failure.Context{"country": c},
			)
		}
		codes = append(codes, country.Code)
	}
	return codes, nil
}

// anchorDate parses the requested date and bounds it to what the source
// has archived. An empty date picks the newest available day.
func (s *Session) anchorDate(ctx context.Context, raw string, sel selection.Selection) (time.Time, error) {
	var date time.Time
	if raw != "" {
		d, err := time.Parse(firms.DateLayout, raw)
		if err != nil {
			return time.Time{}, failure.New(selection.ErrValidation,
				failure.Message("Date must be YYYY-MM-DD"),
				failure.Context{"date": raw},
			)
		}
		date = d
	}
	if sel.MapKey == "" {
		// validation reports the missing key
		return date, nil
	}

	avail, err := s.Client.DataAvailability(ctx, sel.MapKey, sel.Source)
	if err != nil {
		if date.IsZero() {
			return time.Time{}, err
		}
		log.Debug("data availability unknown", "source", sel.Source, "error", err)
		return date, nil
	}
	if date.IsZero() {
		return avail.MaxDate, nil
	}
	if !avail.Contains(date) {
		clamped := avail.Clamp(date)
		log.Warn("date is outside the available range",
			"date", date.Format(firms.DateLayout),
			"using", clamped.Format(firms.DateLayout),
		)
		return clamped, nil
	}
	return date, nil
}

func (s *Session) offlineSelection(in UserInput) (selection.Selection, error) {
	sel := selection.Selection{
		Mode:      selection.ModeOffline,
		Area:      selection.AreaCountry,
		Source:    source.TypeLocalModis,
		Countries: in.Countries,
		BeginYear: in.BeginYear,
		EndYear:   in.EndYear,
	}
	if in.Source != "" && !strings.EqualFold(in.Source, sel.Source.String()) {
		return selection.Selection{}, failure.New(selection.ErrValidation,
			failure.Message("Offline archives only hold MODIS(SP) data"),
			failure.Context{"source": in.Source},
		)
	}
	if in.World {
		sel.Area = selection.AreaWorld
		sel.Countries = nil
	} else if len(sel.Countries) == 0 {
		sel.Countries = append([]string(nil), DefaultOfflineCountries...)
	}
	if sel.BeginYear == 0 {
		sel.BeginYear = DefaultBeginYear
	}
	if sel.EndYear == 0 {
		sel.EndYear = DefaultEndYear
	}
	return sel, nil
}
