// Package selection describes what a pipeline run should fetch.
package selection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/firms/api/source"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for selections
type ErrorCode string

const (
	// ErrValidation is returned for selections that cannot be run
	ErrValidation ErrorCode = "Validation"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Mode selects the online API or the offline archive
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Area selects per-country requests or the whole world
type Area string

const (
	AreaCountry Area = "country"
	AreaWorld   Area = "world"
)

const (
	MinDayRange = 1
	MaxDayRange = 10
)

// Selection is the user's choice of data. It is passed by value.
type Selection struct {
	Mode Mode `json:"mode" validate:"oneof=online offline"`
	Area Area `json:"area" validate:"oneof=country world"`

	// Countries are codes in online mode and display names offline
	Countries []string `json:"countries" validate:"dive,required"`

	Source source.Type `json:"source" validate:"required"`

	// Online only
	MapKey   string    `json:"-"`
	Date     time.Time `json:"date"`
	DayRange int       `json:"day_range"`

	// Offline only
	BeginYear int `json:"begin_year"`
	EndYear   int `json:"end_year"`

	// Geocode derives countries from coordinates when records lack a country column
	Geocode bool `json:"geocode"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateMode, Selection{})
	return v
}

func validateMode(sl validator.StructLevel) {
	s := sl.Current().Interface().(Selection)

	if s.Area == AreaCountry && len(s.Countries) == 0 {
		sl.ReportError(s.Countries, "Countries", "Countries", "countries", "")
	}

	switch s.Mode {
	case ModeOnline:
		if !s.Source.IsOnline() {
			sl.ReportError(s.Source, "Source", "Source", "online_source", "")
		}
		if s.MapKey == "" {
			sl.ReportError(s.MapKey, "MapKey", "MapKey", "map_key", "")
		}
		if s.Date.IsZero() {
			sl.ReportError(s.Date, "Date", "Date", "date", "")
		}
		if s.DayRange < MinDayRange || s.DayRange > MaxDayRange {
			sl.ReportError(s.DayRange, "DayRange", "DayRange", "day_range", "")
		}
	case ModeOffline:
		if s.Source != source.TypeLocalModis {
			sl.ReportError(s.Source, "Source", "Source", "offline_source", "")
		}
		if s.BeginYear <= 0 || s.EndYear <= 0 {
			sl.ReportError(s.BeginYear, "BeginYear", "BeginYear", "year", "")
		} else if s.BeginYear > s.EndYear {
			sl.ReportError(s.BeginYear, "BeginYear", "BeginYear", "year_order", "")
		}
	}
}

var messages = map[string]string{
	"oneof":          "%s has an unsupported value",
	"required":       "%s is required",
	"countries":      "Select at least one country",
	"online_source":  "Source is not served by the FIRMS API",
	"offline_source": "Offline archives only hold MODIS(SP) data",
	"map_key":        "FIRMS MAP_KEY is required",
	"date":           "Date is required",
	"day_range":      fmt.Sprintf("Date range must be between %d and %d days", MinDayRange, MaxDayRange),
	"year":           "Begin and end years are required",
	"year_order":     "Begin year should be earlier than end year!",
}

// Normalize fills defaults and canonicalizes country codes
func (s Selection) Normalize() Selection {
	if s.Area == "" {
		s.Area = AreaCountry
	}
	if s.Mode == ModeOnline {
		s.Countries = normalizeCodes(s.Countries)
		if s.Date.IsZero() {
			return s
		}
		y, m, d := s.Date.Date()
		s.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return s
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, strings.ToUpper(strings.TrimSpace(c)))
	}
	return out
}

// Validate reports the first problem with the selection as ErrValidation
func (s Selection) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return failure.Translate(err, ErrValidation)
	}

	fe := verrs[0]
	msg := "Invalid selection"
	if tmpl, ok := messages[fe.Tag()]; ok {
		msg = tmpl
		if strings.Contains(tmpl, "%s") {
			msg = fmt.Sprintf(tmpl, fe.Field())
		}
	}
	return failure.New(ErrValidation,
		failure.Message(msg),
		failure.Context{"field": fe.Field(), "rule": fe.Tag()},
	)
}

// Years returns the inclusive offline year range
func (s Selection) Years() []int {
	if s.BeginYear > s.EndYear {
		return nil
	}
	years := make([]int, 0, s.EndYear-s.BeginYear+1)
	for y := s.BeginYear; y <= s.EndYear; y++ {
		years = append(years, y)
	}
	return years
}
