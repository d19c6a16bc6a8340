package cli

import (
	"time"

	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/source"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/pflag"
)

// sourceFlag accepts a FIRMS source identifier, case-insensitively
type sourceFlag struct {
	IsSet bool
	Value source.Type
}

// String implements pflag.Value.
func (s *sourceFlag) String() string {
	return s.Value.String()
}

func (s *sourceFlag) Set(value string) error {
	t, err := source.Parse(value)
	if err != nil {
		return failure.Translate(err, InvalidSourceFlag)
	}
	s.Value = t
	s.IsSet = true
	return nil
}

func (s *sourceFlag) Type() string {
	return "source"
}

// dateFlag accepts a calendar date in YYYY-MM-DD form
type dateFlag struct {
	IsSet bool
	Value time.Time
}

// String implements pflag.Value.
func (d *dateFlag) String() string {
	if !d.IsSet {
		return ""
	}
	return d.Value.Format(firms.DateLayout)
}

func (d *dateFlag) Set(value string) error {
	t, err := time.Parse(firms.DateLayout, value)
	if err != nil {
		return failure.New(InvalidDateFlag,
			failure.Message("Date must be YYYY-MM-DD"),
			failure.Context{"date": value},
		)
	}
	d.Value = t
	d.IsSet = true
	return nil
}

func (d *dateFlag) Type() string {
	return "date"
}

var (
	_ pflag.Value = &sourceFlag{}
	_ pflag.Value = &dateFlag{}
)
