package source

import (
	"strings"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for source lookups
type ErrorCode string

const (
	// ErrUnknownSource is returned for identifiers the provider does not serve
	ErrUnknownSource ErrorCode = "UnknownSource"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Type represents a FIRMS data source identifier
type Type string

// String returns the string representation of the Type
func (s Type) String() string {
	return string(s)
}

const (
	TypeLandsatNRT     Type = "LANDSAT_NRT"
	TypeModisNRT       Type = "MODIS_NRT"
	TypeModisSP        Type = "MODIS_SP"
	TypeViirsNOAA20NRT Type = "VIIRS_NOAA20_NRT"
	TypeViirsSNPPNRT   Type = "VIIRS_SNPP_NRT"
	TypeViirsSNPPSP    Type = "VIIRS_SNPP_SP"

	// TypeLocalModis is the offline archive layout name
	TypeLocalModis Type = "modis"

	TypeUnknown Type = ""
)

// Default is the source preselected for online queries
const Default = TypeModisSP

var online = []Type{
	TypeLandsatNRT,
	TypeModisNRT,
	TypeModisSP,
	TypeViirsNOAA20NRT,
	TypeViirsSNPPNRT,
	TypeViirsSNPPSP,
}

var displayNames = map[Type]string{
	TypeLandsatNRT:     "LANDSAT (NRT) [US/Canada only]",
	TypeModisNRT:       "MODIS (URT+NRT)",
	TypeModisSP:        "MODIS(SP)",
	TypeViirsNOAA20NRT: "VIIRS NOAA-20(URT+NRT)",
	TypeViirsSNPPNRT:   "VIIRS S-NPP(URT+NRT)",
	TypeViirsSNPPSP:    "VIIRS S-NPP(SP)",
	TypeLocalModis:     "MODIS(SP)",
}

// Online returns the sources served by the FIRMS API, in display order
func Online() []Type {
	return append([]Type(nil), online...)
}

// DisplayName returns the human readable label shown next to a source
func (s Type) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return s.String()
}

// Instrument returns the sensor family of the source
func (s Type) Instrument() string {
	name := strings.ToUpper(s.String())
	if i := strings.Index(name, "_"); i >= 0 {
		return name[:i]
	}
	return name
}

// IsOnline returns true if the FIRMS API serves the source
func (s Type) IsOnline() bool {
	return lo.Contains(online, s)
}

// IsStandardProcessing returns true for the archived SP tiers
func (s Type) IsStandardProcessing() bool {
	return strings.HasSuffix(s.String(), "_SP")
}

// Parse resolves a user supplied identifier case-insensitively
func Parse(s string) (Type, error) {
	t, ok := lo.Find(online, func(t Type) bool {
		return strings.EqualFold(t.String(), strings.TrimSpace(s))
	})
	if !ok {
		return TypeUnknown, failure.New(ErrUnknownSource,
			failure.Message("Unknown data source"),
			failure.Context{"source": s},
		)
	}
	return t, nil
}
