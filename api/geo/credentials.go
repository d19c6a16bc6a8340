package geo

import (
	"os"
	"strings"

	"github.com/morikuni/failure/v2"
)

// Credentials are the Baidu access key and the secret key used for signing
type Credentials struct {
	AK string
	SK string
}

// LoadCredentials reads a key file whose first line is the AK and second line is the SK
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, failure.Translate(err, ErrConfiguration,
			failure.Context{"path": path},
			failure.Message("Cannot read the geocoding key file"),
		)
	}
	c, err := ParseCredentials(string(data))
	if err != nil {
		return Credentials{}, failure.Wrap(err, failure.Context{"path": path})
	}
	return c, nil
}

// ParseCredentials parses the two line key file contents
func ParseCredentials(s string) (Credentials, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Credentials{}, failure.New(ErrConfiguration,
			failure.Message("Key file must contain the AK and SK on two lines"),
		)
	}
	c := Credentials{
		AK: strings.TrimSpace(lines[0]),
		SK: strings.TrimSpace(lines[1]),
	}
	if c.AK == "" || c.SK == "" {
		return Credentials{}, failure.New(ErrConfiguration,
			failure.Message("Key file must contain the AK and SK on two lines"),
		)
	}
	return c, nil
}
