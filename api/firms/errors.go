package firms

// ErrorCode defines error types for FIRMS API operations
type ErrorCode string

const (
	// ErrTransport represents network failures and non-2xx responses
	ErrTransport ErrorCode = "Transport"

	// ErrParse represents response bodies that are not the expected shape
	ErrParse ErrorCode = "Parse"

	// ErrInvalidMapKey is returned by MapKeyStatus for rejected or exhausted keys
	ErrInvalidMapKey ErrorCode = "InvalidMapKey"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
