package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidArguments  ErrorCode = "InvalidArguments"
	InvalidSourceFlag ErrorCode = "InvalidSourceFlag"
	InvalidDateFlag   ErrorCode = "InvalidDateFlag"
	NothingToOpen     ErrorCode = "NothingToOpen"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
