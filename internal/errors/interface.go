package errors

// ErrorCode identifies a failure independently of its message. Packages
// declare their own codes next to the code that returns them.
type ErrorCode string

// Error is a coded error. Is reports a match for any target carrying the
// same code, so errors.Is(err, factory.New(code)) finds code anywhere in
// err's chain; CodeOf returns the first code in the chain.
type Error interface {
	error
	Code() ErrorCode
	Is(target error) bool
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds coded errors. Wrap keeps err reachable through Unwrap;
// WithData attaches structured context for logging.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
