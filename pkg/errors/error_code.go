package errors

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 104
	ErrCodeInvalidDialect       ErrorCode = 105

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeResultWriteFailed     ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyLoadFailed  ErrorCode = 400
	ErrCodeStrategyParseFailed ErrorCode = 401
	ErrCodeStrategyInvalid     ErrorCode = 402
	ErrCodeVersionMismatch     ErrorCode = 403
	ErrCodeUnknownCategory     ErrorCode = 404

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed  ErrorCode = 600
	ErrCodeBacktestConfigError ErrorCode = 601
	ErrCodeBacktestNoData      ErrorCode = 602
	ErrCodeBacktestCancelled   ErrorCode = 603
	ErrCodeBacktestNotReady    ErrorCode = 604

	// Portfolio errors (700-799)
	ErrCodeUnknownInstrument ErrorCode = 700
	ErrCodePortfolioFull     ErrorCode = 701
	ErrCodePairRejected      ErrorCode = 702

	// Code generation errors (900-999)
	ErrCodeUnresolvableNode ErrorCode = 900
	ErrCodeCodegenFailed    ErrorCode = 901
)
