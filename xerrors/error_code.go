package xerrors

// Code identifies a category and a specific failure within it.
type Code int

const (
	CodeUnknown Code = 1

	// Configuration errors (100-199): invalid strategy description, bad
	// sizing policy, malformed condition/rule descriptor. Fatal at
	// construction; the run never starts.
	CodeInvalidStrategy  Code = 100
	CodeInvalidCondition Code = 101
	CodeInvalidRule      Code = 102
	CodeInvalidSizing    Code = 103
	CodeMissingField     Code = 104

	// Data errors (200-299): candle source returned nothing, or fewer
	// candles than the strategy's max indicator lookback.
	CodeNoData              Code = 200
	CodeInsufficientCandles Code = 201
	CodeUnorderedCandles    Code = 202

	// Indicator errors (300-399): unknown base, non-positive period,
	// insufficient input for the requested lookback.
	CodeUnknownIndicator    Code = 300
	CodeInvalidPeriod       Code = 301
	CodeInsufficientData    Code = 302
	CodeIndicatorCalcFailed Code = 303

	// Execution anomalies (400-499): recovered locally, logged, run
	// continues. Never returned as a fatal error, but shared codes let
	// callers classify log lines uniformly.
	CodeSignalIgnored    Code = 400
	CodeInsufficientCash Code = 401
	CodeSubShareQuantity Code = 402
	CodeMissingMarkPrice Code = 403

	// Snapshot incompleteness (500-599): an indicator not yet past its
	// lookback at the current bar. Never fatal.
	CodeIndicatorNotReady Code = 500
)
