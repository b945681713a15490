package feedfetch

// Outcome classifies the result of a single feed fetch attempt, per
// spec §4.2. Non-Ok outcomes yield zero entries but are never fatal to
// the caller.
type Outcome string

const (
	OutcomeOK                  Outcome = "Ok"
	OutcomeNetworkError        Outcome = "NetworkError"
	OutcomeHTTPError           Outcome = "HTTPError"
	OutcomeParseError          Outcome = "ParseError"
	OutcomeTimeout             Outcome = "Timeout"
	OutcomeCharsetUnresolvable Outcome = "CharsetUnresolvable"
)

// Result bundles the outcome of one fetch with any resulting entries and
// the HTTP status when the outcome was HTTPError.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}
