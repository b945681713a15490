// Package extract implements the Article Extractor (C3): fetches an
// article's HTML and pulls a clean title/body out of it through a
// fallback chain of content-selection strategies.
package extract

// FailureKind classifies why an extraction attempt did not produce an
// Article, per spec §4.3.
type FailureKind string

const (
	FailureNetworkError FailureKind = "NetworkError"
	FailureHTTPError    FailureKind = "HTTPError"
	FailureTimeout      FailureKind = "Timeout"
	FailureBodyTooShort FailureKind = "BodyTooShort"
	FailureUnparseable  FailureKind = "Unparseable"
)

// Failure is the error value an Extract call returns on the non-Article
// path.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Kind) + ": " + f.Err.Error()
	}
	return string(f.Kind)
}
