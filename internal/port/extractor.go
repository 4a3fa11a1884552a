package port

// Extractor turns an uploaded document into extracted markdown text.
// The only contract is "a string of extracted text"; callers are responsible
// for bounding length and validating non-emptiness before ingestion.
type Extractor interface {
	Extract(path string) (string, error)
}
