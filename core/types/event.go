package types

// Event is the canonical ledger event payload surfaced to callers alongside a
// transaction result.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
