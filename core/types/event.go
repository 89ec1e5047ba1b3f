package types

// Event is the structured record emitted by ledger state transitions. The
// attribute map carries every event field rendered as a string; rich audit
// metadata (deed and offering text) lives only here, never in ledger state.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute returns the named attribute or the empty string when absent.
func (e *Event) Attribute(key string) string {
	if e == nil || e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}
