package money

// Currency identifies a display currency. Code is the ISO 4217 code;
// symbol and name are optional catalog metadata.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol,omitempty"`
	Name   string `json:"name,omitempty"`
}
