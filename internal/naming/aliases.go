package naming

import "strings"

// AliasTable maps camera model strings to short canonical tokens. Lookups are
// case-insensitive exact matches. The zero value holds no aliases.
type AliasTable struct {
	tokens map[string]string
}

var defaultAliases = map[string]string{
	"Canon EOS REBEL T2i": "canont2i",
	"Canon EOS R6":        "canonr6",
	"Galaxy S23":          "galaxys23",
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return NewAliasTable(defaultAliases)
}

// NewAliasTable copies entries into a new table.
func NewAliasTable(entries map[string]string) AliasTable {
	tokens := make(map[string]string, len(entries))
	for model, token := range entries {
		tokens[strings.ToLower(model)] = token
	}
	return AliasTable{tokens: tokens}
}

// With returns a new table holding the receiver's entries overridden by extra.
func (a AliasTable) With(extra map[string]string) AliasTable {
	tokens := make(map[string]string, len(a.tokens)+len(extra))
	for k, v := range a.tokens {
		tokens[k] = v
	}
	for model, token := range extra {
		tokens[strings.ToLower(model)] = token
	}
	return AliasTable{tokens: tokens}
}

// Lookup returns the alias of model, if any.
func (a AliasTable) Lookup(model string) (string, bool) {
	token, ok := a.tokens[strings.ToLower(model)]
	return token, ok
}

// Len returns the number of aliases.
func (a AliasTable) Len() int {
	return len(a.tokens)
}

// NormalizeModel returns the alias of model, or model lowercased with its
// spaces removed.
func (a AliasTable) NormalizeModel(model string) string {
	if token, ok := a.Lookup(model); ok {
		return token
	}
	return strings.ReplaceAll(strings.ToLower(model), " ", "")
}
