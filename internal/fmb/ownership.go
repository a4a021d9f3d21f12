package fmb

import "strings"

// DefaultIndexTokens are the block-index prefixes observed in source
// documents (B1_HEADER, B2_LINES, ...).
var DefaultIndexTokens = []string{"B1", "B2", "B3"}

// Ownership decides whether an item belongs to a block.
type Ownership interface {
	Owns(blockName, itemName string) bool
}

// PrefixOwnership matches items to blocks by name. An item belongs to a
// block when its name starts with the block name, or when the block name
// starts with an index token and the item name starts with no other token.
type PrefixOwnership struct {
	IndexTokens []string
}

// Owns implements Ownership.
func (p PrefixOwnership) Owns(blockName, itemName string) bool {
	block, item := strings.ToUpper(blockName), strings.ToUpper(itemName)
	if block == "" || item == "" {
		return false
	}
	if strings.HasPrefix(item, block) {
		return true
	}
	token := p.token(block)
	if token == "" {
		return false
	}
	for _, other := range p.tokens() {
		if other != token && strings.HasPrefix(item, other) {
			return false
		}
	}
	return true
}

func (p PrefixOwnership) tokens() []string {
	if len(p.IndexTokens) == 0 {
		return DefaultIndexTokens
	}
	out := make([]string, len(p.IndexTokens))
	for i, t := range p.IndexTokens {
		out[i] = strings.ToUpper(t)
	}
	return out
}

// token returns the longest index token the block name starts with.
func (p PrefixOwnership) token(block string) string {
	best := ""
	for _, t := range p.tokens() {
		if strings.HasPrefix(block, t) && len(t) > len(best) {
			best = t
		}
	}
	return best
}

// assignBlock picks the owning block for item. Among the blocks that own
// it, the longest name that is a literal prefix of the item wins; without
// one, the first owner in document order. The second result is false when
// no block owns the item.
func assignBlock(own Ownership, blocks []string, item string) (string, bool) {
	var first, direct string
	upper := strings.ToUpper(item)
	for _, b := range blocks {
		if !own.Owns(b, item) {
			continue
		}
		if first == "" {
			first = b
		}
		if strings.HasPrefix(upper, strings.ToUpper(b)) && len(b) > len(direct) {
			direct = b
		}
	}
	switch {
	case direct != "":
		return direct, true
	case first != "":
		return first, true
	default:
		return "", false
	}
}
