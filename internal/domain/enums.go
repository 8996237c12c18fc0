package domain

// MatchType selects the comparison strategy of a term search.
type MatchType string

const (
	MatchTypeExact  MatchType = "exact"
	MatchTypePrefix MatchType = "prefix"
	MatchTypeSuffix MatchType = "suffix"
)

func (t MatchType) String() string { return string(t) }

func (t MatchType) IsValid() bool {
	switch t {
	case MatchTypeExact, MatchTypePrefix, MatchTypeSuffix:
		return true
	}
	return false
}

// Normalized coerces unknown strategy values to exact-match semantics.
func (t MatchType) Normalized() MatchType {
	if !t.IsValid() {
		return MatchTypeExact
	}
	return t
}

// MatchSource identifies which indexed field produced a match.
type MatchSource string

const (
	MatchSourceExpression MatchSource = "expression"
	MatchSourceReading    MatchSource = "reading"
)

func (s MatchSource) String() string { return string(s) }

func (s MatchSource) IsValid() bool {
	switch s {
	case MatchSourceExpression, MatchSourceReading:
		return true
	}
	return false
}

// TokenClass identifies how the analyzer classified a token surface.
type TokenClass string

const (
	TokenClassKnown   TokenClass = "known"
	TokenClassUnknown TokenClass = "unknown"
	TokenClassUser    TokenClass = "user"
)

func (c TokenClass) String() string { return string(c) }

func (c TokenClass) IsValid() bool {
	switch c {
	case TokenClassKnown, TokenClassUnknown, TokenClassUser:
		return true
	}
	return false
}

// NodeKind discriminates the content-node variant.
type NodeKind string

const (
	NodeKindText    NodeKind = "text"
	NodeKindElement NodeKind = "element"
	NodeKindList    NodeKind = "list"
)

func (k NodeKind) String() string { return string(k) }

func (k NodeKind) IsValid() bool {
	switch k {
	case NodeKindText, NodeKindElement, NodeKindList:
		return true
	}
	return false
}

// MetaMode identifies the kind of a term-meta side-table row.
type MetaMode string

const (
	MetaModeFrequency MetaMode = "freq"
	MetaModePitch     MetaMode = "pitch"
	MetaModeIPA       MetaMode = "ipa"
)

func (m MetaMode) String() string { return string(m) }

func (m MetaMode) IsValid() bool {
	switch m {
	case MetaModeFrequency, MetaModePitch, MetaModeIPA:
		return true
	}
	return false
}
