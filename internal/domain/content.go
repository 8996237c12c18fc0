package domain

import (
	"encoding/json"
)

// ContentNode is one node of a glossary content tree. It is a tagged
// variant: exactly one of the three kinds applies, selected by Kind.
//
//   - NodeKindText: Text holds the literal string, all other fields empty.
//   - NodeKindElement: Tag names the element; Lang, Title and Marker are
//     optional attributes; Children holds the element content in order.
//   - NodeKindList: Children holds the sibling nodes of a bare JSON array.
//
// Marker carries the semantic category label ("sense", "glossary",
// "part-of-speech-info", ...) stored under data.content on the wire.
type ContentNode struct {
	Kind     NodeKind
	Text     string
	Tag      string
	Lang     string
	Title    string
	Marker   string
	Children []ContentNode
}

// TextNode builds a plain-text node.
func TextNode(text string) ContentNode {
	return ContentNode{Kind: NodeKindText, Text: text}
}

// contentNodeWire is the JSON object shape of an element node. A bare
// string or a bare array are handled before this shape is tried.
type contentNodeWire struct {
	Tag     string            `json:"tag,omitempty"`
	Lang    string            `json:"lang,omitempty"`
	Title   string            `json:"title,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
	Content json.RawMessage   `json:"content,omitempty"`
}

// UnmarshalJSON decodes the wire shape (string | object | array) into the
// variant. Decoding is lenient: JSON values that fit none of the three
// shapes (numbers, booleans, null) become empty text nodes so that one
// odd node never poisons a whole document.
func (n *ContentNode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = ContentNode{Kind: NodeKindText, Text: s}
		return nil
	}

	var list []ContentNode
	if err := json.Unmarshal(data, &list); err == nil {
		*n = ContentNode{Kind: NodeKindList, Children: list}
		return nil
	}

	var wire contentNodeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		*n = ContentNode{Kind: NodeKindText}
		return nil
	}

	node := ContentNode{
		Kind:   NodeKindElement,
		Tag:    wire.Tag,
		Lang:   wire.Lang,
		Title:  wire.Title,
		Marker: wire.Data["content"],
	}
	if len(wire.Content) > 0 && string(wire.Content) != "null" {
		var child ContentNode
		if err := json.Unmarshal(wire.Content, &child); err == nil {
			if child.Kind == NodeKindList {
				node.Children = child.Children
			} else {
				node.Children = []ContentNode{child}
			}
		}
	}
	*n = node
	return nil
}

// MarshalJSON encodes the variant back to the canonical wire shape: text
// as a bare string, lists as arrays, elements as objects with a single
// text child collapsed to a string.
func (n ContentNode) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case NodeKindText:
		return json.Marshal(n.Text)
	case NodeKindList:
		return json.Marshal(n.Children)
	}

	wire := map[string]any{}
	if n.Tag != "" {
		wire["tag"] = n.Tag
	}
	if n.Lang != "" {
		wire["lang"] = n.Lang
	}
	if n.Title != "" {
		wire["title"] = n.Title
	}
	if n.Marker != "" {
		wire["data"] = map[string]string{"content": n.Marker}
	}
	switch {
	case len(n.Children) == 1 && n.Children[0].Kind == NodeKindText:
		wire["content"] = n.Children[0].Text
	case len(n.Children) > 0:
		wire["content"] = n.Children
	}
	return json.Marshal(wire)
}

// IsText reports whether the node is a plain-text leaf.
func (n ContentNode) IsText() bool { return n.Kind == NodeKindText }

// HasOnlyText reports whether the node's content is plain text: a text
// leaf itself, or an element/list whose every child is a text leaf.
func (n ContentNode) HasOnlyText() bool {
	if n.Kind == NodeKindText {
		return true
	}
	if len(n.Children) == 0 {
		return false
	}
	for _, c := range n.Children {
		if c.Kind != NodeKindText {
			return false
		}
	}
	return true
}

// ParseGlossary deserializes a stored glossary column into its document
// list. Malformed input yields an empty document list, never an error.
func ParseGlossary(raw []byte) []ContentNode {
	if len(raw) == 0 {
		return nil
	}
	var docs []ContentNode
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil
	}
	return docs
}

// EncodeGlossary serializes a document list to its canonical stored form.
// A nil list encodes as an empty JSON array.
func EncodeGlossary(docs []ContentNode) ([]byte, error) {
	if docs == nil {
		docs = []ContentNode{}
	}
	return json.Marshal(docs)
}
