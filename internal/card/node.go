// Package card builds chat card documents as an abstract tree and serialises
// them to the messaging platform's flex JSON.
package card

import "encoding/json"

type Action struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
	Data  string `json:"data,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// Node is one box, text, separator or button in the tree.
type Node struct {
	Type     string  `json:"type"`
	Layout   string  `json:"layout,omitempty"`
	Text     string  `json:"text,omitempty"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Weight   string  `json:"weight,omitempty"`
	Align    string  `json:"align,omitempty"`
	Margin   string  `json:"margin,omitempty"`
	Spacing  string  `json:"spacing,omitempty"`
	Style    string  `json:"style,omitempty"`
	Flex     *int    `json:"flex,omitempty"`
	Wrap     bool    `json:"wrap,omitempty"`
	Action   *Action `json:"action,omitempty"`
	Contents []*Node `json:"contents,omitempty"`
}

type Bubble struct {
	Type   string `json:"type"`
	Size   string `json:"size,omitempty"`
	Body   *Node  `json:"body"`
	Footer *Node  `json:"footer,omitempty"`
}

// Document is a complete card plus the text shown where cards cannot render.
type Document struct {
	AltText string
	Bubble  Bubble
}

func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d.Bubble)
}

func flex(n int) *int {
	return &n
}

func Box(layout string, contents ...*Node) *Node {
	return &Node{Type: "box", Layout: layout, Contents: contents}
}

func Separator(margin string) *Node {
	return &Node{Type: "separator", Margin: margin}
}
