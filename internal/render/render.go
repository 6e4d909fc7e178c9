// Package render turns summarization output into a Word document.
//
// Only a small line-oriented markdown subset is understood: headings
// ("# ", "## ", "### "), bullet lines ("- ") and plain paragraphs.
// Everything else is treated as paragraph text.
package render

import "strings"

const (
	// TitleText is the document title placed before the minutes.
	TitleText = "AI-generated minutes"
	// TranscriptHeading introduces the appended raw transcript.
	TranscriptHeading = "Full transcript"
)

// Kind is the structural type of a document node.
type Kind int

const (
	KindTitle Kind = iota
	KindHeading
	KindBullet
	KindParagraph
	KindPageBreak
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	case KindParagraph:
		return "paragraph"
	case KindPageBreak:
		return "pagebreak"
	default:
		return "unknown"
	}
}

// Node is a single block of the rendered document.
// Level is only meaningful for headings (1-3) and is 0 for the title.
type Node struct {
	Kind  Kind
	Level int
	Text  string
}

// Document is the ordered node sequence of a minutes document.
type Document struct {
	Nodes []Node
}

type rule struct {
	prefix string
	kind   Kind
	level  int
}

// rules are evaluated top to bottom; "### " must be tried before "## "
// and "# " since the shorter prefixes would also match it.
var rules = []rule{
	{prefix: "### ", kind: KindHeading, level: 3},
	{prefix: "## ", kind: KindHeading, level: 2},
	{prefix: "# ", kind: KindHeading, level: 1},
	{prefix: "- ", kind: KindBullet},
}

// Classify maps one line to a node. ok is false for blank lines.
func Classify(line string) (n Node, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Node{}, false
	}
	for _, r := range rules {
		if rest, found := strings.CutPrefix(line, r.prefix); found {
			return Node{Kind: r.kind, Level: r.level, Text: rest}, true
		}
	}
	return Node{Kind: KindParagraph, Text: line}, true
}

// Build produces the node sequence for the given minutes text and transcript.
// It is a pure function of its inputs.
func Build(minutes, transcript string) Document {
	nodes := []Node{{Kind: KindTitle, Text: TitleText}}
	for _, line := range strings.Split(minutes, "\n") {
		if n, ok := Classify(line); ok {
			nodes = append(nodes, n)
		}
	}
	nodes = append(nodes,
		Node{Kind: KindPageBreak},
		Node{Kind: KindHeading, Level: 1, Text: TranscriptHeading},
		Node{Kind: KindParagraph, Text: transcript},
	)
	return Document{Nodes: nodes}
}

// Render builds and serializes a minutes document.
func Render(minutes, transcript string) ([]byte, error) {
	return Serialize(Build(minutes, transcript))
}
