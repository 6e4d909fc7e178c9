package render

import (
	"bytes"
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// bulletStyle is a style ID from the default template, not its display name.
const bulletStyle = "ListBullet"

// Serialize writes the document as a .docx container.
func Serialize(d Document) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("create docx: %w", err)
	}

	for i, n := range d.Nodes {
		if err := writeNode(doc, n); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, n.Kind, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeNode(doc *docx.RootDoc, n Node) error {
	switch n.Kind {
	case KindTitle:
		_, err := doc.AddHeading(n.Text, 0)
		return err
	case KindHeading:
		return addHeading(doc, n.Text, n.Level)
	case KindBullet:
		doc.AddParagraph(n.Text).Style(bulletStyle)
	case KindParagraph:
		doc.AddParagraph(n.Text)
	case KindPageBreak:
		doc.AddPageBreak()
	default:
		return fmt.Errorf("unsupported node kind %d", n.Kind)
	}
	return nil
}

func addHeading(doc *docx.RootDoc, text string, level int) error {
	if level < 1 || level > 3 {
		return fmt.Errorf("unsupported heading level %d", level)
	}
	_, err := doc.AddHeading(text, uint(level))
	return err
}
