package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	return zipEntry(t, data, "word/document.xml")
}

func zipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("%s not found", name)
	return ""
}

// docxParagraph is the part of a <w:p> the renderer controls.
type docxParagraph struct {
	Style     string
	Text      string
	PageBreak bool
}

func paragraphs(t *testing.T, docXML string) []docxParagraph {
	t.Helper()

	var (
		out    []docxParagraph
		cur    *docxParagraph
		inText bool
	)
	dec := xml.NewDecoder(strings.NewReader(docXML))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				cur = &docxParagraph{}
			case "pStyle":
				if cur != nil {
					cur.Style = attr(el, "val")
				}
			case "br":
				if cur != nil && attr(el, "type") == "page" {
					cur.PageBreak = true
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				if cur != nil {
					out = append(out, *cur)
				}
				cur = nil
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && cur != nil {
				cur.Text += string(el)
			}
		}
	}
	return out
}

func styleIDs(t *testing.T, stylesXML string) map[string]bool {
	t.Helper()

	ids := map[string]bool{}
	dec := xml.NewDecoder(strings.NewReader(stylesXML))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "style" {
			ids[attr(el, "styleId")] = true
		}
	}
	return ids
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func TestRender(t *testing.T) {
	minutes := "# 議事録\n## 1. 要約\nテスト概要です。\n## 2. 決定事項\n- 決定Aを承認"

	data, err := Render(minutes, "speaker1, 00:00:01, こんにちは")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	want := []docxParagraph{
		{Style: "Title", Text: TitleText},
		{Style: "Heading1", Text: "議事録"},
		{Style: "Heading2", Text: "1. 要約"},
		{Text: "テスト概要です。"},
		{Style: "Heading2", Text: "2. 決定事項"},
		{Style: bulletStyle, Text: "決定Aを承認"},
		{PageBreak: true},
		{Style: "Heading1", Text: TranscriptHeading},
		{Text: "speaker1, 00:00:01, こんにちは"},
	}
	assert.Equal(t, want, fromTitle(paragraphs(t, documentXML(t, data))))
}

// fromTitle drops anything the base template places before the title.
func fromTitle(ps []docxParagraph) []docxParagraph {
	for i, p := range ps {
		if p.Style == "Title" {
			return ps[i:]
		}
	}
	return ps
}

func TestRender_StylesResolve(t *testing.T) {
	data, err := Render("# a\n## b\n### c\n- d", "e")
	require.NoError(t, err)

	defined := styleIDs(t, zipEntry(t, data, "word/styles.xml"))
	for _, p := range paragraphs(t, documentXML(t, data)) {
		if p.Style == "" {
			continue
		}
		assert.True(t, defined[p.Style], "style %q is not defined in styles.xml", p.Style)
	}
	assert.True(t, defined[bulletStyle])
}

func TestRender_EmptyTranscript(t *testing.T) {
	data, err := Render("", "")
	require.NoError(t, err)

	ps := paragraphs(t, documentXML(t, data))
	require.NotEmpty(t, ps)
	assert.Equal(t, docxParagraph{Style: "Heading1", Text: TranscriptHeading}, ps[len(ps)-2])
	assert.Equal(t, docxParagraph{}, ps[len(ps)-1])
}

func TestSerialize_UnsupportedHeadingLevel(t *testing.T) {
	_, err := Serialize(Document{Nodes: []Node{{Kind: KindHeading, Level: 7, Text: "x"}}})

	assert.ErrorContains(t, err, "unsupported heading level 7")
}
