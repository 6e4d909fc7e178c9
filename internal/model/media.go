package model

import (
	"io"
	"path/filepath"
	"strings"
)

// DocxContentType is the MIME type of a rendered minutes document.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MediaAsset is an uploaded audio/video recording.
// Body is streamed to object storage once and never read again.
type MediaAsset struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RenderedDocument is the terminal artifact of a pipeline run.
type RenderedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// mediaTypes lists the accepted upload extensions and their MIME types.
var mediaTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".m4a": "audio/mp4",
	".mp4": "video/mp4",
}

// AcceptedExtensions returns the accepted upload extensions, without dots.
func AcceptedExtensions() []string {
	return []string{"mp3", "wav", "m4a", "mp4"}
}

// MediaTypeFor returns the MIME type for an accepted filename.
// ok is false when the extension is not accepted.
func MediaTypeFor(filename string) (mime string, ok bool) {
	mime, ok = mediaTypes[strings.ToLower(filepath.Ext(filename))]
	return mime, ok
}

// DocumentFilename derives the download name from the uploaded filename:
// "meeting.mp3" becomes "minutes_meeting.docx".
func DocumentFilename(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	return "minutes_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".docx"
}
