package storage

import (
	"path"
	"strings"
	"time"
)

// objectTimeLayout renders as YYYYMMDD-HHMMSS.
const objectTimeLayout = "20060102-150405"

// ObjectName returns the key for an uploaded recording: a timestamp prefix
// followed by the original filename, so repeated uploads do not collide.
func ObjectName(now time.Time, filename string) string {
	return now.Format(objectTimeLayout) + "-" + baseName(filename)
}

// baseName strips any client-supplied directory, with either separator.
func baseName(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	name := path.Base(filename)
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}

// Locator builds "<scheme>://<bucket>/<key>".
func Locator(scheme, bucket, key string) string {
	return scheme + "://" + bucket + "/" + key
}
