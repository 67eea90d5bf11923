// Package document validates uploaded note files and extracts what can be
// learned from their content.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

var allowedExtensions = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// Extension returns the lower-cased extension without the dot, or "" when the
// name has none.
func Extension(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}

func IsAllowed(fileName string) bool {
	_, ok := allowedExtensions[Extension(fileName)]
	return ok
}

func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func ContentType(fileName string) string {
	if ct, ok := allowedExtensions[Extension(fileName)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SafeName strips directory components and characters that are awkward in
// Content-Disposition headers.
func SafeName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "._")
	if name == "" {
		return "file"
	}
	return name
}

// PageCount returns the number of pages of a PDF document. The pdf reader
// panics on some malformed input, which is reported as an error.
func PageCount(content []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return 0, fmt.Errorf("invalid PDF file: missing PDF header")
	}
	content = trimTrailingGarbage(content)

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return r.NumPage(), nil
}

func trimTrailingGarbage(content []byte) []byte {
	lastEOF := bytes.LastIndex(content, []byte("%%EOF"))
	if lastEOF == -1 {
		return content
	}
	end := lastEOF + len("%%EOF")
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}
