// Package ingest turns local documents into ordered text chunks.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/dslipak/pdf"
	"golang.org/x/net/html"
)

// MaxChunkLen bounds the chunks produced from text and HTML documents.
const MaxChunkLen = 2000

func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".md", ".txt", ".html", ".htm":
		return true
	}
	return false
}

// ExtractChunks reads path and returns its chunks in document order. PDFs
// give one chunk per non-blank page; other formats are split on lines.
func ExtractChunks(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFPages(path)
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return SplitIntoChunks(extractMainText(string(data)), MaxChunkLen), nil
	case ".md", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return SplitIntoChunks(string(data), MaxChunkLen), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func extractPDFPages(path string) ([]string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		text = strings.TrimSpace(sanitizeUTF8(text))
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractMainText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node, bool)

	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				skip = true
			}
		}

		if n.Type == html.TextNode && !skip {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	var kept []string
	for _, l := range strings.Split(b.String(), "\n") {
		l = strings.TrimSpace(l)
		if len(l) > 1 {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
