// Package extract reduces source files to plain searchable text.
package extract

import (
	"bytes"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTML extracts the visible text of markup files.
type HTML struct {
	logger *zap.Logger
}

// NewHTML creates an HTML extractor.
func NewHTML(logger *zap.Logger) *HTML {
	return &HTML{logger: logger}
}

// Extract returns the text nodes of the file at path joined by single spaces.
// Script and style content is dropped. Failures are logged and yield "".
func (e *HTML) Extract(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("Failed to read document", zap.String("path", path), zap.Error(err))
		return ""
	}

	text, err := Text(raw)
	if err != nil {
		e.logger.Warn("Failed to extract text", zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

// Text decodes raw bytes in their detected encoding and strips markup.
func Text(raw []byte) (string, error) {
	enc, name, _ := charset.DetermineEncoding(raw, "")
	decoded := io.Reader(bytes.NewReader(raw))
	if name != "utf-8" {
		decoded = enc.NewDecoder().Reader(decoded)
	}

	doc, err := html.Parse(decoded)
	if err != nil {
		return "", err
	}

	var parts []string
	collect(doc, &parts)
	return strings.Join(parts, " "), nil
}

func collect(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, parts)
	}
}
