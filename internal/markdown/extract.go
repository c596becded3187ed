// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt returns the plain text of rendered HTML with whitespace collapsed,
// cut at a word boundary to at most limit runes plus an ellipsis.
func Excerpt(renderedHTML string, limit int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, pre, figure").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, nil
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…", nil
}

// FirstImage returns the src of the first <img> in rendered HTML, or "".
func FirstImage(renderedHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
