// Package htmltext turns HTML fragments into plain text.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Plain drops the markup of s and decodes its entities.
func Plain(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
