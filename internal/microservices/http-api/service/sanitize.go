package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once built.
var (
	plainTextPolicy = bluemonday.StrictPolicy()
	richTextPolicy  = bluemonday.UGCPolicy()
)

// plainText strips all markup; entities are decoded again so "&" survives as typed.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}

// richText keeps the safe subset of user HTML.
func richText(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}
