package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CellText returns the cleaned-up text content of a table cell:
// non-printable characters stripped, inner whitespace collapsed.
func CellText(sel *goquery.Selection) string {
	var raw strings.Builder
	for _, node := range sel.Nodes {
		raw.WriteString(GetText(node))
	}
	text := removeNonPrintable(raw.String())
	text = strings.Trim(text, " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

// HeaderTexts returns the cleaned text of every `th` under the selection,
// in document order.
func HeaderTexts(table *goquery.Selection) []string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, CellText(th))
	})
	return headers
}

// HasClass reports whether any node of the selection carries the class.
// goquery's HasClass only inspects the first node's class attribute as a
// whole string, this splits it properly.
func HasClass(sel *goquery.Selection, class string) bool {
	attr := sel.AttrOr("class", "")
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}
