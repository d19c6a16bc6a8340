package firms

import (
	"bytes"
	"strings"

	html2md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mackee/go-readability"
	"golang.org/x/net/html"
)

// describeHTML extracts the title and a readable text rendition of an error page.
// Non-HTML bodies yield empty strings.
func describeHTML(body []byte) (title, text string) {
	if !looksLikeHTML(body) {
		return "", ""
	}

	if doc, err := html.Parse(bytes.NewReader(body)); err == nil {
		title = findTitle(doc)
	}

	text, err := markdown(string(body))
	if err != nil {
		text = ""
	}
	return title, strings.TrimSpace(text)
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<html")) || bytes.HasPrefix(head, []byte("<!doctype html"))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func markdown(body string) (string, error) {
	// Convert HTML to Markdown using readability first
	article, err := readability.Extract(body, readability.DefaultOptions())
	if err == nil && article.Root != nil {
		if md := readability.ToMarkdown(article.Root); strings.TrimSpace(md) != "" {
			return md, nil
		}
	}

	// If readability fails, use html2md as a fallback
	converter := html2md.NewConverter("", true, &html2md.Options{})
	return converter.ConvertString(body)
}
