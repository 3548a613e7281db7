package ingestion

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors end a line in the extracted text.
const blockSelectors = "p, div, li, tr, br, h1, h2, h3, h4, h5, h6, section, article, header, footer, dt, dd, blockquote, pre"

// htmlText returns the visible text of an HTML resume with one line per block element.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("head, script, style, noscript, template, svg").Remove()
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	return doc.Find("body").Text(), nil
}
