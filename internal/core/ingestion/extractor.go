package ingestion

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 本文として扱わない要素
const ignoredSelector = "script, style, noscript, template, svg, nav, header, footer, form, iframe"

// テキストブロックとして扱う要素
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, pre, blockquote, td, th, dt, dd, figcaption, caption"

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// ExtractText は種別に応じて本文テキストを抽出する
func ExtractText(contentType string, content []byte) (*Extracted, error) {
	if contentType == ContentTypeHTML {
		return extractHTML(content)
	}
	return &Extracted{
		Text:        normalizeText(string(content)),
		ContentType: contentType,
	}, nil
}

func extractHTML(content []byte) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := collapseSpaces(doc.Find("title").First().Text())
	doc.Find(ignoredSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var blocks []string
	root.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		// 入れ子のブロックは外側でまとめて取り出す
		if sel.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpaces(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	text := strings.Join(blocks, "\n\n")
	if text == "" {
		text = normalizeText(root.Text())
	}

	return &Extracted{
		Text:        text,
		Title:       title,
		ContentType: ContentTypeHTML,
	}, nil
}

// normalizeText は改行コードと空白を正規化し、段落区切りは空行1つにまとめる
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(horizontalSpace.ReplaceAllString(line, " "), " ")
	}
	text = strings.Join(lines, "\n")

	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

func collapseSpaces(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
