package ingestion

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"
)

// 取り込み可能なコンテンツタイプ
const (
	ContentTypePlain    = "text/plain"
	ContentTypeMarkdown = "text/markdown"
	ContentTypeHTML     = "text/html"
)

// ContentTypeDetector はアップロードされた内容の種別を判定する
type ContentTypeDetector struct{}

// NewContentTypeDetector は ContentTypeDetector を生成する
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// Detect はファイル名・宣言されたContent-Type・内容から取り込み用の種別を返す
// バイナリや非UTF-8の内容は ErrUnsupportedContent
func (d *ContentTypeDetector) Detect(filename, declared string, content []byte) (string, error) {
	if enry.IsBinary(content) || !utf8.Valid(content) {
		return "", fmt.Errorf("%w: binary content", ErrUnsupportedContent)
	}

	switch mediaType(declared) {
	case ContentTypeHTML, "application/xhtml+xml":
		return ContentTypeHTML, nil
	case ContentTypeMarkdown, "text/x-markdown":
		return ContentTypeMarkdown, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return ContentTypeMarkdown, nil
	case ".html", ".htm":
		return ContentTypeHTML, nil
	}

	if filename != "" {
		switch enry.GetLanguage(filepath.Base(filename), content) {
		case "HTML":
			return ContentTypeHTML, nil
		case "Markdown":
			return ContentTypeMarkdown, nil
		}
	}

	sniffed := mediaType(http.DetectContentType(content))
	switch {
	case sniffed == ContentTypeHTML:
		return ContentTypeHTML, nil
	case strings.HasPrefix(sniffed, "text/"):
		return ContentTypePlain, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, sniffed)
	}
}

// mediaType は "text/html; charset=utf-8" から "text/html" を取り出す
func mediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
