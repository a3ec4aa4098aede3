package ingestion

import (
	"errors"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

var (
	// ErrInvalidInput は取り込みパラメータが不正な場合のエラー
	ErrInvalidInput = document.ErrInvalidInput

	// ErrEmptyContent は抽出後のテキストが空の場合のエラー
	ErrEmptyContent = errors.New("document has no text content")

	// ErrUnsupportedContent はバイナリなど扱えない形式の場合のエラー
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrTooLarge はサイズ上限を超えた場合のエラー
	ErrTooLarge = errors.New("content exceeds size limit")

	// ErrFetchFailed はソースURLの取得に失敗した場合のエラー
	ErrFetchFailed = errors.New("failed to fetch source URL")
)
