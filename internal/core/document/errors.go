package document

import "errors"

var (
	// ErrNotFound はドキュメントが存在しない、または他ブローカーの所有である場合のエラー
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput は入力値が不正な場合のエラー
	ErrInvalidInput = errors.New("invalid input")
)
