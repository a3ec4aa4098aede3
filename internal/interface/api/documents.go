package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
)

// multipartMemory はマルチパート解析時にメモリへ保持する上限
const multipartMemory = 8 << 20

type ingestRequest struct {
	Title       string  `json:"title"`
	SourceURL   *string `json:"sourceUrl"`
	Content     string  `json:"content"`
	ContentType string  `json:"contentType"`
	Filename    string  `json:"filename"`
}

type ingestResponse struct {
	Document    *document.Document `json:"document"`
	ChunkCount  int                `json:"chunkCount"`
	TotalTokens int                `json:"totalTokens"`
}

type updateDocumentRequest struct {
	Title     *string `json:"title"`
	SourceURL *string `json:"sourceUrl"`
}

type documentsResponse struct {
	Documents []*document.Document `json:"documents"`
}

// handleIngest は POST /documents
// JSON ({title, sourceUrl, content, contentType, filename}) と multipart/form-data (file, title, sourceUrl) を受け付ける
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	b := brokerFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)

	params, err := h.decodeIngest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	params.BrokerID = b.ID

	result, err := h.deps.Ingestion.Ingest(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		Document:    result.Document,
		ChunkCount:  result.ChunkCount,
		TotalTokens: result.TotalTokens,
	})
}

func (h *Handler) decodeIngest(r *http.Request) (ingestion.Params, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return ingestion.Params{}, bodyError(err, document.ErrInvalidInput, "invalid multipart body")
		}
		params := ingestion.Params{Title: r.FormValue("title")}
		if raw := r.FormValue("sourceUrl"); raw != "" {
			params.SourceURL = &raw
		}

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return params, nil
		case err != nil:
			return ingestion.Params{}, bodyError(err, document.ErrInvalidInput, "invalid file upload")
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return ingestion.Params{}, bodyError(err, document.ErrInvalidInput, "failed to read uploaded file")
		}
		params.Content = content
		params.Filename = header.Filename
		params.ContentType = header.Header.Get("Content-Type")
		return params, nil
	}

	var req ingestRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return ingestion.Params{}, bodyError(err, document.ErrInvalidInput, "invalid JSON body")
	}
	params := ingestion.Params{
		Title:       req.Title,
		SourceURL:   req.SourceURL,
		ContentType: req.ContentType,
		Filename:    req.Filename,
	}
	if req.Content != "" {
		params.Content = []byte(req.Content)
	}
	return params, nil
}

// bodyError はボディ上限超過を ErrTooLarge に、それ以外を invalid に変換する
func bodyError(err error, invalid error, message string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", ingestion.ErrTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %s", invalid, message)
}

// errTrailingData はJSON値の後に余分なデータがある場合のエラー
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSON はボディがちょうど1つのJSON値であることを確認してデコードする
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errTrailingData
		}
		return err
	}
	return nil
}

// handleListDocuments は GET /documents
func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	b := brokerFrom(r.Context())

	docs, err := h.deps.Documents.List(r.Context(), b.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}

	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs})
}

// handleGetDocument は GET /documents/{documentId}
func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathDocumentID(r)
	if !ok {
		h.writeError(w, r, document.ErrNotFound)
		return
	}

	doc, err := h.deps.Documents.Get(r.Context(), brokerFrom(r.Context()).ID, documentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleUpdateDocument は PATCH /documents/{documentId}
func (h *Handler) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathDocumentID(r)
	if !ok {
		h.writeError(w, r, document.ErrNotFound)
		return
	}

	var req updateDocumentRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxChatBodyBytes), &req); err != nil {
		h.writeError(w, r, bodyError(err, document.ErrInvalidInput, "invalid JSON body"))
		return
	}
	if req.Title == nil && req.SourceURL == nil {
		h.writeError(w, r, fmt.Errorf("%w: title or sourceUrl is required", document.ErrInvalidInput))
		return
	}

	doc, err := h.deps.Documents.UpdateMetadata(r.Context(), brokerFrom(r.Context()).ID, documentID, document.MetadataUpdate{
		Title:     req.Title,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument は DELETE /documents/{documentId}
func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathDocumentID(r)
	if !ok {
		h.writeError(w, r, document.ErrNotFound)
		return
	}

	if err := h.deps.Documents.Delete(r.Context(), brokerFrom(r.Context()).ID, documentID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
