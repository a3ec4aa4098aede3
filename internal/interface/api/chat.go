package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// maxChatBodyBytes はチャットリクエストのボディ上限
const maxChatBodyBytes = 64 << 10

type chatRequest struct {
	Question json.RawMessage `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type historyResponse struct {
	Messages []*document.ChatMessage `json:"messages"`
}

// handleChat は POST /chat/{documentId}
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathDocumentID(r)
	if !ok {
		h.writeError(w, r, chat.ErrNotFound)
		return
	}

	question, err := decodeQuestion(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.deps.Chat.Ask(r.Context(), chat.AskParams{
		DocumentID: documentID,
		Question:   question,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: result.Answer})
}

// handleChatHistory は GET /chat/{documentId}/messages
func (h *Handler) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathDocumentID(r)
	if !ok {
		h.writeError(w, r, document.ErrNotFound)
		return
	}

	messages, err := h.deps.Documents.History(r.Context(), documentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*document.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Messages: messages})
}

// decodeQuestion はボディから question を取り出す。文字列以外は不正な入力とする
func decodeQuestion(body io.Reader) (string, error) {
	var req chatRequest
	if err := decodeJSON(body, &req); err != nil {
		return "", bodyError(err, chat.ErrInvalidInput, "invalid JSON body")
	}
	if len(req.Question) == 0 || string(req.Question) == "null" {
		return "", fmt.Errorf("%w: question is required", chat.ErrInvalidInput)
	}

	var question string
	if err := json.Unmarshal(req.Question, &question); err != nil {
		return "", fmt.Errorf("%w: question must be a string", chat.ErrInvalidInput)
	}
	return question, nil
}
