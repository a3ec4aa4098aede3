package testing

import (
	"time"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// TestBroker はテスト用のBrokerを生成します
func TestBroker(email string) *broker.Broker {
	return &broker.Broker{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Test Realty",
		CreatedAt: time.Now(),
	}
}

// TestDocument はテスト用のDocumentを生成します
func TestDocument(brokerID uuid.UUID, title string) *document.Document {
	return &document.Document{
		ID:          uuid.New(),
		BrokerID:    brokerID,
		Title:       title,
		ContentType: "text/plain",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// TestScoredChunk はテスト用のScoredChunkを生成します
func TestScoredChunk(documentID uuid.UUID, ordinal int, content string, score float64) *document.ScoredChunk {
	return &document.ScoredChunk{
		ChunkID:    uuid.New(),
		DocumentID: documentID,
		Ordinal:    ordinal,
		Content:    content,
		Score:      score,
	}
}
