package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/embedding"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the re-embedding topic: for each queued source
// it regenerates every chunk's vector with the current embedding
// provider, leaving content and chunk ids untouched.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishReembedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Re-embedding chunks for source: %s", payload.Source)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.BySource{Source: payload.Source},
		specification.OrderByChunkPosition{},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load chunks for %s: %v", payload.Source, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if len(chunks) == 0 {
		log.Printf("[WARN] Source vanished before re-embed: %s", payload.Source)
		msg.Ack() // Deleted meanwhile? Ack.
		return
	}

	for _, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %s: %v", chunk.ChunkId, err)
			msg.Nack()
			return
		}
		chunk.EmbeddingValue = res.Embedding.Values
		now := time.Now()
		chunk.UpdatedAt = &now
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	for _, chunk := range chunks {
		if err := uow.DocumentChunkRepository().Update(ctx, chunk); err != nil {
			log.Printf("[ERROR] Failed to update chunk %s: %v", chunk.ChunkId, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Re-embedded %d chunks for source: %s", len(chunks), payload.Source)
	msg.Ack()
}
