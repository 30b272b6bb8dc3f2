package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/memory"
	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/events"
	pktNats "ai-docqa-be/pkg/nats"
	"ai-docqa-be/pkg/rag/state"
	"ai-docqa-be/pkg/rag/workflow"
	"ai-docqa-be/pkg/store"
)

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
}

type chatService struct {
	orchestrator   *workflow.Orchestrator
	sessions       *memory.SessionRepository
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	orchestrator *workflow.Orchestrator,
	sessions *memory.SessionRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		orchestrator:   orchestrator,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Ask runs one full workflow for a question. History comes from the
// session store when a session id is supplied, otherwise from the
// request body; only the terminal turn is ever appended back.
func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperr.NewValidation("question must not be blank")
	}

	runID := uuid.New().String()
	history := s.resolveHistory(req)

	result, err := s.orchestrator.Run(ctx, runID, question, history)
	if err != nil {
		return nil, err
	}

	s.persistTurn(req.SessionId, question, result.Generation, history)
	s.publishAnswered(ctx, runID, result)

	docs := make([]dto.EvidenceDTO, len(result.Documents))
	for i, d := range result.Documents {
		docs[i] = dto.EvidenceDTO{
			Content:     d.Content,
			Source:      d.Source,
			Page:        d.Page,
			ChunkId:     d.ChunkID,
			ContentType: d.ContentType,
			Score:       d.Score,
		}
	}

	return &dto.AskResponse{
		RunId:      runID,
		Generation: result.Generation,
		Intent:     string(result.Intent),
		Documents:  docs,
		IsGrounded: string(result.IsGrounded),
		IsUseful:   string(result.IsUseful),
		Retries:    result.RetriesUsed,
		Unverified: result.Unverified,
	}, nil
}

func (s *chatService) resolveHistory(req *dto.AskRequest) state.History {
	if len(req.History) > 0 {
		history := make(state.History, 0, len(req.History))
		for _, turn := range req.History {
			history = append(history, state.Message{Role: turn.Role, Content: turn.Content})
		}
		return history
	}

	if req.SessionId != "" {
		if session, found := s.sessions.Get(req.SessionId); found {
			return session.History
		}
	}
	return nil
}

func (s *chatService) persistTurn(sessionID, question, answer string, history state.History) {
	if sessionID == "" {
		return
	}
	session, found := s.sessions.Get(sessionID)
	if !found {
		session = &store.Session{ID: sessionID}
	}
	session.History = history.AppendTurn(question, answer)
	session.LastQuery = question
	s.sessions.Save(session)
}

func (s *chatService) publishAnswered(ctx context.Context, runID string, result *workflow.Result) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewQuestionAnswered(runID, string(result.Intent), result.RetriesUsed, result.Unverified)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Chat", "Event publish failed", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
