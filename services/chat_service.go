//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"easychat/contract"
	"easychat/domain"
	"easychat/runtime"
)

type IChatService interface {
	PostMessage(ctx context.Context, msg contract.NewMessage) (domain.Message, error)
	GetMessages(cursor *string) ([]domain.Message, *string, error)
	Subscribe(sink contract.EventSink) contract.Disposer
}

type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) PostMessage(ctx context.Context, msg contract.NewMessage) (domain.Message, error) {
	return s.orchestrator.Create(ctx, msg)
}

func (s *ChatService) GetMessages(cursor *string) ([]domain.Message, *string, error) {
	return s.orchestrator.History(cursor)
}

func (s *ChatService) Subscribe(sink contract.EventSink) contract.Disposer {
	return s.orchestrator.Subscribe(sink)
}
