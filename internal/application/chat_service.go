package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/domain/chat"
	"github.com/novy-stil/service-atelier/internal/metrics"
)

const llmTimeout = 20 * time.Second

const shopPrompt = `Ты - помощник для клиентов в ателье "Новый стиль".

Основные услуги ателье "Новый стиль":
1. Ремонт одежды
2. Пошив одежды
3. Вышивка
4. Печать на кружках и предметах одежды

Общая информация и преимущества "Нового стиля":
- Расположение: улица Гагарина 36/1, легко добраться.
- Мастера: команда опытных и квалифицированных мастеров, которые любят свою работу.
- Качество: гарантия высокого качества всех услуг, профессиональное оборудование и материалы.
- Индивидуальный подход: внимательное отношение к каждому клиенту и его пожеланиям.
- Консультации: всегда готовы проконсультировать по выбору материалов, дизайна, возможностям ремонта или пошива.
- Сроки: обсуждаются индивидуально и зависят от сложности заказа и текущей загрузки.
- Цены: конкурентные, подробный прайс-лист можно уточнить при личном визите или по телефону.

Если вопрос не по работе или ты не знаешь ответ - вежливо откажись отвечать.

Вопрос: %s

Краткий ответ:`

// Answer sources, as recorded in metrics.
const (
	SourceKnowledgeBase = "kb"
	SourceCache         = "cache"
	SourceLLM           = "llm"
	SourceFallback      = "fallback"
)

// ChatRequest is a user's message.
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatService answers questions from the knowledge base, then the LLM, then a
// canned fallback.
type ChatService struct {
	kb      *chat.KnowledgeBase
	cache   AnswerCache
	llm     TextGenerator
	metrics *metrics.Metrics
	logger  *zap.Logger
	pick    func(n int) int
}

// NewChatService creates a new ChatService. cache and llm may be nil.
func NewChatService(kb *chat.KnowledgeBase, cache AnswerCache, llm TextGenerator, m *metrics.Metrics, logger *zap.Logger) *ChatService {
	return &ChatService{
		kb:      kb,
		cache:   cache,
		llm:     llm,
		metrics: m,
		logger:  logger,
		pick:    rand.IntN,
	}
}

// Answer always returns a reply.
func (s *ChatService) Answer(ctx context.Context, text string, audience chat.Audience) ChatResponse {
	answer, source := s.answer(ctx, text, audience)
	s.metrics.ChatAnswered(source)
	s.logger.Info("chat answered",
		zap.String("source", source),
		zap.String("audience", string(audience)),
	)
	return ChatResponse{Response: answer}
}

func (s *ChatService) answer(ctx context.Context, text string, audience chat.Audience) (string, string) {
	if answer, ok := s.kb.Answer(text); ok {
		return answer, SourceKnowledgeBase
	}

	question := chat.Normalize(text)
	if s.cache != nil && question != "" {
		cached, ok, err := s.cache.Get(ctx, question)
		if err != nil {
			s.logger.Warn("answer cache unavailable", zap.Error(err))
		} else if ok {
			return cached, SourceCache
		}
	}

	if s.llm != nil && question != "" {
		llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
		answer, err := s.llm.GenerateContent(llmCtx, fmt.Sprintf(shopPrompt, strings.TrimSpace(text)))
		cancel()
		if err != nil {
			s.logger.Error("llm request failed", zap.Error(err))
		} else if answer = strings.TrimSpace(answer); answer != "" {
			if s.cache != nil {
				if err := s.cache.Set(ctx, question, answer); err != nil {
					s.logger.Warn("failed to cache answer", zap.Error(err))
				}
			}
			return answer, SourceLLM
		}
	}

	phrases := s.kb.FallbackPhrases(audience)
	return phrases[s.pick(len(phrases))], SourceFallback
}
