package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyrag/internal/ai"
	"studyrag/internal/model"
	"studyrag/internal/rag"
	"studyrag/internal/repository"
)

var (
	ErrMessageEmpty   = errors.New("message content is empty")
	ErrMessageEnqueue = errors.New("message enqueue failed")
)

// ChatService answers questions about a workspace's study material. Each
// request retrieves context from the workspace's vector index, prepends it to
// the mode's system instructions, and calls the generation model. Messages
// are persisted asynchronously through the publisher; reads go through the
// redis history cache unless a dirty marker says writes are still in flight.
type ChatService struct {
	workspaceRepo *repository.WorkspaceRepository
	messageRepo   *repository.MessageRepository
	publisher     AsyncMessagePublisher
	historyCache  HistoryCache
	retriever     *rag.Retriever
	llmClient     *ai.OllamaClient
	llmCfg        ai.ChatConfig
	maxContext    int
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, workspaceID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, workspaceID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, workspaceID uint) error
	MarkDirty(ctx context.Context, workspaceID uint) error
	IsDirty(ctx context.Context, workspaceID uint) (bool, error)
}

type SendMessageInput struct {
	UserID      uint
	WorkspaceID uint
	Content     string
	Mode        rag.Mode
}

type SendMessageResult struct {
	Answer   string          `json:"answer"`
	Mode     rag.Mode        `json:"mode"`
	Sources  []rag.Source    `json:"sources"`
	Messages []model.Message `json:"messages"`
}

func NewChatService(
	workspaceRepo *repository.WorkspaceRepository,
	messageRepo *repository.MessageRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	retriever *rag.Retriever,
	llmClient *ai.OllamaClient,
	llmCfg ai.ChatConfig,
	maxContext int,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 20
	}
	return &ChatService{
		workspaceRepo: workspaceRepo,
		messageRepo:   messageRepo,
		publisher:     publisher,
		historyCache:  historyCache,
		retriever:     retriever,
		llmClient:     llmClient,
		llmCfg:        llmCfg,
		maxContext:    maxContext,
	}
}

// SendMessage runs one retrieval-augmented generation round and returns the
// answer with its sources. The user and assistant messages are enqueued for
// asynchronous persistence before and after generation respectively.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 || input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		content = defaultQuery(input.Mode)
	}
	if content == "" {
		return nil, ErrMessageEmpty
	}

	workspace, err := s.workspaceRepo.GetByIDAndUserID(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}

	promptMessages, sources, err := s.buildPromptMessages(ctx, workspace, input.Mode, content)
	if err != nil {
		return nil, err
	}

	userMessage, err := s.enqueueUserMessage(ctx, input, content)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmClient.Complete(ctx, s.llmCfg, promptMessages)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	assistantMessage := model.Message{
		WorkspaceID: input.WorkspaceID,
		UserID:      input.UserID,
		Role:        "assistant",
		Mode:        string(input.Mode),
		Content:     answer,
		CreatedAt:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	return &SendMessageResult{
		Answer:   answer,
		Mode:     input.Mode,
		Sources:  sources,
		Messages: []model.Message{userMessage, assistantMessage},
	}, nil
}

// StreamMessage is SendMessage with the answer delivered incrementally
// through onChunk. Sources are returned with the final result since they are
// known before generation starts.
func (s *ChatService) StreamMessage(
	ctx context.Context,
	input SendMessageInput,
	onChunk func(string) error,
) (*SendMessageResult, error) {
	if input.UserID == 0 || input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		content = defaultQuery(input.Mode)
	}
	if content == "" {
		return nil, ErrMessageEmpty
	}

	workspace, err := s.workspaceRepo.GetByIDAndUserID(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}

	promptMessages, sources, err := s.buildPromptMessages(ctx, workspace, input.Mode, content)
	if err != nil {
		return nil, err
	}

	userMessage, err := s.enqueueUserMessage(ctx, input, content)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmClient.StreamComplete(ctx, s.llmCfg, promptMessages, onChunk)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	assistantMessage := model.Message{
		WorkspaceID: input.WorkspaceID,
		UserID:      input.UserID,
		Role:        "assistant",
		Mode:        string(input.Mode),
		Content:     answer,
		CreatedAt:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	return &SendMessageResult{
		Answer:   answer,
		Mode:     input.Mode,
		Sources:  sources,
		Messages: []model.Message{userMessage, assistantMessage},
	}, nil
}

// GetHistory returns the workspace's chat history, serving from cache when
// it is present and not marked dirty by in-flight writes.
func (s *ChatService) GetHistory(ctx context.Context, userID, workspaceID uint, limit int) ([]model.Message, error) {
	if userID == 0 || workspaceID == 0 {
		return nil, ErrInvalidInput
	}

	workspace, err := s.workspaceRepo.GetByIDAndUserID(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, workspaceID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, workspaceID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListByWorkspaceID(workspaceID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, workspaceID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, workspaceID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) enqueueUserMessage(ctx context.Context, input SendMessageInput, content string) (model.Message, error) {
	userMessage := model.Message{
		WorkspaceID: input.WorkspaceID,
		UserID:      input.UserID,
		Role:        "user",
		Mode:        string(input.Mode),
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if s.publisher == nil {
		return model.Message{}, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.WorkspaceID)
		_ = s.historyCache.DeleteHistory(ctx, input.WorkspaceID)
	}
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		return model.Message{}, ErrMessageEnqueue
	}
	return userMessage, nil
}

// buildPromptMessages assembles the conversation sent to the generator:
// mode instructions plus retrieved context as the system message, recent
// history, then the current question.
func (s *ChatService) buildPromptMessages(
	ctx context.Context,
	workspace *model.Workspace,
	mode rag.Mode,
	content string,
) ([]ai.ChatMessage, []rag.Source, error) {
	contextBlock, sources, err := s.retrieveContext(ctx, workspace, content)
	if err != nil {
		return nil, nil, err
	}

	system := mode.Instructions()
	if contextBlock != "" {
		system = fmt.Sprintf("%s\n\nRelevant context from documents:\n%s", system, contextBlock)
	}

	recent, err := s.messageRepo.ListByWorkspaceID(workspace.ID, s.maxContext)
	if err != nil {
		return nil, nil, err
	}

	messages := make([]ai.ChatMessage, 0, len(recent)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: system})
	for _, item := range recent {
		role := item.Role
		if role == "" {
			role = "user"
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: item.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: content})
	return messages, sources, nil
}

func (s *ChatService) retrieveContext(ctx context.Context, workspace *model.Workspace, query string) (string, []rag.Source, error) {
	if s.retriever == nil || workspace.VectorIndexPath == "" {
		return "", nil, nil
	}
	index, err := rag.OpenIndex(workspace.VectorIndexPath)
	if err != nil {
		return "", nil, fmt.Errorf("open workspace index failed: %w", err)
	}
	return s.retriever.Retrieve(ctx, query, index)
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

// defaultQuery supplies the question for quick actions invoked without one.
func defaultQuery(mode rag.Mode) string {
	switch mode {
	case rag.ModeSummary:
		return "Give me a quick revision summary of my study material."
	case rag.ModePoints:
		return "What are the most important points in my study material?"
	case rag.ModeFlashcards:
		return "Create flashcards from my study material."
	case rag.ModeTeacher:
		return "Explain the key concepts from my study material in simple terms."
	case rag.ModeExam:
		return "Generate exam questions from my study material."
	default:
		return ""
	}
}
