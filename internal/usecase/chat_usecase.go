package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/gramsetu/loan-advisor/internal/dto"
	"github.com/gramsetu/loan-advisor/internal/model"
	"github.com/gramsetu/loan-advisor/internal/service"
	"github.com/gramsetu/loan-advisor/internal/util"
	"gorm.io/gorm"
)

const chatHistoryLimit = 10

// Advisor persona per language. Replies are kept short and bulleted so they
// read well on low-end devices and translate cleanly to speech.
var advisorSystemPrompts = map[string]string{
	"en": "You are a helpful financial advisor for rural users. Keep responses SHORT and in BULLET POINTS. Maximum 3-4 bullets per response. Use simple language. Format: • Point 1 • Point 2 • Point 3. Help with loan eligibility, loan types, interest rates, and application processes.",
	"hi": "आप ग्रामीण उपयोगकर्ताओं के लिए एक सहायक वित्तीय सलाहकार हैं। जवाब छोटे और बुलेट पॉइंट्स में दें। अधिकतम 3-4 बुलेट पॉइंट्स। सरल भाषा का उपयोग करें। प्रारूप: • पॉइंट 1 • पॉइंट 2 • पॉइंट 3. ऋण पात्रता, ऋण प्रकार, ब्याज दरों और आवेदन प्रक्रियाओं में मदद करें।",
	"kn": "ನೀವು ಗ್ರಾಮೀಣ ಬಳಕೆದಾರರಿಗೆ ಸಹಾಯಕ ಹಣಕಾಸು ಸಲಹೆಗಾರರಾಗಿದ್ದೀರಿ. ಉತ್ತರಗಳನ್ನು ಚಿಕ್ಕದಾಗಿ ಮತ್ತು ಬುಲೆಟ್ ಪಾಯಿಂಟ್ಗಳಲ್ಲಿ ನೀಡಿ. ಗರಿಷ್ಠ 3-4 ಬುಲೆಟ್ ಪಾಯಿಂಟ್ಗಳು. ಸರಳ ಭಾಷೆ ಬಳಸಿ. ಸಾಲದ ಅರ್ಹತೆ, ಸಾಲದ ಪ್ರಕಾರಗಳು, ಬಡ್ಡಿ ದರಗಳು ಮತ್ತು ಅರ್ಜಿ ಪ್ರಕ್ರಿಯೆಗಳಲ್ಲಿ ಸಹಾಯ ಮಾಡಿ.",
}

// ChatStore is the session/message persistence boundary.
type ChatStore interface {
	FindSession(ctx context.Context, sessionID, userID string) (*model.ChatSession, error)
	CreateSession(ctx context.Context, session *model.ChatSession) error
	SaveMessage(ctx context.Context, message *model.ChatMessage) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
}

// ChatHistoryCache fronts RecentMessages; a nil implementation is valid.
type ChatHistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage)
	Invalidate(ctx context.Context, sessionID string)
}

type ChatUsecase struct {
	chatRepo ChatStore
	cache    ChatHistoryCache
	gemini   service.GeminiServiceInterface
}

func NewChatUsecase(chatRepo ChatStore, cache ChatHistoryCache, gemini service.GeminiServiceInterface) *ChatUsecase {
	return &ChatUsecase{chatRepo: chatRepo, cache: cache, gemini: gemini}
}

// Chat handles one advisor turn: resolve the session, store the user message,
// rebuild the recent conversation, generate a reply and store it. Storing the
// assistant reply is best-effort; the reply is returned either way.
func (uc *ChatUsecase) Chat(ctx context.Context, userID string, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, util.NewValidationError(err.Error())
	}
	language := req.Language
	if language == "" {
		language = "en"
	}
	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	session, err := uc.resolveSession(ctx, userID, req.SessionID, language)
	if err != nil {
		return nil, err
	}

	userMessage := &model.ChatMessage{
		SessionID:   session.ID,
		Role:        "user",
		Content:     req.Message,
		Language:    language,
		MessageType: messageType,
	}
	if err := uc.chatRepo.SaveMessage(ctx, userMessage); err != nil {
		return nil, util.NewPersistenceError("failed to save message", err)
	}
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, session.ID.String())
	}

	turns, err := uc.conversation(ctx, session.ID.String(), req.Message)
	if err != nil {
		return nil, err
	}

	systemPrompt, ok := advisorSystemPrompts[language]
	if !ok {
		systemPrompt = advisorSystemPrompts["en"]
	}
	reply, err := uc.gemini.GenerateChat(ctx, systemPrompt, turns)
	if err != nil {
		return nil, util.NewProviderError("advisor generation failed", err)
	}

	assistantMessage := &model.ChatMessage{
		SessionID:   session.ID,
		Role:        "assistant",
		Content:     reply,
		Language:    language,
		MessageType: "text",
	}
	if err := uc.chatRepo.SaveMessage(ctx, assistantMessage); err != nil {
		// still return the reply to the caller
		log.Printf("Warning: failed to save assistant message: %v", err)
	} else if uc.cache != nil {
		uc.cache.Invalidate(ctx, session.ID.String())
	}

	return &dto.ChatResponse{
		Response:  reply,
		SessionID: session.ID.String(),
		Language:  language,
	}, nil
}

func (uc *ChatUsecase) resolveSession(ctx context.Context, userID, sessionID, language string) (*model.ChatSession, error) {
	if sessionID != "" {
		session, err := uc.chatRepo.FindSession(ctx, sessionID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.NewNotFoundError("session not found")
			}
			return nil, util.NewPersistenceError("failed to load session", err)
		}
		return session, nil
	}

	session := &model.ChatSession{
		UserID:      userID,
		Language:    language,
		SessionType: "general",
	}
	if err := uc.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, util.NewPersistenceError("failed to create session", err)
	}
	return session, nil
}

// conversation returns the recent history as chat turns, ensuring the latest
// user message is present even when reads lag behind the write.
func (uc *ChatUsecase) conversation(ctx context.Context, sessionID, latestMessage string) ([]service.ChatTurn, error) {
	var history []model.ChatMessage
	if uc.cache != nil {
		if cached, ok := uc.cache.GetHistory(ctx, sessionID); ok {
			history = cached
		}
	}
	if history == nil {
		stored, err := uc.chatRepo.RecentMessages(ctx, sessionID, chatHistoryLimit)
		if err != nil {
			return nil, util.NewPersistenceError("failed to load conversation", err)
		}
		history = stored
		if uc.cache != nil {
			uc.cache.SetHistory(ctx, sessionID, history)
		}
	}

	turns := make([]service.ChatTurn, 0, len(history)+1)
	for _, msg := range history {
		turns = append(turns, service.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	if len(turns) == 0 || turns[len(turns)-1].Content != latestMessage || turns[len(turns)-1].Role != "user" {
		turns = append(turns, service.ChatTurn{Role: "user", Content: latestMessage})
	}
	return turns, nil
}
