package recommend

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
)

// 生成できなかったときにユーザーへ返す固定メッセージ。
const (
	noAnswersMessage        = "まだ回答が入力されていないので、おすすめ物件を出せませんでした。もう一度「開始」と送ってやり直してください。"
	emptyResultMessage      = "おすすめ物件をうまく生成できませんでした。もう一度お試しください。"
	generationFailedMessage = "おすすめ物件の生成に失敗しました。お手数ですが、もう一度「開始」と送ってやり直してください。"
)

const defaultTimeout = 30 * time.Second

// Config controls generation behaviour.
type Config struct {
	// Timeout bounds a single generation call. Zero selects the default.
	Timeout time.Duration
}

// Service は集めた回答からおすすめ物件のメッセージ群を生成する。
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the generation chain around the supplied chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile recommendation chain: %w", err)
	}

	return &Service{chain: runnable, timeout: timeout}, nil
}

// Recommend turns the collected answers into ordered reply segments.
// Generation problems are logged and mapped to a fixed fallback message,
// never propagated to the caller.
func (s *Service) Recommend(ctx context.Context, answers []intake.QA) []string {
	if len(answers) == 0 {
		return []string{noAnswersMessage}
	}

	invokeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.chain.Invoke(invokeCtx, map[string]any{
		"system": systemPrompt,
		"query":  buildPrompt(answers),
	})
	if err != nil {
		log.Printf("[recommend] chain invoke failed: answers=%d err=%v", len(answers), err)
		return []string{generationFailedMessage}
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Printf("[recommend] chain returned empty content: answers=%d", len(answers))
		return []string{generationFailedMessage}
	}

	log.Printf("[recommend] generated recommendation: answers=%d length=%d", len(answers), len(response.Content))
	return splitSegments(response.Content)
}
