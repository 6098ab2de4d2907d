package line

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineReplier は Messaging API 経由で返信を送る Replier 実装。
type LineReplier struct {
	bot *messaging_api.MessagingApiAPI
}

// NewLineReplier は Messaging API クライアントをラップする。
func NewLineReplier(bot *messaging_api.MessagingApiAPI) *LineReplier {
	return &LineReplier{bot: bot}
}

// ReplyText は1つの replyToken に対しセグメントごとのテキストバブルを返す。
func (r *LineReplier) ReplyText(replyToken string, texts []string) error {
	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, messaging_api.TextMessage{Text: text})
	}

	if _, err := r.bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}
