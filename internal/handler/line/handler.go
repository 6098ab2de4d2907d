package line

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// Responder は受信テキスト1件を返信メッセージ群へ変換する。
type Responder interface {
	Respond(ctx context.Context, userID, text string) ([]string, error)
}

// Replier は返信メッセージを LINE プラットフォームへ届ける。
type Replier interface {
	ReplyText(replyToken string, texts []string) error
}

// Handler はLINEプラットフォームからのWebhookを受け取るHTTPハンドラー。
type Handler struct {
	channelSecret string
	responder     Responder
	replier       Replier
}

// New はWebhookハンドラーを作成する。
func New(channelSecret string, responder Responder, replier Replier) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		responder:     responder,
		replier:       replier,
	}
}

// RegisterRoutes はWebhook関連のルートを登録する。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/callback", h.handleCallback)
}

// handleCallback は署名を検証してからイベントを順に処理する。
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	callback, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			respondError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		log.Printf("[line] failed to parse webhook request: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to parse request")
		return
	}

	// イベント単位の失敗はログに残して次のイベントへ進む。
	for _, event := range callback.Events {
		h.handleEvent(r.Context(), event)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvent はテキストメッセージのみ扱い、それ以外は黙って無視する。
func (h *Handler) handleEvent(ctx context.Context, event webhook.EventInterface) {
	messageEvent, ok := event.(webhook.MessageEvent)
	if !ok {
		return
	}
	textMessage, ok := messageEvent.Message.(webhook.TextMessageContent)
	if !ok {
		return
	}

	userID := sourceUserID(messageEvent.Source)
	if userID == "" {
		log.Printf("[line] skipped text event without user id")
		return
	}

	replies, err := h.responder.Respond(ctx, userID, textMessage.Text)
	if err != nil {
		log.Printf("[line] failed to build reply: user=%s err=%v", userID, err)
		return
	}
	if len(replies) == 0 {
		return
	}

	if err := h.replier.ReplyText(messageEvent.ReplyToken, replies); err != nil {
		log.Printf("[line] failed to deliver reply: user=%s messages=%d err=%v", userID, len(replies), err)
	}
}

// sourceUserID はイベント送信元からユーザーIDを取り出す。
func sourceUserID(source webhook.SourceInterface) string {
	switch src := source.(type) {
	case webhook.UserSource:
		return src.UserId
	case webhook.GroupSource:
		return src.UserId
	case webhook.RoomSource:
		return src.UserId
	default:
		return ""
	}
}

// respondJSON 共通のJSONレスポンス送信処理。
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError エラーレスポンスを送信する。
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
