package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
	intakeservice "github.com/kazhorse/line-realestate-bot/internal/service/intake"
	"github.com/kazhorse/line-realestate-bot/internal/service/session"
)

const testChannelSecret = "test-channel-secret"

type fakeRecommender struct {
	calls    int
	received [][]intake.QA
	segments []string
}

func (r *fakeRecommender) Recommend(_ context.Context, answers []intake.QA) []string {
	r.calls++
	r.received = append(r.received, answers)
	return r.segments
}

type recordingReplier struct {
	tokens []string
	texts  [][]string
	err    error
}

func (r *recordingReplier) ReplyText(replyToken string, texts []string) error {
	r.tokens = append(r.tokens, replyToken)
	r.texts = append(r.texts, texts)
	return r.err
}

func setupRouter(recommender *fakeRecommender, replier *recordingReplier) (*chi.Mux, session.Store) {
	store := session.NewMemoryStore()
	svc := intakeservice.NewService(store, recommender, intake.Questions())
	handler := New(testChannelSecret, svc, replier)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func callbackBody(t *testing.T, events ...map[string]any) []byte {
	t.Helper()
	payload := map[string]any{
		"destination": "U0000000000000000000000000000000",
		"events":      events,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal callback payload: %v", err)
	}
	return body
}

func textMessageEvent(userID, replyToken, text string) map[string]any {
	return map[string]any{
		"type":            "message",
		"mode":            "active",
		"timestamp":       1700000000000,
		"webhookEventId":  "01HWEBHOOKEVENT",
		"deliveryContext": map[string]any{"isRedelivery": false},
		"replyToken":      replyToken,
		"source":          map[string]any{"type": "user", "userId": userID},
		"message":         map[string]any{"type": "text", "id": "100001", "text": text},
	}
}

func postCallback(r http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-line-signature", signature)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCallbackRejectsInvalidSignature(t *testing.T) {
	recommender := &fakeRecommender{segments: []string{"推薦"}}
	replier := &recordingReplier{}
	r, _ := setupRouter(recommender, replier)

	body := callbackBody(t, textMessageEvent("U1", "rt-1", "開始"))
	resp := postCallback(r, body, sign("wrong-secret", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if recommender.calls != 0 || len(replier.tokens) != 0 {
		t.Fatal("expected no event processing on signature failure")
	}
}

func TestCallbackIgnoresNonTextEvents(t *testing.T) {
	recommender := &fakeRecommender{segments: []string{"推薦"}}
	replier := &recordingReplier{}
	r, _ := setupRouter(recommender, replier)

	sticker := map[string]any{
		"type":            "message",
		"mode":            "active",
		"timestamp":       1700000000000,
		"webhookEventId":  "01HWEBHOOKEVENT",
		"deliveryContext": map[string]any{"isRedelivery": false},
		"replyToken":      "rt-sticker",
		"source":          map[string]any{"type": "user", "userId": "U1"},
		"message":         map[string]any{"type": "sticker", "id": "100002", "packageId": "11537", "stickerId": "52002734"},
	}
	follow := map[string]any{
		"type":            "follow",
		"mode":            "active",
		"timestamp":       1700000000000,
		"webhookEventId":  "01HWEBHOOKEVENT",
		"deliveryContext": map[string]any{"isRedelivery": false},
		"replyToken":      "rt-follow",
		"source":          map[string]any{"type": "user", "userId": "U1"},
	}

	body := callbackBody(t, sticker, follow)
	resp := postCallback(r, body, sign(testChannelSecret, body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(replier.tokens) != 0 {
		t.Fatalf("expected no replies for non-text events, got %v", replier.tokens)
	}
}

func TestCallbackPromptsStartWithoutSession(t *testing.T) {
	recommender := &fakeRecommender{segments: []string{"推薦"}}
	replier := &recordingReplier{}
	r, _ := setupRouter(recommender, replier)

	body := callbackBody(t, textMessageEvent("U1", "rt-1", "こんにちは"))
	resp := postCallback(r, body, sign(testChannelSecret, body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(replier.texts) != 1 || len(replier.texts[0]) != 1 {
		t.Fatalf("expected single reply message, got %v", replier.texts)
	}
	if !strings.Contains(replier.texts[0][0], "「開始」と送ってください") {
		t.Fatalf("expected start instruction, got %q", replier.texts[0][0])
	}
	if recommender.calls != 0 {
		t.Fatalf("expected no recommendation call, got %d", recommender.calls)
	}
}

func TestCallbackContinuesAfterReplyFailure(t *testing.T) {
	recommender := &fakeRecommender{segments: []string{"推薦"}}
	replier := &recordingReplier{err: errors.New("reply endpoint down")}
	r, _ := setupRouter(recommender, replier)

	body := callbackBody(t,
		textMessageEvent("U1", "rt-1", "こんにちは"),
		textMessageEvent("U2", "rt-2", "こんにちは"),
	)
	resp := postCallback(r, body, sign(testChannelSecret, body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 despite reply failures, got %d", resp.Code)
	}
	if len(replier.tokens) != 2 {
		t.Fatalf("expected both events attempted, got %v", replier.tokens)
	}
}

func TestCallbackFullConversation(t *testing.T) {
	recommender := &fakeRecommender{segments: []string{"おすすめはこちらです。", "### 物件1", "### 物件2"}}
	replier := &recordingReplier{}
	r, store := setupRouter(recommender, replier)
	questions := intake.Questions()

	body := callbackBody(t, textMessageEvent("U1", "rt-0", "開始"))
	if resp := postCallback(r, body, sign(testChannelSecret, body)); resp.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", resp.Code)
	}
	if len(replier.texts) != 1 {
		t.Fatalf("expected intro reply, got %v", replier.texts)
	}
	if !strings.Contains(replier.texts[0][0], "Q1. "+questions[0]) {
		t.Fatalf("intro missing first question: %q", replier.texts[0][0])
	}

	answers := []string{"品川", "10万円", "1LDK", "5分", "新築", "可", "30分", "静か", "家賃", "今月"}
	for i, answer := range answers {
		body := callbackBody(t, textMessageEvent("U1", fmt.Sprintf("rt-%d", i+1), answer))
		if resp := postCallback(r, body, sign(testChannelSecret, body)); resp.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d", i+1, resp.Code)
		}

		last := replier.texts[len(replier.texts)-1]
		if i < len(answers)-1 {
			want := fmt.Sprintf("Q%d. %s", i+2, questions[i+1])
			if len(last) != 1 || last[0] != want {
				t.Fatalf("answer %d: expected %q, got %v", i+1, want, last)
			}
		} else {
			if len(last) != 3 || last[0] != "おすすめはこちらです。" {
				t.Fatalf("expected recommendation segments, got %v", last)
			}
		}
	}

	if recommender.calls != 1 {
		t.Fatalf("expected single recommendation call, got %d", recommender.calls)
	}
	received := recommender.received[0]
	if len(received) != len(questions) {
		t.Fatalf("expected %d answers, got %d", len(questions), len(received))
	}
	for i, qa := range received {
		if qa.Question != questions[i] || qa.Answer != answers[i] {
			t.Fatalf("answer %d mismatch: %+v", i+1, qa)
		}
	}

	lastToken := replier.tokens[len(replier.tokens)-1]
	if lastToken != fmt.Sprintf("rt-%d", len(answers)) {
		t.Fatalf("expected reply against the final event token, got %s", lastToken)
	}

	if _, ok, _ := store.Get(context.Background(), "U1"); ok {
		t.Fatal("expected session to be destroyed after the final answer")
	}
}
