package intake

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
	"github.com/kazhorse/line-realestate-bot/internal/service/session"
)

// フローを案内する固定メッセージ。
const (
	introTemplate = "不動産診断を開始します！\n\n" +
		"これからいくつか質問をするので、順番に回答してください。\n" +
		"途中でやめたいときは「終了」と送ってください。\n\n" +
		"Q1. %s"
	pleaseStartMessage = "不動産診断を始めるには「開始」と送ってください。"
	questionTemplate   = "Q%d. %s"
)

// Recommender generates the recommendation segments once answers are in.
type Recommender interface {
	Recommend(ctx context.Context, answers []intake.QA) []string
}

// Service drives the fixed question flow, one inbound message at a time.
type Service struct {
	store       session.Store
	recommender Recommender
	questions   []string
}

// NewService wires the dialogue flow to its session store and recommender.
func NewService(store session.Store, recommender Recommender, questions []string) *Service {
	return &Service{
		store:       store,
		recommender: recommender,
		questions:   append([]string(nil), questions...),
	}
}

// Respond maps one inbound text to the ordered reply messages for that user.
func (s *Service) Respond(ctx context.Context, userID, text string) ([]string, error) {
	text = strings.TrimSpace(text)

	// 「開始」は進行中のセッションがあっても最初からやり直す。
	if text == intake.StartKeyword {
		sess, err := s.store.Start(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		log.Printf("[intake] session started: user=%s session=%s", userID, sess.ID)
		return []string{fmt.Sprintf(introTemplate, s.questions[0])}, nil
	}

	sess, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return []string{pleaseStartMessage}, nil
	}

	// 「終了」は途中までの回答で集計に進む。
	if text == intake.StopKeyword {
		return s.finalize(ctx, userID, sess)
	}

	if sess.Index < len(s.questions) {
		sess, err = s.store.Append(ctx, userID, intake.QA{
			Question: s.questions[sess.Index],
			Answer:   text,
		})
		if err != nil {
			return nil, fmt.Errorf("record answer: %w", err)
		}
	}

	if sess.Index < len(s.questions) {
		return []string{fmt.Sprintf(questionTemplate, sess.Index+1, s.questions[sess.Index])}, nil
	}

	return s.finalize(ctx, userID, sess)
}

// finalize hands the collected answers to the recommender and closes the session.
func (s *Service) finalize(ctx context.Context, userID string, sess intake.Session) ([]string, error) {
	log.Printf("[intake] session finalized: user=%s session=%s answers=%d", userID, sess.ID, len(sess.Answers))
	segments := s.recommender.Recommend(ctx, sess.Answers)

	if err := s.store.End(ctx, userID); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return segments, nil
}
