package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kazhorse/line-realestate-bot/internal/config"
	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
	"github.com/kazhorse/line-realestate-bot/internal/service/recommend"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] .env を読み込めませんでした。システム環境変数を使用します: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	answers := flag.String("answers", "", "カンマ区切りの回答リスト (質問と同じ順番で対応付ける)")
	timeout := flag.Duration("timeout", 45*time.Second, "リクエストのタイムアウト時間")

	flag.Parse()

	if strings.TrimSpace(*answers) == "" {
		flag.Usage()
		log.Fatal("-answers でカンマ区切りの回答リストを指定してください")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("チャットモデルの初期化に失敗しました: %v", err)
	}

	svc, err := recommend.NewService(ctx, chatModel, recommend.Config{Timeout: *timeout})
	if err != nil {
		log.Fatalf("レコメンドサービスの初期化に失敗しました: %v", err)
	}

	qas := buildAnswers(intake.Questions(), *answers)

	log.Printf("おすすめ物件の生成を開始します: answers=%d timeout=%s", len(qas), *timeout)

	segments := svc.Recommend(ctx, qas)
	for i, segment := range segments {
		fmt.Printf("--- メッセージ %d/%d ---\n%s\n\n", i+1, len(segments), segment)
	}
}

// buildAnswers はカンマ区切りの入力を質問リストと先頭から突き合わせる。
// 質問数を超えた分は無視する。
func buildAnswers(questions []string, raw string) []intake.QA {
	values := strings.Split(raw, ",")
	qas := make([]intake.QA, 0, len(values))
	for i, value := range values {
		if i >= len(questions) {
			break
		}
		qas = append(qas, intake.QA{
			Question: questions[i],
			Answer:   strings.TrimSpace(value),
		})
	}
	return qas
}
