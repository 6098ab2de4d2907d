package recommend

import (
	"fmt"
	"strings"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
)

// systemPrompt はモデルに与える不動産アドバイザーの人格設定。
const systemPrompt = "あなたは親切で分かりやすく説明する不動産アドバイザーです。"

const promptTemplate = `以下は、賃貸物件を探しているユーザーの希望条件です。
この情報をもとに、日本の一般的な賃貸市場を想定して、
ユーザーに合いそうな「仮想の」おすすめ物件を3件提案してください。

それぞれについて、
- 物件名（仮でOK）
- 家賃の目安
- 間取り
- 最寄り駅と徒歩分数
- ユーザーの希望にマッチしている理由

を、箇条書きでわかりやすく日本語で説明してください。

ユーザーの回答は次のとおりです：

%s`

// buildPrompt renders the collected answers into the generation request.
func buildPrompt(answers []intake.QA) string {
	var qa strings.Builder
	for i, pair := range answers {
		fmt.Fprintf(&qa, "Q%d: %s\nA%d: %s\n\n", i+1, pair.Question, i+1, pair.Answer)
	}
	return fmt.Sprintf(promptTemplate, qa.String())
}
