package intake

// 会話を制御するキーワード。完全一致のみ反応する。
const (
	StartKeyword = "開始"
	StopKeyword  = "終了"
)

// Questions returns the fixed interview flow in ask order.
func Questions() []string {
	return []string{
		"希望エリアはどちらですか？（例：品川、新宿など）",
		"家賃の上限を教えてください。（例：10万円）",
		"間取りの希望を教えてください。（例：1LDK、2DKなど）",
		"駅から徒歩何分以内が良いですか？",
		"築年数の希望はありますか？（例：新築〜10年以内など）",
		"ペット可などの条件はありますか？",
		"職場（学校）までの通勤時間の希望はありますか？",
		"どんなライフスタイルですか？（静かに過ごしたい／駅近重視など）",
		"重視するポイントは？（家賃・広さ・場所・築年数など）",
		"入居希望時期はいつ頃ですか？",
	}
}
