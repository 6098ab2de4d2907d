package intake

import "time"

// QA pairs one question from the catalog with the user's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session captures one user's progress through the question flow.
// Index counts answered questions, so Index == len(Answers) always holds.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Index     int       `json:"index"`
	Answers   []QA      `json:"answers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
