package models

// ActualResult — официальный результат пользователя после публикации
// итогов контеста платформой. Структурно параллелен PredictionResult:
// ошибка — это поле данных, а не исключение.
type ActualResult struct {
	Username       string   `json:"username"`
	ProblemsSolved *int     `json:"problemsSolved,omitempty"`
	TotalProblems  *int     `json:"totalProblems,omitempty"`
	Ranking        *int     `json:"ranking,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Error          string   `json:"error,omitempty"`
}
