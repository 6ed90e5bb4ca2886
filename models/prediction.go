package models

// PredictionResult — предсказание рейтинга одного пользователя.
// Для не участвовавших (Attended == false) числовые поля отсутствуют,
// а Error содержит пояснение: это вариант результата, не сбой.
type PredictionResult struct {
	Username string `json:"username"`
	Link     string `json:"link"`
	Attended bool   `json:"attended"`

	Rank                  *int     `json:"rank,omitempty"`
	OldRating             *float64 `json:"old_rating,omitempty"`
	NewRating             *float64 `json:"new_rating,omitempty"`
	DeltaRating           *float64 `json:"delta_rating,omitempty"`
	AttendedContestsCount *int     `json:"attendedContestsCount,omitempty"`

	Error string `json:"error,omitempty"`
}

// ContestPrediction — результат батча предсказаний по одному контесту.
type ContestPrediction struct {
	ContestName string             `json:"contestName"`
	Users       []PredictionResult `json:"users"`
	Error       string             `json:"error,omitempty"`
}

// ReconciledContest объединяет предсказания с официальными результатами.
// Actual равен nil, пока платформа не опубликовала итоги или их не
// удалось получить; предсказания при этом отдаются как есть. Error
// переносится из батча предсказаний, если тот завершился сбоем.
type ReconciledContest struct {
	ContestName      string                  `json:"contestName"`
	Predictions      []PredictionResult      `json:"predictions"`
	Actual           map[string]ActualResult `json:"actual"`
	ResultsPublished bool                    `json:"resultsPublished"`
	Error            string                  `json:"error,omitempty"`
}
