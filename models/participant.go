package models

// ParticipantSnapshot — неизменяемое состояние участника на момент
// окончания контеста: место, старый рейтинг, решённые задачи.
// Создаётся один раз на пару (user, contest) и после этого не мутирует,
// поэтому его можно безопасно шарить через кэш.
type ParticipantSnapshot struct {
	Username              string  `json:"username"`
	Rank                  int     `json:"rank"`
	OldRating             float64 `json:"old_rating"`
	ProblemsSolved        int     `json:"problems_solved"`
	TotalProblems         int     `json:"total_problems"`
	AttendedContestsCount int     `json:"attended_contests_count"`
	Attended              bool    `json:"attended"`
}

// ContestStandings — полная таблица результатов одного контеста,
// упорядоченная по месту. Ранги доверяются источнику и здесь не
// пересчитываются.
type ContestStandings struct {
	ContestName  string                `json:"contest_name"`
	Participants []ParticipantSnapshot `json:"participants"`
}

// Lookup возвращает снапшот участника по имени.
func (s *ContestStandings) Lookup(username string) (ParticipantSnapshot, bool) {
	for _, p := range s.Participants {
		if p.Username == username {
			return p, true
		}
	}
	return ParticipantSnapshot{}, false
}
