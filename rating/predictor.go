// Package rating реализует итеративный алгоритм предсказания рейтинга
// по таблице результатов контеста. Семейство формул фиксированное:
// логистическая вероятность победы, бинарный поиск performance-рейтинга,
// несколько проходов до сходимости.
package rating

import (
	"math"

	"github.com/deekshith06/lc-rating-system/models"
)

const (
	// ErrNotParticipated — текст ошибки для не участвовавших.
	ErrNotParticipated = "did not participate"
	// ErrMalformedEntry — текст ошибки для строки standings без валидного ранга.
	ErrMalformedEntry = "malformed standings entry"
)

// Config задаёт константы алгоритма. Значения по умолчанию подобраны
// под опубликованное поведение платформы.
type Config struct {
	// Scale — масштаб логистической вероятности победы (Elo-подобный).
	Scale float64
	// SearchMin и SearchMax ограничивают бинарный поиск performance-рейтинга.
	SearchMin float64
	SearchMax float64
	// RankTolerance — точность поиска в единицах ранга.
	RankTolerance float64
	// MaxSearchSteps ограничивает число итераций бисекции: поиск всегда
	// завершается, какой бы узкой ни была толерантность.
	MaxSearchSteps int
	// MaxPasses — число проходов сходимости.
	MaxPasses int
	// Epsilon — порог максимального изменения рейтинга за проход,
	// по достижении которого проходы прекращаются.
	Epsilon float64
	// SoloBonus — потолок performance для контеста с единственным
	// участником: oldRating + SoloBonus.
	SoloBonus float64
}

// DefaultConfig возвращает константы по умолчанию.
func DefaultConfig() Config {
	return Config{
		Scale:          400,
		SearchMin:      0,
		SearchMax:      4000,
		RankTolerance:  1e-6,
		MaxSearchSteps: 64,
		MaxPasses:      6,
		Epsilon:        0.05,
		SoloBonus:      400,
	}
}

// Predictor считает предсказанные рейтинги для всех участников контеста.
// Экземпляр не имеет мутабельного состояния и безопасен для
// конкурентного использования.
type Predictor struct {
	cfg Config
}

func NewPredictor() *Predictor {
	return NewPredictorWithConfig(DefaultConfig())
}

func NewPredictorWithConfig(cfg Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// winProb — вероятность того, что участник с рейтингом opponent обыграет
// участника с рейтингом own.
func (p *Predictor) winProb(own, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (own-opponent)/p.cfg.Scale))
}

// expectedRank — ожидаемое место участника с рейтингом own среди
// соперников с рейтингами others: единица за собственную позицию плюс
// сумма вероятностей проигрыша каждому сопернику.
func (p *Predictor) expectedRank(own float64, others []float64) float64 {
	rank := 1.0
	for _, r := range others {
		rank += p.winProb(own, r)
	}
	return rank
}

// solvePerformance подбирает рейтинг, при котором ожидаемое место
// равно targetRank. Ожидаемое место монотонно убывает по рейтингу,
// поэтому бисекция корректна; число шагов жёстко ограничено.
func (p *Predictor) solvePerformance(others []float64, targetRank float64) float64 {
	lo, hi := p.cfg.SearchMin, p.cfg.SearchMax
	for i := 0; i < p.cfg.MaxSearchSteps; i++ {
		mid := (lo + hi) / 2
		got := p.expectedRank(mid, others)
		if math.Abs(got-targetRank) <= p.cfg.RankTolerance {
			return mid
		}
		if got > targetRank {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// experienceWeight — доля сдвига к performance за один проход.
// Убывает с числом сыгранных контестов: новички двигаются на полный
// сдвиг, опытные участники — примерно на десятую часть.
func experienceWeight(attendedContests int) float64 {
	decaySum := 9 * (1 - math.Pow(0.9, float64(attendedContests)))
	return 1 / (1 + decaySum)
}

// Predict возвращает PredictionResult для каждого участника standings.
// Не участвовавшие и строки без валидного ранга получают результат с
// ошибкой и не влияют на расчёт остальных.
func (p *Predictor) Predict(standings *models.ContestStandings) []models.PredictionResult {
	results := make([]models.PredictionResult, len(standings.Participants))

	// Индексы участников, попадающих в итеративный расчёт.
	var attendees []int
	for i, snap := range standings.Participants {
		results[i] = models.PredictionResult{
			Username: snap.Username,
			Link:     profileLink(snap.Username),
			Attended: snap.Attended,
		}
		switch {
		case !snap.Attended:
			results[i].Error = ErrNotParticipated
		case snap.Rank < 1:
			results[i].Attended = false
			results[i].Error = ErrMalformedEntry
		default:
			attendees = append(attendees, i)
		}
	}
	if len(attendees) == 0 {
		return results
	}

	estimates := make([]float64, len(attendees))
	for k, i := range attendees {
		estimates[k] = standings.Participants[i].OldRating
	}

	next := make([]float64, len(attendees))
	for pass := 0; pass < p.cfg.MaxPasses; pass++ {
		maxShift := 0.0
		// Все вычисления прохода видят один и тот же снимок estimates;
		// обновления публикуются только после окончания прохода.
		// Смесь заякорена на oldRating: у последнего места ожидаемый
		// ранг строго меньше N и дрейфующая смесь не имеет неподвижной
		// точки, а заякоренная сходится.
		for k, i := range attendees {
			snap := standings.Participants[i]
			perf := p.performanceFor(k, estimates, snap)
			w := experienceWeight(snap.AttendedContestsCount)
			next[k] = snap.OldRating + w*(perf-snap.OldRating)
			if shift := math.Abs(next[k] - estimates[k]); shift > maxShift {
				maxShift = shift
			}
		}
		estimates, next = next, estimates
		if maxShift < p.cfg.Epsilon {
			break
		}
	}

	for k, i := range attendees {
		snap := standings.Participants[i]
		newRating := estimates[k]
		delta := newRating - snap.OldRating

		rank := snap.Rank
		oldRating := snap.OldRating
		contests := snap.AttendedContestsCount
		results[i].Rank = &rank
		results[i].OldRating = &oldRating
		results[i].NewRating = &newRating
		results[i].DeltaRating = &delta
		results[i].AttendedContestsCount = &contests
	}
	return results
}

// performanceFor считает performance-рейтинг участника k на текущем
// снимке оценок. Цель поиска — среднее геометрическое ожидаемого и
// фактического места: таргет по сырому месту уводит performance лидера
// к границе диапазона поиска.
func (p *Predictor) performanceFor(k int, estimates []float64, snap models.ParticipantSnapshot) float64 {
	others := make([]float64, 0, len(estimates)-1)
	for j, est := range estimates {
		if j != k {
			others = append(others, est)
		}
	}

	// Единственный участник: формула ожидаемого места вырождается,
	// performance ограничивается детерминированным потолком.
	if len(others) == 0 {
		return snap.OldRating + p.cfg.SoloBonus
	}

	seed := p.expectedRank(estimates[k], others)
	target := math.Sqrt(seed * float64(snap.Rank))
	return p.solvePerformance(others, target)
}

func profileLink(username string) string {
	return "https://leetcode.com/u/" + username + "/"
}
