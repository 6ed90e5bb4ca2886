package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/deekshith06/lc-rating-system/cache"
	"github.com/deekshith06/lc-rating-system/models"
	"github.com/deekshith06/lc-rating-system/rating"
)

// StandingsSource отдаёт таблицу результатов контеста и записи
// отдельных участников.
type StandingsSource interface {
	FetchStandings(ctx context.Context, contest models.ContestRef) (*models.ContestStandings, error)
	FetchUserRecord(ctx context.Context, contest models.ContestRef, username string) (models.ParticipantSnapshot, error)
}

// ResultSource отдаёт официальные результаты после публикации платформой.
type ResultSource interface {
	FetchActualResult(ctx context.Context, contest models.ContestRef, username string) (models.ActualResult, error)
}

type ContestSource interface {
	FetchContests(ctx context.Context) ([]models.ContestInfo, error)
}

// Broadcaster рассылает сообщение всем подписчикам комнаты контеста.
type Broadcaster interface {
	BroadcastToRoom(room string, message []byte)
}

type PredictionService interface {
	Predict(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ContestPrediction, error)
	Obtained(ctx context.Context, contest models.ContestRef, usernames []string) (map[string]models.ActualResult, error)
	Reconcile(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ReconciledContest, error)
	Contests(ctx context.Context) ([]models.ContestInfo, error)
	ClearCache(scope string) (int, error)
}

// actualsFetchLimit ограничивает число одновременных GraphQL-запросов,
// чтобы не спровоцировать rate limit платформы.
const actualsFetchLimit = 6

type predictionService struct {
	standings StandingsSource
	results   ResultSource
	contests  ContestSource
	predictor *rating.Predictor
	cache     *cache.Cache
	hub       Broadcaster
	logger    *slog.Logger
}

func NewPredictionService(
	standings StandingsSource,
	results ResultSource,
	contests ContestSource,
	predictor *rating.Predictor,
	c *cache.Cache,
	hub Broadcaster,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		standings: standings,
		results:   results,
		contests:  contests,
		predictor: predictor,
		cache:     c,
		hub:       hub,
		logger:    logger,
	}
}

// Predict считает предсказания рейтингов для usernames в указанном контесте.
// Ошибки апстрима не прерывают вызов, а попадают в поле Error ответа:
// батч либо считается целиком, либо отдаёт одну общую ошибку без
// частичных результатов.
func (s *predictionService) Predict(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ContestPrediction, error) {
	users := normalizeUsernames(usernames)
	if len(users) == 0 {
		return nil, ErrNoUsernames
	}

	batchKey := predictionCacheKey(contest, users)
	if cached, ok := s.cache.Get(cache.NamespaceChannel, batchKey); ok {
		if prediction, ok := cached.(*models.ContestPrediction); ok {
			return prediction, nil
		}
	}

	snapshot, err := s.buildSnapshot(ctx, contest, users)
	if err != nil {
		s.logger.Error("standings fetch failed",
			slog.String("contest", contest.Name()),
			slog.String("error", err.Error()))
		return &models.ContestPrediction{
			ContestName: contest.Name(),
			Error:       err.Error(),
		}, nil
	}

	prediction := &models.ContestPrediction{
		ContestName: contest.Name(),
		Users:       s.predictor.Predict(snapshot),
	}
	sortPredictions(prediction.Users)

	s.cache.Put(cache.NamespaceChannel, batchKey, prediction)
	s.broadcast(contest, prediction)

	return prediction, nil
}

// buildSnapshot собирает таблицу по запрошенным пользователям: одна
// загрузка standings на контест плюс точечные запросы для тех, кого в
// таблице не оказалось.
func (s *predictionService) buildSnapshot(ctx context.Context, contest models.ContestRef, users []string) (*models.ContestStandings, error) {
	standingsKey := "standings:" + contest.Name()

	var full *models.ContestStandings
	if cached, ok := s.cache.Get(cache.NamespaceUser, standingsKey); ok {
		full, _ = cached.(*models.ContestStandings)
	}
	if full == nil {
		fetched, err := s.standings.FetchStandings(ctx, contest)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch standings: %w", err)
		}
		full = fetched
		s.cache.Put(cache.NamespaceUser, standingsKey, full)
	}

	snapshot := &models.ContestStandings{
		ContestName:  contest.Name(),
		Participants: make([]models.ParticipantSnapshot, 0, len(users)),
	}
	for _, username := range users {
		snap, found := full.Lookup(username)
		if !found {
			var err error
			snap, err = s.fetchUserRecord(ctx, contest, username)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch record of %s: %w", username, err)
			}
		}
		snapshot.Participants = append(snapshot.Participants, snap)
	}
	return snapshot, nil
}

func (s *predictionService) fetchUserRecord(ctx context.Context, contest models.ContestRef, username string) (models.ParticipantSnapshot, error) {
	recordKey := "record:" + contest.Name() + ":" + username
	if cached, ok := s.cache.Get(cache.NamespaceUser, recordKey); ok {
		if snap, ok := cached.(models.ParticipantSnapshot); ok {
			return snap, nil
		}
	}

	snap, err := s.standings.FetchUserRecord(ctx, contest, username)
	if err != nil {
		return models.ParticipantSnapshot{}, err
	}
	s.cache.Put(cache.NamespaceUser, recordKey, snap)
	return snap, nil
}

// Obtained загружает официальные результаты по каждому пользователю.
// Запросы независимы: сбой одного превращается в поле Error его записи
// и не влияет на остальных.
func (s *predictionService) Obtained(ctx context.Context, contest models.ContestRef, usernames []string) (map[string]models.ActualResult, error) {
	users := normalizeUsernames(usernames)
	if len(users) == 0 {
		return nil, ErrNoUsernames
	}

	results := make([]models.ActualResult, len(users))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(actualsFetchLimit)
	for i, username := range users {
		i, username := i, username
		g.Go(func() error {
			result, err := s.results.FetchActualResult(gCtx, contest, username)
			if err != nil {
				s.logger.Warn("actual result fetch failed",
					slog.String("contest", contest.Name()),
					slog.String("username", username),
					slog.String("error", err.Error()))
				result = models.ActualResult{Username: username, Error: err.Error()}
			}
			results[i] = result
			return nil
		})
	}
	// Воркеры никогда не возвращают ошибку, Wait нужен только как барьер.
	_ = g.Wait()

	obtained := make(map[string]models.ActualResult, len(results))
	for _, result := range results {
		obtained[result.Username] = result
	}
	return obtained, nil
}

// Reconcile совмещает предсказания с официальными результатами. Обе
// ветки выполняются параллельно; недоступность официальных итогов
// деградирует ответ до одних предсказаний с ResultsPublished == false.
func (s *predictionService) Reconcile(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ReconciledContest, error) {
	users := normalizeUsernames(usernames)
	if len(users) == 0 {
		return nil, ErrNoUsernames
	}

	var (
		prediction *models.ContestPrediction
		actuals    map[string]models.ActualResult
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		prediction, err = s.Predict(gCtx, contest, users)
		return err
	})

	g.Go(func() error {
		fetched, err := s.Obtained(gCtx, contest, users)
		if err != nil {
			// Официальные результаты необязательны, предсказания важнее.
			s.logger.Warn("actuals unavailable during reconcile",
				slog.String("contest", contest.Name()),
				slog.String("error", err.Error()))
			return nil
		}
		actuals = fetched
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	reconciled := &models.ReconciledContest{
		ContestName: contest.Name(),
		Predictions: prediction.Users,
		Error:       prediction.Error,
	}
	if published(actuals) {
		reconciled.Actual = actuals
		reconciled.ResultsPublished = true
	}
	return reconciled, nil
}

func (s *predictionService) Contests(ctx context.Context) ([]models.ContestInfo, error) {
	contests, err := s.contests.FetchContests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contest list: %w", err)
	}
	return contests, nil
}

// ClearCache сбрасывает кэш в указанной области и возвращает число
// удалённых записей.
func (s *predictionService) ClearCache(scope string) (int, error) {
	switch scope {
	case "all", "":
		return s.cache.Clear(), nil
	case string(cache.NamespaceUser):
		return s.cache.Clear(cache.NamespaceUser), nil
	case string(cache.NamespaceChannel):
		return s.cache.Clear(cache.NamespaceChannel), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheScope, scope)
	}
}

func (s *predictionService) broadcast(contest models.ContestRef, prediction *models.ContestPrediction) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(prediction)
	if err != nil {
		s.logger.Error("failed to marshal prediction for broadcast",
			slog.String("contest", contest.Name()),
			slog.String("error", err.Error()))
		return
	}
	s.hub.BroadcastToRoom(contest.Name(), payload)
}

// published считает итоги опубликованными, если хотя бы у одного
// пользователя пришёл новый рейтинг.
func published(actuals map[string]models.ActualResult) bool {
	for _, result := range actuals {
		if result.Rating != nil {
			return true
		}
	}
	return false
}

// normalizeUsernames убирает пустые строки и дубликаты, сохраняя порядок
// первого вхождения.
func normalizeUsernames(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, username := range usernames {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}
		out = append(out, username)
	}
	return out
}

// predictionCacheKey детерминирован относительно состава батча:
// одинаковый набор пользователей в любом порядке попадает в одну запись.
func predictionCacheKey(contest models.ContestRef, users []string) string {
	sorted := make([]string, len(users))
	copy(sorted, users)
	sort.Strings(sorted)
	return contest.Name() + "|" + strings.Join(sorted, ",")
}

// sortPredictions упорядочивает выдачу: сначала участвовавшие, внутри
// группы по убыванию дельты.
func sortPredictions(results []models.PredictionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Attended != b.Attended {
			return a.Attended
		}
		if a.DeltaRating != nil && b.DeltaRating != nil {
			return *a.DeltaRating > *b.DeltaRating
		}
		return a.DeltaRating != nil
	})
}
