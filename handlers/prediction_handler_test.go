package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deekshith06/lc-rating-system/models"
	"github.com/deekshith06/lc-rating-system/services"
)

type fakePredictionService struct {
	lastContest   models.ContestRef
	lastUsernames []string
	prediction    *models.ContestPrediction
	reconciled    *models.ReconciledContest
	clearErr      error
	cleared       int
}

func (f *fakePredictionService) Predict(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ContestPrediction, error) {
	f.lastContest = contest
	f.lastUsernames = usernames
	if f.prediction != nil {
		return f.prediction, nil
	}
	return &models.ContestPrediction{ContestName: contest.Name()}, nil
}

func (f *fakePredictionService) Obtained(ctx context.Context, contest models.ContestRef, usernames []string) (map[string]models.ActualResult, error) {
	f.lastContest = contest
	f.lastUsernames = usernames
	return map[string]models.ActualResult{}, nil
}

func (f *fakePredictionService) Reconcile(ctx context.Context, contest models.ContestRef, usernames []string) (*models.ReconciledContest, error) {
	f.lastContest = contest
	f.lastUsernames = usernames
	if f.reconciled != nil {
		return f.reconciled, nil
	}
	return &models.ReconciledContest{ContestName: contest.Name()}, nil
}

func (f *fakePredictionService) Contests(ctx context.Context) ([]models.ContestInfo, error) {
	return []models.ContestInfo{{Title: "Weekly Contest 477", TitleSlug: "weekly-contest-477"}}, nil
}

func (f *fakePredictionService) ClearCache(scope string) (int, error) {
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	return f.cleared, nil
}

type fakeChannelService struct {
	rosters map[string][]string
	err     error
}

func (f *fakeChannelService) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Channel{ID: channelID, Usernames: f.rosters[channelID]}, nil
}

func (f *fakeChannelService) Create(ctx context.Context, channelID string, usernames []string) (*models.Channel, error) {
	return nil, f.err
}

func (f *fakeChannelService) AddUsers(ctx context.Context, channelID string, usernames []string) (*models.Channel, error) {
	return nil, f.err
}

func (f *fakeChannelService) Delete(ctx context.Context, channelID string) error {
	return f.err
}

func (f *fakeChannelService) List(ctx context.Context) ([]models.Channel, error) {
	return nil, f.err
}

func (f *fakeChannelService) Resolve(ctx context.Context, channelID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[channelID], nil
}

func newPredictionHandler(ps *fakePredictionService, cs services.ChannelService) *PredictionHandler {
	return NewPredictionHandler(ps, cs, nil)
}

func doRequest(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestPredictHandlerSuccess(t *testing.T) {
	svc := &fakePredictionService{}
	h := newPredictionHandler(svc, &fakeChannelService{})

	rec := doRequest(t, h.PredictHandler, "/lc?contestType=weekly&contestNo=476&username=alice,bob")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContestRef{Type: models.ContestTypeWeekly, No: 476}, svc.lastContest)
	assert.Equal(t, []string{"alice", "bob"}, svc.lastUsernames)

	var body models.ContestPrediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "weekly-contest-476", body.ContestName)
}

func TestPredictHandlerContestTypeNormalization(t *testing.T) {
	svc := &fakePredictionService{}
	h := newPredictionHandler(svc, &fakeChannelService{})

	rec := doRequest(t, h.PredictHandler, "/lc?contestType=Bi-Weekly&contestNo=102&username=alice")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContestTypeBiweekly, svc.lastContest.Type)
	assert.Equal(t, 102, svc.lastContest.No)
}

func TestPredictHandlerMergesChannelRoster(t *testing.T) {
	svc := &fakePredictionService{}
	channels := &fakeChannelService{rosters: map[string][]string{"42": {"carol", "dave"}}}
	h := newPredictionHandler(svc, channels)

	rec := doRequest(t, h.PredictHandler, "/lc?contestType=weekly&contestNo=476&username=alice&channelNo=42")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice", "carol", "dave"}, svc.lastUsernames)
}

func TestPredictHandlerBadRequests(t *testing.T) {
	h := newPredictionHandler(&fakePredictionService{}, &fakeChannelService{})

	tests := []struct {
		name   string
		target string
	}{
		{"missing contest params", "/lc?username=alice"},
		{"unknown contest type", "/lc?contestType=daily&contestNo=1&username=alice"},
		{"non-numeric contest no", "/lc?contestType=weekly&contestNo=abc&username=alice"},
		{"negative contest no", "/lc?contestType=weekly&contestNo=-1&username=alice"},
		{"no username and no channel", "/lc?contestType=weekly&contestNo=476"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h.PredictHandler, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPredictHandlerRegistryDisabled(t *testing.T) {
	h := newPredictionHandler(&fakePredictionService{}, &fakeChannelService{err: services.ErrRegistryDisabled})

	rec := doRequest(t, h.PredictHandler, "/lc?contestType=weekly&contestNo=476&channelNo=42")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestObtainedHandlerParsesContestName(t *testing.T) {
	svc := &fakePredictionService{}
	h := newPredictionHandler(svc, &fakeChannelService{})

	rec := doRequest(t, h.ObtainedHandler, "/obtained?name=biweekly-contest-102&username=alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContestRef{Type: models.ContestTypeBiweekly, No: 102}, svc.lastContest)

	rec = doRequest(t, h.ObtainedHandler, "/obtained?name=daily-challenge&username=alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileHandler(t *testing.T) {
	svc := &fakePredictionService{
		reconciled: &models.ReconciledContest{
			ContestName:      "weekly-contest-476",
			ResultsPublished: false,
		},
	}
	h := newPredictionHandler(svc, &fakeChannelService{})

	rec := doRequest(t, h.ReconcileHandler, "/reconcile?contestType=weekly&contestNo=476&username=alice")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.ReconciledContest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.ResultsPublished)
	assert.Nil(t, body.Actual)
}

func TestContestsHandler(t *testing.T) {
	h := newPredictionHandler(&fakePredictionService{}, &fakeChannelService{})

	rec := doRequest(t, h.ContestsHandler, "/contests")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weekly-contest-477")
}

func TestCacheClearHandler(t *testing.T) {
	svc := &fakePredictionService{cleared: 7}
	h := NewCacheHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/cache/clear?cache_type=all", nil)
	rec := httptest.NewRecorder()
	h.ClearHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cleared":7`)

	svc.clearErr = services.ErrInvalidCacheScope
	rec = httptest.NewRecorder()
	h.ClearHandler(rec, httptest.NewRequest(http.MethodPost, "/cache/clear?cache_type=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
