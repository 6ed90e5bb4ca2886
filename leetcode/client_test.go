package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deekshith06/lc-rating-system/models"
)

var weekly476 = models.ContestRef{Type: models.ContestTypeWeekly, No: 476}

func newTestClient(standingsURL, graphqlURL string) *Client {
	c := NewClient(Config{
		StandingsBaseURL: standingsURL,
		GraphQLURL:       graphqlURL,
		Timeout:          2 * time.Second,
	})
	c.retryDelay = time.Millisecond
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestValidateContestName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"weekly-contest-476", true},
		{"biweekly-contest-102", true},
		{"daily-challenge-1", false},
		{"weekly-contest-", false},
		{"weekly-contest-12abc", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateContestName(tt.name), tt.name)
	}
}

func TestFetchStandings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weekly-contest-476", r.URL.Query().Get("contest_name"))
		jsonHandler(http.StatusOK, `[
			{"username":"alice","rank":1,"old_rating":1785.84,"problems_solved":4,"total_problems":4,"attendedContestsCount":42,"attended":true},
			{"username":"bob","rank":2,"old_rating":1500,"problems_solved":3,"total_problems":4,"attendedContestsCount":7,"attended":true}
		]`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	standings, err := c.FetchStandings(context.Background(), weekly476)
	require.NoError(t, err)

	assert.Equal(t, "weekly-contest-476", standings.ContestName)
	require.Len(t, standings.Participants, 2)
	assert.Equal(t, "alice", standings.Participants[0].Username)
	assert.Equal(t, 1, standings.Participants[0].Rank)
	assert.InDelta(t, 1785.84, standings.Participants[0].OldRating, 1e-9)
	assert.Equal(t, 42, standings.Participants[0].AttendedContestsCount)
	assert.True(t, standings.Participants[0].Attended)
}

func TestFetchStandingsContestNotFound(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"detail":"Contest not found"}`))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.FetchStandings(context.Background(), weekly476)
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestFetchStandingsInvalidName(t *testing.T) {
	c := newTestClient("http://unused", "")
	_, err := c.FetchStandings(context.Background(), models.ContestRef{Type: "daily", No: 1})
	assert.ErrorIs(t, err, ErrInvalidContestName)
}

func TestFetchStandingsRetriesThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.FetchStandings(context.Background(), weekly476)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, defaultMaxRetries, calls)
}

func TestFetchStandingsRecoversAfterRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		jsonHandler(http.StatusOK, `[]`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	standings, err := c.FetchStandings(context.Background(), weekly476)
	require.NoError(t, err)
	assert.Empty(t, standings.Participants)
	assert.Equal(t, 2, calls)
}

func TestFetchStandingsCloudflareBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>Attention Required</html>")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.FetchStandings(context.Background(), weekly476)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestFetchUserRecordNotParticipated(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `[]`))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	snap, err := c.FetchUserRecord(context.Background(), weekly476, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", snap.Username)
	assert.False(t, snap.Attended)
}

func graphqlHistoryServer(t *testing.T, entries string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "userContestRankingInfo", req.OperationName)
		jsonHandler(http.StatusOK, `{"data":{"userContestRankingHistory":`+entries+`}}`)(w, r)
	}))
}

func TestFetchActualResult(t *testing.T) {
	srv := graphqlHistoryServer(t, `[
		{"attended":true,"problemsSolved":2,"totalProblems":4,"rating":1640.1,"ranking":5012,"contest":{"title":"Weekly Contest 475"}},
		{"attended":true,"problemsSolved":3,"totalProblems":4,"rating":1766.448,"ranking":2790,"contest":{"title":"Weekly Contest 476"}}
	]`)
	defer srv.Close()

	c := newTestClient("", srv.URL)
	result, err := c.FetchActualResult(context.Background(), weekly476, "abcd")
	require.NoError(t, err)

	assert.Equal(t, "abcd", result.Username)
	require.NotNil(t, result.Rating)
	assert.InDelta(t, 1766.448, *result.Rating, 1e-9)
	assert.Equal(t, 2790, *result.Ranking)
	assert.Equal(t, 3, *result.ProblemsSolved)
	assert.Equal(t, 4, *result.TotalProblems)
}

func TestFetchActualResultNotPublished(t *testing.T) {
	srv := graphqlHistoryServer(t, `[
		{"attended":true,"problemsSolved":2,"totalProblems":4,"rating":1640.1,"ranking":5012,"contest":{"title":"Weekly Contest 475"}}
	]`)
	defer srv.Close()

	c := newTestClient("", srv.URL)
	_, err := c.FetchActualResult(context.Background(), weekly476, "abcd")
	assert.ErrorIs(t, err, ErrResultsNotPublished)
}

func TestFetchActualResultNoHistory(t *testing.T) {
	srv := graphqlHistoryServer(t, `[]`)
	defer srv.Close()

	c := newTestClient("", srv.URL)
	_, err := c.FetchActualResult(context.Background(), weekly476, "newbie")
	assert.ErrorIs(t, err, ErrNoContestHistory)
}

func TestFetchActualResultRequiresUsername(t *testing.T) {
	c := newTestClient("", "http://unused")
	_, err := c.FetchActualResult(context.Background(), weekly476, "")
	assert.Error(t, err)
}

func TestFetchContests(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"data":{"topTwoContests":[
		{"title":"Weekly Contest 477","titleSlug":"weekly-contest-477","startTime":1767513600,"duration":5400},
		{"title":"Biweekly Contest 103","titleSlug":"biweekly-contest-103","startTime":1767600000,"duration":5400}
	]}}`))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	contests, err := c.FetchContests(context.Background())
	require.NoError(t, err)
	require.Len(t, contests, 2)
	assert.Equal(t, "weekly-contest-477", contests[0].TitleSlug)
	assert.Equal(t, 5400, contests[0].Duration)
	assert.Equal(t, int64(1767513600), contests[0].StartTime.Unix())
}
