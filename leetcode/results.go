package leetcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deekshith06/lc-rating-system/models"
)

// ErrResultsNotPublished — официальные результаты контеста ещё не
// появились в истории пользователя.
var ErrResultsNotPublished = errors.New("contest results not yet published")

// ErrNoContestHistory — у пользователя нет истории контестов вовсе.
var ErrNoContestHistory = errors.New("no contest history found for user")

const rankingHistoryQuery = `
    query userContestRankingInfo($username: String!) {
      userContestRanking(username: $username) {
        attendedContestsCount
        rating
        globalRanking
      }
      userContestRankingHistory(username: $username) {
        attended
        problemsSolved
        totalProblems
        rating
        ranking
        contest {
          title
        }
      }
    }
`

const contestListQuery = `
    query topTwoContests {
      topTwoContests {
        title
        titleSlug
        startTime
        duration
      }
    }
`

type graphqlRequest struct {
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Query         string                 `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type historyEntry struct {
	Attended       bool    `json:"attended"`
	ProblemsSolved int     `json:"problemsSolved"`
	TotalProblems  int     `json:"totalProblems"`
	Rating         float64 `json:"rating"`
	Ranking        int     `json:"ranking"`
	Contest        struct {
		Title string `json:"title"`
	} `json:"contest"`
}

type rankingHistoryResponse struct {
	Data struct {
		UserContestRankingHistory []historyEntry `json:"userContestRankingHistory"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchActualResult возвращает официальный результат пользователя в
// контесте из GraphQL API платформы. Контест, ещё не попавший в историю
// пользователя, отдаётся как ErrResultsNotPublished — для свежих
// контестов это ожидаемое состояние, а не сбой.
func (c *Client) FetchActualResult(ctx context.Context, contest models.ContestRef, username string) (models.ActualResult, error) {
	if username == "" {
		return models.ActualResult{}, errors.New("username is required")
	}
	name := contest.Name()
	if !ValidateContestName(name) {
		return models.ActualResult{}, fmt.Errorf("%w: %q", ErrInvalidContestName, name)
	}

	req := graphqlRequest{
		OperationName: "userContestRankingInfo",
		Variables:     map[string]interface{}{"username": username},
		Query:         rankingHistoryQuery,
	}

	var resp rankingHistoryResponse
	if err := c.postJSON(ctx, c.cfg.GraphQLURL, req, &resp); err != nil {
		return models.ActualResult{}, fmt.Errorf("graphql request for %s failed: %w", username, err)
	}
	if len(resp.Errors) > 0 {
		return models.ActualResult{}, fmt.Errorf("graphql error for %s: %s", username, resp.Errors[0].Message)
	}

	history := resp.Data.UserContestRankingHistory
	if len(history) == 0 {
		return models.ActualResult{}, fmt.Errorf("%w: %s", ErrNoContestHistory, username)
	}

	// История просматривается с конца: нужный контест почти всегда
	// среди последних записей.
	title := contest.Title()
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if !strings.EqualFold(entry.Contest.Title, title) {
			continue
		}
		solved := entry.ProblemsSolved
		total := entry.TotalProblems
		ranking := entry.Ranking
		rating := entry.Rating
		return models.ActualResult{
			Username:       username,
			ProblemsSolved: &solved,
			TotalProblems:  &total,
			Ranking:        &ranking,
			Rating:         &rating,
		}, nil
	}

	return models.ActualResult{}, fmt.Errorf("%w: %s for %s", ErrResultsNotPublished, name, username)
}

type contestListResponse struct {
	Data struct {
		TopTwoContests []struct {
			Title     string `json:"title"`
			TitleSlug string `json:"titleSlug"`
			StartTime int64  `json:"startTime"`
			Duration  int    `json:"duration"`
		} `json:"topTwoContests"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchContests возвращает текущий и предстоящий контесты платформы.
func (c *Client) FetchContests(ctx context.Context) ([]models.ContestInfo, error) {
	req := graphqlRequest{
		OperationName: "topTwoContests",
		Variables:     map[string]interface{}{},
		Query:         contestListQuery,
	}

	var resp contestListResponse
	if err := c.postJSON(ctx, c.cfg.GraphQLURL, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch contest list: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error fetching contests: %s", resp.Errors[0].Message)
	}

	contests := make([]models.ContestInfo, 0, len(resp.Data.TopTwoContests))
	for _, entry := range resp.Data.TopTwoContests {
		contests = append(contests, models.ContestInfo{
			Title:     entry.Title,
			TitleSlug: entry.TitleSlug,
			StartTime: time.Unix(entry.StartTime, 0).UTC(),
			Duration:  entry.Duration,
		})
	}
	return contests, nil
}
