package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/deekshith06/lc-rating-system/models"
)

// standingsRow — строка ответа lccn-совместимого API contest-records.
type standingsRow struct {
	Username              string  `json:"username"`
	Rank                  int     `json:"rank"`
	OldRating             float64 `json:"old_rating"`
	ProblemsSolved        int     `json:"problems_solved"`
	TotalProblems         int     `json:"total_problems"`
	AttendedContestsCount int     `json:"attendedContestsCount"`
	Attended              bool    `json:"attended"`
}

// apiError — ответ апстрима уровня "контест не найден":
// объект с полем detail вместо массива записей.
type apiError struct {
	Detail string `json:"detail"`
}

func (r standingsRow) toSnapshot() models.ParticipantSnapshot {
	return models.ParticipantSnapshot{
		Username:              r.Username,
		Rank:                  r.Rank,
		OldRating:             r.OldRating,
		ProblemsSolved:        r.ProblemsSolved,
		TotalProblems:         r.TotalProblems,
		AttendedContestsCount: r.AttendedContestsCount,
		Attended:              r.Attended,
	}
}

// FetchStandings возвращает полную таблицу результатов контеста,
// упорядоченную по месту.
func (c *Client) FetchStandings(ctx context.Context, contest models.ContestRef) (*models.ContestStandings, error) {
	name := contest.Name()
	if !ValidateContestName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContestName, name)
	}

	reqURL := fmt.Sprintf("%s/api/v1/contest-records?contest_name=%s&archived=false",
		c.cfg.StandingsBaseURL, url.QueryEscape(name))

	rows, err := c.fetchRecords(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings for %s: %w", name, err)
	}

	standings := &models.ContestStandings{
		ContestName:  name,
		Participants: make([]models.ParticipantSnapshot, 0, len(rows)),
	}
	for _, row := range rows {
		standings.Participants = append(standings.Participants, row.toSnapshot())
	}
	return standings, nil
}

// FetchUserRecord возвращает запись одного пользователя в контесте.
// Пустой ответ апстрима означает, что пользователь не участвовал:
// возвращается снапшот с Attended == false.
func (c *Client) FetchUserRecord(ctx context.Context, contest models.ContestRef, username string) (models.ParticipantSnapshot, error) {
	name := contest.Name()
	if !ValidateContestName(name) {
		return models.ParticipantSnapshot{}, fmt.Errorf("%w: %q", ErrInvalidContestName, name)
	}

	reqURL := fmt.Sprintf("%s/api/v1/contest-records/user?contest_name=%s&username=%s&archived=false",
		c.cfg.StandingsBaseURL, url.QueryEscape(name), url.QueryEscape(username))

	rows, err := c.fetchRecords(ctx, reqURL)
	if err != nil {
		return models.ParticipantSnapshot{}, fmt.Errorf("failed to fetch record of %s in %s: %w", username, name, err)
	}

	if len(rows) == 0 {
		return models.ParticipantSnapshot{Username: username, Attended: false}, nil
	}
	return rows[0].toSnapshot(), nil
}

// fetchRecords декодирует ответ contest-records. Апстрим сигнализирует
// об отсутствии контеста не статусом, а объектом {"detail": ...} вместо
// массива записей.
func (c *Client) fetchRecords(ctx context.Context, reqURL string) ([]standingsRow, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, reqURL, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var apiErr apiError
		if err := json.Unmarshal(trimmed, &apiErr); err == nil && apiErr.Detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrContestNotFound, apiErr.Detail)
		}
	}

	var rows []standingsRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("unexpected contest-records payload: %w", err)
	}
	return rows, nil
}
