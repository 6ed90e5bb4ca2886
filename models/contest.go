package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ContestType string

const (
	ContestTypeWeekly   ContestType = "weekly"
	ContestTypeBiweekly ContestType = "biweekly"
)

// ContestRef идентифицирует один конкретный контест платформы.
type ContestRef struct {
	Type ContestType `json:"type"`
	No   int         `json:"no"`
}

// Name возвращает полное имя контеста в формате платформы,
// например "weekly-contest-476".
func (c ContestRef) Name() string {
	return fmt.Sprintf("%s-contest-%d", c.Type, c.No)
}

// Title возвращает имя контеста так, как оно отображается в истории
// пользователя на платформе ("weekly contest 476").
func (c ContestRef) Title() string {
	return strings.ReplaceAll(c.Name(), "-", " ")
}

// ParseContestName разбирает полное имя контеста ("weekly-contest-476").
// Хвост после префикса обязан быть целым положительным числом без
// лишних символов.
func ParseContestName(name string) (ContestRef, error) {
	var ref ContestRef
	switch {
	case strings.HasPrefix(name, "weekly-contest-"):
		ref.Type = ContestTypeWeekly
	case strings.HasPrefix(name, "biweekly-contest-"):
		ref.Type = ContestTypeBiweekly
	default:
		return ContestRef{}, fmt.Errorf("invalid contest name: %q", name)
	}
	no, err := strconv.Atoi(strings.TrimPrefix(name, string(ref.Type)+"-contest-"))
	if err != nil || no <= 0 {
		return ContestRef{}, fmt.Errorf("invalid contest number in name: %q", name)
	}
	ref.No = no
	return ref, nil
}

// ContestInfo описывает контест из списка текущих и предстоящих.
type ContestInfo struct {
	Title     string    `json:"title"`
	TitleSlug string    `json:"titleSlug"`
	StartTime time.Time `json:"startTime"`
	Duration  int       `json:"duration"` // seconds
}
