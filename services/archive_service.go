package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/deekshith06/lc-rating-system/models"
	"github.com/deekshith06/lc-rating-system/storage"
)

// ArchiveService складывает сверенные отчёты по контестам в объектное
// хранилище, чтобы история сохранялась после вытеснения из кэша.
type ArchiveService interface {
	ArchiveReconciled(ctx context.Context, reconciled *models.ReconciledContest) (string, error)
}

type archiveService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewArchiveService. uploader может быть nil, если хранилище не
// сконфигурировано: тогда архивация становится no-op.
func NewArchiveService(uploader storage.FileUploader, logger *slog.Logger) ArchiveService {
	return &archiveService{uploader: uploader, logger: logger}
}

func (s *archiveService) ArchiveReconciled(ctx context.Context, reconciled *models.ReconciledContest) (string, error) {
	if s.uploader == nil {
		return "", nil
	}

	payload, err := json.Marshal(reconciled)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reconciled report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", reconciled.ContestName, time.Now().UTC().Format("2006-01-02T15-04-05"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to upload reconciled report: %w", err)
	}

	s.logger.Info("reconciled report archived",
		slog.String("contest", reconciled.ContestName),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return result.Location, nil
}
