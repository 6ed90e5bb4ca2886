package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/deekshith06/lc-rating-system/models"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrChannelExists   = errors.New("channel already registered")
)

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	UpdateUsernames(ctx context.Context, id string, usernames []string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Channel, error)
}

type postgresChannelRepository struct {
	db *sql.DB
}

func NewPostgresChannelRepository(db *sql.DB) ChannelRepository {
	return &postgresChannelRepository{db: db}
}

func (r *postgresChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	query := `
		INSERT INTO channels (id, usernames)
		VALUES ($1, $2)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		channel.ID,
		pq.Array(channel.Usernames),
	).Scan(&channel.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return ErrChannelExists
			}
		}
		return err
	}
	return nil
}

func (r *postgresChannelRepository) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `
		SELECT id, usernames, created_at
		FROM channels
		WHERE id = $1`

	channel := &models.Channel{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&channel.ID,
		pq.Array(&channel.Usernames),
		&channel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to scan channel: %w", err)
	}
	return channel, nil
}

func (r *postgresChannelRepository) UpdateUsernames(ctx context.Context, id string, usernames []string) error {
	query := `
		UPDATE channels
		SET usernames = $1
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, pq.Array(usernames), id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *postgresChannelRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM channels WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

// List возвращает все зарегистрированные каналы, упорядоченные по дате создания.
func (r *postgresChannelRepository) List(ctx context.Context) ([]models.Channel, error) {
	query := `
		SELECT id, usernames, created_at
		FROM channels
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]models.Channel, 0)
	for rows.Next() {
		var channel models.Channel
		scanErr := rows.Scan(
			&channel.ID,
			pq.Array(&channel.Usernames),
			&channel.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		channels = append(channels, channel)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return channels, nil
}
