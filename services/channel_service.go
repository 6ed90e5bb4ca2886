package services

import (
	"context"
	"fmt"

	"github.com/deekshith06/lc-rating-system/cache"
	"github.com/deekshith06/lc-rating-system/models"
	"github.com/deekshith06/lc-rating-system/repositories"
)

type ChannelService interface {
	Get(ctx context.Context, channelID string) (*models.Channel, error)
	Create(ctx context.Context, channelID string, usernames []string) (*models.Channel, error)
	AddUsers(ctx context.Context, channelID string, usernames []string) (*models.Channel, error)
	Delete(ctx context.Context, channelID string) error
	List(ctx context.Context) ([]models.Channel, error)
	Resolve(ctx context.Context, channelID string) ([]string, error)
}

type channelService struct {
	repo  repositories.ChannelRepository
	cache *cache.Cache
}

// NewChannelService собирает сервис реестра каналов. repo может быть nil,
// если база не сконфигурирована: тогда все операции возвращают
// ErrRegistryDisabled, а явные списки пользователей продолжают работать.
func NewChannelService(repo repositories.ChannelRepository, c *cache.Cache) ChannelService {
	return &channelService{repo: repo, cache: c}
}

func rosterKey(channelID string) string {
	return "roster:" + channelID
}

func (s *channelService) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	if s.repo == nil {
		return nil, ErrRegistryDisabled
	}
	channel, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(cache.NamespaceChannel, rosterKey(channelID), channel.Usernames)
	return channel, nil
}

func (s *channelService) Create(ctx context.Context, channelID string, usernames []string) (*models.Channel, error) {
	if s.repo == nil {
		return nil, ErrRegistryDisabled
	}
	users := normalizeUsernames(usernames)
	if len(users) == 0 {
		return nil, ErrNoUsernames
	}

	channel := &models.Channel{ID: channelID, Usernames: users}
	if err := s.repo.Create(ctx, channel); err != nil {
		return nil, err
	}
	s.cache.Put(cache.NamespaceChannel, rosterKey(channelID), channel.Usernames)
	return channel, nil
}

// AddUsers дописывает пользователей к существующему каналу. Дубликаты
// относительно текущего состава молча отбрасываются.
func (s *channelService) AddUsers(ctx context.Context, channelID string, usernames []string) (*models.Channel, error) {
	if s.repo == nil {
		return nil, ErrRegistryDisabled
	}
	added := normalizeUsernames(usernames)
	if len(added) == 0 {
		return nil, ErrNoUsernames
	}

	channel, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	merged := normalizeUsernames(append(channel.Usernames, added...))
	if err := s.repo.UpdateUsernames(ctx, channelID, merged); err != nil {
		return nil, fmt.Errorf("failed to update channel %s roster: %w", channelID, err)
	}
	channel.Usernames = merged

	s.cache.Put(cache.NamespaceChannel, rosterKey(channelID), merged)
	return channel, nil
}

// Delete снимает канал с учёта вместе с кэшированным ростером.
func (s *channelService) Delete(ctx context.Context, channelID string) error {
	if s.repo == nil {
		return ErrRegistryDisabled
	}
	if err := s.repo.Delete(ctx, channelID); err != nil {
		return err
	}
	s.cache.Remove(cache.NamespaceChannel, rosterKey(channelID))
	return nil
}

func (s *channelService) List(ctx context.Context) ([]models.Channel, error) {
	if s.repo == nil {
		return nil, ErrRegistryDisabled
	}
	return s.repo.List(ctx)
}

// Resolve возвращает ростер канала, предпочитая кэш базе.
func (s *channelService) Resolve(ctx context.Context, channelID string) ([]string, error) {
	if s.repo == nil {
		return nil, ErrRegistryDisabled
	}

	if cached, ok := s.cache.Get(cache.NamespaceChannel, rosterKey(channelID)); ok {
		if usernames, ok := cached.([]string); ok {
			return usernames, nil
		}
	}

	channel, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(cache.NamespaceChannel, rosterKey(channelID), channel.Usernames)
	return channel.Usernames, nil
}
