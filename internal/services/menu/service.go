package menu

import (
	"context"
	"log"

	"tavola/internal/models"
	"tavola/internal/repositories"
	"tavola/internal/repositories/cache"
)

// Cache is the subset of the cache service the menu needs. A cache
// failure degrades to a database read, never to a request failure.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePattern(ctx context.Context, pattern string) error
}

type Service interface {
	PublicMenu(ctx context.Context, category string) ([]models.MenuItem, error)
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id uint) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo  repositories.MenuItemRepository
	cache Cache
}

func NewService(repo repositories.MenuItemRepository, c Cache) Service {
	return &service{repo: repo, cache: c}
}

// PublicMenu returns available items, served from cache when possible.
func (s *service) PublicMenu(ctx context.Context, category string) ([]models.MenuItem, error) {
	key := cache.MenuKey(category)

	var items []models.MenuItem
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &items)
		if err != nil {
			log.Printf("menu cache read failed: %v", err)
		} else if hit {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx, category, true)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items); err != nil {
			log.Printf("menu cache write failed: %v", err)
		}
	}
	return items, nil
}

// List returns every item including unavailable ones, for the admin UI.
func (s *service) List(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.List(ctx, "", false)
}

func (s *service) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, item *models.MenuItem) error {
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) Update(ctx context.Context, item *models.MenuItem) error {
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "menu:*"); err != nil {
		log.Printf("menu cache invalidation failed: %v", err)
	}
}
