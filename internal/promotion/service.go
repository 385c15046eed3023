package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/catalog"
)

// ErrExpiredWindow is returned when re-enabling a promotion whose window has
// already closed; the window has to be edited first.
var ErrExpiredWindow = errors.New("promotion window has expired")

type Service interface {
	Create(ctx context.Context, p *Promotion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)
	ListActive(ctx context.Context) ([]Promotion, error)
	Update(ctx context.Context, p *Promotion) error
	Toggle(ctx context.Context, id uuid.UUID) (*Promotion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	QuoteFor(ctx context.Context, product catalog.Product) (Quote, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the promotion repository. now may be nil, in which case
// time.Now is used; tests inject a fixed clock.
func NewService(repo Repository, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}
}

func validatePromotion(p *Promotion) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.DiscountValue < 0 {
		return fmt.Errorf("%w: discount value must be non-negative, got %f", ErrValidation, p.DiscountValue)
	}
	if p.DiscountKind == DiscountPercentage && p.DiscountValue > 100 {
		return fmt.Errorf("%w: percentage discount cannot exceed 100, got %f", ErrValidation, p.DiscountValue)
	}
	switch p.DiscountKind {
	case DiscountPercentage, DiscountFixed:
	default:
		return fmt.Errorf("%w: unknown discount kind %q", ErrValidation, p.DiscountKind)
	}
	if !p.EndsAt.After(p.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrValidation)
	}
	switch p.Scope {
	case ScopeAllProducts:
	case ScopeCategories:
		if len(p.CategoryIDs) == 0 {
			return fmt.Errorf("%w: category-scoped promotion needs at least one category", ErrValidation)
		}
	case ScopeIndividualProducts:
		if len(p.ProductIDs) == 0 {
			return fmt.Errorf("%w: product-scoped promotion needs at least one product", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown target scope %q", ErrValidation, p.Scope)
	}
	return nil
}

func (s *service) Create(ctx context.Context, p *Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create promotion in repository")
		return fmt.Errorf("service: failed to create promotion: %w", err)
	}

	log.Info().Stringer("promotion_id", p.ID).Str("name", p.Name).Msg("service: promotion created")
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch promotion by id: %w", err)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]Promotion, error) {
	promotions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list promotions: %w", err)
	}
	return promotions, nil
}

func (s *service) ListActive(ctx context.Context) ([]Promotion, error) {
	promotions, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active promotions: %w", err)
	}
	return promotions, nil
}

func (s *service) Update(ctx context.Context, p *Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return ErrPromotionNotFound
		}
		return fmt.Errorf("service: failed to update promotion: %w", err)
	}

	return nil
}

// Toggle flips a promotion on or off. Re-enabling restarts the window from
// now; a promotion whose end has already passed cannot be re-enabled until
// its window is edited.
func (s *service) Toggle(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch promotion for toggle: %w", err)
	}

	now := s.now()
	if !p.Active {
		if !p.EndsAt.After(now) {
			return nil, ErrExpiredWindow
		}
		p.Active = true
		p.StartsAt = now
	} else {
		p.Active = false
	}

	if err := s.repo.UpdateActivation(ctx, p.ID, p.Active, p.StartsAt); err != nil {
		return nil, fmt.Errorf("service: failed to toggle promotion: %w", err)
	}

	log.Info().Stringer("promotion_id", p.ID).Bool("active", p.Active).Msg("service: promotion toggled")
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return ErrPromotionNotFound
		}
		return fmt.Errorf("service: failed to delete promotion: %w", err)
	}
	return nil
}

// QuoteFor resolves the product's current price against the promotions in
// force right now.
func (s *service) QuoteFor(ctx context.Context, product catalog.Product) (Quote, error) {
	now := s.now()
	promotions, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return Quote{}, fmt.Errorf("service: failed to load promotions for pricing: %w", err)
	}
	return ResolvePrice(product, promotions, now)
}
