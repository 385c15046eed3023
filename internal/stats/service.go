package stats

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrValidation = errors.New("invalid reporting period")

// Summary is the admin dashboard payload for one reporting period.
type Summary struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	TotalRevenue float64          `json:"total_revenue"`
	ByProduct    []ProductRevenue `json:"by_product"`
	ByStatus     []StatusCount    `json:"by_status"`
}

type Service interface {
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: to must be after from", ErrValidation)
	}

	revenue, err := s.repo.Revenue(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("service: failed to compute revenue: %w", err)
	}

	byProduct, err := s.repo.RevenueByProduct(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("service: failed to compute product revenue: %w", err)
	}

	byStatus, err := s.repo.OrdersByStatus(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count orders by status: %w", err)
	}

	return &Summary{
		From:         from,
		To:           to,
		TotalRevenue: revenue,
		ByProduct:    byProduct,
		ByStatus:     byStatus,
	}, nil
}
