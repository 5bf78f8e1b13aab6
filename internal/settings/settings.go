// Package settings resolves runtime-adjustable settings, falling back to
// configured defaults when nothing is stored.
package settings

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/dashboard"
	"github.com/barber-dashboard/backend/internal/storage"
)

// Store is the persistence needed by Service.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Service reads and writes typed settings.
type Service struct {
	store            Store
	spendingFallback float64
	log              *zap.Logger
}

// NewService creates a settings service. defaultFallback is used until a
// value has been stored.
func NewService(store Store, defaultFallback float64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, spendingFallback: defaultFallback, log: log}
}

// SpendingFallback returns the stored fallback, or the default when unset
// or unreadable.
func (s *Service) SpendingFallback(ctx context.Context) float64 {
	if s.store == nil {
		return s.spendingFallback
	}

	raw, ok, err := s.store.Get(ctx, storage.SettingSpendingFallback)
	if err != nil {
		s.log.Warn("reading spending fallback, using default", zap.Error(err))
		return s.spendingFallback
	}
	if !ok {
		return s.spendingFallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		s.log.Warn("ignoring invalid stored spending fallback", zap.String("value", raw))
		return s.spendingFallback
	}
	return v
}

// SetSpendingFallback stores a new fallback.
func (s *Service) SetSpendingFallback(ctx context.Context, v float64) error {
	return s.store.Set(ctx, storage.SettingSpendingFallback, strconv.FormatFloat(v, 'f', -1, 64))
}

// Calculator returns a stats calculator using the current fallback.
func (s *Service) Calculator(ctx context.Context) dashboard.Calculator {
	return dashboard.Calculator{SpendingFallback: s.SpendingFallback(ctx)}
}
