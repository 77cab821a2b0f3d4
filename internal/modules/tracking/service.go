// README: Tracking service records samples and serves the latest reading.
package tracking

import (
	"context"
	"errors"
	"time"

	"viax/internal/types"
)

var ErrBadSample = errors.New("bad tracking sample")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Record(ctx context.Context, sample Sample) error {
	if sample.TripID == "" || sample.DistanceKm < 0 || sample.ElapsedSec < 0 {
		return ErrBadSample
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	return s.store.Append(ctx, sample)
}

func (s *Service) Latest(ctx context.Context, tripID types.ID) (Sample, bool, error) {
	return s.store.Latest(ctx, tripID)
}
