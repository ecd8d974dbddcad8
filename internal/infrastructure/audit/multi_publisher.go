package audit

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/suitability/internal/domain/service"
)

// MultiPublisher fans each event out to every publisher.
// Every publisher is attempted even when an earlier one fails.
type MultiPublisher []service.EventPublisher

var _ service.EventPublisher = MultiPublisher(nil)

func (m MultiPublisher) PublishTenantConfigEvent(ctx context.Context, event service.TenantConfigEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishTenantConfigEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
