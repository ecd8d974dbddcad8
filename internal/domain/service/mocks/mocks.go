package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
)

type MockConfigurationReader struct {
	mock.Mock
}

func (m *MockConfigurationReader) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantConfiguration), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishTenantConfigEvent(ctx context.Context, event service.TenantConfigEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordRiskProfile(tenantID string, riskLevel, riskScore int) {
	m.Called(tenantID, riskLevel, riskScore)
}

func (m *MockMetrics) RecordRiskProfileError(tenantID, errorCode string) {
	m.Called(tenantID, errorCode)
}

func (m *MockMetrics) RecordScoringFallback(tenantID string, kind constants.FallbackKind) {
	m.Called(tenantID, kind)
}

func (m *MockMetrics) RecordConfigMutation(operation string, success bool) {
	m.Called(operation, success)
}

func (m *MockMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.Called(method, route, status, duration)
}

func (m *MockMetrics) RecordCacheAccess(cacheType string, hit bool) {
	m.Called(cacheType, hit)
}
