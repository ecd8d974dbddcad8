// Package constants defines system-wide constants for the suitability service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ServiceName is the name reported by health checks, logs and traces.
const ServiceName = "suitability"

// ================================================================================
// Tenant Constants
// ================================================================================

const (
	// TenantRetail is the built-in retail banking tenant
	TenantRetail = "retail"

	// TenantPrivateBanking is the built-in private banking tenant
	TenantPrivateBanking = "private_banking"

	// DefaultTenantID is used when a scoring request names no tenant
	DefaultTenantID = TenantRetail
)

// ProtectedTenantIDs lists the built-in tenants, in listing order. They are
// seeded at startup and can never be deleted.
var ProtectedTenantIDs = []string{TenantRetail, TenantPrivateBanking}

// IsProtectedTenant reports whether tenantID is a built-in tenant.
func IsProtectedTenant(tenantID string) bool {
	for _, id := range ProtectedTenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// ReservedTenantIDs are path segments claimed by static routes under
// /risk-configuration, so no tenant may be stored under them.
var ReservedTenantIDs = []string{"validate"}

// IsReservedTenantID reports whether tenantID collides with a static route.
func IsReservedTenantID(tenantID string) bool {
	for _, id := range ReservedTenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// ================================================================================
// Scoring Constants
// ================================================================================

// KnowledgeLevel is a client's self-declared familiarity with an instrument
type KnowledgeLevel string

const (
	KnowledgeNone         KnowledgeLevel = "none"
	KnowledgeBasic        KnowledgeLevel = "basic"
	KnowledgeIntermediate KnowledgeLevel = "intermediate"
	KnowledgeExperienced  KnowledgeLevel = "experienced"
	KnowledgeExpert       KnowledgeLevel = "expert"
)

const (
	// DefaultInstrumentKnowledgeMultiplier applies when a tenant leaves the multiplier unset
	DefaultInstrumentKnowledgeMultiplier = 2

	// DefaultMaxInstrumentPoints applies when a tenant leaves the cap unset
	DefaultMaxInstrumentPoints = 10

	// DefaultTimeHorizon is assumed when the client gives no horizon
	DefaultTimeHorizon = "medium"

	// DefaultPrimaryObjective is assumed when the client gives no objective
	DefaultPrimaryObjective = "growth"

	// DefaultRiskTolerance is assumed when the client gives no tolerance level
	DefaultRiskTolerance = "moderate"
)

// Point thresholds at which a rule contributes a qualitative factor.
const (
	ExperienceFactorThreshold = 15
	EducationFactorThreshold  = 10
	HorizonFactorThreshold    = 10
	ToleranceFactorThreshold  = 15
)

// Factor texts attached to a risk profile.
const (
	FactorExtensiveExperience   = "Extensive investment experience"
	FactorProfessionalEducation = "Professional financial education"
	FactorLongTermHorizon       = "Long-term investment horizon"
	FactorAggressiveTolerance   = "Aggressive risk tolerance"
)

const (
	// FallbackTierLevel is reported when no tier matches the score
	FallbackTierLevel = 1

	// FallbackTierCategory is reported when no tier matches the score
	FallbackTierCategory = "Very Low Risk"

	// ExpectedTierCount is the number of tiers every default tenant defines
	ExpectedTierCount = 7
)

// FallbackKind names a silent fallback taken while scoring
type FallbackKind string

const (
	// FallbackRangeYearsInvesting means no years bracket matched and the last one was used
	FallbackRangeYearsInvesting FallbackKind = "range:yearsInvesting"

	// FallbackTier means no tier matched and tier 1 was reported
	FallbackTier FallbackKind = "tier"
)

// ================================================================================
// Storage Constants
// ================================================================================

// StoreBackend selects the tenant configuration persistence layer
type StoreBackend string

const (
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendFile     StoreBackend = "file"
	StoreBackendDatabase StoreBackend = "database"
	StoreBackendRedis    StoreBackend = "redis"
)

const (
	// DatabaseDriverPostgres selects gorm's PostgreSQL driver
	DatabaseDriverPostgres = "postgres"

	// DatabaseDriverSQLite selects gorm's SQLite driver
	DatabaseDriverSQLite = "sqlite"
)

const (
	// DefaultRedisKeyPrefix prefixes every key the service writes to Redis
	DefaultRedisKeyPrefix = "suitability:"

	// DefaultCacheTTL is the lifetime of cached tenant configurations
	DefaultCacheTTL = 30 * time.Second

	// DefaultCacheCleanupInterval is how often expired cache entries are purged
	DefaultCacheCleanupInterval = 5 * time.Minute
)

// ================================================================================
// Tenant Configuration Events
// ================================================================================

// TenantConfigEventType names a mutation of the tenant configuration store
type TenantConfigEventType string

const (
	TenantConfigCreated TenantConfigEventType = "created"
	TenantConfigUpdated TenantConfigEventType = "updated"
	TenantConfigDeleted TenantConfigEventType = "deleted"
)

// ================================================================================
// Logging Constants
// ================================================================================

// LogLevel represents logging severity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context and Header Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTenantID is the key for tenant ID in context
	ContextKeyTenantID ContextKey = "tenant_id"
)

const (
	// HeaderRequestID carries the request correlation id
	HeaderRequestID = "X-Request-ID"
)

// ================================================================================
// HTTP Server Constants
// ================================================================================

const (
	DefaultHTTPPort        = 5001
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
