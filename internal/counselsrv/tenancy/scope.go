// Package tenancy implements tenant resolution and the per-request
// scope that carries the resolved tenant, principal, and permission
// set to every downstream call. One RequestScope exists per inbound
// request; scopes are never shared between requests and never cached.
package tenancy

import (
	"sync"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// RequestScope is the execution scope of one request. It moves through
// the lifecycle unresolved -> resolving -> resolved -> authorized ->
// active -> disposed; transitions are one-way and authorization is
// unreachable before resolution. Identity fields are write-once: set
// by the transition that establishes them and read-only after.
type RequestScope struct {
	mu            sync.Mutex
	state         types.ScopeState
	tenantID      types.TenantId
	principalID   types.UserId
	permissions   types.PermissionSet
	correlationID string
	elevated      bool
	system        bool
}

// NewScope creates a scope in the unresolved state.
func NewScope(correlationID string) *RequestScope {
	return &RequestScope{
		state:         types.ScopeUnresolved,
		correlationID: correlationID,
	}
}

// SystemScope returns a fully authorized scope bound to no tenant,
// reserved for platform-administration code paths. Callers must audit
// its use; see policy.AuditSystemScope.
func SystemScope(correlationID string) *RequestScope {
	return &RequestScope{
		state:         types.ScopeAuthorized,
		correlationID: correlationID,
		permissions:   types.AllActions(),
		elevated:      true,
		system:        true,
	}
}

func (s *RequestScope) transition(from, to types.ScopeState) apperrors.Error {
	if s.state == types.ScopeDisposed {
		return ErrScopeDisposed
	}
	if s.state != from {
		return ErrInvalidScopeTransition.Msg(
			"invalid scope transition: " + s.state.String() + " -> " + to.String())
	}
	s.state = to
	return nil
}

// BeginResolution marks the scope as resolving.
func (s *RequestScope) BeginResolution() apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(types.ScopeUnresolved, types.ScopeResolving)
}

// Resolve binds the scope to a tenant. The tenant is immutable once
// set.
func (s *RequestScope) Resolve(tenantID types.TenantId) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tenantID.IsNil() {
		return ErrTenantNotResolved
	}
	if err := s.transition(types.ScopeResolving, types.ScopeResolved); err != nil {
		return err
	}
	s.tenantID = tenantID
	return nil
}

// Authorize binds the principal and its tenant-scoped permission set.
// The set is copied; later mutation of the argument does not reach the
// scope.
func (s *RequestScope) Authorize(principalID types.UserId, permissions types.PermissionSet, elevated bool) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(types.ScopeResolved, types.ScopeAuthorized); err != nil {
		return err
	}
	s.principalID = principalID
	s.permissions = permissions.Clone()
	s.elevated = elevated
	return nil
}

// Activate marks the scope as executing its handler.
func (s *RequestScope) Activate() apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(types.ScopeAuthorized, types.ScopeActive)
}

// Dispose terminates the scope. It is idempotent and valid from any
// state so cleanup paths can call it unconditionally.
func (s *RequestScope) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = types.ScopeDisposed
	s.permissions = nil
}

func (s *RequestScope) State() types.ScopeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *RequestScope) TenantID() types.TenantId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantID
}

func (s *RequestScope) PrincipalID() types.UserId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principalID
}

func (s *RequestScope) CorrelationID() string {
	return s.correlationID
}

func (s *RequestScope) Elevated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elevated
}

// IsSystem reports whether this is a platform system scope rather than
// a request-derived tenant scope.
func (s *RequestScope) IsSystem() bool {
	return s.system
}

// Can reports whether the scope's permission set includes the action.
func (s *RequestScope) Can(action types.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != types.ScopeAuthorized && s.state != types.ScopeActive {
		return false
	}
	return s.permissions.Has(action)
}

// DataAccessAllowed reports whether scoped data accessors may be
// constructed from this scope. Disposal revokes access.
func (s *RequestScope) DataAccessAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != types.ScopeAuthorized && s.state != types.ScopeActive {
		return false
	}
	return s.system || !s.tenantID.IsNil()
}
