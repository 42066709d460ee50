package policy

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/pkg/types"
)

// AuditSystemScope records a use of the tenant-unbound system scope.
// Call it at every site that works outside a tenant partition; the
// reason names the operation, the principal is the actor if one is
// known.
func AuditSystemScope(ctx context.Context, principal types.UserId, reason string) {
	log.Ctx(ctx).Warn().
		Str("principal", string(principal)).
		Str("scope", "system").
		Msg("system_scope: " + reason)
}
