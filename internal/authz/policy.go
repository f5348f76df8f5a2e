// AngelaMos | 2026
// policy.go

package authz

import (
	"fmt"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

// Roles are a closed enumeration. The legacy roles collection collapsed
// to two values; nothing in the permission rules is data-driven.
const (
	RoleAdministrador = "Administrador"
	RoleInvestigador  = "Investigador"
)

func IsValidRole(role string) bool {
	return role == RoleAdministrador || role == RoleInvestigador
}

// Actor is the resolved caller: identity plus role, both taken from the
// authenticated session. Disabled accounts never reach this layer.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdministrador() bool {
	return a.Role == RoleAdministrador
}

// Operation names every mutation the policy gates.
type Operation string

const (
	OpProjectUpdate  Operation = "project.update"
	OpProjectDelete  Operation = "project.delete"
	OpProjectRestore Operation = "project.restore"

	OpEvaluationCreate  Operation = "evaluation.create"
	OpEvaluationUpdate  Operation = "evaluation.update"
	OpEvaluationDelete  Operation = "evaluation.delete"
	OpEvaluationRestore Operation = "evaluation.restore"

	OpPublicationCreate  Operation = "publication.create"
	OpPublicationUpdate  Operation = "publication.update"
	OpPublicationDelete  Operation = "publication.delete"
	OpPublicationRestore Operation = "publication.restore"
	OpPublicationPublish Operation = "publication.publish"

	OpRequestResolve Operation = "request.resolve"
	OpRequestDelete  Operation = "request.delete"
	OpRequestRestore Operation = "request.restore"
	OpRequestView    Operation = "request.view"

	OpNotificationRead    Operation = "notification.read"
	OpNotificationDelete  Operation = "notification.delete"
	OpNotificationRestore Operation = "notification.restore"

	OpUserDisable Operation = "user.disable"
	OpUserEnable  Operation = "user.enable"
	OpUserManage  Operation = "user.manage"
)

// Rule describes the two authorization shapes that recur across every
// resource: a role gate, an ownership gate, or both at once.
//
// Roles, when non-empty, is the set of roles allowed to attempt the
// operation at all. Ownership additionally requires the actor to appear
// among the resource's participants. AdminBypass lets an Administrador
// skip the ownership requirement; evaluation mutations leave it off so
// administrators cannot touch each other's evaluations.
type Rule struct {
	Roles       []string
	Ownership   bool
	AdminBypass bool
}

func (r Rule) roleAllowed(role string) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Rules is the immutable permission table, built once at startup and
// injected into every service.
type Rules map[Operation]Rule

func DefaultRules() Rules {
	adminOnly := Rule{Roles: []string{RoleAdministrador}}

	return Rules{
		OpProjectUpdate:  {Ownership: true, AdminBypass: true},
		OpProjectDelete:  {Ownership: true, AdminBypass: true},
		OpProjectRestore: adminOnly,

		OpEvaluationCreate:  adminOnly,
		OpEvaluationUpdate:  {Roles: []string{RoleAdministrador}, Ownership: true},
		OpEvaluationDelete:  {Roles: []string{RoleAdministrador}, Ownership: true},
		OpEvaluationRestore: {Roles: []string{RoleAdministrador}, Ownership: true},

		OpPublicationCreate:  {Ownership: true, AdminBypass: true},
		OpPublicationUpdate:  {Ownership: true, AdminBypass: true},
		OpPublicationDelete:  {Ownership: true, AdminBypass: true},
		OpPublicationRestore: adminOnly,
		OpPublicationPublish: adminOnly,

		OpRequestResolve: adminOnly,
		OpRequestDelete:  {Ownership: true, AdminBypass: true},
		OpRequestRestore: adminOnly,
		OpRequestView:    {Ownership: true, AdminBypass: true},

		// Read-state changes stay with the recipient; not even an
		// administrator marks someone else's notification as read.
		OpNotificationRead:    {Ownership: true},
		OpNotificationDelete:  {Ownership: true, AdminBypass: true},
		OpNotificationRestore: adminOnly,

		OpUserDisable: adminOnly,
		OpUserEnable:  adminOnly,
		OpUserManage:  adminOnly,
	}
}

// CanPerform evaluates the rule for op against the actor and the
// resource's owner set. Callers must check resource existence first so
// a Forbidden answer never reveals whether a resource exists.
func (rules Rules) CanPerform(actor Actor, op Operation, owners []string) error {
	rule, ok := rules[op]
	if !ok {
		return fmt.Errorf("%s: no rule defined: %w", op, core.ErrForbidden)
	}

	if !rule.roleAllowed(actor.Role) {
		return fmt.Errorf("%s: role %q not permitted: %w", op, actor.Role, core.ErrForbidden)
	}

	if !rule.Ownership {
		return nil
	}

	if rule.AdminBypass && actor.IsAdministrador() {
		return nil
	}

	for _, owner := range owners {
		if owner == actor.ID {
			return nil
		}
	}

	return fmt.Errorf("%s: actor is not a participant: %w", op, core.ErrForbidden)
}
