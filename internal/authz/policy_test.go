// AngelaMos | 2026
// policy_test.go

package authz

import (
	"errors"
	"testing"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

func TestCanPerform(t *testing.T) {
	rules := DefaultRules()

	admin := Actor{ID: "admin-1", Role: RoleAdministrador}
	otherAdmin := Actor{ID: "admin-2", Role: RoleAdministrador}
	member := Actor{ID: "inv-1", Role: RoleInvestigador}
	outsider := Actor{ID: "inv-2", Role: RoleInvestigador}

	tests := []struct {
		name    string
		actor   Actor
		op      Operation
		owners  []string
		wantErr bool
	}{
		{"member updates own project", member, OpProjectUpdate, []string{"inv-1", "inv-9"}, false},
		{"outsider cannot update project", outsider, OpProjectUpdate, []string{"inv-1"}, true},
		{"admin bypasses project membership", admin, OpProjectUpdate, []string{"inv-1"}, false},
		{"member cannot restore project", member, OpProjectRestore, nil, true},
		{"admin restores project", admin, OpProjectRestore, nil, false},

		{"investigador cannot create evaluation", member, OpEvaluationCreate, nil, true},
		{"admin creates evaluation", admin, OpEvaluationCreate, nil, false},
		{"admin updates own evaluation", admin, OpEvaluationUpdate, []string{"admin-1"}, false},
		{"admin cannot update another admin's evaluation", otherAdmin, OpEvaluationUpdate, []string{"admin-1"}, true},
		{"admin cannot restore another admin's evaluation", otherAdmin, OpEvaluationRestore, []string{"admin-1"}, true},

		{"author deletes own publication", member, OpPublicationDelete, []string{"inv-1"}, false},
		{"outsider cannot delete publication", outsider, OpPublicationDelete, []string{"inv-1"}, true},
		{"investigador cannot publish", member, OpPublicationPublish, nil, true},
		{"admin publishes", admin, OpPublicationPublish, nil, false},

		{"investigador cannot resolve request", member, OpRequestResolve, nil, true},
		{"admin resolves request", admin, OpRequestResolve, nil, false},
		{"solicitante views own request", member, OpRequestView, []string{"inv-1"}, false},
		{"outsider cannot view request", outsider, OpRequestView, []string{"inv-1"}, true},
		{"admin views any request", admin, OpRequestView, []string{"inv-1"}, false},

		{"recipient marks own notification read", member, OpNotificationRead, []string{"inv-1"}, false},
		{"admin cannot mark another recipient's notification read", admin, OpNotificationRead, []string{"inv-1"}, true},
		{"admin deletes any notification", admin, OpNotificationDelete, []string{"inv-1"}, false},
		{"investigador cannot restore notification", member, OpNotificationRestore, nil, true},

		{"investigador cannot disable accounts", member, OpUserDisable, nil, true},
		{"admin disables accounts", admin, OpUserDisable, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.CanPerform(tt.actor, tt.op, tt.owners)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, core.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCanPerformUnknownOperation(t *testing.T) {
	rules := Rules{}
	err := rules.CanPerform(Actor{ID: "x", Role: RoleAdministrador}, Operation("nope"), nil)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown operation, got %v", err)
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole(RoleAdministrador) || !IsValidRole(RoleInvestigador) {
		t.Fatal("expected both canonical roles to be valid")
	}
	if IsValidRole("Editor") {
		t.Fatal("unexpected role accepted")
	}
}
