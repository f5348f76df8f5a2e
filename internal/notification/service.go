// AngelaMos | 2026
// service.go

package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type Service struct {
	repo  Repository
	rules authz.Rules
}

func NewService(repo Repository, rules authz.Rules) *Service {
	return &Service{
		repo:  repo,
		rules: rules,
	}
}

// Notify records an in-app message for one recipient. Other services
// call this when they resolve or create something the recipient should
// hear about; it is not exposed over HTTP.
func (s *Service) Notify(
	ctx context.Context,
	usuarioID, tipo, mensaje string,
	recursoID *string,
) error {
	if !IsValidTipo(tipo) {
		return core.BadRequestError("unknown notification tipo")
	}
	if mensaje == "" {
		return core.BadRequestError("mensaje is required")
	}

	notification := &Notification{
		ID:        uuid.NewString(),
		UsuarioID: usuarioID,
		Tipo:      tipo,
		Mensaje:   mensaje,
		RecursoID: recursoID,
	}

	return s.repo.Create(ctx, notification)
}

// List returns the actor's own notifications.
func (s *Service) List(
	ctx context.Context,
	actor authz.Actor,
	params ListNotificationsParams,
) ([]Notification, int, error) {
	params.UsuarioID = actor.ID
	return s.repo.List(ctx, params)
}

// ListAll is the admin view across every recipient.
func (s *Service) ListAll(
	ctx context.Context,
	actor authz.Actor,
	params ListNotificationsParams,
) ([]Notification, int, error) {
	if !actor.IsAdministrador() {
		return nil, 0, core.ForbiddenError("administrator access required")
	}
	return s.repo.List(ctx, params)
}

func (s *Service) MarkRead(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpNotificationRead,
		[]string{notification.UsuarioID}); err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		notification.IsRead = true
	}

	return notification, nil
}

func (s *Service) MarkAllRead(
	ctx context.Context,
	actor authz.Actor,
) (int, error) {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

func (s *Service) SoftDelete(
	ctx context.Context,
	actor authz.Actor,
	id string,
) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.rules.CanPerform(actor, authz.OpNotificationDelete,
		[]string{notification.UsuarioID}); err != nil {
		return err
	}

	return s.repo.SetDeleted(ctx, id, true)
}

func (s *Service) Restore(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Notification, error) {
	if err := s.rules.CanPerform(actor, authz.OpNotificationRestore, nil); err != nil {
		return nil, err
	}

	notification, err := s.repo.GetByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !notification.IsDeleted {
		return nil, core.BadRequestError("notification is not deleted")
	}

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	notification.IsDeleted = false

	return notification, nil
}
