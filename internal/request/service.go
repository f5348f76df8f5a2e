// AngelaMos | 2026
// service.go

package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/notification"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

// Notifier records an in-app notice for the solicitante when an
// administrator resolves their solicitud. Satisfied by the notification
// service; nil disables delivery.
type Notifier interface {
	Notify(ctx context.Context, usuarioID, tipo, mensaje string, recursoID *string) error
}

type Service struct {
	repo     Repository
	projects project.Repository
	rules    authz.Rules
	notifier Notifier
}

func NewService(
	repo Repository,
	projects project.Repository,
	rules authz.Rules,
	notifier Notifier,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		rules:    rules,
		notifier: notifier,
	}
}

func (s *Service) Create(
	ctx context.Context,
	actor authz.Actor,
	req CreateRequestRequest,
) (*Request, error) {
	if !IsValidTipo(req.TipoSolicitud) {
		return nil, core.BadRequestError("unknown tipoSolicitud")
	}

	if tipoRequiresProyecto(req.TipoSolicitud) && req.Proyecto == nil {
		return nil, core.BadRequestError(
			"a proyecto is required for this tipoSolicitud")
	}

	if req.Proyecto != nil {
		if _, err := s.projects.GetByID(ctx, *req.Proyecto); err != nil {
			return nil, err
		}
	}

	request := &Request{
		ID:            uuid.NewString(),
		SolicitanteID: actor.ID,
		TipoSolicitud: req.TipoSolicitud,
		Descripcion:   req.Descripcion,
		ProyectoID:    req.Proyecto,
		Estado:        EstadoPendiente,
		Comentarios:   Comentarios{},
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Get scopes visibility: investigadores only see their own solicitudes.
func (s *Service) Get(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpRequestView,
		[]string{request.SolicitanteID}); err != nil {
		return nil, err
	}

	return request, nil
}

// GetAny is the admin view: it also resolves soft-deleted solicitudes.
func (s *Service) GetAny(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Request, error) {
	if !actor.IsAdministrador() {
		return nil, core.ForbiddenError("administrator access required")
	}
	return s.repo.GetByIDAny(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	actor authz.Actor,
	params ListRequestsParams,
) ([]Request, int, error) {
	if !actor.IsAdministrador() {
		params.SolicitanteID = actor.ID
	}
	return s.repo.List(ctx, params)
}

// Update resolves estado changes and appends comments. Estado changes
// are admin-only and stamp the reviewer and resolution time; the
// comment thread is append-only and prior entries are never touched.
func (s *Service) Update(
	ctx context.Context,
	actor authz.Actor,
	id string,
	req UpdateRequestRequest,
) (*Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpRequestView,
		[]string{request.SolicitanteID}); err != nil {
		return nil, err
	}

	estadoChanged := false
	if req.Estado != nil && *req.Estado != request.Estado {
		if err := s.rules.CanPerform(actor, authz.OpRequestResolve, nil); err != nil {
			return nil, err
		}
		if !IsValidEstado(*req.Estado) {
			return nil, core.BadRequestError("unknown estado")
		}
		now := time.Now()
		request.Estado = *req.Estado
		request.RevisadoPor = &actor.ID
		request.FechaResolucion = &now
		estadoChanged = true
	}

	if req.Comentario != nil {
		request.Comentarios = append(request.Comentarios, Comentario{
			Usuario:    actor.ID,
			Comentario: *req.Comentario,
			Fecha:      time.Now(),
		})
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	// The solicitante hears about resolutions made by someone else.
	if estadoChanged && s.notifier != nil && request.SolicitanteID != actor.ID {
		mensaje := fmt.Sprintf(
			"Tu solicitud de %s fue marcada como %s",
			request.TipoSolicitud, request.Estado)
		if err := s.notifier.Notify(ctx, request.SolicitanteID,
			notification.TipoSolicitud, mensaje, &request.ID); err != nil {
			return nil, err
		}
	}

	return request, nil
}

func (s *Service) SoftDelete(
	ctx context.Context,
	actor authz.Actor,
	id string,
) error {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.rules.CanPerform(actor, authz.OpRequestDelete,
		[]string{request.SolicitanteID}); err != nil {
		return err
	}

	return s.repo.SetDeleted(ctx, id, true)
}

func (s *Service) Restore(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Request, error) {
	if err := s.rules.CanPerform(actor, authz.OpRequestRestore, nil); err != nil {
		return nil, err
	}

	request, err := s.repo.GetByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.IsDeleted {
		return nil, core.BadRequestError("request is not deleted")
	}

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	request.IsDeleted = false

	return request, nil
}
