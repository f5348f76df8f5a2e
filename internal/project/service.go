// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
)

// updateSchema whitelists patchable fields. Unknown keys are dropped
// silently; publications take the opposite stance.
var updateSchema = core.NewUpdateSchema(core.IgnoreUnknownFields,
	"nombre", "descripcion", "objetivos", "presupuesto", "cronograma",
	"hitos", "investigadores", "recursos", "estado", "imagen",
)

type Service struct {
	repo  Repository
	rules authz.Rules
}

func NewService(repo Repository, rules authz.Rules) *Service {
	return &Service{repo: repo, rules: rules}
}

func validateCronograma(input CronogramaInput) (Cronograma, error) {
	if input.FechaInicio == nil || input.FechaFin == nil {
		return Cronograma{}, core.BadRequestError(
			"cronograma requires both fechaInicio and fechaFin")
	}
	if input.FechaInicio.After(*input.FechaFin) {
		return Cronograma{}, core.BadRequestError(
			"cronograma fechaInicio cannot be after fechaFin")
	}
	return Cronograma{
		FechaInicio: *input.FechaInicio,
		FechaFin:    *input.FechaFin,
	}, nil
}

func validateHitos(inputs []HitoInput) (Hitos, error) {
	if len(inputs) == 0 {
		return nil, core.BadRequestError("at least one hito is required")
	}
	hitos := make(Hitos, 0, len(inputs))
	for i, input := range inputs {
		if input.Nombre == "" || input.Fecha == nil {
			return nil, core.BadRequestError(fmt.Sprintf(
				"hito %d requires nombre and fecha", i+1))
		}
		entregables := input.Entregables
		if entregables == nil {
			entregables = []string{}
		}
		hitos = append(hitos, Hito{
			Nombre:      input.Nombre,
			Fecha:       *input.Fecha,
			Entregables: entregables,
		})
	}
	return hitos, nil
}

// ensureMember forces userID into the investigadores list.
func ensureMember(investigadores []string, userID string) []string {
	for _, id := range investigadores {
		if id == userID {
			return investigadores
		}
	}
	return append(investigadores, userID)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateProjectRequest,
	creatorID string,
) (*Project, error) {
	cronograma, err := validateCronograma(req.Cronograma)
	if err != nil {
		return nil, err
	}

	hitos, err := validateHitos(req.Hitos)
	if err != nil {
		return nil, err
	}

	estado := req.Estado
	if estado == "" {
		estado = EstadoPlaneado
	}

	// Fast-path check; the partial unique index is the real guard.
	taken, err := s.repo.ExistsByNombre(ctx, req.Nombre, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.DuplicateError("nombre")
	}

	project := &Project{
		ID:             uuid.NewString(),
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		Objetivos:      req.Objetivos,
		Presupuesto:    req.Presupuesto,
		Cronograma:     cronograma,
		Investigadores: ensureMember(req.Investigadores, creatorID),
		Hitos:          hitos,
		Recursos:       req.Recursos,
		Estado:         estado,
		Imagen:         req.Imagen,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("nombre")
		}
		return nil, err
	}

	return project, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListProjectsParams,
) ([]Project, int, error) {
	params.IncludeDeleted = false
	return s.repo.List(ctx, params)
}

// GetMine lists the projects the actor belongs to.
func (s *Service) GetMine(
	ctx context.Context,
	actorID string,
	params ListProjectsParams,
) ([]Project, int, error) {
	params.MemberID = actorID
	params.IncludeDeleted = false
	return s.repo.List(ctx, params)
}

func (s *Service) Update(
	ctx context.Context,
	actor authz.Actor,
	id string,
	patch core.Patch,
) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpProjectUpdate, project.Investigadores); err != nil {
		return nil, err
	}

	filtered, err := updateSchema.Filter(patch)
	if err != nil {
		return nil, err
	}

	var fields projectPatch
	if err := core.Decode(filtered, &fields); err != nil {
		return nil, core.BadRequestError("invalid field value in update")
	}

	if fields.Nombre != nil && *fields.Nombre != project.Nombre {
		taken, err := s.repo.ExistsByNombre(ctx, *fields.Nombre, project.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, core.DuplicateError("nombre")
		}
		project.Nombre = *fields.Nombre
	}

	if fields.Descripcion != nil {
		project.Descripcion = *fields.Descripcion
	}
	if fields.Objetivos != nil {
		project.Objetivos = *fields.Objetivos
	}
	if fields.Presupuesto != nil {
		project.Presupuesto = *fields.Presupuesto
	}
	if fields.Cronograma != nil {
		cronograma, err := validateCronograma(*fields.Cronograma)
		if err != nil {
			return nil, err
		}
		project.Cronograma = cronograma
	}
	if filtered.Has("hitos") {
		hitos, err := validateHitos(fields.Hitos)
		if err != nil {
			return nil, err
		}
		project.Hitos = hitos
	}
	if filtered.Has("investigadores") {
		if len(fields.Investigadores) == 0 {
			return nil, core.BadRequestError("investigadores cannot be empty")
		}
		project.Investigadores = fields.Investigadores
	}
	if filtered.Has("recursos") {
		project.Recursos = fields.Recursos
	}
	if fields.Estado != nil {
		if !IsValidEstado(*fields.Estado) {
			return nil, core.BadRequestError("unknown estado")
		}
		project.Estado = *fields.Estado
	}
	if fields.Imagen != nil {
		project.Imagen = *fields.Imagen
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("nombre")
		}
		return nil, err
	}

	return project, nil
}

// SoftDelete hides a project. Once a project is Finalizado or
// Cancelado, only an administrator may delete it.
func (s *Service) SoftDelete(
	ctx context.Context,
	actor authz.Actor,
	id string,
) error {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.rules.CanPerform(actor, authz.OpProjectDelete, project.Investigadores); err != nil {
		return err
	}

	if project.IsClosed() && !actor.IsAdministrador() {
		return core.ForbiddenError(
			"only an administrator can delete a closed project")
	}

	return s.repo.SetDeleted(ctx, id, true)
}

func (s *Service) Restore(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Project, error) {
	if err := s.rules.CanPerform(actor, authz.OpProjectRestore, nil); err != nil {
		return nil, err
	}

	project, err := s.repo.GetByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.IsDeleted {
		return nil, fmt.Errorf("restore project: %w", core.ErrNotFound)
	}

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	project.IsDeleted = false

	return project, nil
}
