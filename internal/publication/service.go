// AngelaMos | 2026
// service.go

package publication

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

// updateSchema rejects unknown keys outright, unlike the project
// schema. A typoed field in a publication patch is an error, not a
// silently dropped payload.
var updateSchema = core.NewUpdateSchema(core.RejectUnknownFields,
	"titulo", "fecha", "proyecto", "revista", "resumen", "palabrasClave",
	"tipoPublicacion", "estado", "anexos", "idioma", "autores",
)

type Service struct {
	repo     Repository
	projects project.Repository
	rules    authz.Rules
}

func NewService(
	repo Repository,
	projects project.Repository,
	rules authz.Rules,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		rules:    rules,
	}
}

func parseFecha(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.BadRequestError("fecha must be an ISO 8601 date")
}

// invalidAutores returns the supplied ids missing from the member set.
func invalidAutores(autores, members []string) []string {
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}
	var invalid []string
	for _, id := range autores {
		if _, ok := memberSet[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	sort.Strings(invalid)
	return invalid
}

// Create snapshots the project's current investigadores as autores;
// caller-supplied author lists are never accepted at creation.
func (s *Service) Create(
	ctx context.Context,
	actor authz.Actor,
	req CreatePublicationRequest,
) (*Publication, error) {
	if !IsValidTipo(req.TipoPublicacion) {
		return nil, core.BadRequestError("unknown tipoPublicacion")
	}

	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}

	proj, err := s.projects.GetByID(ctx, req.Proyecto)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpPublicationCreate,
		proj.Investigadores); err != nil {
		return nil, err
	}

	estado := req.Estado
	if estado == "" {
		estado = EstadoBorrador
	}
	if estado == EstadoPublicado {
		if err := s.rules.CanPerform(actor, authz.OpPublicationPublish, nil); err != nil {
			return nil, err
		}
	}

	publication := &Publication{
		ID:              uuid.NewString(),
		Titulo:          req.Titulo,
		Fecha:           fecha,
		ProyectoID:      proj.ID,
		Revista:         req.Revista,
		Resumen:         req.Resumen,
		PalabrasClave:   req.PalabrasClave,
		TipoPublicacion: req.TipoPublicacion,
		Estado:          estado,
		Anexos:          req.Anexos,
		Idioma:          req.Idioma,
		Autores:         append([]string(nil), proj.Investigadores...),
	}

	if err := s.repo.Create(ctx, publication); err != nil {
		return nil, err
	}

	return publication, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Publication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListPublicationsParams,
) ([]Publication, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMine(
	ctx context.Context,
	actorID string,
	params ListPublicationsParams,
) ([]Publication, int, error) {
	params.AutorID = actorID
	return s.repo.List(ctx, params)
}

func (s *Service) Update(
	ctx context.Context,
	actor authz.Actor,
	id string,
	patch core.Patch,
) (*Publication, error) {
	publication, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpPublicationUpdate,
		publication.Autores); err != nil {
		return nil, err
	}

	filtered, err := updateSchema.Filter(patch)
	if err != nil {
		return nil, err
	}

	if publication.IsLocked() && !actor.IsAdministrador() {
		if filtered.Has("autores") || filtered.Has("proyecto") {
			return nil, core.BadRequestError(
				"autores and proyecto cannot change once the publication is reviewed")
		}
	}

	var fields publicationPatch
	if err := core.Decode(filtered, &fields); err != nil {
		return nil, core.BadRequestError("invalid field value in update")
	}

	// Membership checks run against the target project, which is the
	// current one unless the patch moves the publication. The project is
	// only resolved when the patch touches proyecto or autores, so edits
	// to other fields keep working after the parent project is deleted.
	var proj *project.Project
	if filtered.Has("proyecto") || filtered.Has("autores") {
		memberSource := publication.ProyectoID
		if fields.Proyecto != nil && *fields.Proyecto != publication.ProyectoID {
			memberSource = *fields.Proyecto
		}
		proj, err = s.projects.GetByID(ctx, memberSource)
		if err != nil {
			return nil, err
		}
	}

	if fields.Proyecto != nil && *fields.Proyecto != publication.ProyectoID {
		if err := s.rules.CanPerform(actor, authz.OpPublicationCreate,
			proj.Investigadores); err != nil {
			return nil, err
		}
		publication.ProyectoID = proj.ID
	}

	if filtered.Has("autores") {
		if len(fields.Autores) == 0 {
			return nil, core.BadRequestError("autores cannot be empty")
		}
		if invalid := invalidAutores(fields.Autores, proj.Investigadores); len(invalid) > 0 {
			return nil, core.BadRequestError(fmt.Sprintf(
				"autores not in project: %s", strings.Join(invalid, ", ")))
		}
		publication.Autores = fields.Autores
	}

	if fields.Titulo != nil {
		publication.Titulo = *fields.Titulo
	}
	if fields.Fecha != nil {
		fecha, err := parseFecha(*fields.Fecha)
		if err != nil {
			return nil, err
		}
		publication.Fecha = fecha
	}
	if fields.Revista != nil {
		publication.Revista = *fields.Revista
	}
	if fields.Resumen != nil {
		publication.Resumen = *fields.Resumen
	}
	if filtered.Has("palabrasClave") {
		publication.PalabrasClave = fields.PalabrasClave
	}
	if fields.TipoPublicacion != nil {
		if !IsValidTipo(*fields.TipoPublicacion) {
			return nil, core.BadRequestError("unknown tipoPublicacion")
		}
		publication.TipoPublicacion = *fields.TipoPublicacion
	}
	if filtered.Has("anexos") {
		publication.Anexos = fields.Anexos
	}
	if fields.Idioma != nil {
		publication.Idioma = *fields.Idioma
	}
	if fields.Estado != nil && *fields.Estado != publication.Estado {
		if !IsValidEstado(*fields.Estado) {
			return nil, core.BadRequestError("unknown estado")
		}
		if *fields.Estado == EstadoPublicado {
			if err := s.rules.CanPerform(actor, authz.OpPublicationPublish, nil); err != nil {
				return nil, err
			}
		}
		publication.Estado = *fields.Estado
	}

	if err := s.repo.Update(ctx, publication); err != nil {
		return nil, err
	}

	return publication, nil
}

// SoftDelete hides a publication. Published work only comes down by an
// administrator's hand.
func (s *Service) SoftDelete(
	ctx context.Context,
	actor authz.Actor,
	id string,
) error {
	publication, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.rules.CanPerform(actor, authz.OpPublicationDelete,
		publication.Autores); err != nil {
		return err
	}

	if publication.Estado == EstadoPublicado && !actor.IsAdministrador() {
		return core.BadRequestError(
			"a published publication can only be deleted by an administrator")
	}

	return s.repo.SetDeleted(ctx, id, true)
}

func (s *Service) Restore(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Publication, error) {
	if err := s.rules.CanPerform(actor, authz.OpPublicationRestore, nil); err != nil {
		return nil, err
	}

	publication, err := s.repo.GetByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !publication.IsDeleted {
		return nil, core.BadRequestError("publication is not deleted")
	}

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	publication.IsDeleted = false

	return publication, nil
}
