// AngelaMos | 2026
// service_test.go

package project

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
)

type fakeRepo struct {
	byID map[string]*Project
}

func newFakeRepo(projects ...*Project) *fakeRepo {
	f := &fakeRepo{byID: make(map[string]*Project)}
	for _, p := range projects {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, project *Project) error {
	for _, p := range f.byID {
		if !p.IsDeleted && p.Nombre == project.Nombre {
			return core.ErrDuplicateKey
		}
	}
	f.byID[project.ID] = project
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Project, error) {
	p, ok := f.byID[id]
	if !ok || p.IsDeleted {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetByIDAny(_ context.Context, id string) (*Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, project *Project) error {
	if _, ok := f.byID[project.ID]; !ok {
		return core.ErrNotFound
	}
	f.byID[project.ID] = project
	return nil
}

func (f *fakeRepo) SetDeleted(_ context.Context, id string, deleted bool) error {
	p, ok := f.byID[id]
	if !ok || p.IsDeleted == deleted {
		return core.ErrNotFound
	}
	p.IsDeleted = deleted
	return nil
}

func (f *fakeRepo) MarkEvaluated(_ context.Context, _ core.DBTX, id string) error {
	p, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	p.IsEvaluated = true
	return nil
}

func (f *fakeRepo) ExistsByNombre(_ context.Context, nombre, excludeID string) (bool, error) {
	for _, p := range f.byID {
		if !p.IsDeleted && p.Nombre == nombre && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) List(_ context.Context, params ListProjectsParams) ([]Project, int, error) {
	var out []Project
	for _, p := range f.byID {
		if p.IsDeleted && !params.IncludeDeleted {
			continue
		}
		if params.MemberID != "" && !p.HasInvestigador(params.MemberID) {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func validCreateRequest() CreateProjectRequest {
	return CreateProjectRequest{
		Nombre:      "Estudio de Suelos",
		Descripcion: "Analisis de suelos volcanicos",
		Objetivos:   "Caracterizar la composicion",
		Presupuesto: 15000,
		Cronograma: CronogramaInput{
			FechaInicio: datePtr("2026-01-01"),
			FechaFin:    datePtr("2026-12-31"),
		},
		Hitos: []HitoInput{
			{Nombre: "Muestreo", Fecha: datePtr("2026-03-01")},
		},
	}
}

func seedProject(id, nombre string, investigadores ...string) *Project {
	return &Project{
		ID:             id,
		Nombre:         nombre,
		Descripcion:    "d",
		Objetivos:      "o",
		Cronograma:     Cronograma{FechaInicio: date("2026-01-01"), FechaFin: date("2026-12-31")},
		Investigadores: investigadores,
		Hitos:          Hitos{{Nombre: "h", Fecha: date("2026-06-01")}},
		Estado:         EstadoPlaneado,
	}
}

func patchOf(t *testing.T, body string) core.Patch {
	t.Helper()
	var p core.Patch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("parse patch: %v", err)
	}
	return p
}

var (
	adminActor  = authz.Actor{ID: "admin", Role: authz.RoleAdministrador}
	memberActor = authz.Actor{ID: "u1", Role: authz.RoleInvestigador}
	otherActor  = authz.Actor{ID: "u9", Role: authz.RoleInvestigador}
)

func TestCreateAddsCreatorAsInvestigador(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, authz.DefaultRules())

	req := validCreateRequest()
	req.Investigadores = []string{"u2"}

	project, err := svc.Create(context.Background(), req, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !project.HasInvestigador("u1") {
		t.Error("creator missing from investigadores")
	}
	if !project.HasInvestigador("u2") {
		t.Error("requested investigador missing")
	}
	if project.Estado != EstadoPlaneado {
		t.Errorf("estado = %q, want Planeado default", project.Estado)
	}
}

func TestCreateCreatorNotDuplicated(t *testing.T) {
	svc := NewService(newFakeRepo(), authz.DefaultRules())

	req := validCreateRequest()
	req.Investigadores = []string{"u1"}

	project, err := svc.Create(context.Background(), req, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(project.Investigadores) != 1 {
		t.Errorf("investigadores = %v, want exactly one entry", project.Investigadores)
	}
}

func TestCreateDuplicateNombre(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio de Suelos", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Create(context.Background(), validCreateRequest(), "u2")
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestCreateCronogramaValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), authz.DefaultRules())

	req := validCreateRequest()
	req.Cronograma.FechaFin = nil
	if _, err := svc.Create(context.Background(), req, "u1"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("missing fechaFin: expected bad request, got %v", err)
	}

	req = validCreateRequest()
	req.Cronograma.FechaInicio = datePtr("2027-01-01")
	if _, err := svc.Create(context.Background(), req, "u1"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("inverted range: expected bad request, got %v", err)
	}
}

func TestCreateHitosValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), authz.DefaultRules())

	req := validCreateRequest()
	req.Hitos = nil
	if _, err := svc.Create(context.Background(), req, "u1"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("no hitos: expected bad request, got %v", err)
	}

	req = validCreateRequest()
	req.Hitos = []HitoInput{{Nombre: "", Fecha: datePtr("2026-03-01")}}
	if _, err := svc.Create(context.Background(), req, "u1"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("unnamed hito: expected bad request, got %v", err)
	}
}

func TestUpdateRequiresMembership(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Update(context.Background(), otherActor, "p1",
		patchOf(t, `{"descripcion":"nueva"}`))
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), memberActor, "p1",
		patchOf(t, `{"descripcion":"nueva"}`))
	if err != nil {
		t.Fatalf("member update: %v", err)
	}
	if updated.Descripcion != "nueva" {
		t.Errorf("descripcion = %q", updated.Descripcion)
	}
}

func TestUpdateAdminBypassesMembership(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Update(context.Background(), adminActor, "p1",
		patchOf(t, `{"estado":"En Proceso"}`))
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestUpdateIgnoresUnknownFields(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	updated, err := svc.Update(context.Background(), memberActor, "p1",
		patchOf(t, `{"descripcion":"nueva","isEvaluated":true,"isDeleted":true}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsEvaluated || updated.IsDeleted {
		t.Error("non-whitelisted flags reached the entity")
	}
}

func TestUpdateRejectsEmptyInvestigadores(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Update(context.Background(), memberActor, "p1",
		patchOf(t, `{"investigadores":[]}`))
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateUnknownEstado(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Update(context.Background(), memberActor, "p1",
		patchOf(t, `{"estado":"Archivado"}`))
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateDuplicateNombre(t *testing.T) {
	repo := newFakeRepo(
		seedProject("p1", "Estudio A", "u1"),
		seedProject("p2", "Estudio B", "u1"),
	)
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Update(context.Background(), memberActor, "p1",
		patchOf(t, `{"nombre":"Estudio B"}`))
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestSoftDeleteClosedProjectAdminOnly(t *testing.T) {
	closed := seedProject("p1", "Estudio", "u1")
	closed.Estado = EstadoFinalizado
	repo := newFakeRepo(closed)
	svc := NewService(repo, authz.DefaultRules())

	err := svc.SoftDelete(context.Background(), memberActor, "p1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}

	if err := svc.SoftDelete(context.Background(), adminActor, "p1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if !repo.byID["p1"].IsDeleted {
		t.Error("project not marked deleted")
	}
}

func TestSoftDeleteByMember(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	if err := svc.SoftDelete(context.Background(), memberActor, "p1"); err != nil {
		t.Fatalf("member delete: %v", err)
	}
	if !repo.byID["p1"].IsDeleted {
		t.Error("project not marked deleted")
	}
}

func TestRestoreRequiresAdministrador(t *testing.T) {
	deleted := seedProject("p1", "Estudio", "u1")
	deleted.IsDeleted = true
	repo := newFakeRepo(deleted)
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Restore(context.Background(), memberActor, "p1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	project, err := svc.Restore(context.Background(), adminActor, "p1")
	if err != nil {
		t.Fatalf("admin restore: %v", err)
	}
	if project.IsDeleted {
		t.Error("project still deleted")
	}
}

func TestRestoreNotDeleted(t *testing.T) {
	repo := newFakeRepo(seedProject("p1", "Estudio", "u1"))
	svc := NewService(repo, authz.DefaultRules())

	_, err := svc.Restore(context.Background(), adminActor, "p1")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListExcludesDeleted(t *testing.T) {
	deleted := seedProject("p2", "Viejo", "u1")
	deleted.IsDeleted = true
	repo := newFakeRepo(seedProject("p1", "Activo", "u1"), deleted)
	svc := NewService(repo, authz.DefaultRules())

	projects, total, err := svc.List(context.Background(), ListProjectsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(projects) != 1 || projects[0].Nombre != "Activo" {
		t.Errorf("got %d projects, want only the active one", len(projects))
	}
}

func TestGetMineScopesToMember(t *testing.T) {
	repo := newFakeRepo(
		seedProject("p1", "Mio", "u1"),
		seedProject("p2", "Ajeno", "u2"),
	)
	svc := NewService(repo, authz.DefaultRules())

	projects, _, err := svc.GetMine(context.Background(), "u1", ListProjectsParams{})
	if err != nil {
		t.Fatalf("get mine: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Errorf("got %v, want only p1", projects)
	}
}
