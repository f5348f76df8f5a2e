// AngelaMos | 2026
// service_test.go

package request

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

type fakeRepo struct {
	byID map[string]*Request
}

func newFakeRepo(requests ...*Request) *fakeRepo {
	f := &fakeRepo{byID: make(map[string]*Request)}
	for _, r := range requests {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, request *Request) error {
	f.byID[request.ID] = request
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Request, error) {
	r, ok := f.byID[id]
	if !ok || r.IsDeleted {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) GetByIDAny(_ context.Context, id string) (*Request, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, request *Request) error {
	if _, ok := f.byID[request.ID]; !ok {
		return core.ErrNotFound
	}
	f.byID[request.ID] = request
	return nil
}

func (f *fakeRepo) SetDeleted(_ context.Context, id string, deleted bool) error {
	r, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	r.IsDeleted = deleted
	return nil
}

func (f *fakeRepo) List(_ context.Context, params ListRequestsParams) ([]Request, int, error) {
	var out []Request
	for _, r := range f.byID {
		if r.IsDeleted {
			continue
		}
		if params.SolicitanteID != "" && r.SolicitanteID != params.SolicitanteID {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

type fakeProjects struct {
	byID map[string]*project.Project
}

func newFakeProjects(projects ...*project.Project) *fakeProjects {
	f := &fakeProjects{byID: make(map[string]*project.Project)}
	for _, p := range projects {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(_ context.Context, _ *project.Project) error { return nil }

func (f *fakeProjects) GetByID(_ context.Context, id string) (*project.Project, error) {
	p, ok := f.byID[id]
	if !ok || p.IsDeleted {
		return nil, core.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) GetByIDAny(_ context.Context, id string) (*project.Project, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeProjects) Update(_ context.Context, _ *project.Project) error   { return nil }
func (f *fakeProjects) SetDeleted(_ context.Context, _ string, _ bool) error { return nil }
func (f *fakeProjects) MarkEvaluated(_ context.Context, _ core.DBTX, _ string) error {
	return nil
}
func (f *fakeProjects) ExistsByNombre(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}
func (f *fakeProjects) List(_ context.Context, _ project.ListProjectsParams) ([]project.Project, int, error) {
	return nil, 0, nil
}

var (
	adminActor = authz.Actor{ID: "admin", Role: authz.RoleAdministrador}
	ownerActor = authz.Actor{ID: "u1", Role: authz.RoleInvestigador}
	otherActor = authz.Actor{ID: "u9", Role: authz.RoleInvestigador}
)

func pending(id, solicitante string) *Request {
	return &Request{
		ID:            id,
		SolicitanteID: solicitante,
		TipoSolicitud: TipoPermiso,
		Descripcion:   "d",
		Estado:        EstadoPendiente,
		Comentarios:   Comentarios{},
	}
}

type notice struct {
	usuarioID string
	tipo      string
	mensaje   string
	recursoID *string
}

type fakeNotifier struct {
	sent []notice
}

func (f *fakeNotifier) Notify(
	_ context.Context,
	usuarioID, tipo, mensaje string,
	recursoID *string,
) error {
	f.sent = append(f.sent, notice{usuarioID, tipo, mensaje, recursoID})
	return nil
}

func testService(repo *fakeRepo, projects *fakeProjects) *Service {
	return NewService(repo, projects, authz.DefaultRules(), nil)
}

func TestCreateUnknownTipo(t *testing.T) {
	svc := testService(newFakeRepo(), newFakeProjects())

	_, err := svc.Create(context.Background(), ownerActor, CreateRequestRequest{
		TipoSolicitud: "Consulta",
		Descripcion:   "d",
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCreateProyectoRequiredByTipo(t *testing.T) {
	svc := testService(newFakeRepo(), newFakeProjects())

	for _, tipo := range []string{TipoAprobacion, TipoRecurso, TipoUnirse} {
		_, err := svc.Create(context.Background(), ownerActor, CreateRequestRequest{
			TipoSolicitud: tipo,
			Descripcion:   "d",
		})
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("%s without proyecto: expected bad request, got %v", tipo, err)
		}
	}

	// Permiso and Otros stand alone.
	for _, tipo := range []string{TipoPermiso, TipoOtros} {
		if _, err := svc.Create(context.Background(), ownerActor, CreateRequestRequest{
			TipoSolicitud: tipo,
			Descripcion:   "d",
		}); err != nil {
			t.Errorf("%s without proyecto: %v", tipo, err)
		}
	}
}

func TestCreateUnknownProyecto(t *testing.T) {
	svc := testService(newFakeRepo(), newFakeProjects())

	missing := "does-not-exist"
	_, err := svc.Create(context.Background(), ownerActor, CreateRequestRequest{
		TipoSolicitud: TipoUnirse,
		Descripcion:   "d",
		Proyecto:      &missing,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateStartsPendiente(t *testing.T) {
	projects := newFakeProjects(&project.Project{ID: "p1", Nombre: "P"})
	svc := testService(newFakeRepo(), projects)

	proyecto := "p1"
	request, err := svc.Create(context.Background(), ownerActor, CreateRequestRequest{
		TipoSolicitud: TipoUnirse,
		Descripcion:   "quiero unirme",
		Proyecto:      &proyecto,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.Estado != EstadoPendiente {
		t.Errorf("estado = %q, want Pendiente", request.Estado)
	}
	if request.SolicitanteID != "u1" {
		t.Errorf("solicitante = %q, want u1", request.SolicitanteID)
	}
}

func TestGetScopesToOwner(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	svc := testService(repo, newFakeProjects())

	if _, err := svc.Get(context.Background(), ownerActor, "r1"); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(context.Background(), adminActor, "r1"); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(context.Background(), otherActor, "r1"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestGetAnyAdminOnly(t *testing.T) {
	deleted := pending("r1", "u1")
	deleted.IsDeleted = true
	repo := newFakeRepo(deleted)
	svc := testService(repo, newFakeProjects())

	if _, err := svc.GetAny(context.Background(), ownerActor, "r1"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	request, err := svc.GetAny(context.Background(), adminActor, "r1")
	if err != nil {
		t.Fatalf("admin get any: %v", err)
	}
	if !request.IsDeleted {
		t.Error("expected the soft-deleted row")
	}
}

func TestListScopesNonAdmins(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"), pending("r2", "u2"))
	svc := testService(repo, newFakeProjects())

	mine, _, err := svc.List(context.Background(), ownerActor, ListRequestsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "r1" {
		t.Errorf("got %v, want only r1", mine)
	}

	all, _, err := svc.List(context.Background(), adminActor, ListRequestsParams{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d requests, want 2", len(all))
	}
}

func TestUpdateEstadoIsAdminOnly(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	svc := testService(repo, newFakeProjects())

	estado := EstadoAprobada
	_, err := svc.Update(context.Background(), ownerActor, "r1", UpdateRequestRequest{
		Estado: &estado,
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateEstadoStampsReviewer(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	svc := testService(repo, newFakeProjects())

	estado := EstadoAprobada
	request, err := svc.Update(context.Background(), adminActor, "r1", UpdateRequestRequest{
		Estado: &estado,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if request.Estado != EstadoAprobada {
		t.Errorf("estado = %q, want Aprobada", request.Estado)
	}
	if request.RevisadoPor == nil || *request.RevisadoPor != "admin" {
		t.Error("revisadoPor not stamped")
	}
	if request.FechaResolucion == nil {
		t.Error("fechaResolucion not stamped")
	}
}

func TestUpdateCommentAppends(t *testing.T) {
	existing := pending("r1", "u1")
	existing.Comentarios = Comentarios{{Usuario: "admin", Comentario: "primera"}}
	repo := newFakeRepo(existing)
	svc := testService(repo, newFakeProjects())

	comment := "segunda"
	request, err := svc.Update(context.Background(), ownerActor, "r1", UpdateRequestRequest{
		Comentario: &comment,
	})
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(request.Comentarios) != 2 {
		t.Fatalf("comentarios = %d entries, want 2", len(request.Comentarios))
	}
	if request.Comentarios[0].Comentario != "primera" {
		t.Error("existing comment was modified")
	}
	if request.Comentarios[1].Usuario != "u1" || request.Comentarios[1].Comentario != "segunda" {
		t.Errorf("appended comment = %+v", request.Comentarios[1])
	}
}

func TestResolutionNotifiesSolicitante(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	notifier := &fakeNotifier{}
	svc := NewService(repo, newFakeProjects(), authz.DefaultRules(), notifier)

	estado := EstadoRechazada
	if _, err := svc.Update(context.Background(), adminActor, "r1", UpdateRequestRequest{
		Estado: &estado,
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.usuarioID != "u1" {
		t.Errorf("recipient = %q, want the solicitante", sent.usuarioID)
	}
	if sent.recursoID == nil || *sent.recursoID != "r1" {
		t.Error("notification should reference the solicitud")
	}
	if !strings.Contains(sent.mensaje, EstadoRechazada) {
		t.Errorf("mensaje = %q, should name the resolution", sent.mensaje)
	}
}

func TestCommentOnlyUpdateDoesNotNotify(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	notifier := &fakeNotifier{}
	svc := NewService(repo, newFakeProjects(), authz.DefaultRules(), notifier)

	comment := "en revision"
	if _, err := svc.Update(context.Background(), adminActor, "r1", UpdateRequestRequest{
		Comentario: &comment,
	}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if len(notifier.sent) != 0 {
		t.Fatalf("sent %d notifications, want none", len(notifier.sent))
	}
}

func TestSoftDeleteOwnerOrAdmin(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"), pending("r2", "u1"))
	svc := testService(repo, newFakeProjects())

	if err := svc.SoftDelete(context.Background(), otherActor, "r1"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if err := svc.SoftDelete(context.Background(), ownerActor, "r1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), adminActor, "r2"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestRestoreAdminOnly(t *testing.T) {
	deleted := pending("r1", "u1")
	deleted.IsDeleted = true
	repo := newFakeRepo(deleted)
	svc := testService(repo, newFakeProjects())

	if _, err := svc.Restore(context.Background(), ownerActor, "r1"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	request, err := svc.Restore(context.Background(), adminActor, "r1")
	if err != nil {
		t.Fatalf("admin restore: %v", err)
	}
	if request.IsDeleted {
		t.Error("request still deleted")
	}
}

func TestRestoreNotDeleted(t *testing.T) {
	repo := newFakeRepo(pending("r1", "u1"))
	svc := testService(repo, newFakeProjects())

	_, err := svc.Restore(context.Background(), adminActor, "r1")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
