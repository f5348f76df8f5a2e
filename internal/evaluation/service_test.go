// AngelaMos | 2026
// service_test.go

package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

type fakeRepo struct {
	byID      map[string]*Evaluation
	createErr error
}

func newFakeRepo(evaluations ...*Evaluation) *fakeRepo {
	f := &fakeRepo{byID: make(map[string]*Evaluation)}
	for _, e := range evaluations {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeRepo) CreateTx(_ context.Context, _ core.DBTX, evaluation *Evaluation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[evaluation.ID] = evaluation
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Evaluation, error) {
	e, ok := f.byID[id]
	if !ok || e.IsDeleted {
		return nil, core.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) GetByIDAny(_ context.Context, id string) (*Evaluation, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, evaluation *Evaluation) error {
	if _, ok := f.byID[evaluation.ID]; !ok {
		return core.ErrNotFound
	}
	f.byID[evaluation.ID] = evaluation
	return nil
}

func (f *fakeRepo) SetDeleted(_ context.Context, id string, deleted bool) error {
	e, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	e.IsDeleted = deleted
	return nil
}

func (f *fakeRepo) List(_ context.Context, params ListEvaluationsParams) ([]Evaluation, int, error) {
	var out []Evaluation
	for _, e := range f.byID {
		if e.IsDeleted {
			continue
		}
		if params.ProjectID != "" && e.ProjectID != params.ProjectID {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

type fakeProjects struct {
	byID      map[string]*project.Project
	evaluated []string
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
	p, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, _ *project.Project) error { return nil }

func (f *fakeProjects) SetDeleted(_ context.Context, _ string, _ bool) error { return nil }

func (f *fakeProjects) MarkEvaluated(_ context.Context, _ core.DBTX, id string) error {
	p, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	p.IsEvaluated = true
	f.evaluated = append(f.evaluated, id)
	return nil
}

func (f *fakeProjects) ExistsByNombre(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeProjects) List(_ context.Context, _ project.ListProjectsParams) ([]project.Project, int, error) {
	return nil, 0, nil
}

func testDatabase(t *testing.T) (*core.Database, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return &core.Database{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

var (
	adminActor      = authz.Actor{ID: "admin", Role: authz.RoleAdministrador}
	otherAdminActor = authz.Actor{ID: "admin2", Role: authz.RoleAdministrador}
	memberActor     = authz.Actor{ID: "u1", Role: authz.RoleInvestigador}
)

func activeProject(id string) *project.Project {
	return &project.Project{ID: id, Nombre: "P-" + id, Investigadores: []string{"u1"}}
}

func TestCreateMarksProjectEvaluated(t *testing.T) {
	db, mock := testDatabase(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeRepo()
	projects := newFakeProjects(activeProject("p1"))
	svc := NewService(repo, projects, db, authz.DefaultRules())

	evaluation, err := svc.Create(context.Background(), adminActor, CreateEvaluationRequest{
		ProjectID:   "p1",
		Puntuacion:  87.5,
		Comentarios: "solido",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if evaluation.EvaluatorID != "admin" {
		t.Errorf("evaluator = %q, want admin", evaluation.EvaluatorID)
	}
	if !projects.byID["p1"].IsEvaluated {
		t.Error("project not marked evaluated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestCreateRequiresAdministrador(t *testing.T) {
	db, _ := testDatabase(t)
	svc := NewService(newFakeRepo(), newFakeProjects(activeProject("p1")), db, authz.DefaultRules())

	_, err := svc.Create(context.Background(), memberActor, CreateEvaluationRequest{
		ProjectID:   "p1",
		Puntuacion:  50,
		Comentarios: "x",
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateUnknownProject(t *testing.T) {
	db, _ := testDatabase(t)
	svc := NewService(newFakeRepo(), newFakeProjects(), db, authz.DefaultRules())

	_, err := svc.Create(context.Background(), adminActor, CreateEvaluationRequest{
		ProjectID:   "missing",
		Puntuacion:  50,
		Comentarios: "x",
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateDuplicateRollsBack(t *testing.T) {
	db, mock := testDatabase(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newFakeRepo()
	repo.createErr = core.ErrDuplicateKey
	projects := newFakeProjects(activeProject("p1"))
	svc := NewService(repo, projects, db, authz.DefaultRules())

	_, err := svc.Create(context.Background(), adminActor, CreateEvaluationRequest{
		ProjectID:   "p1",
		Puntuacion:  50,
		Comentarios: "x",
	})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(projects.evaluated) != 0 {
		t.Error("evaluated flag flipped despite failed insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	db, _ := testDatabase(t)
	repo := newFakeRepo(&Evaluation{ID: "e1", ProjectID: "p1", EvaluatorID: "admin", Puntuacion: 70})
	svc := NewService(repo, newFakeProjects(), db, authz.DefaultRules())

	// Another administrator cannot touch someone else's evaluation.
	score := 90.0
	_, err := svc.Update(context.Background(), otherAdminActor, "e1", UpdateEvaluationRequest{
		Puntuacion: &score,
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), adminActor, "e1", UpdateEvaluationRequest{
		Puntuacion: &score,
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Puntuacion != 90 {
		t.Errorf("puntuacion = %v, want 90", updated.Puntuacion)
	}
}

func TestSoftDeleteLeavesEvaluatedFlag(t *testing.T) {
	db, _ := testDatabase(t)
	repo := newFakeRepo(&Evaluation{ID: "e1", ProjectID: "p1", EvaluatorID: "admin"})
	evaluatedProject := activeProject("p1")
	evaluatedProject.IsEvaluated = true
	projects := newFakeProjects(evaluatedProject)
	svc := NewService(repo, projects, db, authz.DefaultRules())

	if err := svc.SoftDelete(context.Background(), adminActor, "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !repo.byID["e1"].IsDeleted {
		t.Error("evaluation not marked deleted")
	}
	if !projects.byID["p1"].IsEvaluated {
		t.Error("evaluated flag cleared on delete")
	}
}

func TestRestoreNotDeleted(t *testing.T) {
	db, _ := testDatabase(t)
	repo := newFakeRepo(&Evaluation{ID: "e1", ProjectID: "p1", EvaluatorID: "admin"})
	svc := NewService(repo, newFakeProjects(), db, authz.DefaultRules())

	_, err := svc.Restore(context.Background(), adminActor, "e1")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestRestoreOwnerOnly(t *testing.T) {
	db, _ := testDatabase(t)
	repo := newFakeRepo(&Evaluation{ID: "e1", ProjectID: "p1", EvaluatorID: "admin", IsDeleted: true})
	svc := NewService(repo, newFakeProjects(), db, authz.DefaultRules())

	_, err := svc.Restore(context.Background(), otherAdminActor, "e1")
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	restored, err := svc.Restore(context.Background(), adminActor, "e1")
	if err != nil {
		t.Fatalf("owner restore: %v", err)
	}
	if restored.IsDeleted {
		t.Error("evaluation still deleted")
	}
}

func TestListByProjectUnknownProject(t *testing.T) {
	db, _ := testDatabase(t)
	svc := NewService(newFakeRepo(), newFakeProjects(), db, authz.DefaultRules())

	_, _, err := svc.ListByProject(context.Background(), "missing", ListEvaluationsParams{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
