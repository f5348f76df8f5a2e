// AngelaMos | 2026
// handler_test.go

package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
)

// actorInjector stands in for the session middleware.
func actorInjector(actor authz.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, actor.ID)
			ctx = context.WithValue(ctx, middleware.UserRoleKey, actor.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func testRouter(repo *fakeRepo, actor authz.Actor) chi.Router {
	svc := fixedService(repo)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, actorInjector(actor))
	return r
}

func TestProjectsEndpointCSV(t *testing.T) {
	avg := 87.5
	repo := &fakeRepo{projects: []ProjectRow{sampleProjectRow(&avg)}}
	router := testRouter(repo, adminActor)

	req := httptest.NewRequest(http.MethodGet, "/reports/projects", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Estudio de Suelos")
}

func TestProjectsEndpointPDF(t *testing.T) {
	avg := 50.0
	repo := &fakeRepo{projects: []ProjectRow{sampleProjectRow(&avg)}}
	router := testRouter(repo, adminActor)

	req := httptest.NewRequest(http.MethodGet, "/reports/projects?format=pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestProjectsEndpointBadFormat(t *testing.T) {
	avg := 50.0
	repo := &fakeRepo{projects: []ProjectRow{sampleProjectRow(&avg)}}
	router := testRouter(repo, adminActor)

	req := httptest.NewRequest(http.MethodGet, "/reports/projects?format=xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluationsEndpointEmpty(t *testing.T) {
	router := testRouter(&fakeRepo{}, adminActor)

	req := httptest.NewRequest(http.MethodGet, "/reports/evaluations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectsEndpointScopesInvestigador(t *testing.T) {
	avg := 50.0
	repo := &fakeRepo{projects: []ProjectRow{sampleProjectRow(&avg)}}
	router := testRouter(repo, memberActor)

	req := httptest.NewRequest(http.MethodGet, "/reports/projects", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", repo.lastScope)
}
