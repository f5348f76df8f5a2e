// AngelaMos | 2026
// service.go

package evaluation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/project"
)

type Service struct {
	repo     Repository
	projects project.Repository
	db       *core.Database
	rules    authz.Rules
}

func NewService(
	repo Repository,
	projects project.Repository,
	db *core.Database,
	rules authz.Rules,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		db:       db,
		rules:    rules,
	}
}

// Create records a score and flips the project's evaluated flag in the
// same transaction, so a crash between the two writes cannot leave an
// evaluated project unmarked.
func (s *Service) Create(
	ctx context.Context,
	actor authz.Actor,
	req CreateEvaluationRequest,
) (*Evaluation, error) {
	if err := s.rules.CanPerform(actor, authz.OpEvaluationCreate, nil); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	evaluation := &Evaluation{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		EvaluatorID: actor.ID,
		Puntuacion:  req.Puntuacion,
		Comentarios: req.Comentarios,
	}

	err := core.InTx(ctx, s.db.DB, func(tx *sqlx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, evaluation); err != nil {
			return err
		}
		return s.projects.MarkEvaluated(ctx, tx, req.ProjectID)
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError(
				"an active evaluation by this evaluator already exists for the project")
		}
		return nil, err
	}

	return evaluation, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Evaluation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListEvaluationsParams,
) ([]Evaluation, int, error) {
	return s.repo.List(ctx, params)
}

// ListByProject requires the project to exist and be active.
func (s *Service) ListByProject(
	ctx context.Context,
	projectID string,
	params ListEvaluationsParams,
) ([]Evaluation, int, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, 0, err
	}
	params.ProjectID = projectID
	return s.repo.List(ctx, params)
}

func (s *Service) Update(
	ctx context.Context,
	actor authz.Actor,
	id string,
	req UpdateEvaluationRequest,
) (*Evaluation, error) {
	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpEvaluationUpdate,
		[]string{evaluation.EvaluatorID}); err != nil {
		return nil, err
	}

	if req.Puntuacion != nil {
		evaluation.Puntuacion = *req.Puntuacion
	}
	if req.Comentarios != nil {
		evaluation.Comentarios = *req.Comentarios
	}

	if err := s.repo.Update(ctx, evaluation); err != nil {
		return nil, err
	}

	return evaluation, nil
}

// SoftDelete hides an evaluation. The project's evaluated flag is
// deliberately left set; it records that an evaluation happened, not
// that one is currently visible.
func (s *Service) SoftDelete(
	ctx context.Context,
	actor authz.Actor,
	id string,
) error {
	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.rules.CanPerform(actor, authz.OpEvaluationDelete,
		[]string{evaluation.EvaluatorID}); err != nil {
		return err
	}

	return s.repo.SetDeleted(ctx, id, true)
}

func (s *Service) Restore(
	ctx context.Context,
	actor authz.Actor,
	id string,
) (*Evaluation, error) {
	evaluation, err := s.repo.GetByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rules.CanPerform(actor, authz.OpEvaluationRestore,
		[]string{evaluation.EvaluatorID}); err != nil {
		return nil, err
	}

	if !evaluation.IsDeleted {
		return nil, core.BadRequestError("evaluation is not deleted")
	}

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	evaluation.IsDeleted = false

	return evaluation, nil
}

