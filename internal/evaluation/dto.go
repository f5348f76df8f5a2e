// AngelaMos | 2026
// dto.go

package evaluation

import (
	"time"
)

type CreateEvaluationRequest struct {
	ProjectID   string  `json:"proyecto"    validate:"required,uuid"`
	Puntuacion  float64 `json:"puntuacion"  validate:"gte=0,lte=100"`
	Comentarios string  `json:"comentarios" validate:"required,min=1"`
}

type UpdateEvaluationRequest struct {
	Puntuacion  *float64 `json:"puntuacion"  validate:"omitempty,gte=0,lte=100"`
	Comentarios *string  `json:"comentarios" validate:"omitempty,min=1"`
}

type EvaluationResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"proyecto"`
	EvaluatorID string    `json:"evaluador"`
	Puntuacion  float64   `json:"puntuacion"`
	Comentarios string    `json:"comentarios"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListEvaluationsParams struct {
	Page      int
	PageSize  int
	ProjectID string
}

func (p *ListEvaluationsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListEvaluationsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToEvaluationResponse(e *Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		EvaluatorID: e.EvaluatorID,
		Puntuacion:  e.Puntuacion,
		Comentarios: e.Comentarios,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToEvaluationResponseList(evaluations []Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for i := range evaluations {
		responses = append(responses, ToEvaluationResponse(&evaluations[i]))
	}
	return responses
}
