// AngelaMos | 2026
// dto.go

package project

import (
	"time"
)

type HitoInput struct {
	Nombre      string     `json:"nombre"`
	Fecha       *time.Time `json:"fecha"`
	Entregables []string   `json:"entregables"`
}

type CronogramaInput struct {
	FechaInicio *time.Time `json:"fechaInicio"`
	FechaFin    *time.Time `json:"fechaFin"`
}

type CreateProjectRequest struct {
	Nombre         string          `json:"nombre"         validate:"required,min=1,max=200"`
	Descripcion    string          `json:"descripcion"    validate:"required,min=1"`
	Objetivos      string          `json:"objetivos"      validate:"required,min=1"`
	Presupuesto    float64         `json:"presupuesto"    validate:"gte=0"`
	Cronograma     CronogramaInput `json:"cronograma"`
	Investigadores []string        `json:"investigadores" validate:"omitempty,dive,required"`
	Hitos          []HitoInput     `json:"hitos"`
	Recursos       []string        `json:"recursos"       validate:"omitempty,dive,required"`
	Estado         string          `json:"estado"         validate:"omitempty,oneof=Planeado 'En Proceso' Finalizado Cancelado"`
	Imagen         string          `json:"imagen"         validate:"omitempty,url"`
}

// projectPatch mirrors the update whitelist. Unknown fields are
// silently dropped before decoding.
type projectPatch struct {
	Nombre         *string          `json:"nombre"         validate:"omitempty,min=1,max=200"`
	Descripcion    *string          `json:"descripcion"    validate:"omitempty,min=1"`
	Objetivos      *string          `json:"objetivos"      validate:"omitempty,min=1"`
	Presupuesto    *float64         `json:"presupuesto"    validate:"omitempty,gte=0"`
	Cronograma     *CronogramaInput `json:"cronograma"`
	Investigadores []string         `json:"investigadores" validate:"omitempty,min=1,dive,required"`
	Hitos          []HitoInput      `json:"hitos"`
	Recursos       []string         `json:"recursos"       validate:"omitempty,dive,required"`
	Estado         *string          `json:"estado"         validate:"omitempty,oneof=Planeado 'En Proceso' Finalizado Cancelado"`
	Imagen         *string          `json:"imagen"         validate:"omitempty,url"`
}

type ProjectResponse struct {
	ID             string     `json:"id"`
	Nombre         string     `json:"nombre"`
	Descripcion    string     `json:"descripcion"`
	Objetivos      string     `json:"objetivos"`
	Presupuesto    float64    `json:"presupuesto"`
	Cronograma     Cronograma `json:"cronograma"`
	Investigadores []string   `json:"investigadores"`
	Hitos          []Hito     `json:"hitos"`
	Recursos       []string   `json:"recursos"`
	Estado         string     `json:"estado"`
	Imagen         string     `json:"imagen"`
	IsEvaluated    bool       `json:"isEvaluated"`
	IsDeleted      bool       `json:"isDeleted"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type ListProjectsParams struct {
	Page     int
	PageSize int
	Search   string
	Estado   string
	// MemberID restricts the listing to projects the user belongs to.
	MemberID string
	// IncludeDeleted lifts the default is_deleted=false predicate.
	IncludeDeleted bool
}

func (p *ListProjectsParams) Normalize() {
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

func (p *ListProjectsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToProjectResponse(p *Project) ProjectResponse {
	hitos := []Hito(p.Hitos)
	if hitos == nil {
		hitos = []Hito{}
	}
	return ProjectResponse{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		Objetivos:      p.Objetivos,
		Presupuesto:    p.Presupuesto,
		Cronograma:     p.Cronograma,
		Investigadores: []string(p.Investigadores),
		Hitos:          hitos,
		Recursos:       []string(p.Recursos),
		Estado:         p.Estado,
		Imagen:         p.Imagen,
		IsEvaluated:    p.IsEvaluated,
		IsDeleted:      p.IsDeleted,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToProjectResponseList(projects []Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, ToProjectResponse(&projects[i]))
	}
	return responses
}
