// AngelaMos | 2026
// dto.go

package request

import (
	"time"
)

type CreateRequestRequest struct {
	TipoSolicitud string  `json:"tipoSolicitud" validate:"required"`
	Descripcion   string  `json:"descripcion"   validate:"required,min=1"`
	Proyecto      *string `json:"proyecto"      validate:"omitempty,uuid"`
}

type UpdateRequestRequest struct {
	Estado     *string `json:"estado"     validate:"omitempty,oneof=Pendiente Aprobada Rechazada 'En Proceso'"`
	Comentario *string `json:"comentario" validate:"omitempty,min=1"`
}

type RequestResponse struct {
	ID              string       `json:"id"`
	Solicitante     string       `json:"solicitante"`
	TipoSolicitud   string       `json:"tipoSolicitud"`
	Descripcion     string       `json:"descripcion"`
	Proyecto        *string      `json:"proyecto"`
	Estado          string       `json:"estado"`
	Comentarios     []Comentario `json:"comentarios"`
	RevisadoPor     *string      `json:"revisadoPor"`
	FechaResolucion *time.Time   `json:"fechaResolucion"`
	IsDeleted       bool         `json:"isDeleted"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type ListRequestsParams struct {
	Page     int
	PageSize int
	Estado   string
	Tipo     string
	// SolicitanteID scopes the listing to one requester.
	SolicitanteID string
}

func (p *ListRequestsParams) Normalize() {
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

func (p *ListRequestsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToRequestResponse(r *Request) RequestResponse {
	comentarios := []Comentario(r.Comentarios)
	if comentarios == nil {
		comentarios = []Comentario{}
	}
	return RequestResponse{
		ID:              r.ID,
		Solicitante:     r.SolicitanteID,
		TipoSolicitud:   r.TipoSolicitud,
		Descripcion:     r.Descripcion,
		Proyecto:        r.ProyectoID,
		Estado:          r.Estado,
		Comentarios:     comentarios,
		RevisadoPor:     r.RevisadoPor,
		FechaResolucion: r.FechaResolucion,
		IsDeleted:       r.IsDeleted,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func ToRequestResponseList(requests []Request) []RequestResponse {
	responses := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, ToRequestResponse(&requests[i]))
	}
	return responses
}
