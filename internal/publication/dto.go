// AngelaMos | 2026
// dto.go

package publication

import (
	"time"
)

type CreatePublicationRequest struct {
	Titulo          string   `json:"titulo"          validate:"required,min=1,max=300"`
	Fecha           string   `json:"fecha"           validate:"required"`
	Proyecto        string   `json:"proyecto"        validate:"required,uuid"`
	Revista         string   `json:"revista"         validate:"required,min=1,max=200"`
	Resumen         string   `json:"resumen"         validate:"omitempty"`
	PalabrasClave   []string `json:"palabrasClave"   validate:"omitempty,dive,required"`
	TipoPublicacion string   `json:"tipoPublicacion" validate:"required"`
	Estado          string   `json:"estado"          validate:"omitempty,oneof=Borrador Revisado Publicado"`
	Anexos          []string `json:"anexos"          validate:"omitempty,dive,url"`
	Idioma          string   `json:"idioma"          validate:"required,min=1,max=50"`
}

// publicationPatch mirrors the update schema. Unknown keys reject the
// whole patch rather than being dropped.
type publicationPatch struct {
	Titulo          *string  `json:"titulo"          validate:"omitempty,min=1,max=300"`
	Fecha           *string  `json:"fecha"`
	Proyecto        *string  `json:"proyecto"        validate:"omitempty,uuid"`
	Revista         *string  `json:"revista"         validate:"omitempty,min=1,max=200"`
	Resumen         *string  `json:"resumen"`
	PalabrasClave   []string `json:"palabrasClave"   validate:"omitempty,dive,required"`
	TipoPublicacion *string  `json:"tipoPublicacion"`
	Estado          *string  `json:"estado"          validate:"omitempty,oneof=Borrador Revisado Publicado"`
	Anexos          []string `json:"anexos"          validate:"omitempty,dive,url"`
	Idioma          *string  `json:"idioma"          validate:"omitempty,min=1,max=50"`
	Autores         []string `json:"autores"         validate:"omitempty,min=1,dive,required"`
}

type PublicationResponse struct {
	ID              string    `json:"id"`
	Titulo          string    `json:"titulo"`
	Fecha           time.Time `json:"fecha"`
	Proyecto        string    `json:"proyecto"`
	Revista         string    `json:"revista"`
	Resumen         string    `json:"resumen"`
	PalabrasClave   []string  `json:"palabrasClave"`
	TipoPublicacion string    `json:"tipoPublicacion"`
	Estado          string    `json:"estado"`
	Anexos          []string  `json:"anexos"`
	Idioma          string    `json:"idioma"`
	Autores         []string  `json:"autores"`
	IsDeleted       bool      `json:"isDeleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ListPublicationsParams struct {
	Page            int
	PageSize        int
	Search          string
	Titulo          string
	TipoPublicacion string
	// AutorID restricts the listing to the author's publications.
	AutorID string
}

func (p *ListPublicationsParams) Normalize() {
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

func (p *ListPublicationsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToPublicationResponse(p *Publication) PublicationResponse {
	return PublicationResponse{
		ID:              p.ID,
		Titulo:          p.Titulo,
		Fecha:           p.Fecha,
		Proyecto:        p.ProyectoID,
		Revista:         p.Revista,
		Resumen:         p.Resumen,
		PalabrasClave:   []string(p.PalabrasClave),
		TipoPublicacion: p.TipoPublicacion,
		Estado:          p.Estado,
		Anexos:          []string(p.Anexos),
		Idioma:          p.Idioma,
		Autores:         []string(p.Autores),
		IsDeleted:       p.IsDeleted,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func ToPublicationResponseList(publications []Publication) []PublicationResponse {
	responses := make([]PublicationResponse, 0, len(publications))
	for i := range publications {
		responses = append(responses, ToPublicationResponse(&publications[i]))
	}
	return responses
}
