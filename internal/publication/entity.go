// AngelaMos | 2026
// entity.go

package publication

import (
	"time"

	"github.com/lib/pq"
)

const (
	TipoArticulo     = "Articulo"
	TipoInforme      = "Informe"
	TipoTesis        = "Tesis"
	TipoPresentacion = "Presentacion"
	TipoOtro         = "Otro"
)

func IsValidTipo(tipo string) bool {
	switch tipo {
	case TipoArticulo, TipoInforme, TipoTesis, TipoPresentacion, TipoOtro:
		return true
	}
	return false
}

const (
	EstadoBorrador  = "Borrador"
	EstadoRevisado  = "Revisado"
	EstadoPublicado = "Publicado"
)

func IsValidEstado(estado string) bool {
	switch estado {
	case EstadoBorrador, EstadoRevisado, EstadoPublicado:
		return true
	}
	return false
}

// Publication is a research output tied to a project. Autores is a
// snapshot of the project's investigadores taken at creation time, not
// a live reference.
type Publication struct {
	ID              string         `db:"id"`
	Titulo          string         `db:"titulo"`
	Fecha           time.Time      `db:"fecha"`
	ProyectoID      string         `db:"proyecto_id"`
	Revista         string         `db:"revista"`
	Resumen         string         `db:"resumen"`
	PalabrasClave   pq.StringArray `db:"palabras_clave"`
	TipoPublicacion string         `db:"tipo_publicacion"`
	Estado          string         `db:"estado"`
	Anexos          pq.StringArray `db:"anexos"`
	Idioma          string         `db:"idioma"`
	Autores         pq.StringArray `db:"autores"`
	IsDeleted       bool           `db:"is_deleted"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (p *Publication) HasAutor(userID string) bool {
	for _, id := range p.Autores {
		if id == userID {
			return true
		}
	}
	return false
}

// IsLocked reports whether the publication passed review; locked
// publications restrict what non-admins may patch.
func (p *Publication) IsLocked() bool {
	return p.Estado == EstadoRevisado || p.Estado == EstadoPublicado
}
