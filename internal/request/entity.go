// AngelaMos | 2026
// entity.go

package request

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TipoAprobacion = "Aprobacion"
	TipoRecurso    = "Recurso"
	TipoPermiso    = "Permiso"
	TipoUnirse     = "Unirse a Proyecto"
	TipoOtros      = "Otros"
)

func IsValidTipo(tipo string) bool {
	switch tipo {
	case TipoAprobacion, TipoRecurso, TipoPermiso, TipoUnirse, TipoOtros:
		return true
	}
	return false
}

// tipoRequiresProyecto reports whether the solicitud type must point at
// a project.
func tipoRequiresProyecto(tipo string) bool {
	switch tipo {
	case TipoAprobacion, TipoRecurso, TipoUnirse:
		return true
	}
	return false
}

const (
	EstadoPendiente = "Pendiente"
	EstadoAprobada  = "Aprobada"
	EstadoRechazada = "Rechazada"
	EstadoEnProceso = "En Proceso"
)

func IsValidEstado(estado string) bool {
	switch estado {
	case EstadoPendiente, EstadoAprobada, EstadoRechazada, EstadoEnProceso:
		return true
	}
	return false
}

// Comentario is one entry of the append-only discussion thread.
type Comentario struct {
	Usuario    string    `json:"usuario"`
	Comentario string    `json:"comentario"`
	Fecha      time.Time `json:"fecha"`
}

type Comentarios []Comentario

func (c Comentarios) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal([]Comentario{})
	}
	return json.Marshal(c)
}

func (c *Comentarios) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Comentarios", src)
	}
}

// Request is a solicitud filed by an investigador and resolved by an
// administrator.
type Request struct {
	ID              string      `db:"id"`
	SolicitanteID   string      `db:"solicitante_id"`
	TipoSolicitud   string      `db:"tipo_solicitud"`
	Descripcion     string      `db:"descripcion"`
	ProyectoID      *string     `db:"proyecto_id"`
	Estado          string      `db:"estado"`
	Comentarios     Comentarios `db:"comentarios"`
	RevisadoPor     *string     `db:"revisado_por"`
	FechaResolucion *time.Time  `db:"fecha_resolucion"`
	IsDeleted       bool        `db:"is_deleted"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}
