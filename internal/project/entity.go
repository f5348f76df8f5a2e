// AngelaMos | 2026
// entity.go

package project

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	EstadoPlaneado   = "Planeado"
	EstadoEnProceso  = "En Proceso"
	EstadoFinalizado = "Finalizado"
	EstadoCancelado  = "Cancelado"
)

func IsValidEstado(estado string) bool {
	switch estado {
	case EstadoPlaneado, EstadoEnProceso, EstadoFinalizado, EstadoCancelado:
		return true
	}
	return false
}

// Cronograma bounds the project schedule. Both dates are required and
// FechaInicio must not come after FechaFin.
type Cronograma struct {
	FechaInicio time.Time `json:"fechaInicio"`
	FechaFin    time.Time `json:"fechaFin"`
}

func (c Cronograma) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Cronograma) Scan(src any) error {
	return scanJSON(src, c)
}

// Hito is a project milestone. Entregables may be empty, nombre and
// fecha may not.
type Hito struct {
	Nombre      string    `json:"nombre"`
	Fecha       time.Time `json:"fecha"`
	Entregables []string  `json:"entregables"`
}

// Hitos is stored as a single JSONB column to preserve ordering.
type Hitos []Hito

func (h Hitos) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal([]Hito{})
	}
	return json.Marshal(h)
}

func (h *Hitos) Scan(src any) error {
	return scanJSON(src, h)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSON value", src)
	}
}

type Project struct {
	ID             string         `db:"id"`
	Nombre         string         `db:"nombre"`
	Descripcion    string         `db:"descripcion"`
	Objetivos      string         `db:"objetivos"`
	Presupuesto    float64        `db:"presupuesto"`
	Cronograma     Cronograma     `db:"cronograma"`
	Investigadores pq.StringArray `db:"investigadores"`
	Hitos          Hitos          `db:"hitos"`
	Recursos       pq.StringArray `db:"recursos"`
	Estado         string         `db:"estado"`
	Imagen         string         `db:"imagen"`
	IsEvaluated    bool           `db:"is_evaluated"`
	IsDeleted      bool           `db:"is_deleted"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// HasInvestigador reports whether the given user is on the project.
func (p *Project) HasInvestigador(userID string) bool {
	for _, id := range p.Investigadores {
		if id == userID {
			return true
		}
	}
	return false
}

// IsClosed reports whether the project reached a terminal estado.
func (p *Project) IsClosed() bool {
	return p.Estado == EstadoFinalizado || p.Estado == EstadoCancelado
}
