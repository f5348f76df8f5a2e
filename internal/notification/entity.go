// AngelaMos | 2026
// entity.go

package notification

import (
	"time"
)

const (
	TipoSolicitud  = "Solicitud"
	TipoEvaluacion = "Evaluacion"
	TipoSistema    = "Sistema"
)

func IsValidTipo(tipo string) bool {
	switch tipo {
	case TipoSolicitud, TipoEvaluacion, TipoSistema:
		return true
	}
	return false
}

// Notification is an in-app message addressed to a single user.
// RecursoID points at the entity behind it (a solicitud, an
// evaluation's project) when one exists.
type Notification struct {
	ID        string    `db:"id"`
	UsuarioID string    `db:"usuario_id"`
	Tipo      string    `db:"tipo"`
	Mensaje   string    `db:"mensaje"`
	RecursoID *string   `db:"recurso_id"`
	IsRead    bool      `db:"is_read"`
	IsDeleted bool      `db:"is_deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
