// AngelaMos | 2026
// dto.go

package notification

import (
	"time"
)

type NotificationResponse struct {
	ID        string    `json:"id"`
	Usuario   string    `json:"usuario"`
	Tipo      string    `json:"tipo"`
	Mensaje   string    `json:"mensaje"`
	Recurso   *string   `json:"recurso"`
	IsRead    bool      `json:"isRead"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}

type ListNotificationsParams struct {
	Page     int
	PageSize int
	// UsuarioID scopes the listing to one recipient; empty means all
	// recipients, which only the admin listing uses.
	UsuarioID  string
	UnreadOnly bool
}

func (p *ListNotificationsParams) Normalize() {
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

func (p *ListNotificationsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Usuario:   n.UsuarioID,
		Tipo:      n.Tipo,
		Mensaje:   n.Mensaje,
		Recurso:   n.RecursoID,
		IsRead:    n.IsRead,
		IsDeleted: n.IsDeleted,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func ToNotificationResponseList(notifications []Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, ToNotificationResponse(&notifications[i]))
	}
	return responses
}
