// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

// profilePatch holds the fields an update request may touch. Anything
// outside this set is silently dropped before the patch is applied.
type profilePatch struct {
	Nombre            *string  `json:"nombre"            validate:"omitempty,min=1,max=100"`
	Apellido          *string  `json:"apellido"          validate:"omitempty,min=1,max=100"`
	Email             *string  `json:"email"             validate:"omitempty,email,max=255"`
	Especializacion   *string  `json:"especializacion"   validate:"omitempty,min=1,max=200"`
	Responsabilidades []string `json:"responsabilidades" validate:"omitempty,min=1,dive,required"`
	FotoPerfil        *string  `json:"fotoPerfil"        validate:"omitempty,url"`
	Role              *string  `json:"role"              validate:"omitempty,oneof=Administrador Investigador"`
}

type UserResponse struct {
	ID                string    `json:"id"`
	Nombre            string    `json:"nombre"`
	Apellido          string    `json:"apellido"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Especializacion   string    `json:"especializacion"`
	Responsabilidades []string  `json:"responsabilidades"`
	FotoPerfil        string    `json:"fotoPerfil"`
	IsDisabled        bool      `json:"isDisabled"`
	IsVerified        bool      `json:"isVerified"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Nombre:            u.Nombre,
		Apellido:          u.Apellido,
		Email:             u.Email,
		Role:              u.Role,
		Especializacion:   u.Especializacion,
		Responsabilidades: []string(u.Responsabilidades),
		FotoPerfil:        u.FotoPerfil,
		IsDisabled:        u.IsDisabled,
		IsVerified:        u.IsVerified,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
