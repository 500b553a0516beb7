package domain

import "time"

type Role string

const (
	RoleScheduler  Role = "planificador"
	RoleSupervisor Role = "supervisor"
	RoleViewer     Role = "consulta"
)

type Guard struct {
	ID         int64     `json:"id"`
	FullName   string    `json:"fullName"`
	DocumentID string    `json:"documentID"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
