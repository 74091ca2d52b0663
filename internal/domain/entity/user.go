package entity

import "time"

// User usuario del sistema. Cada usuario es dueño exclusivo de sus items.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	CreatedAt    time.Time
}
