package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role distinguishes what an editor account may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEditor   Role = "editor"
	RoleProducer Role = "producer" // production team: workflow flags and task lists
)

// Editor is an account of the admin surface.
type Editor struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (e *Editor) IsAdmin() bool {
	return e.Role == RoleAdmin
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleProducer:
		return true
	}
	return false
}
