package models

import "time"

// Coordinator is a regional contact for escalating reports.
type Coordinator struct {
	ID        string    `db:"id" json:"id"`
	Region    string    `db:"region" json:"region"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
