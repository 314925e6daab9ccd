package models

import "time"

// Audit logging
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   // qui a fait la modification
	EntityType string // ex: "Invoice", "Client", "CatalogItem"
	EntityID   uint
	Action     string // ex: "create", "finalize", "delete"
	Detail     string // optionnel
	CreatedAt  time.Time
}
