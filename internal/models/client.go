package models

import "time"

// Client entity
type Client struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID"`
	Nom        string `gorm:"not null;index"` // raison sociale ou nom
	Contact    string // nom du contact principal
	Ligne1     string
	Ligne2     string
	CodePostal string
	Ville      string
	Pays       string
	Telephone  string
	Email      string
	SIRET      string `gorm:"size:14;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Party builds the value snapshot embedded into invoices.
func (c *Client) Party() Party {
	return Party{
		Nom:        c.Nom,
		Ligne1:     c.Ligne1,
		Ligne2:     c.Ligne2,
		CodePostal: c.CodePostal,
		Ville:      c.Ville,
		Pays:       c.Pays,
		Telephone:  c.Telephone,
		Email:      c.Email,
		SIRET:      c.SIRET,
	}
}
