package models

import "time"

// CompanyProfile is the live issuer profile (single company per user). It is
// copied by value into invoices at finalization time.
type CompanyProfile struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;uniqueIndex"`
	User          User   `gorm:"foreignKey:UserID"`
	RaisonSociale string `gorm:"not null;index"`
	Ligne1        string
	Ligne2        string
	CodePostal    string
	Ville         string
	Pays          string
	Telephone     string
	Email         string
	SIRET         string `gorm:"size:14;index"`
	// Coordonnées bancaires pour le bloc de règlement
	Titulaire string // titulaire du compte
	BIC       string
	IBAN      string
	Banque    string
	LogoPath  string // chemin ou URL du logo
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Party builds the value snapshot embedded into invoices.
func (c *CompanyProfile) Party() Party {
	return Party{
		Nom:        c.RaisonSociale,
		Ligne1:     c.Ligne1,
		Ligne2:     c.Ligne2,
		CodePostal: c.CodePostal,
		Ville:      c.Ville,
		Pays:       c.Pays,
		Telephone:  c.Telephone,
		Email:      c.Email,
		SIRET:      c.SIRET,
		Titulaire:  c.Titulaire,
		BIC:        c.BIC,
		IBAN:       c.IBAN,
		Banque:     c.Banque,
		LogoPath:   c.LogoPath,
	}
}
