package models

// Party is the value snapshot of an invoice participant embedded into each
// invoice. Bank fields are only populated for the issuing party. Changing the
// live CompanyProfile or Client never alters a snapshot already written.
type Party struct {
	Nom        string
	Ligne1     string // rue, numéro
	Ligne2     string // complément
	CodePostal string
	Ville      string
	Pays       string
	Telephone  string
	Email      string
	SIRET      string `gorm:"size:14"`
	// Coordonnées bancaires (émetteur uniquement)
	Titulaire string
	BIC       string
	IBAN      string
	Banque    string
	LogoPath  string
}
