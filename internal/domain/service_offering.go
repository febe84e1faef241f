package domain

// ServiceOffering is a priced catalog entry (attestation, insurance, ...)
// that a subscription can include. The catalog is file-backed, not stored
// in Postgres.
type ServiceOffering struct {
	ID          int64   `json:"id"`
	Nom         string  `json:"nom"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Tarif       float64 `json:"tarif"`
	Devise      string  `json:"devise"`
	Active      bool    `json:"active"`
}

// Organisation holds the issuing-organisation details printed on
// generated documents.
type Organisation struct {
	Nom        string `json:"nom"`
	Adresse    string `json:"adresse"`
	Ville      string `json:"ville"`
	CodePostal string `json:"code_postal"`
	Pays       string `json:"pays"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`
	SiteWeb    string `json:"site_web"`
	Registre   string `json:"registre"`
}
