// Package models defines the core domain models for bulk content deletion.
package models

// Taxonomy is a classification scheme whose terms can be attached to items
// of certain content types.
type Taxonomy struct {
	ID    string `json:"id"    validate:"required"`
	Label string `json:"label" validate:"required"`
}

// ContentType describes a deletable content type and the taxonomies
// registered for it.
type ContentType struct {
	ID         string     `json:"id"         validate:"required"`
	Label      string     `json:"label"      validate:"required"`
	Taxonomies []Taxonomy `json:"taxonomies" validate:"required,min=1,dive"`
}

// HasTaxonomy reports whether the taxonomy is registered for this content type.
func (ct *ContentType) HasTaxonomy(taxonomyID string) bool {
	for _, tax := range ct.Taxonomies {
		if tax.ID == taxonomyID {
			return true
		}
	}

	return false
}

// Term is a single value within a taxonomy.
type Term struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

// Item is a content record identified by a stable ID.
type Item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
