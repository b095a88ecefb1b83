package models

// PageList represents the response of the BookStack page listing endpoint.
// Pages are collected from every top-level list in the payload.
type PageList struct {
	Total int
	Pages []PageEntry
}

// PageEntry represents a single page object returned by the listing endpoint
type PageEntry struct {
	ID       string
	Slug     string
	Name     string
	BookID   string
	BookSlug string
}

// Book represents a BookStack book, the parent collection of pages
type Book struct {
	ID   string `json:"-"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// PageRecord is one row of the index file
type PageRecord struct {
	ID       string
	Slug     string
	BookSlug string // only set for the three-field index variant
}
