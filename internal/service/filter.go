package service

import (
	"strings"

	"caseflow/internal/domain/models"
)

// FilterOptions narrows the flat record list before tree construction or
// listing. The zero value passes everything through.
type FilterOptions struct {
	// Query is a free-text search; a record matches when its title contains
	// the query as a case-insensitive substring. No tokenization, no fuzz.
	Query string
	// FolderScope restricts documents to direct children of the given folder.
	// nil means all non-folder documents pass the scope filter.
	FolderScope *string
	// ClientID restricts records to one client, matched against the
	// canonical metadata client id.
	ClientID string
}

// FilterResult is the pair of derived lists the UI consumes.
type FilterResult struct {
	Folders   []models.Document `json:"folders"`
	Documents []models.Document `json:"documents"`
}

// FilterRecords applies the query, folder-scope and client-scope filters over
// the flat record list. It always returns fresh slices and never mutates its
// input: running it twice with the same inputs yields identical output.
func FilterRecords(records []models.Document, opts FilterOptions) FilterResult {
	query := strings.ToLower(opts.Query)

	result := FilterResult{
		Folders:   make([]models.Document, 0),
		Documents: make([]models.Document, 0),
	}

	for _, rec := range records {
		if !titleMatches(rec.Title, query) {
			continue
		}
		if !clientMatches(rec, opts.ClientID) {
			continue
		}

		if rec.IsFolder {
			result.Folders = append(result.Folders, rec)
			continue
		}

		if !scopeMatches(rec, opts.FolderScope) {
			continue
		}
		result.Documents = append(result.Documents, rec)
	}

	return result
}

// scopeMatches applies the folder scope to a non-folder document.
func scopeMatches(rec models.Document, scope *string) bool {
	if scope == nil {
		return true
	}
	return rec.ParentFolderID != nil && *rec.ParentFolderID == *scope
}

// clientMatches checks the canonical client id. A client-typed folder is its
// own client, keyed by its record id.
func clientMatches(rec models.Document, clientID string) bool {
	if clientID == "" {
		return true
	}
	if rec.Metadata.ClientID == clientID {
		return true
	}
	return rec.IsFolder && rec.FolderType == models.FolderTypeClient && rec.ID == clientID
}
