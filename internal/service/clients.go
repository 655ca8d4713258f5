package service

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"caseflow/internal/domain/models"
)

// ExtractClients derives the distinct set of clients referenced by the flat
// record list. A record contributes through its canonical metadata client id;
// a client-typed folder also contributes itself, keyed by its own id/title.
// The first occurrence of a given client id wins - later duplicates are
// ignored, conflicting names are not merged. The result is sorted by name
// with locale-aware collation.
func ExtractClients(records []models.Document) []models.ClientRef {
	seen := make(map[string]struct{})
	clients := make([]models.ClientRef, 0)

	add := func(id, name string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		if name == "" {
			name = id
		}
		clients = append(clients, models.ClientRef{ID: id, Name: name})
	}

	for _, rec := range records {
		add(rec.Metadata.ClientID, rec.Metadata.ClientName)
		if rec.IsFolder && rec.FolderType == models.FolderTypeClient {
			add(rec.ID, rec.Title)
		}
	}

	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(clients, func(i, j int) bool {
		return collator.CompareString(clients[i].Name, clients[j].Name) < 0
	})

	return clients
}
