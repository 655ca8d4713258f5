package models

// ClientRef identifies a client (the debtor or estate a file belongs to)
// referenced by document metadata or by a client-typed folder.
type ClientRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
