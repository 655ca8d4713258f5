package models

import "time"

// Tree represents the root of the folder/document tree. It is derived from
// the flat record list on every rebuild; nodes are never shared across
// rebuilds.
type Tree struct {
	Folders   []*FolderTreeNode  `json:"folders"`
	Documents []DocumentTreeNode `json:"documents"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Type     FolderType `json:"folder_type,omitempty"`
	ParentID *string    `json:"parent_folder_id"`
	// Level is the number of valid parent hops above this node. An orphaned
	// parent reference stops the count, so a promoted root keeps level 0.
	Level     int                `json:"level"`
	Folders   []*FolderTreeNode  `json:"folders"` // Pointers for proper nesting
	Documents []DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode represents a leaf document in the tree (metadata only)
type DocumentTreeNode struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	ParentFolderID   *string          `json:"parent_folder_id"`
	ProcessingStatus ProcessingStatus `json:"ai_processing_status,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
