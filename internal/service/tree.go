package service

import (
	"context"
	"log/slog"
	"strings"

	"caseflow/internal/config"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

// TreeService builds the folder/document tree from the flat record list.
type TreeService struct {
	docRepo repositories.DocumentRepository
	logger  *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(docRepo repositories.DocumentRepository, logger *slog.Logger) *TreeService {
	return &TreeService{
		docRepo: docRepo,
		logger:  logger,
	}
}

// GetTree fetches the flat record list and builds the nested tree.
// An optional query applies the tree-aware search: a node is kept when its
// own title matches or any descendant matches.
func (s *TreeService) GetTree(ctx context.Context, query string) (*models.Tree, error) {
	records, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(records)
	if query != "" {
		tree = SearchTree(tree, query)
	}

	s.logger.Debug("tree built",
		"record_count", len(records),
		"root_folders", len(tree.Folders),
		"root_documents", len(tree.Documents),
	)

	return tree, nil
}

// BuildTree converts a flat record list into a rooted tree. Every record
// appears exactly once: a folder whose parent id is missing from the working
// set is promoted to a root, never dropped, and documents behave the same.
// Malformed parent chains terminate the level walk instead of looping, and a
// folder inside a parent cycle (self-reference included) is promoted to a
// root rather than nested into the cycle. BuildTree never fails.
func BuildTree(records []models.Document) *models.Tree {
	folderMap := make(map[string]*models.FolderTreeNode)
	folderOrder := make([]string, 0)

	// First pass: create all folder nodes
	for _, rec := range records {
		if !rec.IsFolder {
			continue
		}
		folderMap[rec.ID] = &models.FolderTreeNode{
			ID:        rec.ID,
			Title:     rec.Title,
			Type:      rec.FolderType,
			ParentID:  rec.ParentFolderID,
			Folders:   []*models.FolderTreeNode{},
			Documents: []models.DocumentTreeNode{},
		}
		folderOrder = append(folderOrder, rec.ID)
	}

	// Second pass: compute levels and nest folders under existing parents;
	// orphans become roots
	rootFolders := make([]*models.FolderTreeNode, 0)
	for _, id := range folderOrder {
		node := folderMap[id]
		level, cyclic := walkLevel(node, folderMap)
		node.Level = level

		if cyclic {
			// A folder inside a parent cycle is unreachable through its
			// parent; promote it to a root so it stays in the tree.
			node.Level = 0
			rootFolders = append(rootFolders, node)
			continue
		}

		if node.ParentID != nil {
			if parent, exists := folderMap[*node.ParentID]; exists {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		rootFolders = append(rootFolders, node)
	}

	// Third pass: attach documents to their folders
	rootDocuments := make([]models.DocumentTreeNode, 0)
	for _, rec := range records {
		if rec.IsFolder {
			continue
		}
		docNode := models.DocumentTreeNode{
			ID:               rec.ID,
			Title:            rec.Title,
			ParentFolderID:   rec.ParentFolderID,
			ProcessingStatus: rec.ProcessingStatus,
			UpdatedAt:        rec.LastModified(),
		}

		if rec.ParentFolderID != nil {
			if parent, exists := folderMap[*rec.ParentFolderID]; exists {
				parent.Documents = append(parent.Documents, docNode)
				continue
			}
		}
		rootDocuments = append(rootDocuments, docNode)
	}

	return &models.Tree{
		Folders:   rootFolders,
		Documents: rootDocuments,
	}
}

// walkLevel counts valid parent hops above a node and reports whether the
// node itself sits inside a parent cycle. The walk stops at the root, at a
// parent missing from the working set, on a revisited node, or at the depth
// bound - whichever comes first.
func walkLevel(node *models.FolderTreeNode, folderMap map[string]*models.FolderTreeNode) (int, bool) {
	level := 0
	current := node
	seen := map[string]bool{node.ID: true}
	for current.ParentID != nil && level < config.MaxTreeDepth {
		parent, exists := folderMap[*current.ParentID]
		if !exists {
			break
		}
		if seen[parent.ID] {
			// The chain closed on the starting node: the node is a cycle
			// member. Closing on some other ancestor means the corruption
			// is upstream; the node itself keeps its place.
			return level, parent.ID == node.ID
		}
		seen[parent.ID] = true
		level++
		current = parent
	}
	return level, false
}

// SearchTree keeps every node whose own title matches the query or that has
// any matching descendant, preserving the ancestor chain of a deep match.
// The result is a fresh tree; the input is not mutated.
func SearchTree(tree *models.Tree, query string) *models.Tree {
	q := strings.ToLower(query)

	folders := make([]*models.FolderTreeNode, 0)
	for _, node := range tree.Folders {
		if kept := searchFolder(node, q); kept != nil {
			folders = append(folders, kept)
		}
	}

	documents := make([]models.DocumentTreeNode, 0)
	for _, doc := range tree.Documents {
		if titleMatches(doc.Title, q) {
			documents = append(documents, doc)
		}
	}

	return &models.Tree{
		Folders:   folders,
		Documents: documents,
	}
}

// searchFolder returns a filtered copy of the node, or nil when neither the
// node nor any descendant matches.
func searchFolder(node *models.FolderTreeNode, q string) *models.FolderTreeNode {
	selfMatch := titleMatches(node.Title, q)

	childFolders := make([]*models.FolderTreeNode, 0)
	for _, child := range node.Folders {
		if kept := searchFolder(child, q); kept != nil {
			childFolders = append(childFolders, kept)
		}
	}

	childDocuments := make([]models.DocumentTreeNode, 0)
	for _, doc := range node.Documents {
		if titleMatches(doc.Title, q) {
			childDocuments = append(childDocuments, doc)
		}
	}

	if !selfMatch && len(childFolders) == 0 && len(childDocuments) == 0 {
		return nil
	}

	// A matching folder keeps its full contents; a non-matching ancestor
	// keeps only the matching branch.
	kept := *node
	if selfMatch {
		return &kept
	}
	kept.Folders = childFolders
	kept.Documents = childDocuments
	return &kept
}

func titleMatches(title, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(title), lowerQuery)
}
