package services

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
)

// StructureTreeNode is a structure row with its ordered children and the
// resources attached to it.
type StructureTreeNode struct {
	types.StructureNode
	Children  []*StructureTreeNode `json:"children"`
	Resources []*types.Resource    `json:"resources"`
}

// BuildStructureTree assembles flat rows into a forest. Rows whose parent is
// not among the rows are dropped. Siblings are ordered by order_index, ties
// keep row order.
func BuildStructureTree(rows []*types.StructureNode) []*StructureTreeNode {
	byID := make(map[uuid.UUID]*StructureTreeNode, len(rows))
	ordered := make([]*StructureTreeNode, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if _, dup := byID[row.ID]; dup {
			continue
		}
		n := &StructureTreeNode{
			StructureNode: *row,
			Children:      []*StructureTreeNode{},
			Resources:     []*types.Resource{},
		}
		byID[row.ID] = n
		ordered = append(ordered, n)
	}

	roots := []*StructureTreeNode{}
	for _, n := range ordered {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok || parent == n {
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortStructureNodes(roots)
	return roots
}

func sortStructureNodes(nodes []*StructureTreeNode) {
	slices.SortStableFunc(nodes, func(a, b *StructureTreeNode) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	for _, n := range nodes {
		sortStructureNodes(n.Children)
	}
}

// AttachResources appends each resource to the node matching its structure_id,
// keeping the resources' input order. Resources for unknown nodes are ignored.
func AttachResources(tree []*StructureTreeNode, resources []*types.Resource) []*StructureTreeNode {
	byID := map[uuid.UUID]*StructureTreeNode{}
	WalkStructureTree(tree, func(n *StructureTreeNode) {
		byID[n.ID] = n
	})
	for _, r := range resources {
		if r == nil {
			continue
		}
		if n, ok := byID[r.StructureID]; ok {
			n.Resources = append(n.Resources, r)
		}
	}
	return tree
}

// WalkStructureTree visits nodes depth-first in sibling order.
func WalkStructureTree(tree []*StructureTreeNode, fn func(n *StructureTreeNode)) {
	for _, n := range tree {
		if n == nil {
			continue
		}
		fn(n)
		WalkStructureTree(n.Children, fn)
	}
}

func CountStructureNodes(tree []*StructureTreeNode) int {
	total := 0
	WalkStructureTree(tree, func(*StructureTreeNode) { total++ })
	return total
}

// subtreeIDs returns rootID and every row that descends from it.
func subtreeIDs(rows []*types.StructureNode, rootID uuid.UUID) []uuid.UUID {
	children := map[uuid.UUID][]uuid.UUID{}
	for _, r := range rows {
		if r != nil && r.ParentID != nil {
			children[*r.ParentID] = append(children[*r.ParentID], r.ID)
		}
	}
	seen := map[uuid.UUID]bool{rootID: true}
	out := []uuid.UUID{rootID}
	for i := 0; i < len(out); i++ {
		for _, c := range children[out[i]] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
