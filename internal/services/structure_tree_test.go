package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
)

func node(courseID uuid.UUID, parent *types.StructureNode, name string, order int) *types.StructureNode {
	n := &types.StructureNode{ID: uuid.New(), CourseID: courseID, Name: name, OrderIndex: order}
	if parent != nil {
		pid := parent.ID
		n.ParentID = &pid
	}
	return n
}

func names(nodes []*StructureTreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildStructureTreeOrdersSiblings(t *testing.T) {
	courseID := uuid.New()
	b := node(courseID, nil, "B", 2)
	a := node(courseID, nil, "A", 1)
	tie1 := node(courseID, a, "tie-first", 1)
	tie2 := node(courseID, a, "tie-second", 1)
	last := node(courseID, a, "last", 5)

	tree := BuildStructureTree([]*types.StructureNode{b, last, tie1, a, tie2})
	if got := names(tree); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("roots=%v", got)
	}
	got := names(tree[0].Children)
	want := []string{"tie-first", "tie-second", "last"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children=%v want %v", got, want)
		}
	}
	if tree[1].Children == nil || tree[1].Resources == nil {
		t.Fatalf("leaf slices must be non-nil for JSON")
	}
}

func TestBuildStructureTreeDropsOrphans(t *testing.T) {
	courseID := uuid.New()
	root := node(courseID, nil, "root", 1)
	ghost := &types.StructureNode{ID: uuid.New()}
	orphan := node(courseID, ghost, "orphan", 1)
	orphanChild := node(courseID, orphan, "orphan-child", 1)
	self := node(courseID, nil, "self", 2)
	self.ParentID = &self.ID

	tree := BuildStructureTree([]*types.StructureNode{root, orphan, orphanChild, self, root, nil})
	if CountStructureNodes(tree) != 1 {
		t.Fatalf("expected only the root, got %v", names(tree))
	}
	if empty := BuildStructureTree(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil forest")
	}
}

func TestAttachResourcesKeepsOrder(t *testing.T) {
	courseID := uuid.New()
	root := node(courseID, nil, "root", 1)
	child := node(courseID, root, "child", 1)
	tree := BuildStructureTree([]*types.StructureNode{root, child})

	r1 := &types.Resource{ID: uuid.New(), StructureID: child.ID, Title: "first"}
	r2 := &types.Resource{ID: uuid.New(), StructureID: child.ID, Title: "second"}
	stray := &types.Resource{ID: uuid.New(), StructureID: uuid.New()}
	AttachResources(tree, []*types.Resource{r1, stray, nil, r2})

	got := tree[0].Children[0].Resources
	if len(got) != 2 || got[0].ID != r1.ID || got[1].ID != r2.ID {
		t.Fatalf("unexpected resources: %d", len(got))
	}
	if len(tree[0].Resources) != 0 {
		t.Fatalf("root should have no resources")
	}
}

func TestSubtreeIDs(t *testing.T) {
	courseID := uuid.New()
	root := node(courseID, nil, "root", 1)
	child := node(courseID, root, "child", 1)
	grand := node(courseID, child, "grand", 1)
	sibling := node(courseID, nil, "sibling", 2)

	ids := subtreeIDs([]*types.StructureNode{grand, sibling, child, root}, root.ID)
	if len(ids) != 3 || ids[0] != root.ID {
		t.Fatalf("unexpected subtree: %v", ids)
	}
	for _, id := range ids {
		if id == sibling.ID {
			t.Fatalf("sibling included in subtree")
		}
	}
}
