package types

// TreeNodeKind defines the kind of node in the test tree
type TreeNodeKind string

const (
	NodeKindRoot     TreeNodeKind = "root"     // Tree root container
	NodeKindProject  TreeNodeKind = "project"  // Per-project suite (multi-project mode only)
	NodeKindFile     TreeNodeKind = "file"     // Source-file suite
	NodeKindFunction TreeNodeKind = "function" // Parameterized test function acting as a suite
	NodeKindTest     TreeNodeKind = "test"     // Individual test case
)

// TreeNode represents a node in the hierarchical test tree. Suites and tests
// share one node type; Kind tells them apart.
type TreeNode struct {
	// Node identity and metadata
	ID         string       // Unique identifier within the whole tree
	Label      string       // Display name
	Kind       TreeNodeKind // Kind of node
	Path       string       // Absolute file path, empty for root and project nodes
	Line       int          // 0-based source line, meaningful for file/function/test nodes
	ProjectKey string       // Owning project key, empty for the root

	// Hierarchy
	Children []*TreeNode // Child nodes, in scan order
	Parent   *TreeNode   // Parent node (nil for root)
}

// IsSuite returns true if this node groups other nodes
func (n *TreeNode) IsSuite() bool {
	return n.Kind != NodeKindTest
}

// AddChild appends a child and wires its parent pointer
func (n *TreeNode) AddChild(child *TreeNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the subtree depth-first, calling the visitor for each node.
// Traversal below a node stops when the visitor returns false.
func (n *TreeNode) Walk(visitor func(*TreeNode) bool) {
	if !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// FindByID returns the first node in depth-first order whose identifier
// equals id, or nil when no such node exists.
func (n *TreeNode) FindByID(id string) *TreeNode {
	var found *TreeNode
	n.Walk(func(node *TreeNode) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindParent returns the immediate suite ancestor of the node with the given
// identifier, or nil when the node does not exist or is the root.
func (n *TreeNode) FindParent(id string) *TreeNode {
	node := n.FindByID(id)
	if node == nil {
		return nil
	}
	return node.Parent
}

// Tests returns all test leaves beneath this node, in scan order.
func (n *TreeNode) Tests() []*TreeNode {
	var tests []*TreeNode
	n.Walk(func(node *TreeNode) bool {
		if node.Kind == NodeKindTest {
			tests = append(tests, node)
		}
		return true
	})
	return tests
}

// ResolveRunTargets maps requested identifiers onto the suites to execute.
// A test is replaced by its parent suite: the external tool always re-runs a
// whole containing file, never a single function in isolation. The root is
// replaced by its direct children. The result is de-duplicated preserving
// first-seen order; unknown identifiers are dropped.
func ResolveRunTargets(root *TreeNode, ids []string) []*TreeNode {
	var suites []*TreeNode
	seen := make(map[string]bool)

	add := func(node *TreeNode) {
		if node == nil || seen[node.ID] {
			return
		}
		seen[node.ID] = true
		suites = append(suites, node)
	}

	for _, id := range ids {
		node := root.FindByID(id)
		if node == nil {
			continue
		}
		if !node.IsSuite() {
			node = node.Parent
		}
		if node == root {
			for _, child := range root.Children {
				add(child)
			}
			continue
		}
		add(node)
	}
	return suites
}
