package sapling

import (
	"strconv"
)

// DataNode is the externally owned tree a visualisation mirrors. Sapling
// never mutates Parent or Children; it only reads them and stores one node
// shape per visualisation UID in the node's shape slots.
//
// Implementations must return a nil interface (not a typed nil) from Parent
// at the root, and must be comparable (pointer types are).
type DataNode interface {
	Parent() DataNode
	Children() []DataNode
	Depth() int

	// Shape returns the node shape bound for uid, or nil.
	Shape(uid UID) *NodeShape
	// AddShape binds s for uid, replacing any previous binding.
	AddShape(uid UID, s *NodeShape)
	// RemoveShape drops the binding for uid.
	RemoveShape(uid UID)
	// Shapes returns every bound node shape, across visualisations.
	Shapes() []*NodeShape
}

// TreeNode is an in-memory DataNode.
type TreeNode struct {
	label    string
	parent   *TreeNode
	children []DataNode
	depth    int

	shapes map[UID]*NodeShape
	order  []UID
}

// NewTreeNode creates a detached node.
func NewTreeNode(label string) *TreeNode {
	return &TreeNode{label: label}
}

// Label returns the node's label.
func (n *TreeNode) Label() string { return n.label }

// String implements fmt.Stringer.
func (n *TreeNode) String() string { return n.label }

// Parent implements DataNode.
func (n *TreeNode) Parent() DataNode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children implements DataNode. The returned slice must not be modified.
func (n *TreeNode) Children() []DataNode { return n.children }

// Depth implements DataNode. The root has depth 0.
func (n *TreeNode) Depth() int { return n.depth }

// AddChild appends child, detaching it from its previous parent first.
// Visualisations showing n must be told through
// [NodeShape.NodeChildrenChanged].
func (n *TreeNode) AddChild(child *TreeNode) *TreeNode {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	child.setDepth(n.depth + 1)
	return n
}

// RemoveChild detaches child. Reports whether it was a child of n.
func (n *TreeNode) RemoveChild(child *TreeNode) bool {
	for i, c := range n.children {
		if c == DataNode(child) {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.parent = nil
			child.setDepth(0)
			return true
		}
	}
	return false
}

func (n *TreeNode) setDepth(d int) {
	n.depth = d
	for _, c := range n.children {
		c.(*TreeNode).setDepth(d + 1)
	}
}

// Shape implements DataNode.
func (n *TreeNode) Shape(uid UID) *NodeShape {
	return n.shapes[uid]
}

// AddShape implements DataNode.
func (n *TreeNode) AddShape(uid UID, s *NodeShape) {
	if n.shapes == nil {
		n.shapes = make(map[UID]*NodeShape)
	}
	if _, ok := n.shapes[uid]; !ok {
		n.order = append(n.order, uid)
	}
	n.shapes[uid] = s
}

// RemoveShape implements DataNode.
func (n *TreeNode) RemoveShape(uid UID) {
	if _, ok := n.shapes[uid]; !ok {
		return
	}
	delete(n.shapes, uid)
	for i, u := range n.order {
		if u == uid {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Shapes implements DataNode. Shapes are returned in binding order.
func (n *TreeNode) Shapes() []*NodeShape {
	out := make([]*NodeShape, 0, len(n.order))
	for _, uid := range n.order {
		out = append(out, n.shapes[uid])
	}
	return out
}

// GenerateTree builds a complete tree with the given branching factor and
// number of levels below the root. Labels are dotted paths: "0", "0.1",
// "0.1.2".
func GenerateTree(branching, depth int) *TreeNode {
	root := NewTreeNode("0")
	generate(root, branching, depth)
	return root
}

func generate(n *TreeNode, branching, depth int) {
	if depth <= 0 {
		return
	}
	for i := 0; i < branching; i++ {
		c := NewTreeNode(n.label + "." + strconv.Itoa(i))
		n.AddChild(c)
		generate(c, branching, depth-1)
	}
}
