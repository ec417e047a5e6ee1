package tree

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fileorg/internal/planner"
)

const (
	branchPointer = "├── "
	lastPointer   = "└── "
	branchIndent  = "│   "
	lastIndent    = "    "
)

// Node is one path segment. Children keep insertion order.
type Node struct {
	Name     string
	Dir      bool
	children []*Node
	index    map[string]*Node
}

func newNode(name string, dir bool) *Node {
	return &Node{Name: name, Dir: dir}
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) child(name string, dir bool) *Node {
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	if existing, ok := n.index[name]; ok {
		if dir {
			existing.Dir = true
		}
		return existing
	}
	c := newNode(name, dir)
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

// Add inserts a slash separated relative path, creating intermediate
// directories.
func (n *Node) Add(rel string) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	current := n
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		current = current.child(part, i < len(parts)-1)
	}
}

// Simulate builds the tree a plan would produce under its root.
func Simulate(plan *planner.OperationPlan) *Node {
	root := newNode(plan.Root, true)
	for _, op := range plan.Operations {
		root.Add(plan.Relative(op))
	}
	return root
}

// FromDirectory reads the tree under root in lexical order. Dot-prefixed
// entries are skipped.
func FromDirectory(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	node := newNode(root, true)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			node.addDir(rel)
			return nil
		}
		node.Add(rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return node, nil
}

func (n *Node) addDir(rel string) {
	current := n
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		current = current.child(part, true)
	}
}

// Files returns every leaf file path relative to the node, sorted.
func (n *Node) Files() []string {
	var out []string
	var walk func(node *Node, prefix string)
	walk = func(node *Node, prefix string) {
		for _, c := range node.children {
			path := c.Name
			if prefix != "" {
				path = prefix + "/" + c.Name
			}
			if c.Dir {
				walk(c, path)
				continue
			}
			out = append(out, path)
		}
	}
	walk(n, "")
	sort.Strings(out)
	return out
}

// Render writes the node name followed by its descendants.
func (n *Node) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	name := n.Name
	if n.Dir && name != "" {
		name = strings.TrimRight(name, "/") + "/"
	}
	bw.WriteString(name)
	bw.WriteByte('\n')
	renderChildren(bw, n, "")
	return bw.Flush()
}

func renderChildren(w *bufio.Writer, n *Node, prefix string) {
	for i, c := range n.children {
		pointer, indent := branchPointer, branchIndent
		if i == len(n.children)-1 {
			pointer, indent = lastPointer, lastIndent
		}
		w.WriteString(prefix)
		w.WriteString(pointer)
		w.WriteString(c.Name)
		if c.Dir {
			w.WriteByte('/')
		}
		w.WriteByte('\n')
		if len(c.children) > 0 {
			renderChildren(w, c, prefix+indent)
		}
	}
}

// String renders the tree into a string.
func (n *Node) String() string {
	var b strings.Builder
	_ = n.Render(&b)
	return b.String()
}
