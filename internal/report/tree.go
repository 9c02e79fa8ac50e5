package report

import (
	"sort"
	"strings"
)

type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

func (n *treeNode) insert(parts []string) {
	if len(parts) == 0 {
		return
	}
	child, ok := n.children[parts[0]]
	if !ok {
		child = newTreeNode()
		n.children[parts[0]] = child
	}
	child.insert(parts[1:])
}

func (n *treeNode) sortedNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderTree draws the directory structure with box-drawing connectors.
// Directories carry a trailing slash.
func renderTree(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	root := newTreeNode()
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	for _, p := range sorted {
		root.insert(strings.Split(p, "/"))
	}

	var lines []string
	for _, name := range root.sortedNames() {
		child := root.children[name]
		if len(child.children) > 0 {
			lines = append(lines, name+"/")
			renderBranch(child, "", &lines)
		} else {
			lines = append(lines, name)
		}
	}
	return strings.Join(lines, "\n")
}

func renderBranch(node *treeNode, prefix string, lines *[]string) {
	names := node.sortedNames()
	for i, name := range names {
		last := i == len(names)-1
		connector := "├── "
		extension := "│   "
		if last {
			connector = "└── "
			extension = "    "
		}

		child := node.children[name]
		suffix := ""
		if len(child.children) > 0 {
			suffix = "/"
		}
		*lines = append(*lines, prefix+connector+name+suffix)
		if len(child.children) > 0 {
			renderBranch(child, prefix+extension, lines)
		}
	}
}
