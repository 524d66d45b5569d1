package tree

// Flatten returns the file leaves of roots in depth-first pre-order, visiting
// children in their stored order. Folders are not yielded.
func Flatten(roots []*Node) []*Node {
	var files []*Node
	stack := pushReversed(make([]*Node, 0, len(roots)), roots)
	for len(stack) > 0 {
		currentNode := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if currentNode == nil {
			continue
		}
		if currentNode.Kind == KindFile {
			files = append(files, currentNode)
			continue
		}
		stack = pushReversed(stack, currentNode.Children)
	}
	return files
}

func pushReversed(stack []*Node, nodes []*Node) []*Node {
	for nodePosition := len(nodes) - 1; nodePosition >= 0; nodePosition-- {
		stack = append(stack, nodes[nodePosition])
	}
	return stack
}

// VisitFunc receives each node with its depth, zero for roots.
type VisitFunc func(node *Node, depth int) error

type walkFrame struct {
	node  *Node
	depth int
}

// Walk visits folders and files in the same order Flatten yields files.
// Walking stops at the first error returned by visit.
func Walk(roots []*Node, visit VisitFunc) error {
	stack := make([]walkFrame, 0, len(roots))
	for nodePosition := len(roots) - 1; nodePosition >= 0; nodePosition-- {
		stack = append(stack, walkFrame{node: roots[nodePosition]})
	}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.node == nil {
			continue
		}
		if visitError := visit(frame.node, frame.depth); visitError != nil {
			return visitError
		}
		children := frame.node.Children
		for childPosition := len(children) - 1; childPosition >= 0; childPosition-- {
			stack = append(stack, walkFrame{node: children[childPosition], depth: frame.depth + 1})
		}
	}
	return nil
}
