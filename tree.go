package square2d

import "fmt"

// TreeConstructorFn creates a fresh Tree to commit to one axis of a square.
// The axis and index identify which row or column the tree is built over.
type TreeConstructorFn = func(axis Axis, index uint) Tree

// Tree wraps Merkle tree implementations used to commit to square axes.
// Leaves must be pushed in ascending position order; the root is
// order-sensitive. Root finalizes the tree.
type Tree interface {
	Push(data []byte) error
	Root() ([]byte, error)
}

// trees keeps track of registered tree constructors for lookup by name.
// The keys of this map should be kebab cased. E.g. "default-tree"
var trees = make(map[string]TreeConstructorFn)

// RegisterTree registers treeConstructor under treeName. It errors if the
// name is already taken.
func RegisterTree(treeName string, treeConstructor TreeConstructorFn) error {
	if trees[treeName] != nil {
		return fmt.Errorf("%s already registered", treeName)
	}
	trees[treeName] = treeConstructor

	return nil
}

// TreeFn returns the tree constructor registered under treeName.
func TreeFn(treeName string) (TreeConstructorFn, error) {
	treeFn, ok := trees[treeName]
	if !ok {
		return nil, fmt.Errorf("%s not registered yet", treeName)
	}
	return treeFn, nil
}
