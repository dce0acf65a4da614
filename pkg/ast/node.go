// Package ast provides a generic syntax tree node that carries an annotation
// alongside the node itself. Front ends use the annotation slot for whatever
// later passes attach: inferred types, resolved scopes, constant values.
package ast

// Node pairs a tree node of type T with an annotation of type A.
type Node[T, A any] struct {
	item       T
	annotation A
}

// New wraps item with the zero annotation.
func New[T, A any](item T) *Node[T, A] {
	return &Node[T, A]{item: item}
}

// NewAnnotated wraps item with an explicit annotation.
func NewAnnotated[T, A any](item T, annotation A) *Node[T, A] {
	return &Node[T, A]{item: item, annotation: annotation}
}

func (n *Node[T, A]) Item() T            { return n.item }
func (n *Node[T, A]) ItemPtr() *T        { return &n.item }
func (n *Node[T, A]) Annotation() A      { return n.annotation }
func (n *Node[T, A]) AnnotationPtr() *A  { return &n.annotation }
func (n *Node[T, A]) SetAnnotation(a A)  { n.annotation = a }
func (n *Node[T, A]) Elems() (T, A)      { return n.item, n.annotation }
func (n *Node[T, A]) ElemsPtr() (*T, *A) { return &n.item, &n.annotation }
