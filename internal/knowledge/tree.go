package knowledge

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
)

var (
	ErrKnowledgePointNotFound = apperr.NotFound("KNOWLEDGE_POINT_NOT_FOUND", "knowledge point not found")
	ErrUnknownSubject         = apperr.Validation("UNKNOWN_SUBJECT", "subject code does not name a knowledge point")
)

// Tree is an in-memory view of the whole knowledge-point table, built from a
// single fetch. Nodes live in a slice; the maps index into it.
type Tree struct {
	nodes    []KnowledgePoint
	index    map[uuid.UUID]int
	children map[uuid.UUID][]uuid.UUID
	byCode   map[string]uuid.UUID
	roots    []uuid.UUID
}

// NewTree indexes points in the given order. Children keep that order, so
// callers wanting stable module ordering should sort before building.
func NewTree(points []KnowledgePoint) (*Tree, error) {
	t := &Tree{
		nodes:    make([]KnowledgePoint, len(points)),
		index:    make(map[uuid.UUID]int, len(points)),
		children: make(map[uuid.UUID][]uuid.UUID),
		byCode:   make(map[string]uuid.UUID),
	}
	copy(t.nodes, points)

	for i, kp := range t.nodes {
		if _, dup := t.index[kp.ID]; dup {
			return nil, fmt.Errorf("duplicate knowledge point %s", kp.ID)
		}
		t.index[kp.ID] = i
		if kp.Code != nil && *kp.Code != "" {
			t.byCode[*kp.Code] = kp.ID
		}
	}

	for _, kp := range t.nodes {
		if kp.ParentID == nil {
			t.roots = append(t.roots, kp.ID)
			continue
		}
		if _, ok := t.index[*kp.ParentID]; !ok {
			return nil, fmt.Errorf("knowledge point %s references missing parent %s", kp.ID, *kp.ParentID)
		}
		t.children[*kp.ParentID] = append(t.children[*kp.ParentID], kp.ID)
	}

	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkAcyclic walks down from every root; any node not reached sits on a
// parent cycle.
func (t *Tree) checkAcyclic() error {
	seen := make(map[uuid.UUID]bool, len(t.nodes))
	stack := append([]uuid.UUID(nil), t.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, t.children[id]...)
	}
	if len(seen) != len(t.nodes) {
		return fmt.Errorf("knowledge tree contains a cycle (%d of %d nodes reachable)", len(seen), len(t.nodes))
	}
	return nil
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Get(id uuid.UUID) (KnowledgePoint, bool) {
	i, ok := t.index[id]
	if !ok {
		return KnowledgePoint{}, false
	}
	return t.nodes[i], true
}

func (t *Tree) Has(id uuid.UUID) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Tree) ByCode(code string) (KnowledgePoint, bool) {
	id, ok := t.byCode[code]
	if !ok {
		return KnowledgePoint{}, false
	}
	return t.Get(id)
}

func (t *Tree) Children(id uuid.UUID) []KnowledgePoint {
	ids := t.children[id]
	out := make([]KnowledgePoint, 0, len(ids))
	for _, c := range ids {
		out = append(out, t.nodes[t.index[c]])
	}
	return out
}

func (t *Tree) IsRoot(id uuid.UUID) bool {
	kp, ok := t.Get(id)
	return ok && kp.ParentID == nil
}

// Descendants returns id and every node below it, breadth first.
func (t *Tree) Descendants(id uuid.UUID) []uuid.UUID {
	if !t.Has(id) {
		return nil
	}
	out := []uuid.UUID{id}
	for i := 0; i < len(out); i++ {
		out = append(out, t.children[out[i]]...)
	}
	return out
}

// Leaves returns the childless nodes of id's subtree. A childless id is its
// own leaf.
func (t *Tree) Leaves(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, d := range t.Descendants(id) {
		if len(t.children[d]) == 0 {
			out = append(out, d)
		}
	}
	return out
}

// Modules returns the direct children of the node coded subjectCode.
func (t *Tree) Modules(subjectCode string) ([]KnowledgePoint, error) {
	subject, ok := t.ByCode(subjectCode)
	if !ok {
		return nil, ErrUnknownSubject
	}
	return t.Children(subject.ID), nil
}

// Topics returns every non-root node. A forest made only of roots is
// returned whole so that flat topic lists still plan.
func (t *Tree) Topics() []KnowledgePoint {
	out := make([]KnowledgePoint, 0, len(t.nodes))
	for _, kp := range t.nodes {
		if kp.ParentID != nil {
			out = append(out, kp)
		}
	}
	if len(out) == 0 {
		out = append(out, t.nodes...)
	}
	return out
}

// ModuleOf returns the ancestor of id that sits directly below a root, or
// id itself when it already does.
func (t *Tree) ModuleOf(id uuid.UUID) (KnowledgePoint, bool) {
	kp, ok := t.Get(id)
	if !ok {
		return KnowledgePoint{}, false
	}
	for kp.ParentID != nil {
		parent, _ := t.Get(*kp.ParentID)
		if parent.ParentID == nil {
			return kp, true
		}
		kp = parent
	}
	return KnowledgePoint{}, false
}
