package toc

import "github.com/l-e-x/leos-sub016/internal/validator"

// Insert adds n as a leaf under parentID at position. An empty parentID
// inserts at the top level; Append or an out-of-range position places it
// last. Any children listed on n are ignored.
//
// The placement is validated before anything changes; on error the tree is
// untouched.
func (t *Tree) Insert(n Node, parentID string, position int) error {
	const op = "insert"
	if n.ID == "" {
		return &UnknownNodeError{Op: op, ID: n.ID}
	}
	if _, dup := t.nodes[n.ID]; dup {
		return &DuplicateNodeError{Op: op, ID: n.ID}
	}
	if parentID != "" && !t.Has(parentID) {
		return &UnknownNodeError{Op: op, ID: parentID}
	}
	if err := t.checkPlacement(op, n.ID, n.Type, parentID, position); err != nil {
		return err
	}

	node := &Node{
		ID:       n.ID,
		Type:     n.Type,
		Number:   n.Number,
		Heading:  n.Heading,
		ParentID: parentID,
		Position: -1,
	}
	t.nodes[node.ID] = node
	t.setSiblingIDs(parentID, insertAt(t.siblingIDs(parentID), node.ID, position))
	t.touch(node.ID, parentID)
	t.renumber(parentID)
	return nil
}

// Move re-parents id under newParentID at newPosition, which indexes the
// destination siblings after id has been taken out. Moving a node under
// itself or one of its descendants fails with a CycleViolation.
//
// The placement is validated before anything changes; on error the tree is
// untouched.
func (t *Tree) Move(id, newParentID string, newPosition int) error {
	const op = "move"
	n, ok := t.nodes[id]
	if !ok {
		return &UnknownNodeError{Op: op, ID: id}
	}
	if newParentID != "" {
		if !t.Has(newParentID) {
			return &UnknownNodeError{Op: op, ID: newParentID}
		}
		if newParentID == id {
			return &CycleViolation{Op: op, ID: id, ParentID: newParentID}
		}
		ancestors, err := t.AncestorIDs(newParentID)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a == id {
				return &CycleViolation{Op: op, ID: id, ParentID: newParentID}
			}
		}
	}
	if err := t.checkPlacement(op, id, n.Type, newParentID, newPosition); err != nil {
		return err
	}

	oldParentID := n.ParentID
	oldIndex := indexOf(t.siblingIDs(oldParentID), id)
	t.setSiblingIDs(oldParentID, removeID(t.siblingIDs(oldParentID), id))
	n.ParentID = newParentID
	t.setSiblingIDs(newParentID, insertAt(t.siblingIDs(newParentID), id, newPosition))

	if oldParentID == newParentID && indexOf(t.siblingIDs(newParentID), id) == oldIndex {
		return nil
	}
	t.touch(id, oldParentID, newParentID)
	t.renumber(oldParentID)
	t.renumber(newParentID)
	return nil
}

// Remove deletes id and its whole subtree.
func (t *Tree) Remove(id string) error {
	n, ok := t.nodes[id]
	if !ok {
		return &UnknownNodeError{Op: "remove", ID: id}
	}

	parentID := n.ParentID
	var doomed []string
	t.walk([]string{id}, func(d *Node) { doomed = append(doomed, d.ID) })

	t.setSiblingIDs(parentID, removeID(t.siblingIDs(parentID), id))
	for _, d := range doomed {
		delete(t.nodes, d)
	}

	t.touch(doomed...)
	t.touch(parentID)
	t.renumber(parentID)
	return nil
}

// SetNumber replaces the explicit number text of id. Structure is unaffected.
func (t *Tree) SetNumber(id, number string) error {
	n, ok := t.nodes[id]
	if !ok {
		return &UnknownNodeError{Op: "renumber", ID: id}
	}
	if n.Number != number {
		n.Number = number
		t.touch(id)
	}
	return nil
}

func (t *Tree) checkPlacement(op, id, typ, parentID string, position int) error {
	parentType := t.parentType(parentID)
	if err := t.v.Check(typ, validator.Target{Type: parentType}, validator.Into); err != nil {
		return &StructuralViolation{
			Op:         op,
			ID:         id,
			Type:       typ,
			ParentID:   parentID,
			ParentType: parentType,
			Position:   position,
			Err:        err,
		}
	}
	return nil
}

// insertAt returns a new slice with id inserted at position, clamped to the
// valid range.
func insertAt(ids []string, id string, position int) []string {
	if position < 0 || position > len(ids) {
		position = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:position]...)
	out = append(out, id)
	return append(out, ids[position:]...)
}

func indexOf(ids []string, id string) int {
	for i, s := range ids {
		if s == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, s := range ids {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}
