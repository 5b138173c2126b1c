package searcher

import (
	"fmt"
	"montecarlo/game"
)

type nodeID int

const noNode nodeID = -1

// node is one vertex of the search tree. rewards holds the total reward
// credited to player, the player who chose action at the parent.
type node[A comparable] struct {
	action   A
	parent   nodeID
	player   game.Player
	visits   int
	rewards  float64
	children []nodeID
	index    map[A]nodeID
	untried  []A
	expanded bool // untried has been filled from the node's state
}

func (n *node[A]) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.rewards / float64(n.visits)
}

// tree stores nodes in a flat arena. Children own their subtrees through
// indices, parents are plain back references.
type tree[A comparable] struct {
	nodes []node[A]
	root  nodeID
}

// newTree creates a root-only tree. player is credited for the root, which
// is the player who made the last real move (game.NoPlayer at the start).
func newTree[A comparable](player game.Player) *tree[A] {
	return &tree[A]{
		nodes: []node[A]{{parent: noNode, player: player}},
		root:  0,
	}
}

// get returns a pointer into the arena, valid until the next addChild or reroot.
func (t *tree[A]) get(id nodeID) *node[A] {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("node %d out of range [0, %d)", id, len(t.nodes)))
	}
	return &t.nodes[id]
}

func (t *tree[A]) addChild(parent nodeID, action A, player game.Player) nodeID {
	if _, ok := t.child(parent, action); ok {
		panic(fmt.Sprintf("action %v expanded twice", action))
	}

	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node[A]{
		action: action,
		parent: parent,
		player: player,
	})

	p := t.get(parent)
	if p.index == nil {
		p.index = make(map[A]nodeID)
	}
	p.children = append(p.children, id)
	p.index[action] = id
	return id
}

// removeLeaf undoes the latest addChild. id must be the last node of the
// arena and have no children.
func (t *tree[A]) removeLeaf(id nodeID) {
	n := t.get(id)
	if int(id) != len(t.nodes)-1 || len(n.children) > 0 {
		panic(fmt.Sprintf("node %d is not the newest leaf", id))
	}

	p := t.get(n.parent)
	p.children = p.children[:len(p.children)-1]
	delete(p.index, n.action)
	t.nodes = t.nodes[:id]
}

func (t *tree[A]) child(parent nodeID, action A) (nodeID, bool) {
	id, ok := t.get(parent).index[action]
	return id, ok
}

func (t *tree[A]) size() int {
	return len(t.nodes)
}

// reroot makes id the root and compacts the arena to the subtree below it.
// Statistics of the kept nodes are unchanged.
func (t *tree[A]) reroot(id nodeID) {
	if id == t.root {
		return
	}

	remap := map[nodeID]nodeID{id: 0}
	kept := []nodeID{id}
	for i := 0; i < len(kept); i++ {
		for _, c := range t.get(kept[i]).children {
			remap[c] = nodeID(len(kept))
			kept = append(kept, c)
		}
	}

	nodes := make([]node[A], len(kept))
	for i, old := range kept {
		n := t.nodes[old]
		if i == 0 {
			n.parent = noNode
		} else {
			n.parent = remap[n.parent]
		}
		children := make([]nodeID, len(n.children))
		for j, c := range n.children {
			children[j] = remap[c]
		}
		n.children = children
		if n.index != nil {
			index := make(map[A]nodeID, len(n.index))
			for a, c := range n.index {
				index[a] = remap[c]
			}
			n.index = index
		}
		nodes[i] = n
	}

	t.nodes = nodes
	t.root = 0
}
