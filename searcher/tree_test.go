package searcher

import (
	"montecarlo/game"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeAddChild(t *testing.T) {
	t.Run("links parent and child", func(t *testing.T) {
		tr := newTree[step](game.NoPlayer)

		id := tr.addChild(tr.root, left, 0)

		got, ok := tr.child(tr.root, left)
		require.True(t, ok, "Child should be indexed by its action")
		require.Equal(t, id, got)
		require.Equal(t, tr.root, tr.get(id).parent, "Child should point back to the root")
		require.Equal(t, game.Player(0), tr.get(id).player, "Child should credit the deciding player")
		require.Equal(t, []nodeID{id}, tr.get(tr.root).children)
		require.Equal(t, 2, tr.size())
	})

	t.Run("panics when an action is expanded twice", func(t *testing.T) {
		tr := newTree[step](game.NoPlayer)
		tr.addChild(tr.root, left, 0)

		require.Panics(t, func() {
			tr.addChild(tr.root, left, 0)
		})
	})

	t.Run("panics on unknown node", func(t *testing.T) {
		tr := newTree[step](game.NoPlayer)

		require.Panics(t, func() {
			tr.get(5)
		})
	})
}

func TestTreeReroot(t *testing.T) {
	// root -> left, right; right -> left, right; left -> right
	build := func() (*tree[step], nodeID) {
		tr := newTree[step](game.NoPlayer)
		l := tr.addChild(tr.root, left, 0)
		r := tr.addChild(tr.root, right, 0)
		rl := tr.addChild(r, left, 1)
		rr := tr.addChild(r, right, 1)
		tr.addChild(l, right, 1)
		tr.get(r).visits, tr.get(r).rewards = 7, 3
		tr.get(rl).visits, tr.get(rl).rewards = 4, -2
		tr.get(rr).visits, tr.get(rr).rewards = 2, 1
		return tr, r
	}

	t.Run("keeps the subtree and its statistics", func(t *testing.T) {
		tr, r := build()

		tr.reroot(r)

		root := tr.get(tr.root)
		require.Equal(t, 3, tr.size(), "Only the subtree below the new root should remain")
		require.Equal(t, noNode, root.parent, "New root should be detached")
		require.Equal(t, 7, root.visits, "Root visits should be preserved")
		require.Equal(t, 3.0, root.rewards, "Root rewards should be preserved")

		rl, ok := tr.child(tr.root, left)
		require.True(t, ok)
		require.Equal(t, 4, tr.get(rl).visits)
		require.Equal(t, -2.0, tr.get(rl).rewards)
		require.Equal(t, tr.root, tr.get(rl).parent, "Parent indices should be remapped")

		rr, ok := tr.child(tr.root, right)
		require.True(t, ok)
		require.Equal(t, 2, tr.get(rr).visits)
		require.Equal(t, []nodeID{rl, rr}, root.children, "Child order should be kept")
	})

	t.Run("rerooting to the root is a no-op", func(t *testing.T) {
		tr, _ := build()

		tr.reroot(tr.root)

		require.Equal(t, 6, tr.size())
	})
}

func TestTreeRemoveLeaf(t *testing.T) {
	t.Run("undoes the latest child", func(t *testing.T) {
		tr := newTree[step](game.NoPlayer)
		l := tr.addChild(tr.root, left, 0)
		r := tr.addChild(tr.root, right, 0)

		tr.removeLeaf(r)

		_, ok := tr.child(tr.root, right)
		require.False(t, ok, "Removed action should no longer be indexed")
		require.Equal(t, []nodeID{l}, tr.get(tr.root).children)
		require.Equal(t, 2, tr.size())
		require.Equal(t, r, tr.addChild(tr.root, right, 0), "Action should be expandable again")
	})

	t.Run("panics on an older or inner node", func(t *testing.T) {
		tr := newTree[step](game.NoPlayer)
		l := tr.addChild(tr.root, left, 0)
		tr.addChild(tr.root, right, 0)

		require.Panics(t, func() { tr.removeLeaf(l) })
		require.Panics(t, func() { tr.removeLeaf(tr.root) })
	})
}
