package searcher

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

const graphName = "mcts"

// Dot renders the tree down to maxDepth plies in Graphviz DOT format. Nodes
// are labelled with their action, visits and mean credited reward.
func (m *MCTS[A]) Dot(maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", errors.Wrap(err, "failed to name graph")
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.Wrap(err, "failed to direct graph")
	}

	root := m.tree.get(m.tree.root)
	label := fmt.Sprintf("root\n%d visits", root.visits)
	if err := g.AddNode(graphName, dotName(m.tree.root), map[string]string{"label": fmt.Sprintf("%q", label)}); err != nil {
		return "", errors.Wrap(err, "failed to add root")
	}

	type entry struct {
		id    nodeID
		depth int
	}
	queue := []entry{{m.tree.root, 0}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e.depth >= maxDepth {
			continue
		}
		for _, c := range m.tree.get(e.id).children {
			child := m.tree.get(c)
			label := fmt.Sprintf("%v\n%d visits\nmean %.3f", child.action, child.visits, child.mean())
			if err := g.AddNode(graphName, dotName(c), map[string]string{"label": fmt.Sprintf("%q", label)}); err != nil {
				return "", errors.Wrapf(err, "failed to add node %d", c)
			}
			if err := g.AddEdge(dotName(e.id), dotName(c), true, nil); err != nil {
				return "", errors.Wrapf(err, "failed to add edge %d -> %d", e.id, c)
			}
			queue = append(queue, entry{c, e.depth + 1})
		}
	}
	return g.String(), nil
}

func dotName(id nodeID) string {
	return fmt.Sprintf("n%d", id)
}
