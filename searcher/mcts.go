package searcher

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrNoMoves        = errors.New("no moves to recommend")
	ErrInvalidConfig  = errors.New("invalid search configuration")
	ErrNoLegalActions = errors.New("non-terminal state has no legal actions")
)

type Option func(c *Config)

// Config holds the construction parameters of an MCTS. A search stops at
// whichever of Duration and Iterations runs out first; at least one must be
// set.
type Config struct {
	Explore    float64
	Duration   time.Duration
	Iterations int
	Rand       *rand.Rand
	Metrics    bool
	LastPlayer game.Player // Player credited at the initial root
}

func WithExplore(explore float64) Option {
	return func(c *Config) {
		c.Explore = explore
	}
}

func WithDuration(duration time.Duration) Option {
	return func(c *Config) {
		c.Duration = duration
	}
}

func WithIterations(iterations int) Option {
	return func(c *Config) {
		c.Iterations = iterations
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Rand = rand.New(rand.NewSource(seed))
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *Config) {
		if r != nil {
			c.Rand = r
		}
	}
}

func WithMetrics() Option {
	return func(c *Config) {
		c.Metrics = true
	}
}

// WithLastPlayer sets the player who moved into the initial state, for
// searches that start mid-game.
func WithLastPlayer(player game.Player) Option {
	return func(c *Config) {
		c.LastPlayer = player
	}
}

func (c Config) validate() error {
	if c.Explore <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "exploration constant must be positive, got %v", c.Explore)
	}
	if c.Duration < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative duration %v", c.Duration)
	}
	if c.Iterations < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative iterations %d", c.Iterations)
	}
	if c.Duration == 0 && c.Iterations == 0 {
		return errors.Wrap(ErrInvalidConfig, "must specify search iterations or duration")
	}
	return nil
}

// MCTS searches the game from the current real position and keeps its tree
// across real moves. It is not safe for concurrent use.
type MCTS[A comparable] struct {
	explore    float64
	duration   time.Duration
	iterations int
	rand       *rand.Rand
	policy     RolloutPolicy[A]
	metrics    metrics.Collector
	state      game.State[A]
	tree       *tree[A]
	last       metrics.SearchMetric
}

func NewMCTS[A comparable](state game.State[A], options ...Option) (*MCTS[A], error) {
	if state == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil state")
	}

	c := Config{ // Default values
		Explore:    DefaultExplore,
		LastPlayer: game.NoPlayer,
	}
	for _, option := range options {
		option(&c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	m := &MCTS[A]{
		explore:    c.Explore,
		duration:   c.Duration,
		iterations: c.Iterations,
		rand:       c.Rand,
		policy:     UniformRollout[A],
		metrics:    metrics.NewDummyCollector(),
		state:      state,
		tree:       newTree[A](c.LastPlayer),
	}
	if c.Metrics {
		m.metrics = metrics.NewCollector()
	}
	return m, nil
}

func (m *MCTS[A]) SetRolloutPolicy(policy RolloutPolicy[A]) {
	if policy == nil {
		policy = UniformRollout[A]
	}
	m.policy = policy
}

// State returns the current real position.
func (m *MCTS[A]) State() game.State[A] {
	return m.state
}

// Search runs episodes until the budget is spent or ctx is done. A search
// from a finished game runs no episodes. Errors from the game abort the
// search; the statistics of completed episodes are kept.
func (m *MCTS[A]) Search(ctx context.Context) (metrics.SearchMetric, error) {
	m.metrics.Start()
	start := time.Now()

	episodes := 0
	for !m.state.IsTerminal() {
		if m.iterations > 0 && episodes >= m.iterations {
			break
		}
		if m.duration > 0 && time.Since(start) >= m.duration {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if err := m.simulate(); err != nil {
			m.last = m.metrics.Complete(m.tree.size(), m.tree.get(m.tree.root).visits)
			return m.last, errors.WithMessagef(err, "episode %d", episodes+1)
		}
		m.metrics.AddEpisode()
		episodes++
	}

	m.last = m.metrics.Complete(m.tree.size(), m.tree.get(m.tree.root).visits)
	log.Debug().Msgf("search completed %d episodes in %v, tree has %d nodes", episodes, time.Since(start), m.tree.size())
	return m.last, nil
}

// Statistics returns the metrics of the last search.
func (m *MCTS[A]) Statistics() metrics.SearchMetric {
	return m.last
}

// simulate runs one episode. A failed episode leaves the tree as it found it.
func (m *MCTS[A]) simulate() error {
	leaf, state, added, err := m.selectThenExpand()
	if err != nil {
		return err
	}
	rewards, err := m.rollout(state)
	if err != nil {
		if added {
			m.unexpand(leaf)
		}
		return err
	}
	m.backup(leaf, rewards)
	return nil
}

// selectThenExpand descends by UCT through fully expanded nodes, then
// expands one untried action. It returns the node to simulate from, its
// state and whether the node was just added.
func (m *MCTS[A]) selectThenExpand() (nodeID, game.State[A], bool, error) {
	id := m.tree.root
	state := m.state
	for {
		if state.IsTerminal() {
			return id, state, false, nil
		}

		n := m.tree.get(id)
		if !n.expanded {
			n.untried = state.LegalActions()
			n.expanded = true
			if len(n.untried) == 0 {
				return noNode, nil, false, errors.WithStack(ErrNoLegalActions)
			}
		}
		if len(n.untried) > 0 {
			child, next, err := m.expand(id, state)
			return child, next, err == nil, err
		}

		child := m.pickChild(id)
		next, err := state.Play(m.tree.get(child).action)
		if err != nil {
			return noNode, nil, false, errors.WithMessage(err, "selection")
		}
		id, state = child, next
		if m.tree.get(id).visits == 0 { // Leaf that has not been simulated yet
			return id, state, false, nil
		}
	}
}

// expand removes a random untried action of id and adds its child.
func (m *MCTS[A]) expand(id nodeID, state game.State[A]) (nodeID, game.State[A], error) {
	n := m.tree.get(id)
	i := m.rand.Intn(len(n.untried))
	action := n.untried[i]

	next, err := state.Play(action)
	if err != nil {
		return noNode, nil, errors.WithMessage(err, "expansion")
	}

	last := len(n.untried) - 1
	n.untried[i] = n.untried[last]
	n.untried = n.untried[:last]

	child := m.tree.addChild(id, action, state.Player())
	return child, next, nil
}

// unexpand removes a child that was never backed up and returns its action
// to the parent's untried actions.
func (m *MCTS[A]) unexpand(id nodeID) {
	n := m.tree.get(id)
	action, parent := n.action, n.parent
	m.tree.removeLeaf(id)
	p := m.tree.get(parent)
	p.untried = append(p.untried, action)
}

func (m *MCTS[A]) pickChild(id nodeID) nodeID {
	n := m.tree.get(id)
	if len(n.children) == 0 {
		panic("fully expanded node has no children")
	}
	if n.visits == 0 {
		panic("node has children but no visits")
	}

	policy := newUCT(m.explore, n.visits)
	scores := make([]float64, len(n.children))
	for i, c := range n.children {
		child := m.tree.get(c)
		scores[i] = policy.evaluate(child.rewards, child.visits)
	}
	return n.children[argmax(scores, m.rand)]
}

// backup credits every node from leaf to the root with the reward of the
// player who chose it.
func (m *MCTS[A]) backup(leaf nodeID, rewards game.Rewards) {
	id := leaf
	for id != noNode {
		n := m.tree.get(id)
		if n.parent == noNode && id != m.tree.root {
			panic("detached node in backup")
		}
		n.visits++
		n.rewards += rewards[n.player]
		id = n.parent
	}
}

// BestMove returns the most visited action at the root, breaking ties at
// random.
func (m *MCTS[A]) BestMove() (A, error) {
	var none A
	if m.state.IsTerminal() {
		return none, errors.Wrap(ErrNoMoves, "game is over")
	}
	root := m.tree.get(m.tree.root)
	if len(root.children) == 0 {
		return none, errors.Wrap(ErrNoMoves, "root has not been expanded")
	}

	visits := make([]float64, len(root.children))
	for i, c := range root.children {
		visits[i] = float64(m.tree.get(c).visits)
	}
	return m.tree.get(root.children[argmax(visits, m.rand)]).action, nil
}

// Play advances the real position by action. The subtree of action becomes
// the new tree if it was explored, otherwise the tree starts over.
func (m *MCTS[A]) Play(action A) error {
	next, err := m.state.Play(action)
	if err != nil {
		return errors.WithMessage(err, "play")
	}

	if child, ok := m.tree.child(m.tree.root, action); ok {
		m.tree.reroot(child)
		m.metrics.SetTreeReset(false)
	} else {
		log.Debug().Msgf("action %v was never expanded, resetting tree", action)
		m.tree = newTree[A](m.state.Player())
		m.metrics.SetTreeReset(true)
	}
	m.state = next
	return nil
}

type ChildStat[A comparable] struct {
	Action A
	Visits int
	Mean   float64 // Mean reward of the player choosing Action
}

// Children returns the statistics of the root's children in expansion order.
func (m *MCTS[A]) Children() []ChildStat[A] {
	root := m.tree.get(m.tree.root)
	stats := make([]ChildStat[A], 0, len(root.children))
	for _, c := range root.children {
		child := m.tree.get(c)
		stats = append(stats, ChildStat[A]{Action: child.action, Visits: child.visits, Mean: child.mean()})
	}
	return stats
}

// Policy maps each explored root action to its visit count.
func (m *MCTS[A]) Policy() map[A]int {
	root := m.tree.get(m.tree.root)
	policy := make(map[A]int, len(root.children))
	for _, c := range root.children {
		child := m.tree.get(c)
		policy[child.action] = child.visits
	}
	return policy
}

// PrincipalVariation follows the most visited child from the root. The first
// child wins ties so that repeated calls agree.
func (m *MCTS[A]) PrincipalVariation() []A {
	pv := []A{}
	n := m.tree.get(m.tree.root)
	for len(n.children) > 0 {
		best := noNode
		for _, c := range n.children {
			if v := m.tree.get(c).visits; v > 0 && (best == noNode || v > m.tree.get(best).visits) {
				best = c
			}
		}
		if best == noNode {
			break
		}
		n = m.tree.get(best)
		pv = append(pv, n.action)
	}
	return pv
}

// Visits returns the visit count of the root.
func (m *MCTS[A]) Visits() int {
	return m.tree.get(m.tree.root).visits
}

// Size returns the number of nodes in the tree.
func (m *MCTS[A]) Size() int {
	return m.tree.size()
}
