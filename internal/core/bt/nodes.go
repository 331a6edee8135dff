package bt

type baseNode struct {
	name string
	id   uint64
}

func (b *baseNode) Name() string     { return b.name }
func (b *baseNode) base() *baseNode  { return b }
func (b *baseNode) Children() []Node { return nil }

// ID is the node's identity inside its tree; zero until the tree is built.
func (b *baseNode) ID() uint64 { return b.id }

// Action applies its effect once and reports Success. Whether the effect is
// applicable is for an enclosing Guard to decide.
type Action struct {
	baseNode
	effect Effect
}

func NewAction(name string, effect Effect) *Action {
	return &Action{baseNode: baseNode{name: name}, effect: effect}
}

func (a *Action) init(Tick) {}

func (a *Action) process(t Tick) (Status, error) {
	if a.effect != nil {
		if err := a.effect(t); err != nil {
			return StatusFailure, err
		}
	}
	t.cursor.actions++
	return StatusSuccess, nil
}

// Guard runs its child only when the predicate holds. A false predicate ends
// the branch with Success so an enclosing Sequence moves on to its next child.
// The predicate is evaluated once per entry; while the child keeps reporting
// Running the earlier verdict stands.
type Guard struct {
	baseNode
	predicate Predicate
	child     Node
}

func NewGuard(name string, predicate Predicate, child Node) *Guard {
	return &Guard{baseNode: baseNode{name: name}, predicate: predicate, child: child}
}

func (g *Guard) Children() []Node { return []Node{g.child} }

const (
	guardUndecided = iota
	guardPassed
	guardSkipped
)

func (g *Guard) init(t Tick) {
	t.cursor.set(g.id, guardUndecided)
	g.child.init(t)
}

func (g *Guard) process(t Tick) (Status, error) {
	verdict := t.cursor.get(g.id)
	if verdict == guardUndecided {
		ok, err := g.predicate(t)
		if err != nil {
			return StatusFailure, err
		}
		verdict = guardSkipped
		if ok {
			verdict = guardPassed
		}
		t.cursor.set(g.id, verdict)
	}
	if verdict == guardSkipped {
		return StatusSuccess, nil
	}
	return g.child.process(t)
}

// Sequence processes its children in order, one child per call, and stops at
// the first child that does not succeed.
type Sequence struct {
	baseNode
	children []Node
}

func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{baseNode: baseNode{name: name}, children: children}
}

func (s *Sequence) Children() []Node { return s.children }

func (s *Sequence) init(t Tick) {
	t.cursor.set(s.id, 0)
	s.children[0].init(t)
}

func (s *Sequence) process(t Tick) (Status, error) {
	idx := t.cursor.get(s.id)
	if idx >= len(s.children) {
		return StatusSuccess, nil
	}
	st, err := s.children[idx].process(t)
	if err != nil {
		return StatusFailure, err
	}
	if st != StatusSuccess {
		return st, nil
	}
	idx++
	t.cursor.set(s.id, idx)
	if idx >= len(s.children) {
		return StatusSuccess, nil
	}
	s.children[idx].init(t)
	return StatusRunning, nil
}

// Selector processes its children in order, one child per call, until one of
// them does not fail. It fails only when every child failed.
type Selector struct {
	baseNode
	children []Node
}

func NewSelector(name string, children ...Node) *Selector {
	return &Selector{baseNode: baseNode{name: name}, children: children}
}

func (s *Selector) Children() []Node { return s.children }

func (s *Selector) init(t Tick) {
	t.cursor.set(s.id, 0)
	s.children[0].init(t)
}

func (s *Selector) process(t Tick) (Status, error) {
	idx := t.cursor.get(s.id)
	if idx >= len(s.children) {
		return StatusFailure, nil
	}
	st, err := s.children[idx].process(t)
	if err != nil {
		return StatusFailure, err
	}
	if st != StatusFailure {
		return st, nil
	}
	idx++
	t.cursor.set(s.id, idx)
	if idx >= len(s.children) {
		return StatusFailure, nil
	}
	s.children[idx].init(t)
	return StatusRunning, nil
}

// Task is a leaf that reports its own status. It is the only leaf allowed to
// report Running, which is how work that completes outside the caller, such
// as waiting for an animation callback, is modelled.
type Task struct {
	baseNode
	fn    func(t Tick) (Status, error)
	start func(t Tick)
}

func NewTask(name string, fn func(t Tick) (Status, error)) *Task {
	return &Task{baseNode: baseNode{name: name}, fn: fn}
}

// OnInit registers a hook run every time the task is (re-)entered.
func (k *Task) OnInit(fn func(t Tick)) *Task {
	k.start = fn
	return k
}

func (k *Task) init(t Tick) {
	if k.start != nil {
		k.start(t)
	}
}

func (k *Task) process(t Tick) (Status, error) {
	return k.fn(t)
}
