// Package behaviour runs per-frame logic attached to scene nodes.
package behaviour

// Behaviour is updated once per rendered frame and at a fixed cadence.
type Behaviour interface {
	Start()
	Update(deltaTime float64)
	UpdateFixed()
}

type behaviourWrapper struct {
	behaviour Behaviour
	started   bool
}

type Manager struct {
	behaviours []behaviourWrapper
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(b Behaviour) {
	m.behaviours = append(m.behaviours, behaviourWrapper{behaviour: b})
}

// Remove drops b. Order of the remaining behaviours is kept.
func (m *Manager) Remove(b Behaviour) bool {
	for i := range m.behaviours {
		if m.behaviours[i].behaviour == b {
			m.behaviours = append(m.behaviours[:i], m.behaviours[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) Clear()   { m.behaviours = m.behaviours[:0] }
func (m *Manager) Len() int { return len(m.behaviours) }

func (m *Manager) start(w *behaviourWrapper) {
	if !w.started {
		w.behaviour.Start()
		w.started = true
	}
}

func (m *Manager) UpdateAll(deltaTime float64) {
	for i := range m.behaviours {
		m.start(&m.behaviours[i])
		m.behaviours[i].behaviour.Update(deltaTime)
	}
}

func (m *Manager) UpdateAllFixed() {
	for i := range m.behaviours {
		m.start(&m.behaviours[i])
		m.behaviours[i].behaviour.UpdateFixed()
	}
}
