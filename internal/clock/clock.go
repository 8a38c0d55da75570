// Package clock abstrai o relógio para que regras dependentes de data
// (viagens no passado, expiração de tokens) sejam testáveis.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// RealClock usa o relógio do sistema.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock devolve um instante controlado pelo teste. Seguro para uso concorrente.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance move o relógio; durações negativas voltam no tempo.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}
