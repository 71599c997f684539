package portfolio

import (
	"fmt"
	"math"
	"slices"

	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Admission is the answer to "may this instrument join the active set".
type Admission struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Metrics summarises the active set.
type Metrics struct {
	ActivePairs          int           `json:"activePairs" yaml:"active_pairs"`
	MaxPairs             int           `json:"maxPairs" yaml:"max_pairs"`
	DiversificationScore float64       `json:"diversificationScore" yaml:"diversification_score"`
	Correlations         []Correlation `json:"correlations" yaml:"correlations"`
}

// Manager admits instruments into an active set while it stays under
// MaxPairs and below the correlation threshold with every member.
type Manager struct {
	analyzer  *Analyzer
	maxPairs  int
	threshold float64
	active    []string
}

func NewManager(analyzer *Analyzer, maxPairs int, threshold float64) *Manager {
	return &Manager{analyzer: analyzer, maxPairs: maxPairs, threshold: threshold}
}

func (m *Manager) Analyzer() *Analyzer {
	return m.analyzer
}

// CanAdd checks capacity, then correlation with each active instrument.
// Pairs without price data are not held against the candidate.
func (m *Manager) CanAdd(symbol string) Admission {
	if slices.Contains(m.active, symbol) {
		return Admission{Allowed: false, Reason: fmt.Sprintf("%s is already active", symbol)}
	}

	if len(m.active) >= m.maxPairs {
		return Admission{Allowed: false, Reason: fmt.Sprintf("Maximum concurrent pairs (%d) reached", m.maxPairs)}
	}

	for _, existing := range m.active {
		c, err := m.analyzer.Pair(symbol, existing, 0)
		if err != nil {
			continue
		}

		if math.Abs(c.Coefficient) > m.threshold {
			return Admission{
				Allowed: false,
				Reason:  fmt.Sprintf("High correlation (%.1f%%) with %s", c.Coefficient*100, existing),
			}
		}
	}

	return Admission{Allowed: true}
}

// Add admits symbol or returns a coded error explaining the refusal.
func (m *Manager) Add(symbol string) error {
	adm := m.CanAdd(symbol)
	if adm.Allowed {
		m.active = append(m.active, symbol)
		return nil
	}

	if len(m.active) >= m.maxPairs {
		return errors.New(errors.ErrCodePortfolioFull, adm.Reason)
	}

	return errors.New(errors.ErrCodePairRejected, adm.Reason)
}

func (m *Manager) Remove(symbol string) {
	m.active = slices.DeleteFunc(m.active, func(s string) bool { return s == symbol })
}

func (m *Manager) Active() []string {
	return slices.Clone(m.active)
}

func (m *Manager) Metrics() Metrics {
	metrics := Metrics{
		ActivePairs:          len(m.active),
		MaxPairs:             m.maxPairs,
		DiversificationScore: m.analyzer.DiversificationScore(m.active),
	}

	for i := range m.active {
		for j := i + 1; j < len(m.active); j++ {
			if c, err := m.analyzer.Pair(m.active[i], m.active[j], 0); err == nil {
				metrics.Correlations = append(metrics.Correlations, c)
			}
		}
	}

	return metrics
}

// Recommend proposes the unused instrument that diversifies the active set most.
func (m *Manager) Recommend() (string, bool) {
	return m.analyzer.Recommend(m.active)
}

func (m *Manager) Reset() {
	m.active = nil
}
