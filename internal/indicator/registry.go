package indicator

import (
	"sort"
	"strings"
	"sync"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// IndicatorRegistry resolves indicator subtypes to implementations.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 is a mutex-guarded map of indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// aliases maps editor spellings to canonical indicator names.
var aliases = map[string]types.IndicatorType{
	"ma":              types.IndicatorTypeSMA,
	"bollinger":       types.IndicatorTypeBollingerBands,
	"bollinger_bands": types.IndicatorTypeBollingerBands,
	"bbands":          types.IndicatorTypeBollingerBands,
	"stoch":           types.IndicatorTypeStochastic,
	"close":           types.IndicatorTypePrice,
}

// Canonical lower-cases name and resolves aliases.
func Canonical(name string) types.IndicatorType {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}

	return types.IndicatorType(name)
}

// NewIndicatorRegistry creates an empty registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
	}
}

// NewDefaultRegistry creates a registry with every built-in indicator.
func NewDefaultRegistry() IndicatorRegistry {
	r := NewIndicatorRegistry()
	for _, ind := range []Indicator{
		NewSMA(), NewEMA(), NewRSI(), NewMACD(), NewBollingerBands(), NewATR(), NewStochastic(), NewADX(), NewPrice(),
	} {
		// names are distinct, registration cannot fail
		_ = r.RegisterIndicator(ind)
	}

	return r
}

func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[Canonical(string(name))]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns registered names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
