package mocks

//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-strategy/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/argo-strategy/internal/indicator IndicatorRegistry
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/cache Cache
//go:generate mockgen -destination=./mock_engine.go -package=mocks github.com/rxtech-lab/argo-strategy/internal/backtest/engine Engine
