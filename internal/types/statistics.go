package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Metrics are the risk and return figures derived from a trade ledger.
type Metrics struct {
	TotalTrades   int `yaml:"total_trades" json:"totalTrades"`
	WinningTrades int `yaml:"winning_trades" json:"winningTrades"`
	LosingTrades  int `yaml:"losing_trades" json:"losingTrades"`
	// WinRate in percent.
	WinRate     float64 `yaml:"win_rate" json:"winRate"`
	TotalProfit float64 `yaml:"total_profit" json:"totalProfit"`
	// TotalReturn in percent of the initial balance.
	TotalReturn  float64 `yaml:"total_return" json:"totalReturn"`
	GrossProfit  float64 `yaml:"gross_profit" json:"grossProfit"`
	GrossLoss    float64 `yaml:"gross_loss" json:"grossLoss"`
	ProfitFactor float64 `yaml:"profit_factor" json:"profitFactor"`
	AverageWin   float64 `yaml:"average_win" json:"averageWin"`
	// AverageLoss is reported as a positive number.
	AverageLoss        float64 `yaml:"average_loss" json:"averageLoss"`
	Expectancy         float64 `yaml:"expectancy" json:"expectancy"`
	MaxDrawdown        float64 `yaml:"max_drawdown" json:"maxDrawdown"`
	MaxDrawdownPercent float64 `yaml:"max_drawdown_percent" json:"maxDrawdownPercent"`
	SharpeRatio        float64 `yaml:"sharpe_ratio" json:"sharpeRatio"`
	SortinoRatio       float64 `yaml:"sortino_ratio" json:"sortinoRatio"`
	RecoveryFactor     float64 `yaml:"recovery_factor" json:"recoveryFactor"`
	MaxConsecutiveWins int     `yaml:"max_consecutive_wins" json:"maxConsecutiveWins"`
	MaxConsecutiveLoss int     `yaml:"max_consecutive_losses" json:"maxConsecutiveLosses"`
	FinalBalance       float64 `yaml:"final_balance" json:"finalBalance"`
}

type TradeHoldingTime struct {
	// Minimum holding time of a trade in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a trade in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a trade in seconds
	Avg int `yaml:"avg" json:"avg"`
}

// Statistics are descriptive figures about the ledger that are not ratios.
type Statistics struct {
	BestTrade        float64          `yaml:"best_trade" json:"bestTrade"`
	WorstTrade       float64          `yaml:"worst_trade" json:"worstTrade"`
	CurrentStreak    int              `yaml:"current_streak" json:"currentStreak"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"tradeHoldingTime"`
	TotalCosts       float64          `yaml:"total_costs" json:"totalCosts"`
	BlockedSignals   int              `yaml:"blocked_signals" json:"blockedSignals"`
}

// RunSummary is what a backtest run writes next to its parquet exports.
type RunSummary struct {
	ID           string     `yaml:"id" json:"id"`
	Timestamp    time.Time  `yaml:"timestamp" json:"timestamp"`
	StrategyID   string     `yaml:"strategy_id" json:"strategyId"`
	StrategyName string     `yaml:"strategy_name" json:"strategyName"`
	Symbol       string     `yaml:"symbol" json:"symbol"`
	Bars         int        `yaml:"bars" json:"bars"`
	Metrics      Metrics    `yaml:"metrics" json:"metrics"`
	Statistics   Statistics `yaml:"statistics" json:"statistics"`
	// TradesFilePath is the path to the trades parquet file.
	TradesFilePath string `yaml:"trades_file_path" json:"tradesFilePath"`
	// EquityFilePath is the path to the equity curve parquet file.
	EquityFilePath string `yaml:"equity_file_path" json:"equityFilePath"`
	// SignalsFilePath is the path to the signals parquet file.
	SignalsFilePath string `yaml:"signals_file_path" json:"signalsFilePath"`
	// DataPath is the market data file used for this run, if any.
	DataPath string `yaml:"data_path" json:"dataPath"`
}

// WriteRunSummaries writes summaries as YAML to path.
func WriteRunSummaries(path string, summaries []RunSummary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal run summaries to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summaries to file: %w", err)
	}

	return nil
}
