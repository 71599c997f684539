package codegen

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

const (
	helperTrend         = "TrendOf"
	helperRateOfChange  = "RateOfChange"
	helperDivergence    = "Divergence"
	helperEMA           = "EmaOf"
	helperRiskLots      = "RiskLots"
	helperTightenedStop = "TightenedStop"
)

var helperOrder = []string{helperTrend, helperRateOfChange, helperDivergence, helperEMA, helperRiskLots, helperTightenedStop}

// helperSource holds the primitives shared by both dialects. Series arrays
// are indexed from the newest value backwards.
var helperSource = map[string]string{
	helperTrend: `// TrendOf classifies the least-squares slope of the last period values:
// 1 up, -1 down, 0 sideways.
int TrendOf(const double &values[], int period, double threshold)
{
   if(period < 2 || ArraySize(values) < period)
      return(0);

   double sumX = 0, sumY = 0, sumXY = 0, sumX2 = 0;
   for(int i = 0; i < period; i++)
   {
      double x = i;
      double y = values[period - 1 - i];
      sumX  += x;
      sumY  += y;
      sumXY += x * y;
      sumX2 += x * x;
   }

   double slope = (period * sumXY - sumX * sumY) / (period * sumX2 - sumX * sumX);
   if(slope > threshold)
      return(1);
   if(slope < -threshold)
      return(-1);
   return(0);
}`,
	helperRateOfChange: `// RateOfChange compares the percent change over period bars with threshold:
// 1 fast rise, -1 fast fall, 0 stable.
int RateOfChange(const double &values[], int period, double threshold)
{
   if(period < 1 || ArraySize(values) < period + 1)
      return(0);

   double cur  = values[0];
   double prev = values[period];
   if(prev == 0)
      return(0);

   double roc = MathAbs((cur - prev) / prev) * 100;
   if(roc > threshold && cur > prev)
      return(1);
   if(roc > threshold && cur < prev)
      return(-1);
   return(0);
}`,
	helperDivergence: `// Divergence compares the extremes of the newer and older halves of the last
// lookback bars. Bit 1 is bullish, bit 2 bearish.
int Divergence(const double &prices[], const double &values[], int lookback)
{
   if(lookback < 2 || ArraySize(prices) < lookback || ArraySize(values) < lookback)
      return(0);

   int half = lookback / 2;
   double pNewMin = DBL_MAX, pOldMin = DBL_MAX, pNewMax = -DBL_MAX, pOldMax = -DBL_MAX;
   double iNewMin = DBL_MAX, iOldMin = DBL_MAX, iNewMax = -DBL_MAX, iOldMax = -DBL_MAX;

   for(int i = 0; i < lookback; i++)
   {
      if(i < half)
      {
         pNewMin = MathMin(pNewMin, prices[i]);
         pNewMax = MathMax(pNewMax, prices[i]);
         iNewMin = MathMin(iNewMin, values[i]);
         iNewMax = MathMax(iNewMax, values[i]);
      }
      else
      {
         pOldMin = MathMin(pOldMin, prices[i]);
         pOldMax = MathMax(pOldMax, prices[i]);
         iOldMin = MathMin(iOldMin, values[i]);
         iOldMax = MathMax(iOldMax, values[i]);
      }
   }

   int result = 0;
   if(pNewMin < pOldMin && iNewMin > iOldMin)
      result |= 1;
   if(pNewMax > pOldMax && iNewMax < iOldMax)
      result |= 2;
   return(result);
}`,
	helperEMA: `// EmaOf is the exponential average of period values ending at shift,
// seeded with the simple average of the oldest period values of the
// array.
double EmaOf(const double &values[], int period, int shift)
{
   int size = ArraySize(values);
   if(period < 1 || size < shift + period)
      return(EMPTY_VALUE);

   int oldest = size - 1;
   double ema = 0;
   for(int i = oldest; i > oldest - period; i--)
      ema += values[i];
   ema /= period;

   double alpha = 2.0 / (period + 1);
   for(int i = oldest - period; i >= shift; i--)
      ema = alpha * values[i] + (1 - alpha) * ema;
   return(ema);
}`,
	helperRiskLots: `// RiskLots sizes a position so that a stop slPips away loses riskPercent of
// the balance, floored to the volume step. It is 0 below the step.
double RiskLots(double riskPercent, double slPips)
{
   double tickValue = SymbolInfoDouble(_Symbol, SYMBOL_TRADE_TICK_VALUE);
   double tickSize  = SymbolInfoDouble(_Symbol, SYMBOL_TRADE_TICK_SIZE);
   double step      = SymbolInfoDouble(_Symbol, SYMBOL_VOLUME_STEP);
   if(riskPercent <= 0 || slPips <= 0 || tickValue <= 0 || tickSize <= 0 || step <= 0)
      return(0);

   double pipValue = tickValue * PipSize() / tickSize;
   double lots = AccountInfoDouble(ACCOUNT_BALANCE) * riskPercent / 100 / (slPips * pipValue);
   lots = MathFloor(lots / step + 1e-9) * step;
   if(lots < step)
      return(0);
   return(MathMin(lots, SymbolInfoDouble(_Symbol, SYMBOL_VOLUME_MAX)));
}`,
	helperTightenedStop: `// TightenedStop applies break-even, then trailing, to a position marked at
// price. dir is 1 for buys and -1 for sells and stop is 0 when unset. A stop
// never loosens. It returns the new stop, or 0 when the stop stays.
double TightenedStop(double dir, double entry, double stop, double price,
                     double trailPips, double trailActivation, double trailStep,
                     double bePips, double beLock)
{
   double pip    = PipSize();
   double profit = dir * (price - entry) / pip;
   double result = stop;

   if(bePips > 0 && profit >= bePips)
   {
      double level = entry + dir * beLock * pip;
      if(level > 0 && (result == 0 || dir * (level - result) > 0))
         result = level;
   }

   if(trailPips > 0 && profit >= trailActivation)
   {
      double level = price - dir * trailPips * pip;
      double gain  = dir * (level - result);
      if(level > 0 && (result == 0 || (gain > 0 && gain >= trailStep * pip)))
         result = level;
   }

   if(result == stop)
      return(0);
   return(result);
}`,
}

const pipSizeSource = `// PipSize is ten points on 3 and 5 digit quotes.
double PipSize()
{
   if(_Digits == 3 || _Digits == 5)
      return(_Point * 10);
   return(_Point);
}`

// appliedPrice maps a bar price source to the ENUM_APPLIED_PRICE constant,
// spelled the same in both dialects.
func appliedPrice(src indicator.Source) string {
	switch src {
	case indicator.SourceOpen:
		return "PRICE_OPEN"
	case indicator.SourceHigh:
		return "PRICE_HIGH"
	case indicator.SourceLow:
		return "PRICE_LOW"
	case indicator.SourceMedian:
		return "PRICE_MEDIAN"
	case indicator.SourceTypical:
		return "PRICE_TYPICAL"
	case indicator.SourceWeighted:
		return "PRICE_WEIGHTED"
	default:
		return "PRICE_CLOSE"
	}
}

// barPrice renders the bar price src at shift with the iOpen family, which
// both dialects provide.
func barPrice(src indicator.Source, shift string) string {
	at := func(fn string) string {
		return fmt.Sprintf("%s(_Symbol, PERIOD_CURRENT, %s)", fn, shift)
	}

	switch src {
	case indicator.SourceOpen:
		return at("iOpen")
	case indicator.SourceHigh:
		return at("iHigh")
	case indicator.SourceLow:
		return at("iLow")
	case indicator.SourceMedian:
		return fmt.Sprintf("(%s + %s) / 2", at("iHigh"), at("iLow"))
	case indicator.SourceTypical:
		return fmt.Sprintf("(%s + %s + %s) / 3", at("iHigh"), at("iLow"), at("iClose"))
	case indicator.SourceWeighted:
		return fmt.Sprintf("(%s + %s + 2 * %s) / 4", at("iHigh"), at("iLow"), at("iClose"))
	default:
		return at("iClose")
	}
}

// fillLoop renders a loop assigning expr, written in terms of shift k + 1,
// to every element of s.
func fillLoop(s *series, expr string) []string {
	return []string{
		fmt.Sprintf("double %s[%d];", s.Name, s.Depth),
		fmt.Sprintf("for(int k = 0; k < %d; k++)", s.Depth),
		fmt.Sprintf("   %s[k] = %s;", s.Name, expr),
	}
}

// loadShared renders the series both dialects load the same way.
func loadShared(s *series) []string {
	switch s.Kind {
	case seriesPrice:
		return fillLoop(s, barPrice(s.Source, "k + 1"))
	case seriesConstant:
		return []string{
			fmt.Sprintf("double %s[%d];", s.Name, s.Depth),
			fmt.Sprintf("ArrayInitialize(%s, %s);", s.Name, s.Value),
		}
	default:
		return nil
	}
}

// quote renders a string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ")
	return `"` + r.Replace(s) + `"`
}

// macdWarmup is how many signal periods of extra MACD history seed the
// signal EMA, which then agrees with one run over the whole series.
const macdWarmup = 10

// macdDerived reports whether s is a MACD output computed from the main line.
func macdDerived(s *series) bool {
	return s.Type == types.IndicatorTypeMACD && (s.Output == indicator.OutputSignal || s.Output == indicator.OutputHistogram)
}

// macdLength renders the length of the main line history loaded for a
// derived MACD output.
func macdLength(s *series) string {
	return fmt.Sprintf("%d + %d * %s", s.Depth, macdWarmup, s.Params["signalPeriod"])
}

// macdSignal renders the signal or histogram of s from the main line held
// in main.
func macdSignal(s *series, main string) []string {
	expr := fmt.Sprintf("EmaOf(%s, %s, k)", main, s.Params["signalPeriod"])
	if s.Output == indicator.OutputHistogram {
		expr = fmt.Sprintf("%s[k] - %s", main, expr)
	}

	return fillLoop(s, expr)
}
