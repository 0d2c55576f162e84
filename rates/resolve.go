package rates

// Confidence labels the provenance of a resolved rate
type Confidence string

const (
	// ConfidenceLive marks a value taken from a live upstream fetch
	ConfidenceLive Confidence = "live"

	// ConfidenceHistorical marks a value taken from the history tail
	// after the live fetch failed or came back empty
	ConfidenceHistorical Confidence = "historical"

	// ConfidenceUnknown marks an absent value. The paired value is 0
	// and must never be displayed as authoritative
	ConfidenceUnknown Confidence = "unknown"
)

func (c Confidence) String() string {
	return string(c)
}

// ResolvedRate is a best-available rate with its provenance
type ResolvedRate struct {
	Value      float64    `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// Resolve produces the best-available value for a single rate field,
// given an optional live value and an optional history tail value.
// nil or non-positive inputs count as absent, never as real zero rates.
// Resolution is per field, so one missing currency cannot suppress another.
// Resolve never fails; absence only degrades the confidence level
func Resolve(live, historyTail *float64) ResolvedRate {
	if live != nil && *live > 0 {
		return ResolvedRate{
			Value:      *live,
			Confidence: ConfidenceLive,
		}
	}

	if historyTail != nil && *historyTail > 0 {
		return ResolvedRate{
			Value:      *historyTail,
			Confidence: ConfidenceHistorical,
		}
	}

	return ResolvedRate{
		Value:      0,
		Confidence: ConfidenceUnknown,
	}
}

// SpreadPct is the percentage gap between the marketplace rate and
// the official rate. Defined as 0 when the official rate is 0
func SpreadPct(official, market float64) float64 {
	if official == 0 {
		return 0
	}

	return (market - official) / official * 100
}

// MixAverage is the midpoint of the official USD and EUR rates
func MixAverage(officialUSD, officialEUR float64) float64 {
	return (officialUSD + officialEUR) / 2
}

// MarketAverage is the midpoint of the marketplace rate and
// the official USD rate
func MarketAverage(market, officialUSD float64) float64 {
	return (market + officialUSD) / 2
}

// SoftSpreadPct is the percentage gap between the market average and
// the official USD rate. Defined as 0 when the official rate is 0
func SoftSpreadPct(marketAverage, officialUSD float64) float64 {
	if officialUSD == 0 {
		return 0
	}

	return (marketAverage - officialUSD) / officialUSD * 100
}
