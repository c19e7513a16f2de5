// Package proof scores recognized screenshot text against the payment a swap
// leg is supposed to prove. The scoring is heuristic: it gates
// auto-completion, it is not a cryptographic verdict. Anything short of a
// clean auto-verified result routes to human review or dispute handling.
package proof

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Dispositions.
const (
	DispositionAutoVerified = "auto_verified"
	DispositionNeedsReview  = "needs_review"
	DispositionRejected     = "rejected"
)

// Anomaly flags. The list is open to extension; consumers must tolerate
// flags they don't know.
const (
	FlagAmountMismatch   = "amount_mismatch"
	FlagProviderNotFound = "provider_not_found"
	FlagStaleDate        = "stale_date"
	FlagTamperArtifact   = "tamper_artifact"
	FlagNoText           = "no_text"
)

// Score weights in centi-points. Integer arithmetic keeps a perfect proof at
// exactly 100 (confidence 1.0) with no float drift.
const (
	amountExactPoints   = 40
	amountClosePoints   = 20
	providerExactPoints = 30
	providerPartial     = 15
	dateRecentPoints    = 20
	dateWeekPoints      = 10
	richTextPoints      = 10
)

// Tolerances and thresholds.
const (
	amountExactTolerance = 0.05
	amountCloseTolerance = 0.10
	recentDays           = 3
	staleDays            = 7
	richTextTokens       = 10

	autoVerifyConfidence = 0.7
	reviewConfidence     = 0.5
)

// Result is the outcome of analyzing one submission. It is derived state:
// only the confidence and disposition are persisted on the swap record.
type Result struct {
	RawText     []string   `json:"rawText"`
	Amount      *float64   `json:"amount,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Confidence  float64    `json:"confidence"`
	Disposition string     `json:"disposition"`
	Flags       []string   `json:"flags,omitempty"`
}

// Amount extraction patterns, tried in order; first match wins.
var amountPatterns = []*regexp.Regexp{
	// Currency-prefixed: $1,234.56 or $14.99
	regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`),
	// Labeled: "Total: 14.99", "Amount paid 14.99"
	regexp.MustCompile(`(?i)(?:total|amount|paid)[:\s]+\$?\s*([\d,]+(?:\.\d{1,2})?)`),
	// Bare decimal with currency suffix: "14.99 USD"
	regexp.MustCompile(`(?i)([\d,]+\.\d{2})\s*(?:usd|dollars?)`),
}

// Date formats commonly seen in payment confirmations.
var dateExtractors = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "1/2/2006"},
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), "2006-01-02"},
	{regexp.MustCompile(`\b([A-Z][a-z]{2} \d{1,2}, \d{4})\b`), "Jan 2, 2006"},
	{regexp.MustCompile(`\b(\d{1,2} [A-Z][a-z]{2} \d{4})\b`), "2 Jan 2006"},
}

// tamperArtifacts are substrings that only appear in doctored or re-rendered
// screenshots. Matching any of them halves the confidence outright.
var tamperArtifacts = []string{
	"adobe photoshop",
	"photoshop",
	"gimp 2",
	"canva",
	"figma",
	"inspect element",
	"devtools",
	"mockup",
	"sample receipt",
	"lorem ipsum",
}

// Analyzer holds the provider alias table. It is immutable after
// construction and safe for concurrent use.
type Analyzer struct {
	aliases map[string][]string
}

// NewAnalyzer creates an Analyzer with the default provider alias table.
func NewAnalyzer() *Analyzer {
	return &Analyzer{aliases: defaultProviderAliases}
}

// defaultProviderAliases maps a canonical provider name to lowercase alias
// substrings recognised in OCR output.
var defaultProviderAliases = map[string][]string{
	"Netflix":      {"netflix"},
	"Spotify":      {"spotify"},
	"Hulu":         {"hulu"},
	"Comcast":      {"comcast", "xfinity"},
	"Spectrum":     {"spectrum", "charter"},
	"AT&T":         {"at&t", "att wireless", "at and t"},
	"Verizon":      {"verizon", "vzw"},
	"T-Mobile":     {"t-mobile", "tmobile"},
	"PG&E":         {"pg&e", "pge", "pacific gas"},
	"Con Edison":   {"con edison", "coned"},
	"Duke Energy":  {"duke energy"},
	"State Farm":   {"state farm"},
	"Geico":        {"geico"},
	"Progressive":  {"progressive"},
}

// Analyze scores recognized text lines against the expected amount and
// provider. now is injected so the result is deterministic for a fixed
// input; the same (lines, amount, provider, now) always yields the same
// confidence and disposition.
func (a *Analyzer) Analyze(lines []string, expectedAmount float64, expectedProvider string, now time.Time) Result {
	res := Result{RawText: lines}
	text := strings.ToLower(strings.Join(lines, "\n"))

	if strings.TrimSpace(text) == "" {
		res.Flags = append(res.Flags, FlagNoText)
		res.Disposition = DispositionRejected
		return res
	}

	points := 0

	// 1. Amount.
	if amount, ok := extractAmount(lines); ok {
		res.Amount = &amount
		switch {
		case withinTolerance(amount, expectedAmount, amountExactTolerance):
			points += amountExactPoints
		case withinTolerance(amount, expectedAmount, amountCloseTolerance):
			points += amountClosePoints
			res.Flags = append(res.Flags, FlagAmountMismatch)
		default:
			res.Flags = append(res.Flags, FlagAmountMismatch)
		}
	} else {
		res.Flags = append(res.Flags, FlagAmountMismatch)
	}

	// 2. Provider. Expected provider's aliases are tried first; a hit on any
	// other known provider counts as partial only.
	switch a.matchProvider(text, expectedProvider) {
	case providerMatchExact:
		res.Provider = expectedProvider
		points += providerExactPoints
	case providerMatchPartial:
		res.Provider = expectedProvider
		points += providerPartial
	default:
		res.Flags = append(res.Flags, FlagProviderNotFound)
	}

	// 3. Date recency.
	if date, ok := extractDate(lines); ok {
		res.Date = &date
		daysSince := int(now.Sub(date).Hours() / 24)
		switch {
		case daysSince >= 0 && daysSince <= recentDays:
			points += dateRecentPoints
		case daysSince > recentDays && daysSince <= staleDays:
			points += dateWeekPoints
		default:
			res.Flags = append(res.Flags, FlagStaleDate)
		}
	} else {
		res.Flags = append(res.Flags, FlagStaleDate)
	}

	// 4. Text richness.
	if len(strings.Fields(strings.Join(lines, " "))) >= richTextTokens {
		points += richTextPoints
	}

	res.Confidence = float64(points) / 100

	// Tamper artifacts override the numeric score: halve it and never allow
	// auto-verification.
	tampered := false
	for _, artifact := range tamperArtifacts {
		if strings.Contains(text, artifact) {
			tampered = true
			res.Flags = append(res.Flags, FlagTamperArtifact)
			break
		}
	}
	if tampered {
		res.Confidence /= 2
	}

	switch {
	case !tampered && res.Confidence >= autoVerifyConfidence && len(res.Flags) == 0:
		res.Disposition = DispositionAutoVerified
	case res.Confidence >= reviewConfidence:
		res.Disposition = DispositionNeedsReview
	default:
		res.Disposition = DispositionRejected
	}
	return res
}

type providerMatch int

const (
	providerMatchNone providerMatch = iota
	providerMatchExact
	providerMatchPartial
	providerMatchOther
)

// matchProvider tests the expected provider first: its canonical name is an
// exact match, its aliases a partial one. Any other known provider's alias
// appearing instead is flagged rather than credited.
func (a *Analyzer) matchProvider(lowerText, expectedProvider string) providerMatch {
	if expectedProvider != "" {
		if strings.Contains(lowerText, strings.ToLower(expectedProvider)) {
			return providerMatchExact
		}
		for _, alias := range a.aliases[expectedProvider] {
			if strings.Contains(lowerText, alias) {
				return providerMatchPartial
			}
		}
	}
	for name, aliases := range a.aliases {
		if name == expectedProvider {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(lowerText, alias) {
				return providerMatchOther
			}
		}
	}
	return providerMatchNone
}

func extractAmount(lines []string) (float64, bool) {
	joined := strings.Join(lines, "\n")
	for _, pattern := range amountPatterns {
		if m := pattern.FindStringSubmatch(joined); m != nil {
			raw := strings.ReplaceAll(m[1], ",", "")
			amount, err := strconv.ParseFloat(raw, 64)
			if err == nil {
				return amount, true
			}
		}
	}
	return 0, false
}

func extractDate(lines []string) (time.Time, bool) {
	joined := strings.Join(lines, "\n")
	for _, ex := range dateExtractors {
		if m := ex.re.FindStringSubmatch(joined); m != nil {
			if t, err := time.Parse(ex.layout, m[1]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func withinTolerance(got, expected, tolerance float64) bool {
	if expected == 0 {
		return got == 0
	}
	diff := got - expected
	if diff < 0 {
		diff = -diff
	}
	return diff/expected <= tolerance
}
