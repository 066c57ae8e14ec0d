// Package extract turns raw station pages into canonical price readings.
//
// The source site renders prices in several markup variants, so extraction is
// an ordered chain of strategies: each tier runs only while fuel grades remain
// unresolved, and a malformed page degrades to a reading with absent fields
// rather than an error.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"fuel-price-tracker/internal/model"
)

const (
	currentPriceIDPrefix = "current-price"
	suffixPriceIDPrefix  = "suffix-price"
	priceFieldClass      = "price-field"
)

// fuelKeywords maps each grade to the label tokens found near its price,
// checked in FuelTypes order with first match winning.
var fuelKeywords = map[model.FuelType][]string{
	model.FuelDiesel: {"diesel"},
	model.FuelE5:     {"super e5", "e 5", "super 95"},
	model.FuelE10:    {"super e10", "e 10"},
}

// directSlotOrder is the positional convention of the three-slot layout.
var directSlotOrder = []model.FuelType{model.FuelDiesel, model.FuelE10, model.FuelE5}

// Extractor parses station pages.
type Extractor struct {
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs an Extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With().Str("component", "extractor").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type tier struct {
	name string
	run  func(doc *html.Node, prices *model.Prices)
}

// Extract produces a best-effort reading for one station page. Fields that
// cannot be determined stay absent; the call never fails on malformed HTML.
func (e *Extractor) Extract(raw, sourceURL string) model.Reading {
	stationID := model.StationIDFromURL(sourceURL)
	reading := model.Reading{
		StationID: stationID,
		URL:       sourceURL,
		Timestamp: e.now(),
	}

	doc, err := parseDocument(raw)
	if err != nil {
		// html.Parse recovers from almost anything; a hard error means
		// there is nothing to work with.
		e.logger.Warn().Err(err).Str("url", sourceURL).Msg("page not parseable")
		reading.Name = fallbackName(stationID)
		return reading
	}

	tiers := []tier{
		{"direct-slots", e.extractDirectSlots},
		{"price-fields", e.extractPriceFields},
		{"scattered-nodes", e.extractScatteredNodes},
		{"free-text", e.extractFreeText},
	}

	for _, t := range tiers {
		if reading.Prices.Complete() {
			break
		}
		t.run(doc, &reading.Prices)
	}

	reading.Name = resolveStationName(doc, stationID)

	e.logger.Debug().
		Str("station", stationID).
		Bool("diesel", reading.Prices.Diesel != nil).
		Bool("e5", reading.Prices.E5 != nil).
		Bool("e10", reading.Prices.E10 != nil).
		Msg("page extracted")

	return reading
}

// extractDirectSlots reads the stable three-slot layout: numbered
// current/suffix node pairs where slot 1 is diesel, slot 2 is e10 and slot 3
// is e5. The result is committed only when all three slots resolve.
func (e *Extractor) extractDirectSlots(doc *html.Node, prices *model.Prices) {
	var candidate model.Prices
	for i, fuel := range directSlotOrder {
		slot := strconv.Itoa(i + 1)
		current := findFirst(doc, func(n *html.Node) bool {
			return attr(n, "id") == currentPriceIDPrefix+"-"+slot
		})
		if current == nil {
			return
		}
		suffix := findFirst(doc, func(n *html.Node) bool {
			return attr(n, "id") == suffixPriceIDPrefix+"-"+slot
		})

		value, ok := ReconstructPrice(textContent(current), textContent(suffix))
		if !ok {
			return
		}
		candidate.Set(fuel, value)
	}

	if candidate.Complete() {
		*prices = candidate
	}
}

// extractPriceFields scans every price-field container, reconstructs its
// value from the primary and fractional text nodes, and classifies the grade
// by keyword match against the field's own text and its parent's text.
func (e *Extractor) extractPriceFields(doc *html.Node, prices *model.Prices) {
	fields := findAll(doc, func(n *html.Node) bool {
		return hasClass(n, priceFieldClass)
	})

	for _, field := range fields {
		current := findFirst(field, func(n *html.Node) bool {
			return strings.HasPrefix(attr(n, "id"), currentPriceIDPrefix)
		})
		if current == nil {
			continue
		}
		suffix := findFirst(field, func(n *html.Node) bool {
			return strings.HasPrefix(attr(n, "id"), suffixPriceIDPrefix)
		})

		value, ok := ReconstructPrice(textContent(current), textContent(suffix))
		if !ok {
			continue
		}

		label := strings.ToLower(textContent(field))
		if field.Parent != nil {
			label += " " + strings.ToLower(textContent(field.Parent))
		}
		assignByKeyword(prices, label, value)
	}
}

// extractScatteredNodes handles pages where the numbered price nodes are not
// grouped into fields: current and suffix nodes are paired by their shared
// numeric id suffix and classified by the nearest block ancestor's text.
func (e *Extractor) extractScatteredNodes(doc *html.Node, prices *model.Prices) {
	type pair struct {
		current *html.Node
		suffix  *html.Node
	}
	pairs := make(map[int]*pair)

	numberedID := regexp.MustCompile(`^(current|suffix)-price-?(\d+)$`)
	for _, n := range findAll(doc, func(n *html.Node) bool {
		return numberedID.MatchString(attr(n, "id"))
	}) {
		m := numberedID.FindStringSubmatch(attr(n, "id"))
		num, _ := strconv.Atoi(m[2])
		p := pairs[num]
		if p == nil {
			p = &pair{}
			pairs[num] = p
		}
		if m[1] == "current" {
			p.current = n
		} else {
			p.suffix = n
		}
	}

	nums := make([]int, 0, len(pairs))
	for num := range pairs {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	for _, num := range nums {
		p := pairs[num]
		if p.current == nil {
			continue
		}
		value, ok := ReconstructPrice(textContent(p.current), textContent(p.suffix))
		if !ok {
			continue
		}
		label := ""
		if block := closestBlock(p.current); block != nil {
			label = strings.ToLower(textContent(block))
		}
		assignByKeyword(prices, label, value)
	}
}

var freeTextPatterns = map[model.FuelType]*regexp.Regexp{
	model.FuelDiesel: regexp.MustCompile(`(?i)diesel\D*?(\d+[.,]\d{2,3})`),
	model.FuelE5:     regexp.MustCompile(`(?i)super\s*e\s*5\D*?(\d+[.,]\d{2,3})`),
	model.FuelE10:    regexp.MustCompile(`(?i)super\s*e\s*10\D*?(\d+[.,]\d{2,3})`),
}

// extractFreeText is the last resort: label-then-number patterns over the
// whole visible page text.
func (e *Extractor) extractFreeText(doc *html.Node, prices *model.Prices) {
	text := textContent(doc)
	for _, fuel := range model.FuelTypes {
		if prices.Get(fuel) != nil {
			continue
		}
		m := freeTextPatterns[fuel].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
		if err != nil || !model.SanePrice(value) {
			continue
		}
		prices.Set(fuel, value)
	}
}

// assignByKeyword stores the value under the first grade whose label tokens
// appear in the text, never overwriting an already-resolved grade.
func assignByKeyword(prices *model.Prices, label string, value decimal.Decimal) {
	for _, fuel := range model.FuelTypes {
		if prices.Get(fuel) != nil {
			continue
		}
		for _, keyword := range fuelKeywords[fuel] {
			if strings.Contains(label, keyword) {
				prices.Set(fuel, value)
				return
			}
		}
	}
}

// ReconstructPrice combines a base price text such as "1.77" or "1,77" with
// an optional third-decimal fragment such as "9". A base that already carries
// three decimals is used as-is; otherwise the fragment (stripped of non-digit
// characters) is appended. Out-of-bound or unparseable values report !ok.
func ReconstructPrice(base, fragment string) (decimal.Decimal, bool) {
	base = strings.ReplaceAll(strings.TrimSpace(base), ",", ".")
	if base == "" {
		return decimal.Decimal{}, false
	}

	if dot := strings.Index(base, "."); dot >= 0 && len(base)-dot-1 < 3 {
		digits := nonDigits.ReplaceAllString(fragment, "")
		if missing := 3 - (len(base) - dot - 1); len(digits) > missing {
			digits = digits[:missing]
		}
		base += digits
	}

	value, err := decimal.NewFromString(base)
	if err != nil || !model.SanePrice(value) {
		return decimal.Decimal{}, false
	}
	return value, true
}

var nonDigits = regexp.MustCompile(`\D`)

// resolveStationName picks the display name: the page heading, a
// station-name labelled element, any element whose class hints at "station",
// else a synthesized fallback from the numeric station id.
func resolveStationName(doc *html.Node, stationID string) string {
	candidates := []*html.Node{
		findFirst(doc, func(n *html.Node) bool { return n.Data == "h1" }),
		findFirst(doc, func(n *html.Node) bool { return hasClass(n, "station-name") }),
		findFirst(doc, func(n *html.Node) bool { return classContains(n, "station") }),
	}
	for _, n := range candidates {
		if name := strings.TrimSpace(textContent(n)); name != "" {
			return name
		}
	}
	return fallbackName(stationID)
}

func fallbackName(stationID string) string {
	if stationID == "" {
		return "Station"
	}
	return "Station " + stationID
}
