package histock

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/models"
)

// Markup anchors on the HiStock index page.
const (
	priceInfoClass = "priceinfo"
	priceSpanID    = "Price1_lbTPrice"
	changeSpanID   = "Price1_lbTChange"
	percentSpanID  = "Price1_lbTPercent"

	// Taiwanese boards color rises red and falls green; the class on the
	// value span is the sign indicator and this mapping must not be flipped.
	classUp   = "clr-rd"
	classDown = "clr-gr"

	glyphUp   = "▲"
	glyphDown = "▼"
)

// Extraction failures. Each of the three fields is attempted independently
// and reports its own wrapped error.
var (
	ErrNoPriceInfo = errors.New("price info region not found")
	ErrNoElement   = errors.New("value element not found")
)

var numberCleaner = strings.NewReplacer(glyphUp, "", glyphDown, "", ",", "", "%", "")

// ParseIndexPage extracts the price, change, and percent change fields from
// the index page HTML. All three lookups run even when an earlier one fails,
// so a partial page reports every missing field at once; a quote is only
// returned when all three parsed.
func ParseIndexPage(page []byte, logger *common.Logger) (*models.IndexQuote, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	region := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Ul && hasClass(n, priceInfoClass)
	})
	if region == nil {
		return nil, ErrNoPriceInfo
	}

	quote := &models.IndexQuote{}
	var errs []error

	if v, err := extractPrice(region); err != nil {
		errs = append(errs, err)
	} else {
		quote.Price = v
	}

	if v, err := extractSigned(region, changeSpanID, "change", logger); err != nil {
		errs = append(errs, err)
	} else {
		quote.Change = v
	}

	if v, err := extractSigned(region, percentSpanID, "change percent", logger); err != nil {
		errs = append(errs, err)
	} else {
		quote.ChangePct = v
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return quote, nil
}

// extractPrice parses the unsigned price field.
func extractPrice(region *html.Node) (float64, error) {
	node := valueNode(region, priceSpanID)
	if node == nil {
		return 0, fmt.Errorf("price: %w", ErrNoElement)
	}

	text := nodeText(node)
	v, err := strconv.ParseFloat(strings.TrimSpace(numberCleaner.Replace(text)), 64)
	if err != nil {
		return 0, fmt.Errorf("price: cannot parse %q as number", text)
	}
	return v, nil
}

// extractSigned parses a signed field (change or percent change), applying
// the direction correction: an explicit leading minus is trusted as-is;
// otherwise the value is negated when the markup indicates a fall.
func extractSigned(region *html.Node, id, label string, logger *common.Logger) (float64, error) {
	node := valueNode(region, id)
	if node == nil {
		return 0, fmt.Errorf("%s: %w", label, ErrNoElement)
	}

	text := nodeText(node)
	cleaned := strings.TrimSpace(numberCleaner.Replace(text))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: cannot parse %q as number", label, text)
	}

	// An explicit minus in the text is trusted as-is; never negate twice.
	if !strings.HasPrefix(cleaned, "-") && indicatesDown(text, firstClass(node), logger) {
		v = -v
	}
	return v, nil
}

// indicatesDown reports whether the markup marks the value as a fall: a down
// glyph in the text, or the down style class first on the value span. An
// unrecognized class applies no correction.
func indicatesDown(text, class string, logger *common.Logger) bool {
	if strings.Contains(text, glyphDown) {
		return true
	}
	if strings.Contains(text, glyphUp) {
		return false
	}

	switch class {
	case classDown:
		return true
	case classUp, "":
		return false
	default:
		logger.Warn().Str("class", class).Msg("Unrecognized direction class, leaving sign as-is")
		return false
	}
}

// valueNode locates the span labeled with id inside the price info region,
// then the inner span carrying a direction class, which holds the value text.
func valueNode(region *html.Node, id string) *html.Node {
	labeled := findNode(region, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Span && attrValue(n, "id") == id
	})
	if labeled == nil {
		return nil
	}

	for c := labeled.FirstChild; c != nil; c = c.NextSibling {
		if m := findNode(c, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.DataAtom == atom.Span &&
				(hasClass(n, classUp) || hasClass(n, classDown))
		}); m != nil {
			return m
		}
	}
	return nil
}

// findNode returns the first node in the subtree (including root) matching
// the predicate, depth-first.
func findNode(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if m := findNode(c, pred); m != nil {
			return m
		}
	}
	return nil
}

// nodeText collects the trimmed text content of a subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// firstClass returns the first class token on the node, mirroring how the
// upstream page is matched: only the leading class decides direction.
func firstClass(n *html.Node) string {
	fields := strings.Fields(attrValue(n, "class"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
