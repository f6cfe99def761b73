package tokens

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/drawsnap/model"
)

// ReadHOCR parses Tesseract hOCR output. Words without a bbox are skipped;
// a word without x_wconf gets confidence 0.
func ReadHOCR(r io.Reader) ([]model.PositionedToken, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	var out []model.PositionedToken
	page := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "ocr_page"):
				page++
			case hasClass(n, "ocrx_word"):
				if tok, ok := wordToken(n, page); ok {
					out = append(out, tok)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return out, nil
}

func wordToken(n *html.Node, page int) (model.PositionedToken, bool) {
	props := parseTitle(getAttr(n, "title"))

	box, ok := props["bbox"]
	if !ok || len(box) != 4 {
		return model.PositionedToken{}, false
	}
	coords := make([]float64, 4)
	for i, s := range box {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PositionedToken{}, false
		}
		coords[i] = v
	}

	confidence := 0.0
	if conf, ok := props["x_wconf"]; ok && len(conf) > 0 {
		if v, err := strconv.ParseFloat(conf[0], 64); err == nil {
			confidence = v
		}
	}

	if page < 1 {
		page = 1
	}
	return model.PositionedToken{
		Text:       strings.TrimSpace(textContent(n)),
		BBox:       model.NewBBoxFromCorners(coords[0], coords[1], coords[2], coords[3]),
		Confidence: confidence,
		Page:       page,
	}, true
}

// parseTitle splits an hOCR title such as "bbox 1 2 3 4; x_wconf 91" into
// property name and values.
func parseTitle(title string) map[string][]string {
	props := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		props[fields[0]] = fields[1:]
	}
	return props
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
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
	return sb.String()
}
