package bookmarkfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Parser parses Netscape bookmark file format, the HTML export format
// produced by Chrome, Firefox and Safari.
//
// The format nests definition lists: each DT holds either an anchor
// (a saved link) or an H3 heading followed by a DL (a folder).
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a bookmark export and returns the tree of nodes in
// document order. Input without any list yields an empty forest,
// never an error.
func (p *Parser) Parse(r io.Reader) ([]Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading bookmark file: %w", err)
	}

	root := doc.Find("dl").First()
	if root.Length() == 0 {
		return []Node{}, nil
	}

	return p.parseList(root), nil
}

func (p *Parser) parseList(list *goquery.Selection) []Node {
	nodes := []Node{}
	list.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
		if node, ok := p.parseItem(dt); ok {
			nodes = append(nodes, node)
		}
	})
	return nodes
}

// parseItem converts a single DT into a node. Items that hold neither
// an anchor nor a heading are skipped.
func (p *Parser) parseItem(dt *goquery.Selection) (Node, bool) {
	if anchor := dt.ChildrenFiltered("a").First(); anchor.Length() > 0 {
		href, _ := anchor.Attr("href")
		icon, _ := anchor.Attr("icon")
		return Node{
			Kind:    KindLink,
			Title:   strings.TrimSpace(anchor.Text()),
			URL:     strings.TrimSpace(href),
			Icon:    icon,
			AddedAt: parseAddDate(anchor),
		}, true
	}

	if heading := dt.ChildrenFiltered("h3").First(); heading.Length() > 0 {
		sub := dt.ChildrenFiltered("dl").First()
		if sub.Length() == 0 {
			// Some exports close the DT before the nested list, leaving
			// the DL as a sibling instead of a child
			if next := dt.Next(); next.Is("dl") {
				sub = next
			}
		}
		if sub.Length() == 0 {
			// A heading without any list is not a folder
			return Node{}, false
		}

		return Node{
			Kind:     KindFolder,
			Title:    strings.TrimSpace(heading.Text()),
			AddedAt:  parseAddDate(heading),
			Children: p.parseList(sub),
		}, true
	}

	return Node{}, false
}

// parseAddDate reads the ADD_DATE attribute, a unix timestamp in seconds.
func parseAddDate(s *goquery.Selection) time.Time {
	raw, ok := s.Attr("add_date")
	if !ok || raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
