package pkg

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Row is a typed table row, cells in document order
type Row struct {
	Cells []Cell
}

// Cell is a typed table cell
type Cell struct {
	Text       string   // whitespace-normalized text of the whole cell
	Link       string   // href of the first link in the cell, if any
	Paragraphs []string // whitespace-normalized text of each non-empty <p>
}

// TextCell builds a cell holding plain text
func TextCell(text string) Cell {
	return Cell{Text: normalizeWhitespace(text)}
}

// NewRow builds a row of plain text cells
func NewRow(texts ...string) Row {
	cells := make([]Cell, 0, len(texts))
	for _, text := range texts {
		cells = append(cells, TextCell(text))
	}
	return Row{Cells: cells}
}

// Values returns the paragraphs of the cell, or its whole text when it has none
func (c Cell) Values() []string {
	if len(c.Paragraphs) > 0 {
		return c.Paragraphs
	}
	if c.Text != "" {
		return []string{c.Text}
	}
	return nil
}

// Text reconstructs the row text from its cells
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Cells))
	for _, cell := range r.Cells {
		if cell.Text != "" {
			parts = append(parts, cell.Text)
		}
	}
	return strings.Join(parts, " ")
}

// RowsFromTable converts the <tr> rows of a table into typed rows.
// Only <td> cells are taken, so header rows come out empty.
func RowsFromTable(table *html.Node) []Row {
	var rows []Row
	for _, tr := range findAll(table, isElement(atom.Tr)) {
		row := Row{Cells: []Cell{}}
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				row.Cells = append(row.Cells, cellFromNode(c))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// tableHeaders returns the normalized text of every <th> in the table
func tableHeaders(table *html.Node) []string {
	var headers []string
	for _, th := range findAll(table, isElement(atom.Th)) {
		headers = append(headers, normalizeWhitespace(nodeText(th)))
	}
	return headers
}

func cellFromNode(td *html.Node) Cell {
	cell := Cell{Text: normalizeWhitespace(nodeText(td))}
	if link := findFirst(td, func(n *html.Node) bool {
		return isElement(atom.A)(n) && attr(n, "href") != ""
	}); link != nil {
		cell.Link = attr(link, "href")
	}
	for _, p := range findAll(td, isElement(atom.P)) {
		if text := normalizeWhitespace(nodeText(p)); text != "" {
			cell.Paragraphs = append(cell.Paragraphs, text)
		}
	}
	return cell
}

// normalizeWhitespace collapses runs of whitespace and newlines into single spaces and trims
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nodeText concatenates every text node below n
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// findAll returns every descendant of n matching the predicate, in document order
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// findFirst returns the first descendant of n matching the predicate
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
