package pkg

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const tableContainerClass = "table-container"

// Page is the typed content of a service authorization page, before classification
type Page struct {
	URL              string
	Title            string
	ServicePrefix    string
	ActionRows       []Row
	ResourceTypeRows []Row
	ConditionKeyRows []Row
}

// ParsePage reads a service authorization page.
//
// The service prefix is the text of the first <code> element. Tables are taken from
// .table-container elements and told apart by their first header cell; a page
// without headers gets its first table used as the actions table.
func ParsePage(r io.Reader, url string) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	page := &Page{URL: url}
	if code := findFirst(doc, isElement(atom.Code)); code != nil {
		page.ServicePrefix = normalizeWhitespace(nodeText(code))
	}
	if h1 := findFirst(doc, isElement(atom.H1)); h1 != nil {
		page.Title = pageTitle(normalizeWhitespace(nodeText(h1)))
	}

	tables := identifyTables(doc)
	if len(tables) == 0 {
		return nil, ErrNoActionsTable
	}

	var unlabelled []*html.Node
	for _, table := range tables {
		switch tableKind(table) {
		case "actions":
			page.ActionRows = RowsFromTable(table)
		case "resource types":
			page.ResourceTypeRows = RowsFromTable(table)
		case "condition keys":
			page.ConditionKeyRows = RowsFromTable(table)
		default:
			unlabelled = append(unlabelled, table)
		}
	}
	if page.ActionRows == nil {
		if len(unlabelled) == 0 {
			return nil, ErrNoActionsTable
		}
		page.ActionRows = RowsFromTable(unlabelled[0])
	}
	return page, nil
}

// identifyTables finds every <table> inside a .table-container element
func identifyTables(doc *html.Node) []*html.Node {
	var tables []*html.Node
	for _, container := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, tableContainerClass)
	}) {
		tables = append(tables, findAll(container, isElement(atom.Table))...)
	}
	return tables
}

func tableKind(table *html.Node) string {
	headers := tableHeaders(table)
	if len(headers) == 0 {
		return ""
	}
	first := strings.ToLower(headers[0])
	switch {
	case strings.HasPrefix(first, "actions"):
		return "actions"
	case strings.HasPrefix(first, "resource types"):
		return "resource types"
	case strings.HasPrefix(first, "condition keys"):
		return "condition keys"
	}
	return ""
}

// pageTitle turns "Actions, resources, and condition keys for Amazon EC2" into "Amazon EC2"
func pageTitle(heading string) string {
	if i := strings.LastIndex(heading, " for "); i >= 0 {
		return strings.TrimSpace(heading[i+len(" for "):])
	}
	return heading
}
