package table

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads an HTML document and builds a Table from the table
// element with the given id. An empty id selects the first table.
//
// Rows inside thead become header rows. Rows inside tbody, or directly
// inside the table, become body rows.
func ParseHTML(r io.Reader, id string) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	node := findTable(doc, id)
	if node == nil {
		if id == "" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}

	t := &Table{ID: attr(node, "id")}
	for sec := node.FirstChild; sec != nil; sec = sec.NextSibling {
		if sec.Type != html.ElementNode {
			continue
		}
		switch sec.DataAtom {
		case atom.Thead:
			t.head = append(t.head, parseRows(sec)...)
		case atom.Tbody, atom.Tfoot:
			t.body = append(t.body, parseRows(sec)...)
		case atom.Tr:
			t.body = append(t.body, parseRow(sec))
		}
	}
	return t, nil
}

func findTable(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		if id == "" || attr(n, "id") == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTable(c, id); found != nil {
			return found
		}
	}
	return nil
}

func parseRows(sec *html.Node) []*Row {
	var rows []*Row
	for tr := sec.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
			rows = append(rows, parseRow(tr))
		}
	}
	return rows
}

func parseRow(tr *html.Node) *Row {
	row := &Row{}
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
			continue
		}
		cell := &Cell{
			HTML:   innerHTML(td),
			Header: td.DataAtom == atom.Th,
		}
		for _, a := range td.Attr {
			cell.Attrs = append(cell.Attrs, Attr{Key: a.Key, Val: a.Val})
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// WriteHTML writes the table as a table element with thead and tbody.
func (t *Table) WriteHTML(w io.Writer) error {
	var b strings.Builder
	if t.ID != "" {
		fmt.Fprintf(&b, "<table id=\"%s\">\n", html.EscapeString(t.ID))
	} else {
		b.WriteString("<table>\n")
	}
	if len(t.head) > 0 {
		b.WriteString("<thead>\n")
		writeRows(&b, t.head, "th")
		b.WriteString("</thead>\n")
	}
	b.WriteString("<tbody>\n")
	writeRows(&b, t.body, "td")
	b.WriteString("</tbody>\n</table>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRows(b *strings.Builder, rows []*Row, defaultTag string) {
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, c := range row.Cells {
			tag := defaultTag
			if c.Header {
				tag = "th"
			}
			b.WriteString("<" + tag)
			for _, a := range c.Attrs {
				fmt.Fprintf(b, " %s=\"%s\"", a.Key, html.EscapeString(a.Val))
			}
			b.WriteString(">" + c.HTML + "</" + tag + ">")
		}
		b.WriteString("</tr>\n")
	}
}
