package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/disiqueira/gotree/v3"
	"github.com/goccy/go-json"
)

// printer writes either aligned text or indented JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows as tab separated columns, or v as JSON.
func (p *printer) table(v any, rows [][]string) error {
	if p.json {
		return p.encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		for i, col := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// keyValues prints m sorted by key.
func (p *printer) keyValues(m map[string]any) error {
	if p.json {
		return p.encode(m)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k + ":", fmt.Sprint(m[k])})
	}
	return p.table(nil, rows)
}

// node is a printable hierarchy, rendered with gotree or as nested JSON.
type node struct {
	Label    string  `json:"label"`
	ID       string  `json:"id,omitempty"`
	Kind     string  `json:"kind,omitempty"`
	Children []*node `json:"children,omitempty"`
}

func (n *node) add(child *node) *node {
	n.Children = append(n.Children, child)
	return child
}

func (p *printer) tree(root *node) error {
	if p.json {
		return p.encode(root)
	}
	t := gotree.New(root.Label)
	addTree(t, root.Children)
	_, err := fmt.Fprint(p.w, t.Print())
	return err
}

func addTree(t gotree.Tree, children []*node) {
	for _, c := range children {
		addTree(t.Add(c.Label), c.Children)
	}
}
