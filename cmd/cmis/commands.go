package main

import (
	"context"
	"fmt"
	"strings"

	cmislib "github.com/cmislib/cmislib.go"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

type env struct {
	client     *cmislib.Client
	repository string
	out        *printer
	opts       *options

	repo *cmislib.Repository
}

// repoFor returns the configured repository, or the default one.
func (e *env) repoFor(ctx context.Context) (*cmislib.Repository, error) {
	if e.repo != nil {
		return e.repo, nil
	}
	var err error
	if e.repository != "" {
		e.repo, err = e.client.GetRepository(ctx, e.repository)
	} else {
		e.repo, err = e.client.GetDefaultRepository(ctx)
	}
	return e.repo, err
}

type command struct {
	args    string
	summary string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"repos": {"", "list repositories", 0, 0, runRepos},
	"info":  {"", "show repository info and capabilities", 0, 0, runInfo},
	"ls":    {"[path]", "list a folder", 0, 1, runLs},
	"tree":  {"[path]", "show a folder tree", 0, 1, runTree},
	"get":   {"<id|path>", "show object properties", 1, 1, runGet},
	"cat":   {"<id|path>", "write document content", 1, 1, runCat},
	"query": {"<statement>", "run a CMIS query", 1, 1, runQuery},
	"types": {"[type-id]", "list type definitions", 0, 1, runTypes},
}

type objectRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func runRepos(ctx context.Context, e *env, _ []string) error {
	repos, err := e.client.ListRepositories(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, []string{r.ID, r.Name})
	}
	return e.out.table(repos, rows)
}

func runInfo(ctx context.Context, e *env, _ []string) error {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return err
	}
	info, err := repo.Info(ctx)
	if err != nil {
		return err
	}
	caps, err := repo.Capabilities(ctx)
	if err != nil {
		return err
	}
	if e.out.json {
		return e.out.encode(map[string]any{"info": info, "capabilities": caps})
	}
	all := make(map[string]any, len(info)+len(caps))
	for k, v := range info {
		all[k] = v
	}
	for k, v := range caps {
		all["capability"+k] = v
	}
	return e.out.keyValues(all)
}

// lookup resolves an argument starting with "/" as a path and anything
// else as an object id.
func lookup(ctx context.Context, repo *cmislib.Repository, arg string) (cmislib.CmisObject, error) {
	if strings.HasPrefix(arg, "/") {
		return repo.GetObjectByPath(ctx, arg, nil)
	}
	return repo.GetObject(ctx, arg, nil)
}

func folderArg(ctx context.Context, e *env, args []string) (*cmislib.Folder, error) {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return repo.RootFolder(ctx)
	}
	obj, err := lookup(ctx, repo, args[0])
	if err != nil {
		return nil, err
	}
	folder, ok := obj.(*cmislib.Folder)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not a folder", args[0], obj.Kind())
	}
	return folder, nil
}

func rowOf(ctx context.Context, obj cmislib.CmisObject) (objectRow, error) {
	props, err := obj.Properties(ctx)
	if err != nil {
		return objectRow{}, err
	}
	return objectRow{
		ID:   props.String(constants.PropObjectID),
		Name: props.String(constants.PropName),
		Kind: obj.Kind().String(),
	}, nil
}

// collect reads every page of rs.
func collect(ctx context.Context, rs *cmislib.ResultSet) ([]objectRow, error) {
	var rows []objectRow
	page, err := rs.Results(ctx)
	for err == nil && len(page) > 0 {
		for _, obj := range page {
			row, rowErr := rowOf(ctx, obj)
			if rowErr != nil {
				return nil, rowErr
			}
			rows = append(rows, row)
		}
		if !rs.HasNext() {
			break
		}
		page, err = rs.Next(ctx)
	}
	return rows, err
}

func (e *env) pageOptions() cmislib.Options {
	if e.opts.maxItems <= 0 {
		return nil
	}
	return cmislib.Options{"maxItems": e.opts.maxItems}
}

func printRows(e *env, rows []objectRow) error {
	text := make([][]string, 0, len(rows))
	for _, r := range rows {
		text = append(text, []string{r.Kind, r.ID, r.Name})
	}
	if rows == nil {
		rows = []objectRow{}
	}
	return e.out.table(rows, text)
}

func runLs(ctx context.Context, e *env, args []string) error {
	folder, err := folderArg(ctx, e, args)
	if err != nil {
		return err
	}
	rs, err := folder.Children(ctx, e.pageOptions())
	if err != nil {
		return err
	}
	rows, err := collect(ctx, rs)
	if err != nil {
		return err
	}
	return printRows(e, rows)
}

func runTree(ctx context.Context, e *env, args []string) error {
	folder, err := folderArg(ctx, e, args)
	if err != nil {
		return err
	}
	row, err := rowOf(ctx, folder)
	if err != nil {
		return err
	}
	root := &node{Label: row.Name, ID: row.ID, Kind: row.Kind}
	if err := walkFolder(ctx, folder, root, e.opts.depth); err != nil {
		return err
	}
	return e.out.tree(root)
}

// walkFolder adds the children of folder to n down to depth levels; a
// negative depth has no limit.
func walkFolder(ctx context.Context, folder *cmislib.Folder, n *node, depth int) error {
	if depth == 0 {
		return nil
	}
	rs, err := folder.Children(ctx, nil)
	if err != nil {
		return err
	}
	children, err := rs.Results(ctx)
	if err != nil {
		return err
	}
	for _, obj := range children {
		row, err := rowOf(ctx, obj)
		if err != nil {
			return err
		}
		child := n.add(&node{Label: row.Name, ID: row.ID, Kind: row.Kind})
		if sub, ok := obj.(*cmislib.Folder); ok {
			child.Label += "/"
			if err := walkFolder(ctx, sub, child, depth-1); err != nil {
				return err
			}
		}
	}
	return nil
}

func runGet(ctx context.Context, e *env, args []string) error {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return err
	}
	obj, err := lookup(ctx, repo, args[0])
	if err != nil {
		return err
	}
	props, err := obj.Properties(ctx)
	if err != nil {
		return err
	}
	return e.out.keyValues(props)
}

func runCat(ctx context.Context, e *env, args []string) error {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return err
	}
	obj, err := lookup(ctx, repo, args[0])
	if err != nil {
		return err
	}
	doc, ok := obj.(*cmislib.Document)
	if !ok {
		return fmt.Errorf("%s is a %s, not a document", args[0], obj.Kind())
	}
	content, err := doc.ContentStream(ctx)
	if err != nil {
		return err
	}
	_, err = e.out.w.Write(content)
	return err
}

func runQuery(ctx context.Context, e *env, args []string) error {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return err
	}
	rs, err := repo.Query(ctx, args[0], e.pageOptions())
	if err != nil {
		return err
	}
	rows, err := collect(ctx, rs)
	if err != nil {
		return err
	}
	return printRows(e, rows)
}

type typeRow struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	BaseID      string `json:"baseId"`
}

func typeRowOf(ctx context.Context, t *cmislib.ObjectType) (typeRow, error) {
	var row typeRow
	var err error
	if row.ID, err = t.ID(ctx); err != nil {
		return row, err
	}
	if row.DisplayName, err = t.DisplayName(ctx); err != nil {
		return row, err
	}
	row.BaseID, err = t.BaseID(ctx)
	return row, err
}

func runTypes(ctx context.Context, e *env, args []string) error {
	repo, err := e.repoFor(ctx)
	if err != nil {
		return err
	}
	var types []*cmislib.ObjectType
	if len(args) == 1 {
		types, err = repo.GetTypeChildren(ctx, args[0])
	} else {
		types, err = repo.GetTypeDefinitions(ctx, nil)
	}
	if err != nil {
		return err
	}

	if e.opts.tree {
		label := "types"
		if len(args) == 1 {
			label = args[0]
		}
		root := &node{Label: label}
		for _, t := range types {
			if err := walkType(ctx, repo, t, root); err != nil {
				return err
			}
		}
		return e.out.tree(root)
	}

	rows := make([]typeRow, 0, len(types))
	text := make([][]string, 0, len(types))
	for _, t := range types {
		row, err := typeRowOf(ctx, t)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		text = append(text, []string{row.ID, row.DisplayName, row.BaseID})
	}
	return e.out.table(rows, text)
}

func walkType(ctx context.Context, repo *cmislib.Repository, t *cmislib.ObjectType, parent *node) error {
	row, err := typeRowOf(ctx, t)
	if err != nil {
		return err
	}
	n := parent.add(&node{Label: row.ID, ID: row.ID})
	children, err := repo.GetTypeChildren(ctx, row.ID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := walkType(ctx, repo, c, n); err != nil {
			return err
		}
	}
	return nil
}
