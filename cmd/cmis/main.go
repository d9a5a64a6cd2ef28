// cmis is a small command line browser for CMIS AtomPub repositories.
//
// Settings are read from the file named by --config (or CMIS_CONFIG), then
// from the CMIS_URL, CMIS_USERNAME, CMIS_PASSWORD and CMIS_REPOSITORY
// environment variables, then from flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	cmislib "github.com/cmislib/cmislib.go"
	"github.com/cmislib/cmislib.go/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type options struct {
	configPath string
	url        string
	username   string
	password   string
	repository string
	logLevel   string
	logFormat  string
	maxItems   int
	depth      int
	json       bool
	tree       bool
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML settings file (default $"+config.EnvConfig+")")
	fs.StringVar(&o.url, "url", "", "CMIS service document URL")
	fs.StringVarP(&o.username, "user", "u", "", "user name")
	fs.StringVarP(&o.password, "password", "p", "", "password (prompted for when a user is set without one)")
	fs.StringVarP(&o.repository, "repository", "r", "", "repository id (default: first in the service document)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "", "text, json or zerolog")
	fs.IntVar(&o.maxItems, "max-items", 0, "page size for ls and query")
	fs.IntVarP(&o.depth, "depth", "d", 2, "levels shown by tree, -1 for all")
	fs.BoolVar(&o.json, "json", false, "print JSON")
	fs.BoolVar(&o.tree, "tree", false, "print types as a hierarchy")
	fs.BoolP("help", "h", false, "show help")
}

// settings merges the settings file and environment with explicit flags.
func (o *options) settings(fs *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("url", &cfg.URL, o.url)
	set("user", &cfg.Username, o.username)
	set("password", &cfg.Password, o.password)
	set("repository", &cfg.Repository, o.repository)
	set("log-level", &cfg.Log.Level, o.logLevel)
	set("log-format", &cfg.Log.Format, o.logFormat)
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("cmis", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.addFlags(fs)
	fs.Usage = func() { printHelp(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(stdout, fs)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printHelp(stderr, fs)
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		printHelp(stderr, fs)
		return errUsage
	}
	if len(rest)-1 < cmd.minArgs || len(rest)-1 > cmd.maxArgs {
		fmt.Fprintf(stderr, "usage: cmis %s %s\n", rest[0], cmd.args)
		return errUsage
	}

	cfg, err := opts.settings(fs)
	if err != nil {
		return err
	}
	if cfg.Username != "" && cfg.Password == "" {
		if cfg.Password, err = promptPassword(stdin, stderr); err != nil {
			return err
		}
	}
	conf, err := cfg.Connection()
	if err != nil {
		return err
	}

	e := &env{
		client:     cmislib.FromConfig(conf),
		repository: cfg.Repository,
		out:        newPrinter(stdout, opts.json),
		opts:       &opts,
	}
	return cmd.run(ctx, e, rest[1:])
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(stdin io.Reader, stderr io.Writer) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	fmt.Fprint(stderr, "Password: ")
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: cmis [flags] <command> [args]\n\nCommands:\n")
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(&b, "  %-6s %-22s %s\n", name, c.args, c.summary)
	}
	b.WriteString("\nFlags:\n")
	fmt.Fprint(w, b.String())
	fmt.Fprint(w, fs.FlagUsages())
}
