package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/newhook/tasklog/internal/cachemanager"
	"github.com/newhook/tasklog/internal/pipeline"
	"github.com/newhook/tasklog/internal/project"
	"github.com/newhook/tasklog/internal/render"
	"github.com/newhook/tasklog/internal/taskparam"
	"github.com/newhook/tasklog/internal/treeview"
	"github.com/spf13/pflag"
)

const (
	formatXML  = "xml"
	formatTree = "tree"
)

// outputOptions are the flags shared by commands that print parameters.
type outputOptions struct {
	format      string
	root        string
	indent      int
	declaration bool
	archive     bool
	noCache     bool
}

func (o *outputOptions) validate() error {
	switch o.format {
	case formatXML, formatTree:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", o.format, formatXML, formatTree)
	}
}

// newProcessor wires the cache and archive configured for proj.
func newProcessor(ctx context.Context, proj *project.Project, opts *outputOptions, source string) (*pipeline.Processor, error) {
	cfg := pipeline.Config{Source: source}

	if proj.Config.Cache.IsEnabled() && !opts.noCache {
		ttl := proj.Config.Cache.GetTTL()
		cfg.Cache = cachemanager.NewInMemoryCacheManager[string, *taskparam.Parameter]("task-parameters", ttl, 2*ttl)
		cfg.CacheTTL = ttl
	}

	if opts.archive || proj.Config.Archive.Enabled {
		db, err := proj.Archive(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Archive = db
	}
	return pipeline.New(cfg), nil
}

// writeParameters prints params in the requested format.
func writeParameters(w io.Writer, proj *project.Project, opts *outputOptions, params []*taskparam.Parameter) error {
	if opts.format == formatTree {
		return treeview.Printer{MaxWidth: proj.Config.Tree.GetMaxTextWidth()}.Fprint(w, params...)
	}

	root := opts.root
	if root == "" {
		root = proj.Config.Output.GetRootElement()
	}
	indent := opts.indent
	if indent < 0 {
		indent = proj.Config.Output.GetIndent()
	}
	if err := render.Write(w, params, render.Options{RootElement: root, Indent: indent, Declaration: opts.declaration}); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	if indent == 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// reportFailures prints per-message failures and returns an error if there were any.
func reportFailures(w io.Writer, failures []pipeline.Failure) error {
	for _, f := range failures {
		fmt.Fprintf(w, "error: %v\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d message(s) could not be processed", len(failures))
	}
	return nil
}

func addOutputFlags(flags *pflag.FlagSet, opts *outputOptions) {
	flags.StringVarP(&opts.format, "format", "f", formatXML, "output format (xml, tree)")
	flags.StringVar(&opts.root, "root", "", "root element name (default from config: Task)")
	flags.IntVar(&opts.indent, "indent", -1, "spaces per XML nesting level (default from config: 2)")
	flags.BoolVar(&opts.declaration, "declaration", false, "start XML output with an <?xml ...?> declaration")
	flags.BoolVar(&opts.archive, "archive", false, "store parsed parameters in the project archive")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable the parse cache")
}
