package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ssiserve/internal/errors"
)

var renderCmd = &cobra.Command{
	Use:   "render <url-path>",
	Short: "Render a document to stdout",
	Long: `Resolve a URL path against the document root, expand its includes and
print the result. Include failures appear inline, exactly as a browser
would see them.

Examples:
  ssiserve render /index.html
  ssiserve render /docs/`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}
	a, err := newApp(workDir, "", cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	return renderPath(a, args[0], cmd.OutOrStdout())
}

// renderPath writes the rendered document for urlPath to w. urlPath is
// taken as typed on the command line, so a query or fragment is dropped.
func renderPath(a *app, urlPath string, w io.Writer) error {
	if i := strings.IndexAny(urlPath, "?#"); i >= 0 {
		urlPath = urlPath[:i]
	}
	res, err := a.resolver.Resolve(urlPath)
	if err != nil {
		return err
	}
	if !res.Render {
		if res.Directory {
			return errors.NewSsiError(errors.NotFound, fmt.Sprintf("%s is a directory without an index", res.URLPath), nil)
		}
		return errors.NewSsiError(errors.NotFound, fmt.Sprintf("%s is not a renderable document", res.URLPath), nil)
	}

	result, err := a.engine.Render(res.Path, res.URLPath)
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		a.logger.Warn("Include error", "code", string(f.Code), "message", f.Message)
	}

	_, err = w.Write(result.Content)
	return err
}
