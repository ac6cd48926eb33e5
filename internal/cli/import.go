package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gamevault/internal/importer"
)

// importSummary is the JSON shape of an import run.
type importSummary struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Errors   map[string]string `json:"errors,omitempty"`
}

func summarize(res importer.Result) importSummary {
	s := importSummary{Imported: res.Imported, Skipped: res.Skipped, Failed: res.Failed}
	for _, fe := range res.Errors {
		if s.Errors == nil {
			s.Errors = map[string]string{}
		}
		s.Errors[fe.File] = fe.Err.Error()
	}
	return s
}

func newImportCmd(a *app) *cobra.Command {
	var (
		watch    bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import games from a directory of markdown notes",
		Long: `Import reads every *.md note in <dir>. The file name is the game name and
the YAML front matter carries its attributes. Notes whose name is already in
the collection are skipped. With --watch the directory is imported again
whenever a note changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return a.runImportWatch(ctx, cmd.OutOrStdout(), args[0], debounce)
			}
			return a.runImport(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-import when notes change")
	cmd.Flags().DurationVar(&debounce, "debounce", importer.DefaultDebounce, "quiet period before a watched change is imported")
	return cmd
}

func (a *app) runImport(ctx context.Context, w io.Writer, dir string) (err error) {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer a.detach(backend, &err)

	games, err := backend.Games()
	if err != nil {
		return systemError(err)
	}
	res, err := importer.New(games, a.logger).Run(ctx, dir)
	if err != nil {
		return err
	}
	if err := a.reportImport(w, res); err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d notes failed to import", res.Failed, res.Imported+res.Skipped+res.Failed)
	}
	return nil
}

func (a *app) runImportWatch(ctx context.Context, w io.Writer, dir string, debounce time.Duration) (err error) {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer a.detach(backend, &err)

	games, err := backend.Games()
	if err != nil {
		return systemError(err)
	}
	return importer.New(games, a.logger).Watch(ctx, dir, debounce, func(res importer.Result) {
		if err := a.reportImport(w, res); err != nil {
			a.logger.Error("report import", "error", err)
		}
	})
}

func (a *app) reportImport(w io.Writer, res importer.Result) error {
	if a.jsonMode {
		return writeJSON(w, summarize(res))
	}
	fmt.Fprintf(w, "Imported %d, skipped %d, failed %d\n", res.Imported, res.Skipped, res.Failed)
	for _, fe := range res.Errors {
		fmt.Fprintf(w, "  %s\n", fe.Error())
	}
	return nil
}
