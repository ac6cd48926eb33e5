package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gamevault/internal/backup"
	"github.com/mesh-intelligence/gamevault/internal/paths"
)

func newExportCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the collection",
		Long: `Export writes every game to backup-<date>-<time>.json in the backup
directory. An empty collection writes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer a.detach(backend, &err)

			target, err := paths.ResolveBackupDir(dir, a.cfg.GetString(cfgKeyBackupDir), backend.DataDir())
			if err != nil {
				return systemError(err)
			}
			games, err := backend.Games()
			if err != nil {
				return systemError(err)
			}
			res, err := backup.Export(cmd.Context(), games, target, time.Now())
			if err != nil {
				return systemError(err)
			}
			a.logger.Debug("export finished", "path", res.Path, "games", res.Total, "bytes", res.Size)

			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Collection is empty, nothing exported")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d games to %s\n", res.Total, res.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (default: backup_dir from config, else <data-dir>/backups)")
	return cmd
}
