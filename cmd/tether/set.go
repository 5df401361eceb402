package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/tether/internal/codec"
)

func newSetCmd(c *cli) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set FILE PATH VALUE",
		Short: "Set a value in a data file",
		Long: `Set writes VALUE at PATH in FILE, keeping the file's format. PATH uses
the same syntax as bindings ("items[0].name" or "items.0.name"). VALUE is
parsed as JSON when it is valid JSON and taken as a string otherwise.
Running watchers pick up the change.`,
		Example: `  tether set data.toml server.port 9090
  tether set data.json user.tags '["a", "b"]'
  tether set data.yaml 'items[0].done' true`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, key, raw := args[0], args[1], args[2]

			f, err := codec.FormatFromPath(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			out, err := codec.PatchDocument(data, f, key, codec.ParseValue(raw), c.cfg.Output.Indent)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if dryRun {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := writeFileAtomic(path, out); err != nil {
				return err
			}
			c.logger.Debug("set %s in %s", key, path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the result instead of writing it")
	return cmd
}

// writeFileAtomic replaces path by renaming a temporary file over it, so
// watchers never see a partial write.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
