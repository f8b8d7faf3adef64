package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Preview an export over HTTP",
	Long: `Serve an export directory with CORS enabled so IIIF viewers can load
its manifests and tiles. The directory defaults to output_root.

Examples:
  tropiiify serve ./site
  tropiiify serve ./site --addr :9000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	root := cfg.OutputRoot
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		return errors.New("no directory to serve: pass one or set output_root")
	}

	app := newApp(cfg)
	defer app.Close()
	srv, err := app.NewServer(root)
	if err != nil {
		return err
	}
	return srv.Start(cmd.Context())
}
