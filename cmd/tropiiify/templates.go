package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arkalab/tropiiify"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage item and photo templates",
	Long: `Manage the templates that map item properties to manifest fields.

Templates are stored in the SQLite database at database_path. Files may be
Tropy template exports (.ttp) or YAML with id, name and fields.

Examples:
  tropiiify templates import letter.ttp
  tropiiify templates list
  tropiiify templates delete https://example.org/templates/letter`,
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import template files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTemplatesImport,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a stored template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesImportCmd, templatesListCmd, templatesDeleteCmd)
}

func openStore() (*tropiiify.App, *tropiiify.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	app := newApp(cfg)
	store, err := app.Store()
	if err != nil {
		app.Close()
		return nil, nil, err
	}
	return app, store, nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	app, store, err := openStore()
	if err != nil {
		return err
	}
	defer app.Close()

	for _, path := range args {
		t, err := tropiiify.ReadTemplateFile(path)
		if err != nil {
			return err
		}
		if err := store.SaveTemplate(cmd.Context(), t); err != nil {
			return fmt.Errorf("save %s: %w", t.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d fields)\n", t.ID, len(t.Fields))
	}
	return nil
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	app, store, err := openStore()
	if err != nil {
		return err
	}
	defer app.Close()

	templates, err := store.ListTemplates(cmd.Context())
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates stored.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
	return w.Flush()
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	app, store, err := openStore()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := store.DeleteTemplate(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
