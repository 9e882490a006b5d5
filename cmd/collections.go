package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/importer"
	"github.com/abhisek/wordcraft/internal/study"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"col"},
	Short:   "Manage word collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		resp, err := d.client.Collections(cmd.Context(), page, size)
		if err != nil {
			return fmt.Errorf("list collections: %w", explain(err))
		}

		out := cmd.OutOrStdout()
		if len(resp.Collections) == 0 {
			fmt.Fprintln(out, "No collections found.")
			return nil
		}

		fmt.Fprintf(out, "%-24s  %-32s  %s\n", "ID", "Name", "Words")
		fmt.Fprintln(out, strings.Repeat("─", 66))
		for _, c := range resp.Collections {
			fmt.Fprintf(out, "%-24s  %-32s  %d\n", c.ID, truncate(c.Name, 32), c.WordCount)
		}
		if resp.Total > len(resp.Collections) {
			fmt.Fprintf(out, "\nPage %d, %d of %d collections shown.\n", resp.Page, len(resp.Collections), resp.Total)
		}
		return nil
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		desc, _ := cmd.Flags().GetString("description")
		c, err := d.client.CreateCollection(cmd.Context(), api.CollectionInput{Name: args[0], Description: desc})
		if err != nil {
			return fmt.Errorf("create collection: %w", explain(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s).\n", c.Name, c.ID)
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		if err := d.client.DeleteCollection(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete collection: %w", explain(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
		return nil
	},
}

var collectionsWordsCmd = &cobra.Command{
	Use:   "words <id>",
	Short: "List the words in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		resp, err := d.client.CollectionWords(cmd.Context(), args[0], page, size)
		if err != nil {
			return fmt.Errorf("list words: %w", explain(err))
		}

		out := cmd.OutOrStdout()
		if len(resp.Words) == 0 {
			fmt.Fprintln(out, "No words in this collection.")
			return nil
		}
		fmt.Fprintf(out, "%-20s  %-14s  %s\n", "Word", "Status", "Translation")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, w := range resp.Words {
			fmt.Fprintf(out, "%-20s  %-14s  %s\n", w.Word, study.WordStatus(w.Status), w.Chinese)
		}
		fmt.Fprintf(out, "\n%d of %d words.\n", len(resp.Words), resp.Total)
		return nil
	},
}

var collectionsImportCmd = &cobra.Command{
	Use:   "import <id> <file>",
	Short: "Import words from an .xlsx, .csv or .txt file",
	Long: `Import words into a collection. The first column of each row is read;
blank rows and repeated words are skipped. Words are lower-cased.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, path := args[0], args[1]
		sheet, _ := cmd.Flags().GetString("sheet")
		header, _ := cmd.Flags().GetBool("header")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		res, err := importer.ReadFile(path, importer.Config{SheetName: sheet, SkipHeader: header})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Read %d rows: %d words, %d blank, %d repeated.\n",
			res.Rows, len(res.Words), res.Blank, res.Duplicates)
		if len(res.Words) == 0 {
			return fmt.Errorf("no words found in %s", path)
		}
		if dryRun {
			for _, w := range res.Words {
				fmt.Fprintln(out, w)
			}
			return nil
		}

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLogin(); err != nil {
			return err
		}

		result, err := d.client.ImportWords(cmd.Context(), id, res.Words)
		if err != nil {
			return fmt.Errorf("import words: %w", explain(err))
		}
		d.log.Info("imported words",
			zap.String("collection_id", id),
			zap.Int("sent", len(res.Words)),
			zap.Int("imported", result.Imported))
		fmt.Fprintf(out, "Imported %d words (%d generated, %d reused, %d already in the collection).\n",
			result.Imported, result.LLMGenerated, result.Reused, result.Duplicates)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{collectionsListCmd, collectionsWordsCmd} {
		c.Flags().Int("page", api.DefaultPage, "Page number")
		c.Flags().Int("page-size", api.DefaultPageSize, "Page size (max 100)")
	}
	collectionsCreateCmd.Flags().String("description", "", "Collection description")
	collectionsImportCmd.Flags().String("sheet", "", "Sheet name for .xlsx files (default first sheet)")
	collectionsImportCmd.Flags().Bool("header", false, "Skip the first row")
	collectionsImportCmd.Flags().Bool("dry-run", false, "Print the words without uploading")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsWordsCmd)
	collectionsCmd.AddCommand(collectionsImportCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
