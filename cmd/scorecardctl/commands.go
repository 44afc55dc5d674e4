package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/modules/policy"
	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
)

var (
	saveName        string
	saveDescription string
	recordsPath     string
	lensName        string
	pngPath         string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active scorecards, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Print a saved scorecard as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a new scorecard from a records file",
	Args:  cobra.NoArgs,
	RunE:  runSave,
}

var overwriteCmd = &cobra.Command{
	Use:   "overwrite <filename>",
	Short: "Replace a scorecard's records; an empty selection archives it",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverwrite,
}

var archiveCmd = &cobra.Command{
	Use:   "archive <filename>",
	Short: "Hide a scorecard from the catalog, keeping its data",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchive,
}

var priceCmd = &cobra.Command{
	Use:   "price <filename>",
	Short: "Price a saved scorecard against the current catalogue",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrice,
}

var compareCmd = &cobra.Command{
	Use:   "compare <filename>...",
	Short: "Compare saved scorecards against the current catalogue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompare,
}

var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Read or replace the policy cost catalogue",
}

var catalogueExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the catalogue to a local file; the extension picks the format",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogueExport,
}

var catalogueImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Replace the catalogue with a local csv, xlsx, xls, json or yaml file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogueImport,
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readRecords(path string) ([]domain.ScorecardRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	t, err := core.Services.Formats.ReadTable(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return scorecard.RecordsFromTable(t)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	all, err := core.Repos.Catalog.ListActive(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tNAME\tDATE\tUSER")
	for _, m := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Filename, m.Name, m.Date, m.User)
	}
	return tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sc, err := core.Repos.Scorecards.Load(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), sc)
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	records, err := readRecords(recordsPath)
	if err != nil {
		return err
	}
	filename, err := core.Repos.Scorecards.SaveNew(ctx, scorecard.SaveNewInput{
		Name:        saveName,
		Description: saveDescription,
		Records:     records,
		User:        user,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filename)
	return nil
}

func runOverwrite(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	records, err := readRecords(recordsPath)
	if err != nil {
		return err
	}
	res, err := core.Repos.Scorecards.Overwrite(ctx, args[0], records, user)
	if err != nil {
		return err
	}
	if res.Archived {
		fmt.Fprintf(cmd.OutOrStdout(), "%s archived (no records selected)\n", res.Filename)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s overwritten\n", res.Filename)
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := core.Repos.Scorecards.Archive(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s archived\n", args[0])
	return nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	lens, ok := domain.ParseLens(lensName)
	if !ok || lens == domain.LensPackage {
		return fmt.Errorf("invalid --lens %q", lensName)
	}
	records, err := core.Repos.Scorecards.Records(ctx, args[0])
	if err != nil {
		return err
	}
	pr, err := core.Services.Policies.Price(ctx, records, lens)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), pr)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	groupBy, ok := domain.ParseLens(lensName)
	if !ok {
		return fmt.Errorf("invalid --group-by %q", lensName)
	}
	cmp, err := core.Services.Policies.Compare(ctx, args, groupBy)
	if err != nil {
		return err
	}
	if pngPath != "" {
		img, err := core.Services.Treemap.Render(cmp.Tree())
		if err != nil {
			return err
		}
		if err := os.WriteFile(pngPath, img, 0o644); err != nil {
			return fmt.Errorf("write treemap: %w", err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), cmp)
}

func runCatalogueExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cat, err := core.Services.Policies.Catalogue(ctx)
	if err != nil {
		return err
	}
	data, err := core.Services.Formats.WriteTable(filepath.Base(args[0]), cat.Table())
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("write catalogue: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d policies written to %s\n", cat.Len(), args[0])
	return nil
}

func runCatalogueImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read catalogue: %w", err)
	}
	t, err := core.Services.Formats.ReadTable(filepath.Base(args[0]), data)
	if err != nil {
		return err
	}
	cat, err := policy.ParseCatalogue(t)
	if err != nil {
		return err
	}
	if err := core.Services.Policies.ReplaceCatalogue(ctx, cat); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "catalogue replaced with %d policies\n", cat.Len())
	return nil
}
