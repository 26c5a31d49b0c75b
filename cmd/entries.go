package cmd

import (
	"fmt"

	"github.com/openlyinc/pointy"
	"github.com/spf13/cobra"

	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/support/sdk"
)

const entriesExamples = `  plume entries list --conf ./plume.toml
  plume entries create --conf ./plume.toml --title "monday" --body "long day"
  plume entries patch --conf ./plume.toml --id <entry-id> --title "tuesday"`

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Short:   "Reads and edits journal entries on the Plume backend",
	Example: entriesExamples,
}

func init() {
	entriesCmd.AddCommand(entriesListCmd())
	entriesCmd.AddCommand(entriesCreateCmd())
	entriesCmd.AddCommand(entriesPatchCmd())
	entriesCmd.AddCommand(entriesDeleteCmd())
}

func entriesListCmd() *cobra.Command {
	ccmd := &cobra.Command{
		Use:   "list",
		Short: "Lists journal entries, following pagination to the end",
	}
	confPath := ccmd.Flags().StringP("conf", "c", "", "(required) client config file path")
	limit := ccmd.Flags().Int("limit", 0, "page size to request (0 uses the backend default)")
	e := ccmd.MarkFlagRequired("conf")
	if e != nil {
		panic(e)
	}

	ccmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()
		cfg := readClientConfig(*confPath)
		p, _ := makePlume(l, cfg)

		numEntries := 0
		cursor := ""
		for {
			page, e := p.ListEntries(nil, *limit, cursor)
			if e != nil {
				logger.Fatal(l, e)
			}

			for _, entry := range page.Entries {
				numEntries++
				fmt.Printf("%s  v%d  %s  %s\n", entry.ID, entry.Version, entry.UpdatedAt, entry.Title)
			}
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
		fmt.Printf("total: %d entries\n", numEntries)
	}
	return ccmd
}

func entriesCreateCmd() *cobra.Command {
	ccmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a new journal entry",
	}
	confPath := ccmd.Flags().StringP("conf", "c", "", "(required) client config file path")
	title := ccmd.Flags().String("title", "", "(required) entry title")
	body := ccmd.Flags().String("body", "", "entry body")
	tags := ccmd.Flags().StringSlice("tag", nil, "tag to set on the entry, can be repeated")
	e := ccmd.MarkFlagRequired("conf")
	if e != nil {
		panic(e)
	}
	e = ccmd.MarkFlagRequired("title")
	if e != nil {
		panic(e)
	}

	ccmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()
		cfg := readClientConfig(*confPath)
		p, _ := makePlume(l, cfg)

		created, e := p.CreateEntry(nil, *title, *body, *tags)
		if e != nil {
			logger.Fatal(l, e)
		}
		fmt.Printf("created entry %s (version %d)\n", created.ID, created.Version)
	}
	return ccmd
}

func entriesPatchCmd() *cobra.Command {
	ccmd := &cobra.Command{
		Use:   "patch",
		Short: "Applies a partial update to a journal entry, leaving unset fields untouched",
	}
	confPath := ccmd.Flags().StringP("conf", "c", "", "(required) client config file path")
	entryID := ccmd.Flags().String("id", "", "(required) ID of the entry to patch")
	title := ccmd.Flags().String("title", "", "new entry title")
	body := ccmd.Flags().String("body", "", "new entry body")
	tags := ccmd.Flags().StringSlice("tag", nil, "new tag set for the entry, can be repeated")
	e := ccmd.MarkFlagRequired("conf")
	if e != nil {
		panic(e)
	}
	e = ccmd.MarkFlagRequired("id")
	if e != nil {
		panic(e)
	}

	ccmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()
		cfg := readClientConfig(*confPath)
		p, _ := makePlume(l, cfg)

		// only the flags that were explicitly set end up in the patch
		patch := sdk.EntryPatch{}
		if ccmd.Flags().Changed("title") {
			patch.Title = pointy.String(*title)
		}
		if ccmd.Flags().Changed("body") {
			patch.Body = pointy.String(*body)
		}
		if ccmd.Flags().Changed("tag") {
			patch.Tags = tags
		}
		if patch.Title == nil && patch.Body == nil && patch.Tags == nil {
			logger.Fatal(l, fmt.Errorf("nothing to patch, set at least one of --title, --body, --tag"))
		}

		patched, e := p.PatchEntry(nil, *entryID, patch)
		if e != nil {
			logger.Fatal(l, e)
		}
		fmt.Printf("patched entry %s (version %d)\n", patched.ID, patched.Version)
	}
	return ccmd
}

func entriesDeleteCmd() *cobra.Command {
	ccmd := &cobra.Command{
		Use:   "delete",
		Short: "Deletes a journal entry",
	}
	confPath := ccmd.Flags().StringP("conf", "c", "", "(required) client config file path")
	entryID := ccmd.Flags().String("id", "", "(required) ID of the entry to delete")
	e := ccmd.MarkFlagRequired("conf")
	if e != nil {
		panic(e)
	}
	e = ccmd.MarkFlagRequired("id")
	if e != nil {
		panic(e)
	}

	ccmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()
		cfg := readClientConfig(*confPath)
		p, _ := makePlume(l, cfg)

		e := p.DeleteEntry(nil, *entryID)
		if e != nil {
			if sdk.IsNotFound(e) {
				logger.Fatal(l, fmt.Errorf("no entry with ID '%s'", *entryID))
			}
			logger.Fatal(l, e)
		}
		fmt.Printf("deleted entry %s\n", *entryID)
	}
	return ccmd
}
