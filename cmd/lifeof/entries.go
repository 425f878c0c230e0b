package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/model"
)

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Read and write daily entries",
	}
	cmd.AddCommand(
		dashboardCmd(), historyCmd(), homeCmd(), showCmd(),
		newEntryCmd(), editEntryCmd(), toggleCmd(), rmEntryCmd(), noteCmd(), exportCmd(),
	)
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "All entries, newest day first",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := newClient().Entries(cmd.Context(), "")
			renderDashboard(cmd.OutOrStdout(), lifelog.GroupByDate(entries))
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Entries grouped by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := newClient().Entries(cmd.Context(), "")
			renderHistory(cmd.OutOrStdout(), lifelog.GroupByMonth(entries))
			return nil
		},
	}
}

func homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Public entries as daily AM/PM cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := newClient().Entries(cmd.Context(), model.VisibilityPublic)
			renderHome(cmd.OutOrStdout(), lifelog.DailyViews(entries))
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newClient().Entry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderEntry(cmd.OutOrStdout(), *e)
			return nil
		},
	}
}

// applyValues sets name=value pairs on ed, adding optional attributes of
// the current period as needed.
func applyValues(ed *lifelog.Editor, pairs []string) error {
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", p)
		}
		name = strings.TrimSpace(name)
		err := ed.Set(name, value)
		if errors.Is(err, lifelog.ErrUnknownAttribute) {
			if err = ed.AddOptional(name); err == nil {
				err = ed.Set(name, value)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func newEntryCmd() *cobra.Command {
	var (
		date, period string
		public       bool
		sets         []string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an entry from the default attributes of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if period == "" {
				period = c.State().Period()
			}
			ed, err := lifelog.NewEditor(c.Attributes(cmd.Context()), period)
			if err != nil {
				return err
			}
			if err := applyValues(ed, sets); err != nil {
				return err
			}
			visibility := model.VisibilityPrivate
			if public {
				visibility = model.VisibilityPublic
			}
			in, err := ed.Payload(date, visibility)
			if err != nil {
				return err
			}
			e, err := c.CreateEntry(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Saved entry"), e.ID)
			renderEntry(cmd.OutOrStdout(), *e)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&period, "period", "", "am or pm (defaults to the last one used)")
	cmd.Flags().BoolVar(&public, "public", false, "publish the entry")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "attribute value as name=value (repeatable)")
	return cmd
}

func editEntryCmd() *cobra.Command {
	var (
		date, period, visibility string
		sets                     []string
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a saved entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			e, err := c.Entry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ed, err := lifelog.EditEntry(c.Attributes(cmd.Context()), *e)
			if err != nil {
				return err
			}
			if period != "" {
				if err := ed.SetPeriod(period); err != nil {
					return err
				}
			}
			if err := applyValues(ed, sets); err != nil {
				return err
			}
			if date == "" {
				date = e.Date
			}
			if visibility == "" {
				visibility = e.Visibility
			}
			in, err := ed.Payload(date, visibility)
			if err != nil {
				return err
			}
			updated, err := c.UpdateEntry(cmd.Context(), e.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Updated entry"))
			renderEntry(cmd.OutOrStdout(), *updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new date")
	cmd.Flags().StringVar(&period, "period", "", "switch to am or pm")
	cmd.Flags().StringVar(&visibility, "visibility", "", "public or private")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "attribute value as name=value (repeatable)")
	return cmd
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip an entry between public and private",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			e, err := c.Entry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			next := lifelog.Toggle(e.Visibility)
			if err := c.SetVisibility(cmd.Context(), e.ID, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", e.ID, visibilityBadge(next))
			return nil
		},
	}
}

func rmEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an entry with its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}

func noteCmd() *cobra.Command {
	var entryID string
	cmd := &cobra.Command{
		Use:   "note TEXT",
		Short: "Add a note to an entry (the last created one by default)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := newClient().AddNote(cmd.Context(), entryID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Note added"), dimStyle.Render(n.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "entry id")
	return cmd
}

func exportCmd() *cobra.Command {
	var out, visibility string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download entries as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().Export(cmd.Context(), visibility)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes)\n", okStyle.Render("Wrote"), out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "lifeof-entries.xlsx", "output file")
	cmd.Flags().StringVar(&visibility, "visibility", "", "only public or private entries")
	return cmd
}
