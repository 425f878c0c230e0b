package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/model"
)

func attrsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attrs",
		Aliases: []string{"attributes"},
		Short:   "Manage attribute definitions",
	}
	cmd.AddCommand(attrsListCmd(), attrsAddCmd(), attrsEditCmd(), attrsRmCmd())
	return cmd
}

func attrsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List attribute definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderAttributes(cmd.OutOrStdout(), newClient().Attributes(cmd.Context()))
			return nil
		},
	}
}

// attrFlags holds the definition fields settable from the command line.
type attrFlags struct {
	name, label, unit, category, period string
	weight                              float64
	active, visible                     bool
}

func (f *attrFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.label, "label", "", "display label")
	fs.StringVar(&f.name, "name", "", "slug (derived from the label when empty)")
	fs.StringVar(&f.unit, "unit", "", "unit, e.g. bpm")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.period, "period", "am", "am or pm")
	fs.Float64Var(&f.weight, "weight", 1, "weight")
	fs.BoolVar(&f.active, "active", true, "offer the attribute in the editor")
	fs.BoolVar(&f.visible, "default-visible", true, "add the attribute to new entries automatically")
}

// apply copies every flag the user set onto in. A new label without
// --name re-derives the slug.
func (f *attrFlags) apply(fs *pflag.FlagSet, in *model.AttributeDefinitionInput) {
	if fs.Changed("label") {
		in.Label = f.label
		in.Name = lifelog.Slug(f.label)
	}
	if fs.Changed("name") {
		in.Name = f.name
	}
	if fs.Changed("unit") {
		in.Unit = &f.unit
	}
	if fs.Changed("category") {
		in.Category = &f.category
	}
	if fs.Changed("period") || in.DayPeriod == "" {
		in.DayPeriod = f.period
	}
	if fs.Changed("weight") {
		in.Weight = &f.weight
	}
	if fs.Changed("active") {
		in.Active = &f.active
	}
	if fs.Changed("default-visible") {
		in.DefaultVisible = &f.visible
	}
}

func attrsAddCmd() *cobra.Command {
	var f attrFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Define a new attribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in model.AttributeDefinitionInput
			f.apply(cmd.Flags(), &in)
			d, err := newClient().CreateAttribute(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", okStyle.Render("Added"), d.Label, d.Name)
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func attrsEditCmd() *cobra.Command {
	var f attrFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an attribute definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			var cur *model.AttributeDefinition
			for _, d := range c.Attributes(cmd.Context()) {
				if d.ID == args[0] {
					cur = &d
					break
				}
			}
			if cur == nil {
				return fmt.Errorf("attribute %s not found", args[0])
			}

			// the server replaces the whole definition
			in := model.AttributeDefinitionInput{
				Name:           cur.Name,
				Label:          cur.Label,
				Unit:           cur.Unit,
				Category:       cur.Category,
				Active:         &cur.Active,
				DefaultVisible: &cur.DefaultVisible,
				Weight:         &cur.Weight,
				DayPeriod:      cur.DayPeriod,
			}
			f.apply(cmd.Flags(), &in)
			d, err := c.UpdateAttribute(cmd.Context(), cur.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", okStyle.Render("Updated"), d.Label, d.Name)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func attrsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an attribute definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteAttribute(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}
