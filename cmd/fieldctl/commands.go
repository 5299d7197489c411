package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"fieldbook/internal/database"
	"fieldbook/internal/export"
	"fieldbook/internal/models"
	"fieldbook/internal/service"

	"github.com/spf13/cobra"
)

func printFields(w io.Writer, fields []models.Field, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tCAPACITY\tPRICE/HOUR\tSTATUS")
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%s\n", f.ID, f.Name, f.Location, f.Capacity, f.PricePerHour, f.Status)
	}
	return tw.Flush()
}

func printField(w io.Writer, f models.Field) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", f.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", f.Name)
	fmt.Fprintf(tw, "Location:\t%s\n", f.Location)
	fmt.Fprintf(tw, "Capacity:\t%d\n", f.Capacity)
	fmt.Fprintf(tw, "Price per hour:\t%.2f\n", f.PricePerHour)
	fmt.Fprintf(tw, "Status:\t%s\n", f.Status)
	fmt.Fprintf(tw, "Description:\t%s\n", f.Description)
	if !f.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created:\t%s\n", f.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !f.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated:\t%s\n", f.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newListCommand(a *app) *cobra.Command {
	var (
		sortKey string
		desc    bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := a.svc.List(commandContext(cmd), service.ListQuery{Sort: sortKey, Desc: desc})
			if err != nil {
				return err
			}
			return printFields(cmd.OutOrStdout(), fields, asJSON)
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort by name, location, capacity, price or status")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.svc.Get(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printField(cmd.OutOrStdout(), f)
		},
	}
}

func bindFormFlags(cmd *cobra.Command, form *models.FieldForm) {
	cmd.Flags().StringVar(&form.Name, "name", "", "Field name")
	cmd.Flags().StringVar(&form.Location, "location", "", "Location")
	cmd.Flags().StringVar(&form.Capacity, "capacity", strconv.Itoa(models.DefaultCapacity), "Number of players")
	cmd.Flags().StringVar(&form.PricePerHour, "price", strconv.FormatFloat(models.DefaultPricePerHour, 'f', -1, 64), "Price per hour")
	cmd.Flags().StringVar(&form.Status, "status", string(models.DefaultStatus), "One of: "+strings.Join(models.Statuses(), ", "))
	cmd.Flags().StringVar(&form.Description, "description", "", "Free text description")
}

func newCreateCommand(a *app) *cobra.Command {
	var form models.FieldForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.svc.Create(commandContext(cmd), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Field added successfully: %s\n", f.ID)
			return nil
		},
	}

	bindFormFlags(cmd, &form)
	return cmd
}

// newUpdateCommand only changes the flags that are set; the rest keep their stored values.
func newUpdateCommand(a *app) *cobra.Command {
	var form models.FieldForm

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			current, err := a.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}

			merged := models.FormFromField(current)
			flags := cmd.Flags()
			for name, dst := range map[string]*string{
				"name":        &merged.Name,
				"location":    &merged.Location,
				"capacity":    &merged.Capacity,
				"price":       &merged.PricePerHour,
				"status":      &merged.Status,
				"description": &merged.Description,
			} {
				if flags.Changed(name) {
					*dst, _ = flags.GetString(name)
				}
			}

			f, err := a.svc.Update(ctx, current.ID, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Field updated successfully: %s\n", f.ID)
			return nil
		},
	}

	bindFormFlags(cmd, &form)
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if !yes {
				f, err := a.svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete '%s'? [y/N] ", f.Name)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := a.svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Field deleted successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Find fields by name or location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			fields, err := a.svc.List(commandContext(cmd), service.ListQuery{Query: query})
			if err != nil {
				return err
			}
			return printFields(cmd.OutOrStdout(), fields, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newFilterCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filter STATUS",
		Short: "List fields with the given status (All lists everything)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := a.svc.List(commandContext(cmd), service.ListQuery{Status: args[0]})
			if err != nil {
				return err
			}
			return printFields(cmd.OutOrStdout(), fields, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		out    string
		status string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write fields to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			var file *os.File
			if out != "-" {
				var err error
				if file, err = os.Create(out); err != nil {
					return err
				}
				w = file
			}

			n, err := a.svc.Export(commandContext(cmd), w, service.ListQuery{Query: query, Status: status})
			if file != nil {
				if closeErr := file.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					_ = os.Remove(out)
				}
			}
			if err != nil {
				return err
			}
			if file != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Data exported to %s (%d fields)\n", out, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", export.DefaultFilename, "Output file, - for stdout")
	cmd.Flags().StringVar(&status, "status", "", "Only export fields with this status")
	cmd.Flags().StringVar(&query, "query", "", "Only export fields matching this search")
	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the summary report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.svc.Report(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.String())
			return nil
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo fields into an empty collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.SeedFields(commandContext(cmd), database.DemoFields())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d fields\n", n)
			return nil
		},
	}
}
