package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/masterdata"
	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/internal/screen"
)

func newEntitiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the master-data entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATH\tENVELOPE\tFILTERS")
			for _, e := range masterdata.Catalog() {
				def := e.Definition
				fields := strings.Join(def.Fields, ",")
				if fields == "" {
					fields = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Name, def.Path, def.Envelope, fields)
			}
			return tw.Flush()
		},
	}
}

type listFlags struct {
	search  string
	page    string
	perPage string
	status  string
	order   string
	filters []string
}

func (f listFlags) patch(defaultPerPage int) (filter.Patch, error) {
	var p filter.Patch
	if f.search != "" {
		p.Search = &f.search
	}
	if f.status != "" {
		p.Status = &f.status
	}
	if f.page != "" {
		n, err := filter.ParsePage(f.page)
		if err != nil {
			return p, fmt.Errorf("--page %q: %w", f.page, err)
		}
		p.Page = &n
	}
	if f.perPage != "" {
		n, err := filter.ParsePerPage(f.perPage, defaultPerPage)
		if err != nil {
			return p, fmt.Errorf("--per-page %q: %w", f.perPage, err)
		}
		p.PerPage = &n
	}
	if f.order != "" {
		o, err := filter.ParseOrder(f.order)
		if err != nil {
			return p, fmt.Errorf("--order %q: %w", f.order, err)
		}
		p.CreatedAtOrder = &o
	}
	for _, kv := range f.filters {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return p, fmt.Errorf("--filter %q: want name=value", kv)
		}
		if p.Fields == nil {
			p.Fields = make(map[string]string)
		}
		p.Fields[name] = value
	}
	return p, nil
}

func (c *cli) view(cmd *cobra.Command, name string) (screen.View, func(), error) {
	entry, err := masterdata.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	rt, err := c.runtime(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	deps := rt.Deps(notify.NewLog(c.logger))
	view := entry.Screen(deps, screen.Options{Logger: c.logger})
	return view, func() { _ = rt.Close() }, nil
}

func newListCmd(c *cli) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Fetch one page of an entity list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, done, err := c.view(cmd, args[0])
			if err != nil {
				return c.fail(err)
			}
			defer done()
			p, err := flags.patch(view.Filter().PerPage)
			if err != nil {
				return c.fail(err)
			}
			if err := view.PatchFilter(p); err != nil {
				return c.fail(err)
			}
			page, err := view.List(cmd.Context())
			if err != nil {
				return c.fail(err)
			}
			return c.printJSON(page)
		},
	}
	cmd.Flags().StringVar(&flags.search, "search", "", "free-text search")
	cmd.Flags().StringVar(&flags.page, "page", "", "page number")
	cmd.Flags().StringVar(&flags.perPage, "per-page", "", "page size (1-100)")
	cmd.Flags().StringVar(&flags.status, "status", "", "status filter")
	cmd.Flags().StringVar(&flags.order, "order", "", "created_at order, asc or desc")
	cmd.Flags().StringArrayVar(&flags.filters, "filter", nil, "entity filter as name=value, repeatable")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Fetch one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return c.fail(err)
			}
			view, done, err := c.view(cmd, args[0])
			if err != nil {
				return c.fail(err)
			}
			defer done()
			item, err := view.Detail(cmd.Context(), id)
			if err != nil {
				return c.fail(err)
			}
			return c.printJSON(item)
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return c.fail(err)
			}
			view, done, err := c.view(cmd, args[0])
			if err != nil {
				return c.fail(err)
			}
			defer done()
			msg, err := view.Delete(cmd.Context(), id)
			if err != nil {
				return c.fail(err)
			}
			if msg.Message == "" {
				msg.Message = "deleted"
			}
			fmt.Fprintln(c.stdout, msg.Message)
			return nil
		},
	}
}
