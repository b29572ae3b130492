package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spa/internal/errors"
	"github.com/vango-dev/spa/internal/views"
	"github.com/vango-dev/spa/pkg/navigation"
	"github.com/vango-dev/spa/pkg/vdom"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the application's routes",
		Long: `List the client routes in match order, with the parameters each
pattern captures. Paths no route matches render the dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := vdom.NewContainer("app")
			rt, err := views.NewRouter(c, navigation.NewHistory("/"), views.Options{
				Source: views.MemorySource{},
			})
			if err != nil {
				return errors.New("E140").Wrap(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tPARAMS")
			for _, r := range rt.Routes() {
				params := strings.Join(r.Params, ", ")
				if params == "" {
					params = "-"
				}
				fmt.Fprintf(w, "%s\t%s\n", r.Pattern, params)
			}
			fmt.Fprintf(w, "*\t(dashboard)\n")
			return w.Flush()
		},
	}
}
