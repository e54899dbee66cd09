package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookmarks-api/internal/bootstrap"
	"bookmarks-api/internal/domain"
)

func newUsersCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage users",
	}
	cmd.AddCommand(newUsersListCmd(o), newUsersPromoteCmd(o))
	return cmd
}

func newUsersListCmd(o *options) *cobra.Command {
	q := domain.PageQuery{}
	var order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users with their bookmark counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q.Order = domain.Order(order)
			if !q.Order.Valid() {
				return fmt.Errorf("invalid --order %q (newest|oldest)", order)
			}
			return o.withApp(cmd.Context(), func(app *bootstrap.App) error {
				p, err := app.Users.ListAll(cmd.Context(), q)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tBOOKMARKS")
				for _, u := range p.Items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Role, u.BookmarksCount)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d users\n", p.Page, p.LastPage(), p.Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "filter by name or email")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PerPage, "per-page", domain.DefaultPerPage, "users per page (max 100)")
	cmd.Flags().StringVar(&order, "order", string(domain.OrderNewest), "newest or oldest")
	return cmd
}

func newUsersPromoteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd.Context(), func(app *bootstrap.App) error {
				u, err := app.Users.Promote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d) is now %s\n", u.Email, u.ID, u.Role)
				return nil
			})
		},
	}
}
