package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// CustomerOptions holds flags for customer commands.
type CustomerOptions struct {
	*RootOptions
	ID    string
	Name  string
	Phone string
	Email string
	Query string
}

// NewCustomerCommand creates the customer command group.
func NewCustomerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage registered customers",
	}
	cmd.AddCommand(newCustomerAddCommand(rootOpts))
	cmd.AddCommand(newCustomerUpdateCommand(rootOpts))
	cmd.AddCommand(newCustomerDeleteCommand(rootOpts))
	cmd.AddCommand(newCustomerListCommand(rootOpts))
	return cmd
}

func customerFlags(cmd *cobra.Command, opts *CustomerOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
}

func applyCustomerFlags(cmd *cobra.Command, opts *CustomerOptions, c *model.Customer) {
	f := cmd.Flags()
	if f.Changed("name") {
		c.Name = opts.Name
	}
	if f.Changed("phone") {
		c.Phone = opts.Phone
	}
	if f.Changed("email") {
		c.Email = opts.Email
	}
}

func newCustomerAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CustomerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a customer",
		Long: `Register a customer. Points and totals start at zero and grow with
each purchase.

Example:
  nezam customer add --name "Sara Ali" --phone "0100 123 4567"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Name == "" || opts.Phone == "" {
				return NewExitError(ExitCommandError, "--name and --phone are required")
			}
			c := model.Customer{ID: opts.ID}
			applyCustomerFlags(cmd, opts, &c)
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				if existing, ok := s.store.FindCustomerByPhone(c.Phone); ok {
					s.out.VerboseLog("phone %s is already used by %s (%s)", c.Phone, existing.Name, existing.ID)
				}
				added, err := s.store.AddCustomer(ctx, c)
				if err != nil {
					return storeError("add customer", err)
				}
				return s.out.Emit(added, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Added customer %s (%s)\n", added.Name, added.ID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "customer ID (generated when empty)")
	customerFlags(cmd, opts)
	return cmd
}

func newCustomerUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CustomerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a customer's contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				c, ok := s.store.Customer(args[0])
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("customer not found: %s", args[0]))
				}
				applyCustomerFlags(cmd, opts, &c)
				if _, err := s.store.UpdateCustomer(ctx, c); err != nil {
					return storeError("update customer", err)
				}
				return s.out.Emit(c, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Updated customer %s (%s)\n", c.Name, c.ID)
				})
			})
		},
	}

	customerFlags(cmd, opts)
	return cmd
}

func newCustomerDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer (their invoices are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				ok, err := s.store.DeleteCustomer(ctx, args[0])
				if err != nil {
					return storeError("delete customer", err)
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("customer not found: %s", args[0]))
				}
				return s.out.Emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Deleted customer %s\n", args[0])
				})
			})
		},
	}
}

func newCustomerListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CustomerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers with their loyalty totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				customers := model.FilterCustomers(s.store.Customers(), opts.Query)
				return s.out.Emit(customers, func(w io.Writer) {
					rows := make([][]string, 0, len(customers))
					for _, c := range customers {
						rows = append(rows, []string{
							c.ID, c.Name, c.Phone,
							money(c.TotalSpent), strconv.FormatFloat(c.Points, 'f', -1, 64),
							strconv.Itoa(c.PurchaseCount),
						})
					}
					s.out.Table([]string{"ID", "NAME", "PHONE", "SPENT", "POINTS", "PURCHASES"}, rows)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "filter by name or phone")
	return cmd
}
