package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/whatsapp"
)

// WhatsappOptions holds flags for the whatsapp command.
type WhatsappOptions struct {
	*RootOptions
	Message string
	Promo   bool
}

// NewWhatsappCommand creates the whatsapp command.
func NewWhatsappCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WhatsappOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "whatsapp <customer-id>",
		Short: "Print a WhatsApp chat link for a customer",
		Long: `Print a wa.me link that opens a chat with the customer with the
message pre-filled. Without --message the store's promotion text is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				c, ok := s.store.Customer(args[0])
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("customer not found: %s", args[0]))
				}
				msg := opts.Message
				if msg == "" || opts.Promo {
					msg = whatsapp.PromotionMessage(s.store.Settings())
				}
				link, err := whatsapp.Link(c.Phone, msg)
				if err != nil {
					return WrapExitError(ExitFailure, "cannot build link", err)
				}
				return s.out.Emit(map[string]string{"url": link}, func(w io.Writer) {
					fmt.Fprintln(w, link)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "message text")
	cmd.Flags().BoolVar(&opts.Promo, "promo", false, "use the store promotion message")
	return cmd
}
