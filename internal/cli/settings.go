package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// SettingsOptions holds flags for settings set.
type SettingsOptions struct {
	*RootOptions
	StoreName         string
	Phone             string
	Email             string
	Address           string
	WhatsappGroup     string
	FacebookPage      string
	PointsPerCurrency float64
	Logo              string
}

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change store settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show store settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				st := s.store.Settings()
				return s.out.Emit(st, func(w io.Writer) { printSettings(s.out, st) })
			})
		},
	})
	cmd.AddCommand(newSettingsSetCommand(rootOpts))
	return cmd
}

func newSettingsSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SettingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change store settings",
		Long: `Change store settings. Only the flags given are changed.

Example:
  nezam settings set --store-name "Corner Shop" --points-rate 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				st := s.store.Settings()
				f := cmd.Flags()
				setIfChanged(f.Changed("store-name"), &st.StoreName, opts.StoreName)
				setIfChanged(f.Changed("phone"), &st.Phone, opts.Phone)
				setIfChanged(f.Changed("email"), &st.Email, opts.Email)
				setIfChanged(f.Changed("address"), &st.Address, opts.Address)
				setIfChanged(f.Changed("whatsapp-group"), &st.WhatsappGroup, opts.WhatsappGroup)
				setIfChanged(f.Changed("facebook"), &st.FacebookPage, opts.FacebookPage)
				setIfChanged(f.Changed("logo"), &st.Logo, opts.Logo)
				if f.Changed("points-rate") {
					st.PointsPerCurrency = opts.PointsPerCurrency
				}
				if err := s.store.UpdateSettings(ctx, st); err != nil {
					return storeError("update settings", err)
				}
				return s.out.Emit(st, func(w io.Writer) {
					fmt.Fprintln(w, "✓ Settings saved")
					printSettings(s.out, st)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.StoreName, "store-name", "", "store name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "store phone")
	cmd.Flags().StringVar(&opts.Email, "email", "", "store email")
	cmd.Flags().StringVar(&opts.Address, "address", "", "store address")
	cmd.Flags().StringVar(&opts.WhatsappGroup, "whatsapp-group", "", "WhatsApp group invite link")
	cmd.Flags().StringVar(&opts.FacebookPage, "facebook", "", "Facebook page link")
	cmd.Flags().Float64Var(&opts.PointsPerCurrency, "points-rate", 0, "loyalty points earned per currency unit")
	cmd.Flags().StringVar(&opts.Logo, "logo", "", "logo image (data URL)")
	return cmd
}

func setIfChanged(changed bool, dst *string, v string) {
	if changed {
		*dst = v
	}
}

func printSettings(out *OutputFormatter, st model.Settings) {
	out.Table([]string{"SETTING", "VALUE"}, [][]string{
		{"store name", st.StoreName},
		{"phone", st.Phone},
		{"email", st.Email},
		{"address", st.Address},
		{"whatsapp group", st.WhatsappGroup},
		{"facebook page", st.FacebookPage},
		{"points per currency", strconv.FormatFloat(st.PointsPerCurrency, 'f', -1, 64)},
	})
}
