package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
)

// NewProvidersCommand creates the providers command.
func NewProvidersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.loadApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			providers := a.registry.Providers()
			list := make([]backendtypes.ProviderInfo, 0, len(providers))
			for _, p := range providers {
				list = append(list, backendtypes.NewProviderInfo(p))
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(list, func(w io.Writer) { renderProviders(w, list) })
		},
	}
}
