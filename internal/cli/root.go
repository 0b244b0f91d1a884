package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/favcart/internal/client"
)

const defaultAPIURL = "http://localhost:8080/api"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL  string
	Timeout time.Duration
}

func (o *RootOptions) newHTTPClient() (*client.HTTPClient, error) {
	return client.NewHTTPClient(o.APIURL, o.Timeout)
}

// NewRootCommand creates the shopctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Terminal client for the favcart shop",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Timeout <= 0 {
				return fmt.Errorf("invalid timeout %s: must be positive", opts.Timeout)
			}
			return nil
		},
	}

	apiDefault := os.Getenv("FAVCART_API")
	if apiDefault == "" {
		apiDefault = defaultAPIURL
	}
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", apiDefault, "API root URL")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", client.DefaultTimeout, "per-request timeout")

	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))

	return cmd
}
