// Package configcmder provides the config command for managing persistent
// faqrag configuration stored in the .faqrag/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent faqrag configuration.

Configuration is stored as config.toml in the .faqrag/ directory and provides
default values for command flags. CLI flags and FAQRAG_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  corpus.path,
  retrieval.query, retrieval.top_k,
  vector_store.provider, vector_store.target, vector_store.collection,
  vector_store.metric,
  embedding.provider, embedding.target, embedding.model,
  embedding.dimensions, embedding.rate_limit

Use subcommands to get, set, or list configuration values:
  faqrag config set <key> <value>    Set a configuration value
  faqrag config get <key>            Get a configuration value
  faqrag config list                 List all configuration values

Examples:
  faqrag config set vector_store.provider chroma
  faqrag config set retrieval.top_k 3
  faqrag config get embedding.model
  faqrag config list`

const configShortDesc string = "Manage persistent faqrag configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
