package configcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/faqrag/pkg/cliui"
	"github.com/papercomputeco/faqrag/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .faqrag/ directory. Keys use dotted notation matching
the TOML section structure.

Valid keys:
  corpus.path,
  retrieval.query, retrieval.top_k,
  vector_store.provider, vector_store.target, vector_store.collection,
  vector_store.metric,
  embedding.provider, embedding.target, embedding.model,
  embedding.dimensions, embedding.rate_limit

Examples:
  faqrag config set corpus.path docs/faq.md
  faqrag config set vector_store.provider qdrant
  faqrag config set vector_store.target localhost:6334
  faqrag config set embedding.dimensions 768`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
	}

	return cmd
}

func runSet(w io.Writer, key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target == "" {
		return errors.New("no .faqrag directory found: run \"faqrag init\" or pass --config-dir")
	}
	printTarget(w, target)

	err = cfger.SetConfigValue(key, value)
	if err != nil {
		return err
	}

	lipgloss.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
