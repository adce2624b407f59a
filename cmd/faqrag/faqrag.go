// Package faqragcmder
package faqragcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/faqrag/cmd/faqrag/config"
	corpuscmder "github.com/papercomputeco/faqrag/cmd/faqrag/corpus"
	initcmder "github.com/papercomputeco/faqrag/cmd/faqrag/init"
	runcmder "github.com/papercomputeco/faqrag/cmd/faqrag/run"
	versioncmder "github.com/papercomputeco/faqrag/cmd/version"
	"github.com/papercomputeco/faqrag/pkg/config"
)

const faqragLongDesc string = `faqrag is a minimal retrieval-augmented generation pipeline.

It embeds a small set of FAQ documents, stores them in a vector index,
retrieves the document nearest to a question and prints the prompt a
language model would receive.

Get started using:
  faqrag run                                   Query the built-in FAQ set
  faqrag run "How do I install a package?"     Ask your own question
  faqrag corpus                                List the documents to index
  faqrag init --preset chroma                  Write a .faqrag/config.toml`

const faqragShortDesc string = "faqrag - FAQ retrieval pipeline"

func NewFaqragCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "faqrag",
		Short:        faqragShortDesc,
		Long:         faqragLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadEnvFile(envFile)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .faqrag/ config directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Dotenv file loaded before configuration is resolved")

	// Add subcommands
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(corpuscmder.NewCorpusCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
