// Package corpuscmder provides the corpus command for listing the documents
// a run would index.
package corpuscmder

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/faqrag/cmd/faqrag/flags"
	"github.com/papercomputeco/faqrag/pkg/cliui"
	"github.com/papercomputeco/faqrag/pkg/config"
	"github.com/papercomputeco/faqrag/pkg/corpus"
	"github.com/papercomputeco/faqrag/pkg/utils"
)

type corpusCommander struct {
	path  string
	width int
	quiet bool
}

const corpusLongDesc string = `List the documents in the corpus with the IDs they receive when indexed.

Without --corpus (or corpus.path in config.toml) the built-in FAQ set is
listed. Text and Markdown files contribute one document per non-blank line,
PDF files one document per page.

Use --quiet to print only the documents, one per line.

Examples:
  faqrag corpus
  faqrag corpus --corpus docs/faq.md
  faqrag corpus --width 0`

const corpusShortDesc string = "List the documents to index"

func NewCorpusCmd() *cobra.Command {
	cmder := &corpusCommander{}

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: corpusShortDesc,
		Long:  corpusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, flags.Registry, []string{config.FlagCorpus})
			cmder.path = v.GetString("corpus.path")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, flags.Registry, config.FlagCorpus, &cmder.path)
	cmd.Flags().IntVarP(&cmder.width, "width", "w", 100, "Truncate documents to this many bytes (0 disables truncation)")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the documents, one per line")

	return cmd
}

func (c *corpusCommander) run(w io.Writer) error {
	source := corpus.Default()
	origin := "built-in FAQ set"
	if c.path != "" {
		var err error
		source, err = corpus.Load(c.path)
		if err != nil {
			return fmt.Errorf("loading corpus: %w", err)
		}
		origin = c.path
	}

	if c.quiet {
		for _, doc := range source {
			fmt.Fprintln(w, doc)
		}
		return nil
	}

	lipgloss.Fprintf(w, "\n%s %s %s\n\n",
		cliui.HeaderStyle.Render("Corpus:"),
		cliui.ValueStyle.Render(origin),
		cliui.DimStyle.Render(fmt.Sprintf("(%d documents)", len(source))),
	)

	ids := source.IDs()
	idWidth := len(ids[len(ids)-1])
	for i, doc := range source {
		doc = strings.ReplaceAll(doc, "\n", " ")
		if c.width > 0 {
			doc = utils.Truncate(doc, c.width)
		}
		lipgloss.Fprintf(w, "  %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("%-*s", idWidth, ids[i])),
			doc,
		)
	}
	fmt.Fprintln(w)

	return nil
}
