// Package runcmder provides the run command, which indexes the corpus,
// retrieves the document nearest to a query and prints the assembled prompt.
package runcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/faqrag/cmd/faqrag/flags"
	"github.com/papercomputeco/faqrag/pkg/cliui"
	"github.com/papercomputeco/faqrag/pkg/config"
	"github.com/papercomputeco/faqrag/pkg/corpus"
	embeddingutils "github.com/papercomputeco/faqrag/pkg/embeddings/utils"
	"github.com/papercomputeco/faqrag/pkg/logger"
	"github.com/papercomputeco/faqrag/pkg/rag"
	"github.com/papercomputeco/faqrag/pkg/vector"
	vectorutils "github.com/papercomputeco/faqrag/pkg/vector/utils"
)

type runCommander struct {
	corpusPath string
	query      string
	topK       int

	vectorStoreProvider   string
	vectorStoreTarget     string
	vectorStoreCollection string
	metric                string

	embeddingProvider   string
	embeddingTarget     string
	embeddingModel      string
	embeddingDimensions uint
	embeddingRateLimit  float64

	quiet   bool
	debug   bool
	logFile string
	logger  *slog.Logger
}

var runFlags = []string{
	config.FlagCorpus,
	config.FlagTopK,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStoreColl,
	config.FlagMetric,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagEmbeddingRate,
}

const runLongDesc string = `Run the retrieval pipeline once.

Every document in the corpus is embedded and added to the vector store,
then the query is embedded and the nearest document is retrieved. The
prompt a language model would receive is printed; no model is called.

The query defaults to retrieval.query from config.toml. Flags override
FAQRAG_* environment variables, which override config.toml.

Examples:
  faqrag run
  faqrag run "How do I install a package?"
  faqrag run --top-k 3 --metric cosine
  faqrag run --corpus docs/faq.md --vector-store-provider sqlite
  faqrag run --embedding-provider ollama --embedding-model all-minilm`

const runShortDesc string = "Index the corpus and retrieve context for a query"

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, flags.Registry, runFlags)

			cmder.corpusPath = v.GetString("corpus.path")
			cmder.query = v.GetString("retrieval.query")
			cmder.topK = v.GetInt("retrieval.top_k")
			cmder.vectorStoreProvider = v.GetString("vector_store.provider")
			cmder.vectorStoreTarget = v.GetString("vector_store.target")
			cmder.vectorStoreCollection = v.GetString("vector_store.collection")
			cmder.metric = v.GetString("vector_store.metric")
			cmder.embeddingProvider = v.GetString("embedding.provider")
			cmder.embeddingTarget = v.GetString("embedding.target")
			cmder.embeddingModel = v.GetString("embedding.model")
			cmder.embeddingDimensions = v.GetUint("embedding.dimensions")
			cmder.embeddingRateLimit = v.GetFloat64("embedding.rate_limit")

			if len(args) == 1 {
				cmder.query = args[0]
			}
			if cmder.query == "" {
				return errors.New("a query is required: pass it as an argument or set retrieval.query")
			}
			if cmder.topK < 1 {
				return fmt.Errorf("--top-k must be at least 1, got %d", cmder.topK)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.logFile, err = cmd.Flags().GetString("log-file")
			if err != nil {
				return fmt.Errorf("could not get log-file flag: %w", err)
			}

			return cmder.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	// Flags write into cmder, PreRunE then overwrites every field with the
	// value resolved by viper so env and config.toml apply when a flag is unset.
	config.AddStringFlag(cmd, flags.Registry, config.FlagCorpus, &cmder.corpusPath)
	config.AddIntFlag(cmd, flags.Registry, config.FlagTopK, &cmder.topK)
	config.AddStringFlag(cmd, flags.Registry, config.FlagVectorStoreProv, &cmder.vectorStoreProvider)
	config.AddStringFlag(cmd, flags.Registry, config.FlagVectorStoreTgt, &cmder.vectorStoreTarget)
	config.AddStringFlag(cmd, flags.Registry, config.FlagVectorStoreColl, &cmder.vectorStoreCollection)
	config.AddStringFlag(cmd, flags.Registry, config.FlagMetric, &cmder.metric)
	config.AddStringFlag(cmd, flags.Registry, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, flags.Registry, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, flags.Registry, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, flags.Registry, config.FlagEmbeddingDims, &cmder.embeddingDimensions)
	config.AddFloat64Flag(cmd, flags.Registry, config.FlagEmbeddingRate, &cmder.embeddingRateLimit)
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Do not report progress on stderr")

	return cmd
}

func (c *runCommander) run(ctx context.Context, out, errOut io.Writer) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(errOut),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		// The file always receives debug records as JSON.
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(true),
			logger.WithJSON(true),
			logger.WithSource(c.debug),
			logger.WithWriter(f),
		))
	}

	source, err := c.loadSource()
	if err != nil {
		return err
	}

	metric, err := vector.ParseMetric(c.metric)
	if err != nil {
		return err
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProvider,
		TargetURL:    c.embeddingTarget,
		Model:        c.embeddingModel,
		Dimensions:   c.embeddingDimensions,
		RateLimit:    c.embeddingRateLimit,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: c.vectorStoreProvider,
		TargetURL:    c.vectorStoreTarget,
		Collection:   c.vectorStoreCollection,
		Metric:       metric,
		Dimensions:   c.embeddingDimensions,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer driver.Close()

	c.logger.Debug("pipeline configured",
		"documents", len(source),
		"embedding_provider", c.embeddingProvider,
		"vector_store_provider", c.vectorStoreProvider,
		"metric", string(metric),
		"top_k", c.topK,
	)

	pipeline, err := rag.NewPipeline(&rag.Config{
		Embedder:     embedder,
		VectorDriver: driver,
		TopK:         c.topK,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}

	var result *rag.Result
	runPipeline := func() error {
		result, err = pipeline.Run(ctx, source, c.query)
		return err
	}

	if c.quiet {
		err = runPipeline()
	} else {
		err = cliui.Step(errOut, fmt.Sprintf("Indexing %d documents", len(source)), runPipeline)
	}
	if err != nil {
		return err
	}

	PrintResult(out, result)
	return nil
}

func (c *runCommander) loadSource() (corpus.Source, error) {
	if c.corpusPath == "" {
		return corpus.Default(), nil
	}

	source, err := corpus.Load(c.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return source, nil
}

// PrintResult writes the pipeline outcome in the fixed report layout.
// Only the top document feeds the prompt; further candidates are listed
// for inspection.
func PrintResult(w io.Writer, r *rag.Result) {
	lipgloss.Fprintln(w, "All documents added to the vector store successfully!")
	lipgloss.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render("My Query:"), r.Query)
	lipgloss.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render("Top Result:"), r.Top.Document)
	lipgloss.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render("Similarity Distance:"), FormatDistance(r.Top.Distance))

	if len(r.Candidates) > 1 {
		lipgloss.Fprintf(w, "\n%s\n", cliui.HeaderStyle.Render("Other Candidates:"))
		for i, cand := range r.Candidates[1:] {
			lipgloss.Fprintf(w, "  %s %s %s\n",
				cliui.NameStyle.Render(fmt.Sprintf("#%d", i+2)),
				cliui.DimStyle.Render(FormatDistance(cand.Distance)),
				cand.Document,
			)
		}
	}

	lipgloss.Fprintf(w, "\n%s\n", cliui.HeaderStyle.Render("Conceptual LLM Prompt:"))
	lipgloss.Fprintln(w, r.Prompt)
}

// FormatDistance renders a distance with the shortest exact float32 digits.
func FormatDistance(d float32) string {
	return strconv.FormatFloat(float64(d), 'g', -1, 32)
}
