// Package initcmder provides the init command for initializing a local .faqrag
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/faqrag/pkg/cliui"
	"github.com/papercomputeco/faqrag/pkg/config"
	"github.com/papercomputeco/faqrag/pkg/dotdir"
)

const remoteFetchTimeout = 10 * time.Second

type initCommander struct {
	preset string
}

const initLongDesc string = `Initialize a new .faqrag/ directory in the current working directory.

Creates a local .faqrag/ directory that takes precedence over the default
~/.faqrag/ directory, and writes a config.toml with default values unless
one already exists.

Use --preset to write a config.toml for a known setup, overwriting any
existing file. A preset is either a name or an http(s) URL serving a
config.toml.

Presets:
  local     hashing embedder, in-memory vector store (the defaults)
  sqlite    hashing embedder, sqlite-vec vector store
  chroma    hashing embedder, Chroma at http://localhost:8000
  ollama    Ollama all-minilm embeddings at http://localhost:11434
  openai    OpenAI text-embedding-3-small embeddings

Examples:
  faqrag init
  faqrag init --preset ollama
  faqrag init --preset https://example.com/faqrag/config.toml`

const initShortDesc string = "Initialize a local .faqrag/ directory"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Preset name or URL of a config.toml to write")

	return cmd
}

func (c *initCommander) run(ctx context.Context, w io.Writer) error {
	// Resolve the preset before creating anything on disk.
	var (
		cfg *config.Config
		err error
	)
	if c.preset != "" {
		cfg, err = resolvePreset(ctx, c.preset)
		if err != nil {
			return err
		}
	}

	dir, existed, err := dotdir.NewManager().InitLocal()
	if err != nil {
		return err
	}

	if existed {
		lipgloss.Fprintf(w, "Already initialized: %s\n", cliui.DimStyle.Render(dir))
	} else {
		lipgloss.Fprintf(w, "%s Initialized %s directory: %s\n", cliui.SuccessMark, dotdir.DirName, cliui.DimStyle.Render(dir))
	}

	cfgPath := filepath.Join(dir, "config.toml")
	if cfg == nil {
		if _, err := os.Stat(cfgPath); err == nil {
			lipgloss.Fprintf(w, "%s %s\n", cliui.WarnStyle.Render("Keeping existing"), cliui.DimStyle.Render(cfgPath))
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking config: %w", err)
		}
		cfg = config.NewDefaultConfig()
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	lipgloss.Fprintf(w, "%s Wrote %s\n", cliui.SuccessMark, cliui.DimStyle.Render(cfgPath))
	cliui.Field(w, "Embedding:", cfg.Embedding.Provider)
	cliui.Field(w, "Vector store:", cfg.VectorStore.Provider)
	return nil
}

func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	if strings.HasPrefix(preset, "http://") || strings.HasPrefix(preset, "https://") {
		return fetchRemoteConfig(ctx, preset)
	}
	return config.PresetConfig(preset)
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
