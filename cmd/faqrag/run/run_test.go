package runcmder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	faqragcmder "github.com/papercomputeco/faqrag/cmd/faqrag"
	runcmder "github.com/papercomputeco/faqrag/cmd/faqrag/run"
	"github.com/papercomputeco/faqrag/pkg/rag"
	"github.com/papercomputeco/faqrag/pkg/vector"
)

const venvDoc = "How do I create a Python virtual environment? You can create a virtual environment using `python -m venv myenv` or `conda create -n myenv python=3.9`."

var _ = Describe("NewRunCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := runcmder.NewRunCmd()
		Expect(cmd.Use).To(Equal("run [query]"))
	})

	It("accepts at most one argument", func() {
		cmd := runcmder.NewRunCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"q"})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"a", "b"})).NotTo(Succeed())
	})

	It("registers the pipeline flags with config defaults", func() {
		cmd := runcmder.NewRunCmd()

		f := cmd.Flags().Lookup("top-k")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("k"))
		Expect(f.DefValue).To(Equal("1"))

		f = cmd.Flags().Lookup("vector-store-provider")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("memory"))

		f = cmd.Flags().Lookup("metric")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("l2"))

		Expect(cmd.Flags().Lookup("corpus")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("embedding-provider")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("embedding-rate-limit")).NotTo(BeNil())
	})
})

var _ = Describe("Run command execution", func() {
	var (
		configDir string
		stdout    *bytes.Buffer
		stderr    *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := faqragcmder.NewFaqragCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{"run", "--config-dir", configDir}, args...))
		return cmd.Execute()
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	It("retrieves the virtual environment FAQ for the default query", func() {
		Expect(execute("-q")).To(Succeed())

		lines := strings.Split(stdout.String(), "\n")
		Expect(lines[0]).To(Equal("All documents added to the vector store successfully!"))
		Expect(lines[1]).To(Equal("My Query: How do I make a virtual environment?"))
		Expect(lines[2]).To(Equal("Top Result: " + venvDoc))
		Expect(lines[3]).To(HavePrefix("Similarity Distance: "))
		Expect(lines[4]).To(BeEmpty())
		Expect(lines[5]).To(Equal("Conceptual LLM Prompt:"))
		Expect(strings.Join(lines[6:], "\n")).To(Equal(
			rag.AssemblePrompt(venvDoc, "How do I make a virtual environment?") + "\n",
		))
		Expect(stdout.String()).NotTo(ContainSubstring("Other Candidates:"))
	})

	It("uses the query argument over the configured query", func() {
		Expect(execute("-q", "What is Git?")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("My Query: What is Git?\n"))
		Expect(stdout.String()).To(ContainSubstring("Top Result: What is Git?"))
	})

	It("lists other candidates when top-k is above one", func() {
		Expect(execute("-q", "--top-k", "3")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("\nOther Candidates:\n  #2 "))
		Expect(stdout.String()).To(ContainSubstring("\n  #3 "))
		Expect(stdout.String()).NotTo(ContainSubstring("#4"))
	})

	It("reports progress on stderr unless quiet", func() {
		Expect(execute()).To(Succeed())
		Expect(stderr.String()).To(ContainSubstring("Indexing 4 documents"))
		Expect(stdout.String()).NotTo(ContainSubstring("Indexing"))
	})

	It("reads settings from config.toml", func() {
		err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`[retrieval]
query = "What is a FastAPI endpoint?"
top_k = 2

[vector_store]
provider = "sqlite"
metric = "cosine"
`), 0o600)
		Expect(err).NotTo(HaveOccurred())

		Expect(execute("-q")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("My Query: What is a FastAPI endpoint?\n"))
		Expect(stdout.String()).To(ContainSubstring("Top Result: What is a FastAPI endpoint?"))
		Expect(stdout.String()).To(ContainSubstring("Other Candidates:"))
	})

	It("loads the corpus from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "faq.txt")
		Expect(os.WriteFile(path, []byte("Tabs or spaces? Use spaces.\nWhat is Go? Go is a programming language.\n"), 0o600)).To(Succeed())

		Expect(execute("-q", "--corpus", path, "What is Go?")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("Top Result: What is Go? Go is a programming language.\n"))
	})

	It("fails on an unsupported corpus format", func() {
		path := filepath.Join(GinkgoT().TempDir(), "faq.csv")
		Expect(os.WriteFile(path, []byte("a,b\n"), 0o600)).To(Succeed())

		err := execute("-q", "--corpus", path)
		Expect(err).To(MatchError(ContainSubstring("loading corpus")))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("fails on an unknown vector store provider", func() {
		err := execute("-q", "--vector-store-provider", "faiss")
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider")))
	})

	It("fails on an unknown metric", func() {
		err := execute("-q", "--metric", "manhattan")
		Expect(err).To(HaveOccurred())
	})

	It("rejects a top-k below one", func() {
		err := execute("-q", "--top-k", "0")
		Expect(err).To(MatchError(ContainSubstring("at least 1")))
	})
})

var _ = Describe("PrintResult", func() {
	It("prints the report for a single result", func() {
		var buf bytes.Buffer
		top := vector.QueryResult{Record: vector.Record{ID: "doc_0", Document: "X"}, Distance: 0.25}

		runcmder.PrintResult(&buf, &rag.Result{
			Query:      "Y",
			Top:        top,
			Candidates: []vector.QueryResult{top},
			Prompt:     rag.AssemblePrompt("X", "Y"),
		})

		Expect(buf.String()).To(Equal("All documents added to the vector store successfully!\n" +
			"My Query: Y\n" +
			"Top Result: X\n" +
			"Similarity Distance: 0.25\n" +
			"\n" +
			"Conceptual LLM Prompt:\n" +
			"Based on the following context, please answer the question.\nContext: X\n\nQuestion: Y\n"))
	})

	It("lists candidates after the top result", func() {
		var buf bytes.Buffer
		top := vector.QueryResult{Record: vector.Record{ID: "doc_0", Document: "X"}, Distance: 0.25}
		next := vector.QueryResult{Record: vector.Record{ID: "doc_1", Document: "Z"}, Distance: 0.5}

		runcmder.PrintResult(&buf, &rag.Result{
			Query:      "Y",
			Top:        top,
			Candidates: []vector.QueryResult{top, next},
			Prompt:     rag.AssemblePrompt("X", "Y"),
		})

		Expect(buf.String()).To(ContainSubstring("Similarity Distance: 0.25\n\nOther Candidates:\n  #2 0.5 Z\n\nConceptual LLM Prompt:\n"))
	})
})

var _ = Describe("FormatDistance", func() {
	It("uses the shortest float32 representation", func() {
		Expect(runcmder.FormatDistance(0)).To(Equal("0"))
		Expect(runcmder.FormatDistance(0.04)).To(Equal("0.04"))
		Expect(runcmder.FormatDistance(1.5)).To(Equal("1.5"))
	})
})
