package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/faqrag/pkg/logger"
)

func decodeJSONLines(buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
		records = append(records, rec)
	}
	return records
}

var _ = Describe("New", func() {
	DescribeTable("writes records in the selected format",
		func(opt logger.Option, check func(string)) {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), opt)
			l.Info("indexed documents", "count", 4)
			check(buf.String())
		},
		Entry("text", logger.WithJSON(false), func(out string) {
			Expect(out).To(ContainSubstring(`msg="indexed documents"`))
			Expect(out).To(ContainSubstring("count=4"))
		}),
		Entry("json", logger.WithJSON(true), func(out string) {
			var rec map[string]any
			Expect(json.Unmarshal([]byte(out), &rec)).To(Succeed())
			Expect(rec["msg"]).To(Equal("indexed documents"))
			Expect(rec["count"]).To(BeNumerically("==", 4))
		}),
		Entry("pretty", logger.WithPretty(true), func(out string) {
			Expect(out).To(ContainSubstring("indexed documents"))
			Expect(out).To(ContainSubstring("count=4"))
		}),
	)

	It("drops debug records unless debug is enabled", func() {
		var quiet, verbose bytes.Buffer
		logger.New(logger.WithWriter(&quiet)).Debug("retrieve request")
		logger.New(logger.WithWriter(&verbose), logger.WithDebug(true)).Debug("retrieve request")

		Expect(quiet.String()).To(BeEmpty())
		Expect(verbose.String()).To(ContainSubstring("retrieve request"))
	})

	It("lets a later WithDebug(false) restore the info level", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithDebug(true), logger.WithDebug(false))
		l.Debug("indexed document")
		l.Info("indexed documents")

		records := decodeJSONLines(&buf)
		Expect(records).To(HaveLen(1))
		Expect(records[0]["msg"]).To(Equal("indexed documents"))
	})

	It("writes to every writer", func() {
		var a, b bytes.Buffer
		logger.New(logger.WithWriters(&a, &b)).Info("ready")

		Expect(a.String()).To(ContainSubstring("ready"))
		Expect(b.String()).To(ContainSubstring("ready"))
	})

	It("includes the caller when source is enabled", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true)).Info("with source")

		rec := decodeJSONLines(&buf)[0]
		Expect(rec).To(HaveKey(slog.SourceKey))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(h.Enabled(context.Background(), lvl)).To(BeFalse())
		}
	})
})

var _ = Describe("Multi", func() {
	It("sends each record to the loggers whose level admits it", func() {
		var console, file bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&console)),
			logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
		)

		l.Debug("indexed document", "id", "doc_0")
		l.Info("indexed documents", "count", 1)

		Expect(console.String()).NotTo(ContainSubstring("doc_0"))
		Expect(console.String()).To(ContainSubstring("indexed documents"))

		records := decodeJSONLines(&file)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["id"]).To(Equal("doc_0"))
		Expect(records[1]["count"]).To(BeNumerically("==", 1))
	})

	It("is enabled when any logger is", func() {
		l := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&bytes.Buffer{}), logger.WithDebug(true)))
		Expect(l.Handler().Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
	})

	It("carries attributes and groups to every logger", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		)

		l.With("driver", "sqlite").WithGroup("query").Info("done", "k", 3)

		for _, buf := range []*bytes.Buffer{&a, &b} {
			rec := decodeJSONLines(buf)[0]
			Expect(rec["driver"]).To(Equal("sqlite"))
			group, ok := rec["query"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["k"]).To(BeNumerically("==", 3))
		}
	})
})
