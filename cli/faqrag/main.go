package main

import (
	"os"

	faqragcmder "github.com/papercomputeco/faqrag/cmd/faqrag"
)

func main() {
	cmd := faqragcmder.NewFaqragCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
