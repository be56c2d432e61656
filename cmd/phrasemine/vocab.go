package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/phrasemine/internal/corpus"
	"github.com/cognicore/phrasemine/pkg/phrasemine/vocab"
)

var (
	vocabTerms     []string
	vocabExtracted []string
	vocabOut       string
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage keyphrase vocabularies",
}

var vocabBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Merge term lists and extracted keyphrases into a vocabulary file",
	Long: `Merge glossary or abbreviation lists (--terms, kept verbatim) and keyphrase
lists extracted from articles (--extracted, filtered: phrases longer than two
words are split into words) into one deduplicated vocabulary. Order follows
first appearance, which matters for lexical matching.`,
	Args: cobra.NoArgs,
	RunE: runVocabBuild,
}

func init() {
	vocabBuildCmd.Flags().StringSliceVar(&vocabTerms, "terms", nil, "term list files (.yaml terms: list or one per line)")
	vocabBuildCmd.Flags().StringSliceVar(&vocabExtracted, "extracted", nil, "extracted keyphrase files, one phrase per line")
	vocabBuildCmd.Flags().StringVarP(&vocabOut, "out", "o", "vocabulary.yaml", "output vocabulary file")
	vocabCmd.AddCommand(vocabBuildCmd)
}

func runVocabBuild(cmd *cobra.Command, _ []string) error {
	if len(vocabTerms) == 0 && len(vocabExtracted) == 0 {
		return errors.New("at least one --terms or --extracted file is required")
	}
	b := vocab.NewBuilder()
	for _, path := range vocabTerms {
		v, err := vocab.Load(path)
		if err != nil {
			return fmt.Errorf("load terms %s: %w", path, err)
		}
		b.Add(v.Entries()...)
	}
	for _, path := range vocabExtracted {
		msgs, err := corpus.Load(path)
		if err != nil {
			return fmt.Errorf("load extracted phrases %s: %w", path, err)
		}
		for _, m := range msgs {
			b.AddExtracted(splitPhrases(m.Text)...)
		}
	}

	v, err := b.Build()
	if err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(vocabOut)); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("output must be a .yaml file, got %s", vocabOut)
	}
	if err := v.Save(vocabOut); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", v.Len(), vocabOut)
	return nil
}

// splitPhrases accepts either one phrase per line or a comma separated list,
// as produced by `extract` text output.
func splitPhrases(line string) []string {
	parts := strings.Split(line, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
