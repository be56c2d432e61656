package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/phrasemine/internal/corpus"
	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/config"
	"github.com/cognicore/phrasemine/pkg/phrasemine/metrics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

var (
	extractText    string
	extractJSON    bool
	extractRecords bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [corpus]",
	Short: "Extract keyphrases from a corpus file or a single --text message",
	Long: `Extract keyphrases from every message of a corpus file (.jsonl, .csv with a
"content" column, or plain text with one message per line). When a store is
configured the run and its per-message results are saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractText, "text", "t", "", "extract from this message instead of a corpus file")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print results as JSON lines")
	extractCmd.Flags().BoolVar(&extractRecords, "records", false, "include per-candidate scores in the output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	var (
		msgs   []corpus.Message
		source string
	)
	switch {
	case extractText != "":
		msgs = []corpus.Message{{ID: "1", Text: extractText}}
		source = "--text"
	case len(args) == 1:
		loaded, err := corpus.Load(args[0])
		if err != nil {
			return err
		}
		msgs = loaded
		source = args[0]
	default:
		return errors.New("a corpus file or --text is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := newLogger()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	comp, err := (&config.Loader{Config: cfg}).Load()
	if err != nil {
		return err
	}
	emb, hit, err := phrasemine.EmbedVocabulary(ctx, st, comp.Vocabulary, comp.Oracle)
	if err != nil {
		return err
	}
	logger.Debug("vocabulary embedded", "entries", comp.Vocabulary.Len(), "model", emb.ModelID, "cache_hit", hit)

	rec := metrics.New()
	serveMetrics(ctx, cfg.Metrics.Addr, rec, logger)

	opts := cfg.Options(comp, logger, rec)
	opts.Embedded = emb
	extractor, err := phrasemine.New(ctx, opts)
	if err != nil {
		return err
	}

	var run store.Run
	if st != nil {
		run, err = st.CreateRun(ctx, store.Run{Source: source, Config: snapshot(cfg)})
		if err != nil {
			return err
		}
	}

	results, err := extractor.ScoreMessages(ctx, corpus.Texts(msgs))
	if err != nil {
		return err
	}

	stats := store.RunStats{Messages: len(results)}
	stored := make([]store.MessageResult, len(results))
	for i, r := range results {
		stats.Phrases += len(r.Phrases)
		stored[i] = store.MessageResult{
			Index:     i,
			MessageID: msgs[i].ID,
			Text:      r.Message,
			Phrases:   r.Phrases,
			Records:   r.Records,
		}
		if r.Err != nil {
			stats.Failures++
			stored[i].Error = r.Err.Error()
		}
	}

	if err := printResults(cmd.OutOrStdout(), stored); err != nil {
		return err
	}

	if st != nil {
		if err := st.SaveResults(ctx, run.ID, stored); err != nil {
			return err
		}
		if err := st.FinishRun(ctx, run.ID, stats, time.Now().UTC()); err != nil {
			return err
		}
		logger.Info("run saved", "run", run.ID, "messages", stats.Messages, "phrases", stats.Phrases, "failures", stats.Failures)
	}
	return nil
}

// snapshot renders the effective configuration without secrets.
func snapshot(cfg *config.Config) string {
	c := *cfg
	c.Embedder.APIKey = ""
	data, err := yaml.Marshal(&c)
	if err != nil {
		return ""
	}
	return string(data)
}

type jsonResult struct {
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Phrases []string `json:"phrases"`
	Error   string   `json:"error,omitempty"`
	Records any      `json:"records,omitempty"`
}

func printResults(w io.Writer, results []store.MessageResult) error {
	if extractJSON {
		enc := json.NewEncoder(w)
		for _, r := range results {
			out := jsonResult{ID: r.MessageID, Message: r.Text, Phrases: r.Phrases, Error: r.Error}
			if out.Phrases == nil {
				out.Phrases = []string{}
			}
			if extractRecords {
				out.Records = r.Records
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(w, "%s\t[error] %s\n", r.MessageID, r.Error)
		case len(r.Phrases) == 0:
			fmt.Fprintf(w, "%s\t-\n", r.MessageID)
		default:
			fmt.Fprintf(w, "%s\t%s\n", r.MessageID, strings.Join(r.Phrases, ", "))
		}
		if extractRecords {
			for _, rec := range r.Records {
				mark := " "
				if rec.Accepted {
					mark = "+"
				}
				fmt.Fprintf(w, "  %s %-30s sem=%.3f lex=%.3f comb=%.3f\n", mark, rec.Phrase, rec.Semantic, rec.Lexical, rec.Combined)
			}
		}
	}
	return nil
}
