// Command newsdigest-cli exercises the newsdigest core end to end
// against live collaborators, mirroring herald's cmd/herald command
// wiring (persistent config flag, one subcommand per operation).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	newsdigest "github.com/glbaguni/newsdigest"
	"github.com/glbaguni/newsdigest/internal/config"
	"github.com/glbaguni/newsdigest/internal/extract"
	"github.com/glbaguni/newsdigest/internal/feedfetch"
	"github.com/glbaguni/newsdigest/internal/history"
	"github.com/glbaguni/newsdigest/internal/keywords"
	"github.com/glbaguni/newsdigest/internal/llm"
	"github.com/glbaguni/newsdigest/internal/mailer"
	"github.com/glbaguni/newsdigest/internal/recommend"
	"github.com/glbaguni/newsdigest/internal/registry"
	"github.com/glbaguni/newsdigest/internal/transport"
)

var (
	configPath string
	dbPath     string
	ollamaURL  string
	llmModel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsdigest-cli",
		Short: "Fetch, filter, and summarize Korean-focused news via the newsdigest core",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./newsdigest.db", "history store database path")
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama-compatible LLM endpoint")
	rootCmd.PersistentFlags().StringVar(&llmModel, "model", "", "LLM model name (default: from config)")

	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(rssCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(recommendCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *config.CoreConfig {
	if configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config %s: %v (using defaults)\n", configPath, err)
		return config.Default()
	}
	return cfg
}

// buildEngine wires every collaborator against live infrastructure:
// the embedded feed registry, a net/http transport, an Ollama LLM
// client, and a SQLite history store.
func buildEngine() (*newsdigest.Engine, func(), error) {
	cfg := loadConfig()
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	feedRegistry, err := registry.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load feed registry: %w", err)
	}

	httpClient := transport.NewDefaultClient()
	fetcher := feedfetch.New(httpClient)
	extractor := extract.New(httpClient)

	llmClient := llm.NewOllamaClient(ollamaURL)
	keywordExtractor := keywords.New(llmClient, cfg.LLM.Model)
	summarizer := llm.NewSummarizer(llmClient, cfg.LLM.Model, 2, 4, cfg.Limits.BodySoftCap, cfg.Limits.BodyHardCap)

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	sampler := recommend.NewRegistrySampler(feedRegistry, fetcher)
	recommender := recommend.New(store, sampler, cfg.Recommendation.WindowDays)

	sender := mailer.NewSMTPSender(os.Getenv("SMTP_HOST"), os.Getenv("SMTP_PORT"), os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	mailAdapter := mailer.New(sender)

	engine := newsdigest.NewEngine(cfg, feedRegistry, fetcher, extractor, keywordExtractor, summarizer, store, recommender, mailAdapter)
	return engine, func() { store.Close() }, nil
}

func queryCmd() *cobra.Command {
	var userID, recipient, language string
	var maxArticles int
	cmd := &cobra.Command{
		Use:   "query <search terms>",
		Short: "Summarize the most relevant recent articles matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := engine.SummarizeByQuery(context.Background(), newsdigest.PipelineRequest{
				Query:          args[0],
				MaxArticles:    maxArticles,
				Language:       newsdigest.Language(language),
				UserID:         userID,
				RecipientEmail: recipient,
			})
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to persist history against")
	cmd.Flags().StringVar(&recipient, "email", "", "recipient email for the digest")
	cmd.Flags().StringVarP(&language, "language", "l", "ko", "summary language (ko or en)")
	cmd.Flags().IntVarP(&maxArticles, "max", "n", 10, "maximum number of articles to summarize")
	return cmd
}

func rssCmd() *cobra.Command {
	var userID, recipient, language string
	var maxArticles int
	var rssURLs, articleURLs []string
	cmd := &cobra.Command{
		Use:   "rss",
		Short: "Summarize articles from explicit RSS feed and/or article URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := engine.SummarizeByRSS(context.Background(), newsdigest.PipelineRequest{
				RSSURLs:        rssURLs,
				ArticleURLs:    articleURLs,
				MaxArticles:    maxArticles,
				Language:       newsdigest.Language(language),
				UserID:         userID,
				RecipientEmail: recipient,
			})
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&rssURLs, "rss", nil, "RSS feed URLs to fetch")
	cmd.Flags().StringSliceVar(&articleURLs, "article", nil, "specific article URLs to extract and summarize")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to persist history against")
	cmd.Flags().StringVar(&recipient, "email", "", "recipient email for the digest")
	cmd.Flags().StringVarP(&language, "language", "l", "ko", "summary language (ko or en)")
	cmd.Flags().IntVarP(&maxArticles, "max", "n", 10, "maximum number of articles to summarize")
	return cmd
}

func historyCmd() *cobra.Command {
	var userID string
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's summarization history",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := engine.GetHistory(context.Background(), userID, page, perPage, "")
			if err != nil {
				return err
			}
			fmt.Printf("%d of %d records\n", len(result.Records), result.Total)
			for _, r := range result.Records {
				fmt.Printf("- [%s] %s (%s)\n", r.CreatedAt.Format("2006-01-02 15:04"), r.ArticleTitle, r.ArticleURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID")
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-indexed)")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "records per page")
	cmd.MarkFlagRequired("user")
	return cmd
}

func recommendCmd() *cobra.Command {
	var userID string
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Compute ranked recommendations for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			recs, err := engine.GetRecommendations(context.Background(), userID, limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				fmt.Printf("- [%s %.2f] %s (%s)\n", r.RecommendationType, r.RecommendationScore, r.ArticleTitle, r.ArticleURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of recommendations")
	cmd.MarkFlagRequired("user")
	return cmd
}

func printResponse(resp newsdigest.SummarizeResponse) {
	fmt.Printf("success=%v total=%d partial=%v\n", resp.Success, resp.TotalArticles, resp.Partial)
	if len(resp.ExtractedKeywords) > 0 {
		fmt.Printf("keywords: %v\n", resp.ExtractedKeywords)
	}
	for _, a := range resp.Articles {
		fmt.Printf("- %s [%s]\n  %s\n  %s\n", a.Title, a.Source, a.Summary, a.URL)
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(os.Stderr, "error: stage=%s kind=%s url=%s message=%s\n", e.Stage, e.Kind, e.URL, e.Message)
	}
}
