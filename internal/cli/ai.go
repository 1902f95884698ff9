package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsflash/internal/app"
	"github.com/deusflow/newsflash/internal/news"
	"github.com/deusflow/newsflash/internal/scraper"
)

var (
	kwTitle   string
	kwContent string
	kwURL     string
	kwRelated bool

	sumTopic    string
	sumCategory string
	sumCountry  string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Extract keywords from an article",
	Long: `Extract the keywords used to find related articles.

Examples:
  newsflash keywords --title "Mars rover finds ice" --content "..."
  newsflash keywords --url https://example.com/story
  newsflash keywords --title "..." --related`,
	RunE: runKeywords,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize the current headlines of a topic",
	RunE:  runSummarize,
}

func init() {
	rootCmd.AddCommand(keywordsCmd, summarizeCmd)

	keywordsCmd.Flags().StringVar(&kwTitle, "title", "", "article title")
	keywordsCmd.Flags().StringVar(&kwContent, "content", "", "article content")
	keywordsCmd.Flags().StringVar(&kwURL, "url", "", "article URL, scraped when no content is given")
	keywordsCmd.Flags().BoolVar(&kwRelated, "related", false, "also fetch related articles")

	summarizeCmd.Flags().StringVar(&sumTopic, "topic", "", "topic label (default: the category)")
	summarizeCmd.Flags().StringVar(&sumCategory, "category", "", "category to summarize")
	summarizeCmd.Flags().StringVar(&sumCountry, "country", "", "country code")
}

func runKeywords(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(kwTitle) == "" && strings.TrimSpace(kwContent) == "" && kwURL == "" {
		return fmt.Errorf("one of --title, --content or --url is required")
	}

	if kwContent == "" && kwURL != "" {
		text, err := scraper.New(cfg.RequestTimeout).Extract(cmd.Context(), kwURL)
		if err != nil {
			return fmt.Errorf("failed to scrape %s: %w", kwURL, err)
		}
		kwContent = text
	}

	var (
		a   *app.App
		err error
	)
	if kwRelated {
		a, err = buildApp(cmd)
	} else {
		a, err = app.Build(cmd.Context(), cfg)
	}
	if err != nil {
		return err
	}
	defer a.Close()

	kws, err := a.Service.Keywords(cmd.Context(), kwTitle, kwContent)
	if err != nil {
		return err
	}

	var related *news.Result
	if kwRelated {
		related, err = a.Service.Related(cmd.Context(), kwTitle, kwContent, kwURL)
		if err != nil {
			return err
		}
	}

	if outputJSON {
		out := map[string]any{"keywords": kws}
		if related != nil {
			out["related"] = related
		}
		return printJSON(out)
	}

	if len(kws) == 0 {
		fmt.Println("No keywords found")
	} else {
		fmt.Printf("Keywords: %s\n", strings.Join(kws, ", "))
	}
	if related != nil {
		fmt.Println()
		return printResult(related)
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var res *news.Result
	topic := sumTopic
	if sumCategory != "" {
		res, err = a.Service.Category(cmd.Context(), sumCategory, 1)
		if topic == "" {
			topic = sumCategory
		}
	} else {
		res, err = a.Service.Headlines(cmd.Context(), sumCountry, 1)
		if topic == "" {
			topic = "top headlines"
		}
	}
	if err != nil {
		return err
	}

	sum := a.Service.TopicSummary(cmd.Context(), topic, res.Articles)
	if outputJSON {
		return printJSON(map[string]any{"topic": topic, "summary": sum})
	}
	if sum.Text == "" {
		fmt.Println("No summary available (is an AI provider configured?)")
		return nil
	}
	fmt.Printf("Summary of %s:\n\n%s\n", topic, sum.Text)
	return nil
}
