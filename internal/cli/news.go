package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsflash/internal/app"
	"github.com/deusflow/newsflash/internal/news"
)

var (
	newsCountry  string
	newsCategory string
	newsSource   string
	newsPage     int
	searchQuery  string
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Print top headlines",
	Long: `Print top headlines for a country, a category or a single source.

Examples:
  newsflash headlines --country gb
  newsflash headlines --category technology --page 2
  newsflash headlines --source bbc-news --json`,
	RunE: runHeadlines,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all articles",
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(headlinesCmd, searchCmd)

	headlinesCmd.Flags().StringVar(&newsCountry, "country", "", "country code (default from DEFAULT_COUNTRY)")
	headlinesCmd.Flags().StringVar(&newsCategory, "category", "", "category")
	headlinesCmd.Flags().StringVar(&newsSource, "source", "", "source id")
	headlinesCmd.Flags().IntVarP(&newsPage, "page", "p", 1, "page number")
	headlinesCmd.MarkFlagsMutuallyExclusive("category", "source")

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&newsPage, "page", "p", 1, "page number")
	searchCmd.MarkFlagRequired("query")
}

// buildApp is shared by the commands that talk to NewsAPI.
func buildApp(cmd *cobra.Command) (*app.App, error) {
	if err := cfg.RequireNewsAPI(); err != nil {
		return nil, err
	}
	return app.Build(cmd.Context(), cfg)
}

func runHeadlines(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var res *news.Result
	switch {
	case newsSource != "":
		res, err = a.Service.Source(cmd.Context(), newsSource, newsPage)
	case newsCategory != "":
		res, err = a.Service.Category(cmd.Context(), newsCategory, newsPage)
	default:
		res, err = a.Service.Headlines(cmd.Context(), newsCountry, newsPage)
	}
	if err != nil {
		return err
	}
	return printResult(res)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Search(cmd.Context(), searchQuery, newsPage)
	if err != nil {
		return err
	}
	return printResult(res)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(res *news.Result) error {
	if outputJSON {
		return printJSON(res)
	}

	if res.FromFeed {
		fmt.Println("(served from the publisher feed)")
	}
	fmt.Printf("Total results: %d\n", res.TotalResults)
	if p := res.Pagination; p != nil {
		fmt.Printf("Page %d of %d\n", p.Page, p.TotalPages)
	}
	fmt.Println(strings.Repeat("=", 70))

	for i, a := range res.Articles {
		fmt.Printf("%d. %s\n", i+1, a.Title)
		fmt.Printf("   %s | %s\n", a.Source.Name, a.PublishedAt)
		if desc := a.DescriptionText(); desc != "" {
			fmt.Printf("   %s\n", preview(desc, 150))
		}
		fmt.Printf("   %s\n\n", a.URL)
	}
	return nil
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
