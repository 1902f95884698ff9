package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsflash/internal/scheduler"
	"github.com/deusflow/newsflash/internal/storage"
)

var pruneNow bool

var storeCheckCmd = &cobra.Command{
	Use:   "store-check",
	Short: "Verify the AI result store and print its statistics",
	RunE:  runStoreCheck,
}

func init() {
	rootCmd.AddCommand(storeCheckCmd)
	storeCheckCmd.Flags().BoolVar(&pruneNow, "prune", false, "prune expired entries after the check")
}

func runStoreCheck(cmd *cobra.Command, args []string) error {
	fmt.Printf("Store driver: %s\n", cfg.StoreDriver)
	if cfg.StoreDSN != "" {
		fmt.Printf("Store DSN: %s\n", maskDSN(cfg.StoreDSN))
	}

	store, err := storage.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	fmt.Println("Connected")

	key := storage.Key("healthcheck", "store-check", time.Now().String())
	if err := store.Put(storage.Entry{Key: key, Kind: "healthcheck", Value: "true"}); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if _, ok := store.Get(key); !ok {
		return fmt.Errorf("check entry was written but cannot be read back")
	}
	fmt.Println("Read/write OK")

	if pruneNow {
		n, err := scheduler.New(store, cfg.AICacheTTL()).Prune()
		if err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}
		fmt.Printf("Pruned %d expired entries\n", n)
	}

	stats := store.Stats()
	if outputJSON {
		return printJSON(stats)
	}
	fmt.Println("\nStatistics:")
	for k, v := range stats {
		fmt.Printf("  %s: %d\n", k, v)
	}
	return nil
}

// maskDSN hides the password of URL style DSNs.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
