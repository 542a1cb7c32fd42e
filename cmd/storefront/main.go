package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/browser"
	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/storefront"
	"github.com/harry1917/basalto-web/internal/tui"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	// catalog flags
	tabFlag    string
	sleeveFlag string
	colorFlag  string
	queryFlag  string

	// checkout flags
	cartFlag    string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Basalto storefront in the terminal",
	Long: `Browse the Basalto catalog, fill a cart and check out against the
order backend configured by STOREFRONT_API_BASE_URL.

Run without arguments to open the interactive shop.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		// The interactive shop owns the terminal, so its log goes to a file.
		logger, err = newLogger(cfg, cmd.Name() == "storefront" || cmd.Name() == "shop")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runShop,
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Open the interactive shop",
	RunE:  runShop,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the catalog listing",
	RunE:  runCatalog,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from a YAML cart file",
	Long: `Fills the cart from a YAML script and submits it.

Example cart file:
  customer:
    full_name: Ana López
    phone: 7000-0000
    address_line1: Col. Escalón
    city: San Salvador
    payment_method: transfer
  items:
    - tab: men
      sleeve: long
      color: azul
      size: L
      qty: 2`,
	RunE: runCheckout,
}

func init() {
	catalogCmd.Flags().StringVar(&tabFlag, "tab", string(catalog.TabMen), "Category tab (men, kids, women)")
	catalogCmd.Flags().StringVar(&sleeveFlag, "sleeve", catalog.FilterAll, "Sleeve filter value")
	catalogCmd.Flags().StringVar(&colorFlag, "color", catalog.FilterAll, "Color filter value")
	catalogCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Free-text search")

	checkoutCmd.Flags().StringVar(&cartFlag, "cart", "", "YAML cart file")
	checkoutCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Order request timeout")
	_ = checkoutCmd.MarkFlagRequired("cart")

	rootCmd.AddCommand(shopCmd, catalogCmd, checkoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	if err := zcfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if toFile && cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zcfg.Build()
}

func newWindow() storefront.Window {
	if cfg.Storefront.Browser == "rod" {
		return browser.NewRodWindow(cfg.Storefront.BrowserHeadless, logger,
			browser.WithHomeURL(cfg.Storefront.APIBaseURL+cfg.Storefront.CatalogPath))
	}
	return browser.NewLogWindow(false, logger)
}

func closeWindow(w storefront.Window) {
	if rw, ok := w.(*browser.RodWindow); ok {
		if err := rw.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}
}

func newController(client *orders.Client, window storefront.Window, notifier storefront.Notifier) *storefront.Controller {
	return storefront.New(client, window, notifier, logger,
		storefront.WithCountry(cfg.Storefront.Country),
		storefront.WithShippingFlat(cfg.Storefront.ShippingFlat),
	)
}

func fetchListing(ctx context.Context, client *orders.Client) (*catalog.Listing, error) {
	markup, err := client.FetchListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return catalog.ParseListing(bytes.NewReader(markup))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runShop(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client := orders.NewClient(cfg.Storefront.APIBaseURL, logger)
	listing, err := fetchListing(ctx, client)
	if err != nil {
		return err
	}

	window := newWindow()
	defer closeWindow(window)

	notices := tui.NewNotices()
	ctrl := newController(client, window, notices)

	logger.Info("Shop started", zap.String("api", cfg.Storefront.APIBaseURL), zap.Int("cards", listing.Len()))
	_, err = tea.NewProgram(tui.New(ctx, ctrl, listing, notices), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client := orders.NewClient(cfg.Storefront.APIBaseURL, logger)
	listing, err := fetchListing(ctx, client)
	if err != nil {
		return err
	}

	f := catalog.NewFilter(listing)
	f.SetTab(catalog.ParseTab(tabFlag))
	f.SetSleeve(sleeveFlag)
	f.SetColor(colorFlag)
	res := f.SetQuery(queryFlag)

	fmt.Println(res.Counter)
	for _, cv := range res.Cards {
		if !cv.Visible {
			continue
		}
		c := cv.Card
		status := ""
		if c.SoldOut {
			status = "  [agotado]"
		}
		fmt.Printf("%3d  %s%s\n", c.Index, c.Text, status)
	}
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := os.Open(cartFlag)
	if err != nil {
		return err
	}
	defer file.Close()
	script, err := storefront.LoadScript(file)
	if err != nil {
		return err
	}

	client := orders.NewClient(cfg.Storefront.APIBaseURL, logger)
	listing, err := fetchListing(ctx, client)
	if err != nil {
		return err
	}

	window := newWindow()
	defer closeWindow(window)

	notifier := storefront.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	})
	ctrl := newController(client, window, notifier)

	runCtx, stop := context.WithTimeout(ctx, timeoutFlag)
	defer stop()

	out, err := script.Run(runCtx, ctrl, listing)
	if err != nil && !storefront.IsPartialSuccess(err) {
		return err
	}
	fmt.Println(out.String())
	if lw, ok := window.(*browser.LogWindow); ok {
		for _, v := range lw.Visits() {
			fmt.Printf("  %s: %s\n", v.Target, v.URL)
		}
	}
	return err
}
