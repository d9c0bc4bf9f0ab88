package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/utafrali/sellerdesk/internal/app"
	"github.com/utafrali/sellerdesk/internal/catalog"
	"github.com/utafrali/sellerdesk/internal/config"
	"github.com/utafrali/sellerdesk/internal/domain"
	"github.com/utafrali/sellerdesk/internal/session"
	"github.com/utafrali/sellerdesk/pkg/logger"
)

type options struct {
	file        string
	backend     bool
	accessToken string
	criteria    domain.FilterCriteria
	locale      string
	asJSON      bool
	facets      bool
	logLevel    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var status, sort string

	fs := pflag.NewFlagSet("catalogctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.file, "file", "f", "", "read the catalog from a JSON file (array of products or a catalog object)")
	fs.BoolVar(&opts.backend, "backend", false, "fetch the catalog from SELLER_API_URL")
	fs.StringVar(&opts.accessToken, "access-token", os.Getenv("SELLERDESK_ACCESS_TOKEN"), "access token cookie used with --backend")
	fs.StringVarP(&opts.criteria.SearchTerm, "search", "s", "", "case-insensitive search over name, description and brand")
	fs.StringVarP(&opts.criteria.Category, "category", "c", domain.AllCategories, "exact category, or \"all\"")
	fs.StringVar(&status, "status", string(domain.StatusAll), "all, active, inactive, out-of-stock or low-stock")
	fs.StringVar(&sort, "sort", string(domain.SortNewest), "newest, oldest, price-high, price-low, name-asc, name-desc, stock-high or stock-low")
	fs.StringVar(&opts.locale, "locale", "en", "BCP 47 locale for name sorting")
	fs.BoolVar(&opts.asJSON, "json", false, "print the view as JSON")
	fs.BoolVar(&opts.facets, "facets", false, "print only the catalog's categories")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.criteria.Status = domain.StatusFilter(status)
	opts.criteria.Sort = domain.SortKey(sort)
	opts.criteria = opts.criteria.Normalize()
	if err := opts.criteria.Validate(); err != nil {
		return options{}, err
	}
	if (opts.file != "") == opts.backend {
		return options{}, errors.New("exactly one of --file or --backend is required")
	}
	if _, err := language.Parse(opts.locale); err != nil {
		return options{}, fmt.Errorf("invalid --locale %q: %w", opts.locale, err)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	log := logger.NewWithOptions("catalogctl", opts.logLevel, logger.FormatText, stderr)

	var (
		c   *domain.Catalog
		err error
	)
	if opts.backend {
		c, err = loadBackend(ctx, opts, log)
	} else {
		c, err = loadFile(opts.file)
	}
	if err != nil {
		return err
	}

	engine := catalog.NewEngine(language.Make(opts.locale))
	if opts.facets {
		for _, f := range engine.Facets(c) {
			fmt.Fprintln(stdout, f)
		}
		return nil
	}

	view := engine.ComputeView(c, opts.criteria)
	log.Debug("view computed",
		slog.Int("total", view.TotalCount),
		slog.Int("filtered", view.FilteredCount),
	)
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printView(stdout, view)
}

func loadFile(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	data = bytes.TrimSpace(data)

	c := &domain.Catalog{ID: path}
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &c.Products)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

func loadBackend(ctx context.Context, opts options, log *slog.Logger) (*domain.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	api, err := app.NewSellerAPI(cfg, log)
	if err != nil {
		return nil, err
	}
	if opts.accessToken != "" {
		api.Client.SetCookie(&http.Cookie{Name: cfg.AccessCookie, Value: opts.accessToken, Path: "/"})
	}

	sessions := session.NewManager(api.Client, session.Config{AccessCookie: cfg.AccessCookie}, log)
	st, err := sessions.Verify(ctx)
	if err != nil {
		return nil, err
	}
	if !st.LoggedIn {
		return nil, errors.New("not logged in: pass --access-token or set SELLERDESK_ACCESS_TOKEN")
	}

	products, err := api.Client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Catalog{ID: "backend", SellerID: st.UserID, Products: products}, nil
}

func printView(w io.Writer, v catalog.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tSTATUS\tACTIVE")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%t\n",
			it.ID, it.Name, it.Category, it.Price.StringFixed(2), it.StockQuantity, it.Stock.Label, it.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nshowing %d of %d products", v.FilteredCount, v.TotalCount)
	if v.HiddenCount > 0 {
		fmt.Fprintf(w, " (%d hidden by filters)", v.HiddenCount)
	}
	fmt.Fprintln(w)
	if v.IsEmpty {
		fmt.Fprintln(w, v.EmptyReason)
	}
	return nil
}
