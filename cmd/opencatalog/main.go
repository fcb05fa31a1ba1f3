package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/config"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/logging"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

type options struct {
	configPath string
	query      opencatalog.Query
	token      string
	xmlFile    string
	raw        bool
	data       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to the configuration file")
	flag.StringVar(&opts.query.Lang, "lang", "", "catalog language, defaults to the configured one")
	flag.StringVar(&opts.query.GTIN, "gtin", "", "look up by GTIN (EAN/UPC)")
	flag.IntVar(&opts.query.ProductID, "id", 0, "look up by catalog product ID")
	flag.StringVar(&opts.query.Brand, "brand", "", "brand for a SKU lookup")
	flag.StringVar(&opts.query.SKU, "sku", "", "vendor part number for a SKU lookup")
	flag.StringVar(&opts.token, "token", "", "Api-Token header value, defaults to the configured one")
	flag.StringVar(&opts.xmlFile, "xml", "", "parse a local XML file instead of calling the catalog ('-' reads stdin)")
	flag.BoolVar(&opts.raw, "raw", false, "print the raw XML document")
	flag.BoolVar(&opts.data, "data", false, "include the generic XML mapping in the JSON output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "opencatalog:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logging.Configure(cfg.Log.Level, true)

	client := opencatalog.NewClient(cfg.OpenCatalog.Client(), opencatalog.NewHTTPGetter(cfg.OpenCatalog.Timeout))

	product, err := lookup(ctx, client, cfg, opts, stdin)
	if err != nil {
		return err
	}
	log.Debug().Str("url", opencatalog.RedactURL(product.URL)).Msg("product loaded")

	if opts.raw {
		_, err := io.WriteString(stdout, product.XML)
		return err
	}
	if product.URL != "" && !product.Found() {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, product.ErrorMessage())
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog.Summarize(product, opts.data))
}

func lookup(ctx context.Context, client *opencatalog.Client, cfg *config.Config, opts options, stdin io.Reader) (*opencatalog.Product, error) {
	if opts.xmlFile != "" {
		var raw []byte
		var err error
		if opts.xmlFile == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(opts.xmlFile)
		}
		if err != nil {
			return nil, err
		}
		return client.GetProductByXMLData(string(raw))
	}

	q := opts.query
	if q.Lang == "" {
		q.Lang = cfg.OpenCatalog.DefaultLang
	}
	token := opts.token
	if token == "" {
		token = cfg.OpenCatalog.AccessToken
	}

	product, err := client.Fetch(ctx, q, token)
	if errors.Is(err, opencatalog.ErrEmptyQuery) {
		return nil, errors.New("give -gtin, -id, -brand with -sku, or -xml")
	}
	return product, err
}
