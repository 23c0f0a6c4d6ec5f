package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avdev/sales-order-api/internal/domain/product"
	"github.com/avdev/sales-order-api/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	minCodeLen    = 6
	maxCodeLen    = 10
	minFeeds      = 2
)

// feedRecord is a single product line from a supplier feed file.
type feedRecord struct {
	Code            string
	Description     string
	Category        string
	Image           string
	Price           decimal.Decimal
	QuantityInStock int
}

// fileResult holds candidate products found in a single feed during pass 2.
// The mask tracks which feeds each code was confirmed in.
type fileResult struct {
	masks   map[string]uint
	records map[string]feedRecord
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing supplier feed .gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("product import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("product import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) < minFeeds {
		return errors.Errorf("need at least %d feed files in %s, found %d", minFeeds, dataDir, len(files))
	}

	// Pass 1: Build one bloom filter of product codes per feed, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: Keep products whose code appears in 2+ feeds.
	slog.Info("pass 2: finding confirmed products")

	confirmed, err := findConfirmedProducts(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed products")
	}

	slog.Info("confirmed products found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no confirmed products to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeProducts(ctx, postgres.NewProductRepository(pool), confirmed); err != nil {
		return errors.Wrap(err, "write products to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per feed file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line []byte) {
			code, err := decodeCode(line)
			if err != nil {
				return
			}
			if len(code) >= minCodeLen && len(code) <= maxCodeLen {
				filter.AddString(code)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress",
						slog.Int("file", idx+1),
						slog.Uint64("codes", count),
					)
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_codes", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedProducts re-streams each feed and checks codes against OTHER
// feeds' bloom filters. A product is confirmed when its code appears in 2 or
// more feeds; the record from the earliest feed wins.
func findConfirmedProducts(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]feedRecord, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all feeds.
	merged := make(map[string]uint)
	for _, r := range results {
		for code, mask := range r.masks {
			merged[code] |= mask
		}
	}

	// Keep records for codes appearing in 2+ feeds.
	var confirmed []feedRecord
	for code, mask := range merged {
		if bits.OnesCount(mask) < minFeeds {
			continue
		}
		for _, r := range results {
			if rec, ok := r.records[code]; ok {
				confirmed = append(confirmed, rec)
				break
			}
		}
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		masks := make(map[string]uint)
		records := make(map[string]feedRecord)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(line []byte) {
			rec, err := decodeRecord(line)
			if err != nil {
				return
			}
			if len(rec.Code) < minCodeLen || len(rec.Code) > maxCodeLen {
				return
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}

			// Check if this code appears in any OTHER feed's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(rec.Code) {
					masks[rec.Code] |= fileBit
					if _, ok := records[rec.Code]; !ok {
						records[rec.Code] = rec
					}
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_records", count),
			slog.Int("candidates", len(masks)),
		)

		results[idx] = fileResult{masks: masks, records: records}
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// decodeCode extracts only the product code from a feed line.
func decodeCode(line []byte) (string, error) {
	var code string
	d := jx.DecodeBytes(line)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) == "code" {
			v, err := d.Str()
			if err != nil {
				return err
			}
			code = v
			return nil
		}
		return d.Skip()
	}); err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("missing code")
	}
	return code, nil
}

// decodeRecord parses a full product record from a feed line.
func decodeRecord(line []byte) (feedRecord, error) {
	var rec feedRecord
	d := jx.DecodeBytes(line)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "code":
			v, err := d.Str()
			rec.Code = v
			return err
		case "description":
			v, err := d.Str()
			rec.Description = v
			return err
		case "category":
			v, err := d.Str()
			rec.Category = v
			return err
		case "image":
			v, err := d.Str()
			rec.Image = v
			return err
		case "price":
			v, err := d.Str()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(v)
			rec.Price = price
			return err
		case "quantity_in_stock":
			v, err := d.Int()
			rec.QuantityInStock = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return feedRecord{}, err
	}
	if rec.Code == "" {
		return feedRecord{}, errors.New("missing code")
	}
	return rec, nil
}

// writeProducts validates and upserts all confirmed products.
func writeProducts(ctx context.Context, repo *postgres.ProductRepository, records []feedRecord) error {
	slog.Info("writing products to database", slog.Int("count", len(records)))

	written := 0
	for _, rec := range records {
		p := &product.Product{
			ID:              uuid.New(),
			Code:            rec.Code,
			Description:     rec.Description,
			Category:        rec.Category,
			Image:           rec.Image,
			Price:           rec.Price,
			QuantityInStock: rec.QuantityInStock,
		}

		if err := product.Validate(p); err != nil {
			slog.Warn("skipping invalid product",
				slog.String("code", rec.Code),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", rec.Code)
		}

		written++
		if written%100 == 0 || written == len(records) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(records)))
		}
	}

	slog.Info("products written", slog.Int("written", written), slog.Int("skipped", len(records)-written))
	return nil
}
