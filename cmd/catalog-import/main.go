// Command catalog-import bulk-loads a product catalog from gzipped JSONL
// exports. Each line is one product object: {"code", "name", "price"}.
// Files are processed concurrently; a bloom filter skips codes already
// written during the run, so re-exported duplicates cost one lookup
// instead of a database round trip.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// seenCodes is a concurrency-safe bloom filter over product codes written
// during this run. A false positive only re-upserts a product, which is
// harmless.
type seenCodes struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

func (s *seenCodes) testAndAdd(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.TestAndAddString(code)
}

func main() {
	var (
		dataDir     string
		databaseURL string
		workers     int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz catalog exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "max files processed concurrently")
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

	if err := run(ctx, dataDir, databaseURL, workers); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, workers int) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	seen := &seenCodes{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}

	slog.Info("importing catalog files", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(importFile(ctx, f, repo, seen))
	}
	return g.Wait()
}

func importFile(ctx context.Context, path string, repo *postgres.ProductRepository, seen *seenCodes) func() error {
	return func() error {
		var total, written, skipped uint64

		err := streamGzLines(ctx, path, func(line []byte) error {
			total++
			if total%progressEvery == 0 {
				slog.Info("import progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", total),
				)
			}

			p, err := decodeProduct(line)
			if err != nil {
				return errors.Wrapf(err, "line %d", total)
			}
			if err := p.Validate(); err != nil {
				return errors.Wrapf(err, "line %d", total)
			}

			if seen.testAndAdd(p.Code) {
				skipped++
				return nil
			}

			if err := repo.Upsert(ctx, p); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.Code)
			}
			written++
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import %s", path)
		}

		slog.Info("file complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", total),
			slog.Uint64("written", written),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// decodeProduct parses one JSONL line. The price accepts both JSON numbers
// and quoted decimal strings.
func decodeProduct(line []byte) (*catalog.Product, error) {
	var p catalog.Product

	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "code")
			}
			p.Code = v
		case "name":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			p.Name = v
		case "price":
			var raw string
			switch d.Next() {
			case jx.String:
				v, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "price")
				}
				raw = v
			case jx.Number:
				n, err := d.Num()
				if err != nil {
					return errors.Wrap(err, "price")
				}
				raw = n.String()
			default:
				return errors.New("price: expected number or string")
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price = v
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &p, nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
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
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
