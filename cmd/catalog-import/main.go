// catalog-import проверяет и нормализует файл каталога: читает его терпимым
// загрузчиком, отбрасывая мусорные строки, и переписывает в каноническом виде
// с заголовком.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/storage/csvfile"
)

func main() {
	var (
		inPath  string
		outPath string
		execute bool
	)

	flag.StringVar(&inPath, "in", "", "path to the catalog CSV to validate (fallback: STOREFRONT_CATALOG_PATH)")
	flag.StringVar(&outPath, "out", "", "path for the normalized catalog (default: rewrite -in)")
	flag.BoolVar(&execute, "execute", false, "write the normalized file; dry-run by default")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if strings.TrimSpace(inPath) == "" {
		inPath = strings.TrimSpace(os.Getenv("STOREFRONT_CATALOG_PATH"))
	}
	if inPath == "" {
		fail("STOREFRONT_CATALOG_PATH (or -in) is required")
	}
	if outPath == "" {
		outPath = inPath
	}

	loader := csvfile.NewCatalogStore(inPath, log.WithField("component", "catalog-import"))
	products, err := loader.Load()
	if err != nil {
		fail("load catalog: %v", err)
	}

	fmt.Printf("parsed %d valid products from %s\n", len(products), inPath)
	for _, p := range products {
		fmt.Printf("  %s (%s): price=%.2f stock=%d\n", p.Name(), p.Category(), p.Price(), p.Stock())
	}

	if !execute {
		fmt.Println("dry-run: pass -execute to write the normalized catalog")
		return
	}

	writer := csvfile.NewCatalogStore(outPath, log.WithField("component", "catalog-import"))
	if err := writer.Save(products); err != nil {
		fail("save catalog: %v", err)
	}
	fmt.Printf("normalized catalog written to %s\n", outPath)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
