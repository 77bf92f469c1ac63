package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mlextractor/internal"
	"mlextractor/internal/config"
	"mlextractor/internal/fill"
	"mlextractor/internal/keywords"
	"mlextractor/internal/resolver"
	"mlextractor/internal/source"
	"mlextractor/internal/storage"
	"mlextractor/internal/template"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	table, err := keywords.Load()
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "analyze":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templatePath := fs.String("template", "", "template xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*templatePath) == "" {
			must(fmt.Errorf("--template is required"))
		}

		f, err := excelize.OpenFile(*templatePath)
		must(err)
		defer f.Close()

		geom, err := template.Analyze(f, table)
		must(err)

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		_, err = db.InsertAnalysis(*templatePath, geom)
		must(err)

		printJSON(geom)
	case "resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		productsPath := fs.String("products", "", "product file (xlsx or csv)")
		mapping := fs.String("map", "", "field=alias pairs, comma separated")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*productsPath) == "" {
			must(fmt.Errorf("--products is required"))
		}

		products, err := source.ReadProducts(*productsPath)
		must(err)
		declared, err := parseMapping(*mapping)
		must(err)

		resolved := resolver.Resolve(products.Headers, declared, table)
		printJSON(resolved)
	case "preview":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templatePath := fs.String("template", "", "template xlsx path")
		productsPath := fs.String("products", "", "product file (xlsx or csv)")
		mapping := fs.String("map", "", "field=alias pairs, comma separated")
		defaultsFlag := fs.String("defaults", "", "field=value pairs, comma separated")
		limit := fs.Int("limit", cfg.PreviewLimit, "max rows to show")
		_ = fs.Parse(os.Args[2:])
		if *templatePath == "" || *productsPath == "" {
			must(fmt.Errorf("--template and --products are required"))
		}

		geom, products, resolved, defaults, err := prepare(table, *templatePath, *productsPath, *mapping, *defaultsFlag)
		must(err)

		result := fill.Preview(geom, resolved, products.Rows, defaults, *limit)
		printJSON(result)
	case "fill":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		templatePath := fs.String("template", "", "template xlsx path")
		productsPath := fs.String("products", "", "product file (xlsx or csv)")
		mapping := fs.String("map", "", "field=alias pairs, comma separated")
		defaultsFlag := fs.String("defaults", "", "field=value pairs, comma separated")
		mode := fs.String("mode", string(internal.ModeFillEmpty), "fill-empty|append|overwrite|interactive")
		editsPath := fs.String("edits", "", "JSON edits file for interactive mode")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *templatePath == "" {
			must(fmt.Errorf("--template is required"))
		}
		interactive := internal.WriteMode(*mode) == internal.ModeInteractive
		if *productsPath == "" && !(interactive && *editsPath != "") {
			must(fmt.Errorf("--products is required (interactive mode may use --edits instead)"))
		}

		geom, products, resolved, defaults, err := prepare(table, *templatePath, *productsPath, *mapping, *defaultsFlag)
		must(err)
		edits, err := loadEdits(*editsPath)
		must(err)

		if internal.WriteMode(*mode) == internal.ModeOverwrite {
			backup, err := backupTemplate(cfg.BackupDir, *templatePath)
			must(err)
			fmt.Printf("backup written to %s\n", backup)
		}

		f, err := excelize.OpenFile(*templatePath)
		must(err)
		defer f.Close()
		grid, err := template.NewGrid(f, geom.Sheet)
		must(err)

		report, err := fill.Fill(grid, geom, resolved, products.Rows, defaults, internal.WriteMode(*mode), edits)
		must(err)

		outPath := *out
		if outPath == "" {
			must(os.MkdirAll(cfg.OutputDir, 0o755))
			base := strings.TrimSuffix(filepath.Base(*templatePath), filepath.Ext(*templatePath))
			outPath = filepath.Join(cfg.OutputDir, base+"-filled.xlsx")
		}
		must(f.SaveAs(outPath))

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		_, err = db.InsertRun(*templatePath, *productsPath, report)
		must(err)

		fmt.Print(fill.Summarize(report))
		fmt.Printf("output written to %s\n", outPath)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("#%d %s mode=%s products=%d filled=%d skipped=%d template=%s\n",
				run.ID, run.CreatedAt, run.WriteMode, run.TotalProducts,
				run.FieldsFilled, run.FieldsSkipped, run.TemplatePath)
		}
	default:
		usage()
		os.Exit(1)
	}
}

// prepare runs the shared front half of preview and fill: analyze the
// template, read the products and resolve the column mapping.
func prepare(table *keywords.Table, templatePath, productsPath, mapping, defaultsFlag string) (
	internal.TemplateGeometry, internal.ProductTable, internal.ResolvedMapping, map[internal.LogicalField]any, error) {

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return internal.TemplateGeometry{}, internal.ProductTable{}, nil, nil, err
	}
	defer f.Close()

	geom, err := template.Analyze(f, table)
	if err != nil {
		return internal.TemplateGeometry{}, internal.ProductTable{}, nil, nil, err
	}

	// Interactive runs driven purely by edits carry no product file.
	var products internal.ProductTable
	if productsPath != "" {
		products, err = source.ReadProducts(productsPath)
		if err != nil {
			return internal.TemplateGeometry{}, internal.ProductTable{}, nil, nil, err
		}
	}

	declared, err := parseMapping(mapping)
	if err != nil {
		return internal.TemplateGeometry{}, internal.ProductTable{}, nil, nil, err
	}
	if len(declared) == 0 {
		// No explicit mapping: try every known field against the headers.
		for _, field := range internal.LogicalFields {
			declared[field] = string(field)
		}
	}
	resolved := resolver.Resolve(products.Headers, declared, table)

	defaults, err := parseDefaults(defaultsFlag)
	if err != nil {
		return internal.TemplateGeometry{}, internal.ProductTable{}, nil, nil, err
	}

	return geom, products, resolved, defaults, nil
}

func parseMapping(raw string) (map[internal.LogicalField]string, error) {
	out := map[internal.LogicalField]string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		field, alias, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("bad mapping entry %q, want field=alias", pair)
		}
		if !internal.IsLogicalField(field) {
			return nil, fmt.Errorf("unknown field %q in mapping", field)
		}
		out[internal.LogicalField(field)] = alias
	}
	return out, nil
}

func parseDefaults(raw string) (map[internal.LogicalField]any, error) {
	out := map[internal.LogicalField]any{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		field, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("bad defaults entry %q, want field=value", pair)
		}
		if !internal.IsLogicalField(field) {
			return nil, fmt.Errorf("unknown field %q in defaults", field)
		}
		out[internal.LogicalField(field)] = value
	}
	return out, nil
}

func loadEdits(path string) ([]internal.Edit, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edits []internal.Edit
	if err := json.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("parse edits file: %w", err)
	}
	return edits, nil
}

// backupTemplate copies the template before an overwrite run touches it.
func backupTemplate(backupDir, templatePath string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	base := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	backupPath := filepath.Join(backupDir, fmt.Sprintf("%s-%s.xlsx", base, stamp))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", err
	}
	return backupPath, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	must(err)
	fmt.Println(string(data))
}

func usage() {
	fmt.Println("usage: mlextractor <command>")
	fmt.Println("commands:")
	fmt.Println("  analyze --template=plantilla.xlsx")
	fmt.Println("  resolve --products=productos.xlsx --map=\"title=Nombre,price=Precio\"")
	fmt.Println("  preview --template=... --products=... [--map=...] [--defaults=condition=Nuevo] [--limit=10]")
	fmt.Println("  fill --template=... [--products=...] [--map=...] [--defaults=...] [--mode=fill-empty|append|overwrite|interactive] [--edits=edits.json] [--out=...xlsx]")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
