// seed_sql genera el script SQL de datos de referencia (ubicaciones, políticas y catálogo)
// a partir del mismo archivo seed que usa STORAGE_DRIVER=memory.
//
// Uso: go run ./cmd/seed_sql [ruta/seed.yaml]
// Por defecto busca config/seed.yaml en el módulo.
// Escribe: migrations/0002_seed_reference_data.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/pkg/textnorm"
)

func main() {
	moduleRoot := findModuleRoot()
	seedPath := filepath.Join(moduleRoot, "config", "seed.yaml")
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}
	seed, err := memory.LoadSeed(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer seed: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(moduleRoot, "migrations", "0002_seed_reference_data.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Datos de referencia del motor de stock\n")
	fmt.Fprintf(out, "-- Generado desde %s\n\n", filepath.Base(seedPath))

	locations := seed.Locations
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })

	// 1. Ubicaciones sin padre; el padre se asigna después para no depender del orden
	out.WriteString("-- 1. Ubicaciones\n")
	for _, l := range locations {
		if l.ID == "" {
			fmt.Fprintf(os.Stderr, "Ubicación sin id en %s\n", seedPath)
			os.Exit(1)
		}
		maxCap, err := sqlDecimal(l.MaxCapacity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "max_capacity de %s: %v\n", l.ID, err)
			os.Exit(1)
		}
		locType := l.Type
		if locType == "" {
			locType = "warehouse"
		}
		fmt.Fprintf(out, "INSERT INTO locations (id, workspace_id, type, name, max_capacity)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', %s)\n",
			escapeSQL(l.ID), escapeSQL(l.WorkspaceID), escapeSQL(locType), escapeSQL(l.Name), maxCap)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, name = EXCLUDED.name, max_capacity = EXCLUDED.max_capacity;\n")
	}

	// 2. Jerarquía
	out.WriteString("\n-- 2. Jerarquía\n")
	for _, l := range locations {
		if l.ParentID == "" {
			continue
		}
		fmt.Fprintf(out, "UPDATE locations SET parent_id = '%s' WHERE id = '%s';\n", escapeSQL(l.ParentID), escapeSQL(l.ID))
	}

	// 3. Políticas por ubicación
	out.WriteString("\n-- 3. Políticas\n")
	settings := 0
	for _, l := range locations {
		pct, err := sqlDecimal(l.MaxReservationPercentage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "max_reservation_percentage de %s: %v\n", l.ID, err)
			os.Exit(1)
		}
		if !l.AllowNegativeStock && pct == "NULL" {
			continue
		}
		settings++
		fmt.Fprintf(out, "INSERT INTO location_settings (location_id, allow_negative_stock, max_reservation_percentage)\n")
		fmt.Fprintf(out, "VALUES ('%s', %t, %s)\n", escapeSQL(l.ID), l.AllowNegativeStock, pct)
		out.WriteString("ON CONFLICT (location_id) DO UPDATE SET allow_negative_stock = EXCLUDED.allow_negative_stock, max_reservation_percentage = EXCLUDED.max_reservation_percentage;\n")
	}

	// 4. Catálogo con nombre normalizado para la búsqueda
	out.WriteString("\n-- 4. Catálogo\n")
	for _, it := range seed.Catalog {
		fmt.Fprintf(out, "INSERT INTO catalog_items (id, workspace_id, sku, name, search_name, unit_of_measure_id)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', '%s', '%s')\n",
			escapeSQL(it.ID), escapeSQL(it.WorkspaceID), escapeSQL(it.SKU), escapeSQL(it.Name),
			escapeSQL(textnorm.Fold(it.Name)), escapeSQL(it.UnitOfMeasureID))
		out.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name, search_name = EXCLUDED.search_name, unit_of_measure_id = EXCLUDED.unit_of_measure_id;\n")
	}

	fmt.Printf("Generado %s: %d ubicaciones, %d políticas, %d productos\n", outPath, len(locations), settings, len(seed.Catalog))
}

// sqlDecimal literal NUMERIC validado, o NULL si viene vacío.
func sqlDecimal(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "NULL", nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
