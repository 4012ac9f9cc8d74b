package memory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// Seed datos de referencia (ubicaciones, políticas, catálogo) para el modo en memoria.
type Seed struct {
	Locations []SeedLocation    `mapstructure:"locations"`
	Catalog   []SeedCatalogItem `mapstructure:"catalog"`
}

// SeedLocation ubicación con su política opcional. Cantidades como texto decimal.
type SeedLocation struct {
	ID                       string `mapstructure:"id"`
	WorkspaceID              string `mapstructure:"workspace_id"`
	ParentID                 string `mapstructure:"parent_id"`
	Type                     string `mapstructure:"type"`
	Name                     string `mapstructure:"name"`
	MaxCapacity              string `mapstructure:"max_capacity"`
	AllowNegativeStock       bool   `mapstructure:"allow_negative_stock"`
	MaxReservationPercentage string `mapstructure:"max_reservation_percentage"`
}

// SeedCatalogItem producto del catálogo.
type SeedCatalogItem struct {
	ID              string `mapstructure:"id"`
	WorkspaceID     string `mapstructure:"workspace_id"`
	SKU             string `mapstructure:"sku"`
	Name            string `mapstructure:"name"`
	UnitOfMeasureID string `mapstructure:"unit_of_measure_id"`
}

// LoadSeed lee un archivo YAML/JSON/TOML (por extensión) con Viper.
func LoadSeed(path string) (Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Seed{}, fmt.Errorf("leer seed %s: %w", path, err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return Seed{}, fmt.Errorf("decodificar seed %s: %w", path, err)
	}
	return seed, nil
}

// Apply carga el seed en el store.
func (s *Store) Apply(seed Seed, now time.Time) error {
	for _, sl := range seed.Locations {
		if sl.ID == "" {
			return fmt.Errorf("seed: ubicación sin id")
		}
		maxCap, err := optionalDecimal(sl.MaxCapacity)
		if err != nil {
			return fmt.Errorf("seed: max_capacity de %s: %w", sl.ID, err)
		}
		pct, err := optionalDecimal(sl.MaxReservationPercentage)
		if err != nil {
			return fmt.Errorf("seed: max_reservation_percentage de %s: %w", sl.ID, err)
		}
		locType := sl.Type
		if locType == "" {
			locType = "warehouse"
		}
		s.PutLocation(entity.Location{
			ID:          sl.ID,
			WorkspaceID: sl.WorkspaceID,
			ParentID:    sl.ParentID,
			Type:        locType,
			Name:        sl.Name,
			MaxCapacity: maxCap,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if sl.AllowNegativeStock || pct != nil {
			s.PutSettings(entity.LocationSettings{
				LocationID:               sl.ID,
				AllowNegativeStock:       sl.AllowNegativeStock,
				MaxReservationPercentage: pct,
			})
		}
	}
	for _, it := range seed.Catalog {
		s.PutCatalogItem(entity.CatalogItem{
			ID:              it.ID,
			WorkspaceID:     it.WorkspaceID,
			SKU:             it.SKU,
			Name:            it.Name,
			UnitOfMeasureID: it.UnitOfMeasureID,
		})
	}
	return nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
