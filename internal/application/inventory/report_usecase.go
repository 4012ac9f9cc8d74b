package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockReport datos del reporte de saldos de un subárbol de ubicaciones.
type StockReport struct {
	LocationID   string
	LocationType string
	GeneratedAt  time.Time
	Rows         []entity.StockRollup
}

// ReportUseCase genera la representación PDF del saldo agregado de una ubicación.
type ReportUseCase struct {
	query     *StockQueryUseCase
	generator StockReportGenerator
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso inyectando sus dependencias.
func NewReportUseCase(query *StockQueryUseCase, generator StockReportGenerator) *ReportUseCase {
	return &ReportUseCase{query: query, generator: generator, now: time.Now}
}

// StockReportPDF recupera el rollup del subárbol y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la ubicación no existe.
func (uc *ReportUseCase) StockReportPDF(ctx context.Context, locationID string) (pdfBytes []byte, filename string, err error) {
	rows, err := uc.query.RollupSubtree(ctx, locationID)
	if err != nil {
		return nil, "", err
	}
	locType, err := uc.query.locations.GetLocationType(ctx, locationID)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: tipo de ubicación: %w", err)
	}

	report := StockReport{
		LocationID:   locationID,
		LocationType: locType,
		GeneratedAt:  uc.now(),
		Rows:         rows,
	}
	pdfBytes, err = uc.generator.GenerateStockReport(report)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("saldos_%s_%s.pdf", locationID, report.GeneratedAt.Format("20060102"))
	return pdfBytes, filename, nil
}
