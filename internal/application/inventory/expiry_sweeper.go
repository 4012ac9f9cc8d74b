package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/pkg/logger"
)

// ExpirySweeper vence periódicamente las reservas con ExpiresAt alcanzado.
type ExpirySweeper struct {
	reservations *ReservationUseCase
	interval     time.Duration
	batch        int
	log          *logger.Logger
}

// NewExpirySweeper construye el barrido. batch es el máximo de reservas por pasada.
func NewExpirySweeper(reservations *ReservationUseCase, interval time.Duration, batch int, log *logger.Logger) *ExpirySweeper {
	if log == nil {
		log = logger.Nop()
	}
	if batch <= 0 {
		batch = 100
	}
	return &ExpirySweeper{reservations: reservations, interval: interval, batch: batch, log: log}
}

// Run ejecuta pasadas cada interval hasta que ctx se cancele.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("barrido de reservas deshabilitado")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Int("batch", s.batch).Msg("barrido de reservas iniciado")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("barrido de reservas detenido")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep una pasada: vence lotes de batch mientras la pasada anterior venga llena.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	total := 0
	for {
		n, err := s.reservations.ExpireDue(ctx, s.batch)
		total += n
		if err != nil {
			s.log.Error().Err(err).Msg("barrido de reservas")
			return total
		}
		if n < s.batch {
			break
		}
	}
	if total > 0 {
		s.log.Info().Int("expired", total).Msg("reservas vencidas")
	}
	return total
}
