package entity

// MovementType conjunto cerrado de tipos de movimiento. Los tipos de negocio nuevos
// (préstamos, consignación, etc.) NO se agregan aquí: se declaran como MovementCustom
// y se resuelven en el registro de handlers.
type MovementType string

const (
	MovementReceipt       MovementType = "receipt"        // recepción de compra
	MovementShipment      MovementType = "shipment"       // despacho
	MovementReserve       MovementType = "reserve"        // compromete disponible
	MovementRelease       MovementType = "release"        // libera lo comprometido
	MovementTransferOut   MovementType = "transfer_out"   // salida por traslado
	MovementTransferIn    MovementType = "transfer_in"    // entrada por traslado
	MovementAdjustmentIn  MovementType = "adjustment_in"  // ajuste positivo
	MovementAdjustmentOut MovementType = "adjustment_out" // ajuste negativo
	MovementCount         MovementType = "count"          // conteo físico (informativo)
	MovementExpiration    MovementType = "expiration"     // baja por vencimiento
	MovementInstallation  MovementType = "installation"   // consumo por instalación
	MovementReturn        MovementType = "return"         // devolución de cliente
	MovementDamage        MovementType = "damage"         // baja por daño
	MovementCustom        MovementType = "custom"         // delegado al registro de handlers
)

// Direction eje de dirección de un tipo de movimiento.
type Direction int

const (
	DirectionNeutral Direction = iota
	DirectionIn
	DirectionOut
)

// String para logs y trazas.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "neutral"
	}
}

// AllMovementTypes lista el conjunto cerrado (incluye custom).
func AllMovementTypes() []MovementType {
	return []MovementType{
		MovementReceipt, MovementShipment, MovementReserve, MovementRelease,
		MovementTransferOut, MovementTransferIn, MovementAdjustmentIn, MovementAdjustmentOut,
		MovementCount, MovementExpiration, MovementInstallation, MovementReturn,
		MovementDamage, MovementCustom,
	}
}

// Valid indica si t pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	for _, known := range AllMovementTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Direction clasifica el tipo. Custom es neutral: su efecto lo define el handler.
func (t MovementType) Direction() Direction {
	switch t {
	case MovementReceipt, MovementTransferIn, MovementAdjustmentIn, MovementReturn:
		return DirectionIn
	case MovementShipment, MovementTransferOut, MovementAdjustmentOut,
		MovementExpiration, MovementInstallation, MovementDamage:
		return DirectionOut
	default:
		return DirectionNeutral
	}
}

// IsInbound true si el tipo suma existencia.
func (t MovementType) IsInbound() bool { return t.Direction() == DirectionIn }

// IsOutbound true si el tipo resta existencia.
func (t MovementType) IsOutbound() bool { return t.Direction() == DirectionOut }

// BlocksExpiredLot indica si el tipo debe rechazarse cuando el lote referenciado está vencido.
// Las bajas (vencimiento, daño, ajustes), devoluciones, liberaciones y conteos sí pueden
// operar sobre lotes vencidos.
func (t MovementType) BlocksExpiredLot() bool {
	switch t {
	case MovementReceipt, MovementShipment, MovementTransferOut, MovementTransferIn,
		MovementInstallation, MovementReserve:
		return true
	}
	return false
}
