package entity

import "time"

// DocumentSeries es el consecutivo fiscal por empresa y prefijo.
// CurrentNumber es monotónico: solo se incrementa con el upsert atómico del
// repositorio y únicamente dentro de la transacción de la venta que lo consume.
type DocumentSeries struct {
	CompanyID     string
	Prefix        string // ej. "FAC"
	Letter        string // ej. "A"; parte del formato del recibo
	PadWidth      int    // ancho de relleno del sufijo numérico, ej. 4 -> "0042"
	CurrentNumber int64
	LastIssuedAt  time.Time
}
