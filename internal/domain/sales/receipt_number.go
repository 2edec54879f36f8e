package sales

import (
	"fmt"
	"strings"
)

// FormatReceiptNumber arma el número de recibo según la serie del tenant:
// "PREFIX LETRA/NNNN", ej. ("FAC", "A", 4, 42) -> "FAC A/0042".
// Si la serie no define letra, queda "PREFIX/NNNN". El sufijo numérico es el
// consecutivo atómico; el relleno es solo presentación y puede desbordar el
// ancho sin perder unicidad.
func FormatReceiptNumber(prefix, letter string, padWidth int, n int64) string {
	if padWidth <= 0 {
		padWidth = 4
	}
	suffix := fmt.Sprintf("%0*d", padWidth, n)
	prefix = strings.TrimSpace(prefix)
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return fmt.Sprintf("%s/%s", prefix, suffix)
	}
	return fmt.Sprintf("%s %s/%s", prefix, letter, suffix)
}
