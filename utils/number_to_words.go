package utils

import (
	"math"
	"strconv"
	"strings"
)

var units = []string{
	"CERO", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
	"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
	"VEINTE", "VEINTIUNO", "VEINTIDOS", "VEINTITRES", "VEINTICUATRO",
	"VEINTICINCO", "VEINTISEIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var tens = []string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundreds = []string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS",
	"QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

// NumberToWords spells n in Spanish. With apocope a trailing "uno" becomes
// "un", as required before a noun ("veintiun mil", "un peso").
func NumberToWords(n int64, apocope bool) string {
	switch {
	case n < 0:
		return "MENOS " + NumberToWords(-n, apocope)
	case n < 30:
		if apocope && n == 1 {
			return "UN"
		}
		if apocope && n == 21 {
			return "VEINTIUN"
		}
		return units[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " Y " + NumberToWords(n%10, apocope)
	case n < 1000:
		if n == 100 {
			return "CIEN"
		}
		if n%100 == 0 {
			return hundreds[n/100]
		}
		return hundreds[n/100] + " " + NumberToWords(n%100, apocope)
	case n < 1_000_000:
		prefix := "MIL"
		if n/1000 > 1 {
			prefix = NumberToWords(n/1000, true) + " MIL"
		}
		if n%1000 == 0 {
			return prefix
		}
		return prefix + " " + NumberToWords(n%1000, apocope)
	case n < 1_000_000_000_000:
		prefix := "UN MILLON"
		if n/1_000_000 > 1 {
			prefix = NumberToWords(n/1_000_000, true) + " MILLONES"
		}
		if n%1_000_000 == 0 {
			return prefix
		}
		return prefix + " " + NumberToWords(n%1_000_000, apocope)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// PesosToWords spells a peso amount the way it is written on a manifest,
// e.g. "QUINIENTOS VEINTICINCO MIL PESOS M/CTE". Centavos are dropped.
func PesosToWords(amount float64) string {
	n := int64(math.Round(amount))
	words := NumberToWords(n, true)
	switch {
	case n == 1:
		return words + " PESO M/CTE"
	case n >= 1_000_000 && n%1_000_000 == 0:
		// "un millon de pesos"
		return words + " DE PESOS M/CTE"
	default:
		return words + " PESOS M/CTE"
	}
}

// FormatPesos renders an amount as "$525.000".
func FormatPesos(amount float64) string {
	n := int64(math.Round(amount))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
