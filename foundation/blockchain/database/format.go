package database

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// The block hash is calculated over a textual rendering of the block's
// transactions. Changing anything in this file changes every block hash in
// the chain, so the format is fixed: a bracketed, comma separated list of
//
//	Transaction { sender: "..", receiver: "..", amount: 1.0, fee: 0.01, signature: ".." }
//
// in that field order.

// renderTrans produces the canonical text for a list of transactions.
func renderTrans(trans []Tx) string {
	var b strings.Builder

	b.WriteByte('[')
	for i, tx := range trans {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString("Transaction { sender: ")
		b.WriteString(quote(tx.Sender))
		b.WriteString(", receiver: ")
		b.WriteString(quote(tx.Receiver))
		b.WriteString(", amount: ")
		b.WriteString(formatDebug(tx.Amount))
		b.WriteString(", fee: ")
		b.WriteString(formatDebug(tx.Fee))
		b.WriteString(", signature: ")
		b.WriteString(quote(tx.Signature))
		b.WriteString(" }")
	}
	b.WriteByte(']')

	return b.String()
}

// formatDisplay renders a float as the shortest decimal that round trips,
// never using an exponent: 1, 0.01, 6.25.
func formatDisplay(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDebug renders a float so it always carries a fractional part or an
// exponent: 1.0, 0.01, 1e16, 1.5e-5.
func formatDebug(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")

		// Go writes e+16 and e-05, the canonical form is e16 and e-5.
		sign := ""
		if exp[0] == '-' {
			sign = "-"
		}
		exp = strings.TrimLeft(exp[1:], "0")

		return mant + "e" + sign + exp
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// quote renders a string between double quotes, escaping quotes, backslashes
// and every rune that is not printable (control and format characters,
// spaces other than ' ', unassigned code points) as \u{hex}.
func quote(s string) string {
	var b strings.Builder

	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if !unicode.IsPrint(r) {
				b.WriteString(`\u{`)
				b.WriteString(strconv.FormatInt(int64(r), 16))
				b.WriteByte('}')
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')

	return b.String()
}
