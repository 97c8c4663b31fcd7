package render

import (
	"math"
	"strings"
)

var (
	smallNumbers = []string{
		"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens   = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scales = []string{"", "Thousand", "Million", "Billion", "Trillion"}
)

// AmountInWords spells a riyal amount the way it is printed on invoices,
// e.g. 115.11 is "One Hundred Fifteen Riyals And Eleven Halalas Only".
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}
	sign := ""
	if amount < 0 {
		sign = "Minus "
		amount = -amount
	}
	halalas := int64(math.Round(amount * 100))
	whole := halalas / 100
	fraction := halalas % 100

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(spell(whole))
	b.WriteString(plural(whole, " Riyal", " Riyals"))
	if fraction > 0 {
		b.WriteString(" And ")
		b.WriteString(spell(fraction))
		b.WriteString(plural(fraction, " Halala", " Halalas"))
	}
	b.WriteString(" Only")
	return b.String()
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func spell(n int64) string {
	if n == 0 {
		return smallNumbers[0]
	}
	var groups []string
	for scale := 0; n > 0 && scale < len(scales); scale++ {
		chunk := n % 1000
		n /= 1000
		if chunk == 0 {
			continue
		}
		words := spellHundreds(chunk)
		if scales[scale] != "" {
			words += " " + scales[scale]
		}
		groups = append([]string{words}, groups...)
	}
	return strings.Join(groups, " ")
}

func spellHundreds(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, smallNumbers[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		word := tens[n/10]
		if n%10 != 0 {
			word += " " + smallNumbers[n%10]
		}
		parts = append(parts, word)
	case n > 0:
		parts = append(parts, smallNumbers[n])
	}
	return strings.Join(parts, " ")
}
