package search

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// score puntúa qué tan lejos está la consulta del nombre del item: 0 es
// coincidencia exacta y 1 es sin relación. Se toma la mejor puntuación entre
// el nombre completo y cada una de sus palabras, de modo que una consulta
// corta con un typo ("tonr") siga encontrando "Toner A".
func score(query, name string) float64 {
	q := folder.String(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	n := folder.String(name)

	best := normalized(q, n)
	for _, token := range strings.Fields(n) {
		if s := normalized(q, token); s < best {
			best = s
		}
	}
	return best
}

// normalized distancia de Levenshtein dividida por la longitud (en runas) de
// la cadena más larga.
func normalized(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
