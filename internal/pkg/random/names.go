package random

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	firstNames = []string{
		"María", "Ana", "Carmen", "Francisca", "Javiera", "José", "Carlos", "Luis",
		"Miguel", "Juan", "Pedro", "Diego", "Sebastián", "Matías", "Nicolás",
		"Valentina", "Sofía", "Isidora", "Constanza", "Fernanda", "Martina",
	}
	lastNames = []string{
		"González", "Rodríguez", "Muñoz", "López", "García", "Martínez", "Sánchez",
		"Rojas", "Díaz", "Pérez", "Contreras", "Silva", "Sepúlveda", "Morales",
	}
	emailDomains = []string{"fne.cl", "colegio.edu", "escuela.cl", "instituto.edu"}
)

// PersonName is a Chilean-style name: one given name and two surnames
type PersonName struct {
	First       string
	LastPaterno string
	LastMaterno string
}

// Full returns "First Paterno Materno"
func (n PersonName) Full() string {
	return n.First + " " + n.LastPaterno + " " + n.LastMaterno
}

// Last returns both surnames
func (n PersonName) Last() string {
	return n.LastPaterno + " " + n.LastMaterno
}

// SpanishName composes a name from the fixed pools
func (s *Sampler) SpanishName() PersonName {
	return PersonName{
		First:       MustChoice(s, firstNames),
		LastPaterno: MustChoice(s, lastNames),
		LastMaterno: MustChoice(s, lastNames),
	}
}

// Email derives an address from a full name on a random domain from the pool
func (s *Sampler) Email(fullName string) string {
	return EmailLocalPart(fullName) + "@" + MustChoice(s, emailDomains)
}

// EmailLocalPart lowercases the name, strips diacritics and anything that is not
// a letter, and joins the remaining words with dots.
func EmailLocalPart(fullName string) string {
	folded := foldDiacritics(strings.ToLower(fullName))

	var words []string
	for _, field := range strings.Fields(folded) {
		word := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, field)
		if word != "" {
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return "usuario"
	}
	return strings.Join(words, ".")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
