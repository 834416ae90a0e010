package agent

import (
	"fmt"
	"strings"
)

// Product selects which companion variant a request targets. Each product
// carries its own closed set of modes.
type Product string

const (
	ProductSalud     Product = "salud"
	ProductAcademico Product = "academico"
)

// Mode identifies one specialized conversation context within a product.
type Mode string

const (
	ModeGeneral      Mode = "General"
	ModeServicios    Mode = "Servicios"
	ModeEstadisticas Mode = "Estadisticas"
	ModeRecetas      Mode = "Recetas"

	ModeMentorAcademico      Mode = "MentorAcademico"
	ModeOrientadorVocacional Mode = "OrientadorVocacional"
	ModePsicologo            Mode = "Psicologo"
)

var productModes = map[Product][]Mode{
	ProductSalud:     {ModeGeneral, ModeServicios, ModeEstadisticas, ModeRecetas},
	ProductAcademico: {ModeMentorAcademico, ModeOrientadorVocacional, ModePsicologo},
}

var modeDescriptions = map[Mode]string{
	ModeGeneral:              "Acompañamiento general de salud y bienestar",
	ModeServicios:            "Información sobre servicios de salud disponibles",
	ModeEstadisticas:         "Análisis de tendencias de actividad y sueño",
	ModeRecetas:              "Seguimiento de recetas médicas y adherencia al tratamiento",
	ModeMentorAcademico:      "Ayuda con estrategias de estudio y rendimiento académico",
	ModeOrientadorVocacional: "Orientación sobre carrera y decisiones profesionales",
	ModePsicologo:            "Apoyo emocional y bienestar psicológico",
}

// Description returns the short human-readable summary of the mode.
func (m Mode) Description() string {
	return modeDescriptions[m]
}

// Modes returns the ordered mode list for a product; nil for an unknown
// product.
func Modes(producto Product) []Mode {
	return productModes[producto]
}

// KnownProduct reports whether producto names a served product.
func KnownProduct(producto Product) bool {
	_, ok := productModes[producto]
	return ok
}

// UnknownModeError is returned by Resolve when the requested mode is not in
// the product's catalog. It carries the valid set so callers can report it.
type UnknownModeError struct {
	Producto Product
	Modo     string
	Valid    []Mode
}

func (e *UnknownModeError) Error() string {
	names := make([]string, len(e.Valid))
	for i, m := range e.Valid {
		names[i] = string(m)
	}
	return fmt.Sprintf("contexto %q no existe para el producto %q; contextos disponibles: %s",
		e.Modo, e.Producto, strings.Join(names, ", "))
}

// Resolve maps a (product, mode name) pair to its Context. An unrecognized
// mode yields *UnknownModeError and no Context.
func Resolve(producto Product, modo string) (*Context, error) {
	valid, ok := productModes[producto]
	if !ok {
		return nil, fmt.Errorf("producto desconocido: %q", producto)
	}
	for _, m := range valid {
		if string(m) == modo {
			return &Context{Producto: producto, Modo: m}, nil
		}
	}
	return nil, &UnknownModeError{Producto: producto, Modo: modo, Valid: valid}
}
