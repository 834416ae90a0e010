// Package prompt assembles the instruction text sent to the completion
// provider. Assembly is pure formatting: fixed sections, fixed delimiters,
// no error paths.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tecsup/agente/internal/repo"
)

const (
	maxRecentInteractions = 5
	maxSummaryChars       = 200
)

// Closing reminders appended after the context data. One per product.
const (
	ReminderSalud = `Recuerda: Eres un asistente de acompañamiento médico. NO hagas diagnósticos ni prescripciones.
Analiza los datos disponibles y ofrece información contextual, apoyo emocional y orientación general.`

	ReminderAcademico = `Recuerda: Eres un asistente de acompañamiento estudiantil. NO tomes decisiones por el estudiante.
Analiza los datos disponibles y ofrece orientación, apoyo emocional y acompañamiento académico.`
)

// Assemble builds the full system prompt from its rendered sections.
func Assemble(systemPrompt, userInfo, memory, contextData, reminder string) string {
	return fmt.Sprintf(`%s

--- INFORMACIÓN DEL USUARIO ---
%s

--- MEMORIA DE CONVERSACIONES ANTERIORES ---
%s

--- DATOS DEL CONTEXTO ACTUAL ---
%s

%s
`, systemPrompt, userInfo, memory, contextData, reminder)
}

// RenderUserInfo formats the basic user block. A zero-value user yields an
// explicit "no data" sentence.
func RenderUserInfo(u repo.User) string {
	if u.Correo == "" {
		return "No hay información del usuario disponible."
	}
	nombre := u.Nombre
	if nombre == "" {
		nombre = "No especificado"
	}
	sexo := u.Sexo
	if sexo == "" {
		sexo = "No especificado"
	}
	role := u.Role
	if role == "" {
		role = "USER"
	}
	return fmt.Sprintf("Nombre: %s\nSexo: %s\nRol: %s", nombre, sexo, role)
}

// RenderRecentInteractions formats the conversation memory block: the most
// recent interactions first, at most five entries, summaries capped so one
// verbose exchange cannot crowd out the rest.
func RenderRecentInteractions(memoria []repo.Interaction) string {
	if len(memoria) == 0 {
		return "No hay conversaciones previas registradas."
	}

	var lines []string
	for idx, mem := range memoria {
		if idx == maxRecentInteractions {
			break
		}
		fecha := mem.Fecha
		if fecha == "" {
			fecha = "Fecha desconocida"
		}
		resumen := mem.Resumen
		if resumen == "" {
			resumen = "Sin resumen"
		}
		if r := []rune(resumen); len(r) > maxSummaryChars {
			resumen = string(r[:maxSummaryChars]) + "..."
		}
		intencion := mem.Intencion
		if intencion == "" {
			intencion = "No detectada"
		}
		lines = append(lines, fmt.Sprintf("%d. [%s] - Intención: %s\n   Resumen: %s", idx+1, fecha, intencion, resumen))
	}
	return strings.Join(lines, "\n")
}
