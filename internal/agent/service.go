package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tecsup/agente/internal/llm"
	"github.com/tecsup/agente/internal/prompt"
	"github.com/tecsup/agente/internal/repo"
)

// ErrAutorizacionRequerida is returned when a user exists but has not
// consented to data collection.
var ErrAutorizacionRequerida = errors.New("el usuario no ha autorizado la recopilación de datos")

// FallbackRespuesta replaces the model answer whenever the completion
// provider fails. API callers never see provider errors.
const FallbackRespuesta = "Lo siento, estoy experimentando dificultades técnicas en este momento. " +
	"Por favor, intenta nuevamente en unos momentos o reformula tu pregunta."

const (
	maxPriorTurns      = 5
	maxResumenChars    = 250
	maxMensajeQuoted   = 200
	maxRespuestaQuoted = 300
)

// ConsultResult is the outcome of one consultation.
type ConsultResult struct {
	Respuesta       string
	Contexto        Mode
	Timestamp       time.Time
	Resumen         string
	ResumenGuardado bool
}

// Service orchestrates consultations: context resolution, data loading,
// prompt assembly, completion, summarization, and persistence.
type Service struct {
	repos     *repo.Repositories
	completer llm.Completer
	limits    Limits
	log       *slog.Logger

	now func() time.Time
}

// NewService wires a Service. log must not be nil.
func NewService(repos *repo.Repositories, completer llm.Completer, limits Limits, log *slog.Logger) *Service {
	return &Service{
		repos:     repos,
		completer: completer,
		limits:    limits,
		log:       log,
		now:       time.Now,
	}
}

// Consult runs one consultation end to end. It returns store.ErrNotFound
// when the user does not exist, *UnknownModeError for a bad mode, and
// ErrAutorizacionRequerida when consent is missing. Provider failures do not
// surface: the answer degrades to FallbackRespuesta. Persisting the
// interaction summary is best-effort; a persist failure is logged and
// reported through ResumenGuardado.
func (s *Service) Consult(ctx context.Context, producto Product, modo, correo, mensaje string) (*ConsultResult, error) {
	cctx, err := Resolve(producto, modo)
	if err != nil {
		return nil, err
	}

	usuario, err := s.repos.Users.GetByEmail(correo)
	if err != nil {
		return nil, fmt.Errorf("buscando usuario %s: %w", correo, err)
	}
	if !usuario.Autorizacion {
		return nil, fmt.Errorf("usuario %s: %w", correo, ErrAutorizacionRequerida)
	}

	now := s.now()
	data, err := cctx.BuildContextData(s.repos, s.limits, correo, now)
	if err != nil {
		return nil, fmt.Errorf("construyendo contexto %s: %w", cctx.Modo, err)
	}

	system := prompt.Assemble(
		cctx.SystemPromptFragment(),
		prompt.RenderUserInfo(data.Usuario),
		prompt.RenderRecentInteractions(data.Memoria),
		cctx.RenderContextSection(data),
		reminderFor(producto),
	)

	msgs := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	msgs = append(msgs, priorTurns(data.Memoria)...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: mensaje})

	respuesta, err := s.completer.Complete(ctx, msgs)
	if err != nil {
		s.log.Warn("fallo del proveedor de completado, usando respuesta de respaldo",
			"modo", cctx.Modo, "error", err)
		respuesta = FallbackRespuesta
	}

	resumen := s.Summarize(ctx, mensaje, respuesta, cctx.Modo)

	guardado := true
	if _, err := s.repos.Interactions.Append(repo.Interaction{
		Correo:    correo,
		Fecha:     now.UTC().Format(time.RFC3339),
		Resumen:   resumen,
		Intencion: string(cctx.Modo),
	}); err != nil {
		guardado = false
		s.log.Warn("no se pudo guardar el resumen de la interacción",
			"correo", correo, "error", err)
	}

	return &ConsultResult{
		Respuesta:       respuesta,
		Contexto:        cctx.Modo,
		Timestamp:       now,
		Resumen:         resumen,
		ResumenGuardado: guardado,
	}, nil
}

// Summarize produces a short record of the exchange for the interaction
// history. When the provider fails it falls back to a fixed template built
// from the opening of the user message.
func (s *Service) Summarize(ctx context.Context, mensaje, respuesta string, modo Mode) string {
	instrucciones := fmt.Sprintf(`Genera un resumen muy conciso (máximo 150 caracteres) de esta interacción:

Contexto del agente: %s
Usuario preguntó: %s
Agente respondió: %s

Resumen debe capturar:
1. La intención principal del usuario
2. El tipo de orientación o ayuda brindada
3. Ser breve y claro

Formato del resumen: "[%s] Usuario consultó sobre X. Se orientó sobre Y."

Resumen:`,
		modo, head(mensaje, maxMensajeQuoted), head(respuesta, maxRespuestaQuoted), modo)

	resumen, err := s.completer.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: instrucciones}})
	if err != nil {
		s.log.Warn("fallo generando resumen, usando plantilla", "modo", modo, "error", err)
		return fallbackResumen(mensaje, modo)
	}

	resumen = strings.ReplaceAll(strings.TrimSpace(resumen), "\n", " ")
	if r := []rune(resumen); len(r) > maxResumenChars {
		resumen = string(r[:maxResumenChars-3]) + "..."
	}
	return resumen
}

func fallbackResumen(mensaje string, modo Mode) string {
	emoji := "💬"
	switch modo {
	case ModeMentorAcademico:
		emoji = "🎓"
	case ModeOrientadorVocacional:
		emoji = "🧭"
	case ModePsicologo:
		emoji = "🧠"
	}
	corto := strings.TrimSpace(head(mensaje, 50))
	return fmt.Sprintf("%s [%s] Usuario: %s...", emoji, modo, corto)
}

// priorTurns converts the most recent conversation summaries (newest first)
// into chronological assistant turns, capped to the last few.
func priorTurns(memoria []repo.Interaction) []llm.Message {
	n := len(memoria)
	if n > maxPriorTurns {
		n = maxPriorTurns
	}
	msgs := make([]llm.Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		msgs = append(msgs, llm.Message{
			Role:    llm.RoleAssistant,
			Content: "[Interacción previa]: " + memoria[i].Resumen,
		})
	}
	return msgs
}

func reminderFor(producto Product) string {
	if producto == ProductSalud {
		return prompt.ReminderSalud
	}
	return prompt.ReminderAcademico
}

func head(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
