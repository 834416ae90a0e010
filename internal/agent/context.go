package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

// Window sizes for time-scoped context loads.
const (
	recentActivityWindow = 7 * 24 * time.Hour
	statsWindow          = 30 * 24 * time.Hour
)

// Context is a resolved (product, mode) pair. All mode-specific behavior
// lives in switches on Modo; there is deliberately no per-mode type.
type Context struct {
	Producto Product
	Modo     Mode
}

// ContextData holds everything a mode can load for one user. Only the fields
// the resolved mode needs are populated; profile pointers stay nil when the
// user has no such record.
type ContextData struct {
	Usuario           repo.User
	Memoria           []repo.Interaction
	Recetas           []repo.Receta
	HistorialReciente []repo.Interaction
	Servicios         []repo.Servicio
	Estadisticas      map[string]MetricStats
	TotalRegistros    int
	Academicos        *repo.DatosAcademicos
	Emocionales       *repo.DatosEmocionales
	Socioeconomicos   *repo.DatosSocioeconomicos
	Tareas            []repo.Tarea
}

// Limits caps per-entity context loads. Zero values fall back to the repo
// query defaults.
type Limits struct {
	Memoria   int
	Servicios int
	Tareas    int
}

// RequiredTables lists the configured table names this mode reads.
func (c *Context) RequiredTables(t repo.Tables) []string {
	switch c.Modo {
	case ModeGeneral:
		return []string{t.Usuarios, t.Interacciones, t.Recetas}
	case ModeServicios:
		return []string{t.Usuarios, t.Interacciones, t.Servicios}
	case ModeEstadisticas:
		return []string{t.Usuarios, t.Interacciones}
	case ModeRecetas:
		return []string{t.Usuarios, t.Interacciones, t.Recetas}
	case ModeMentorAcademico:
		return []string{t.Usuarios, t.Interacciones, t.DatosAcademicos, t.Tareas}
	case ModeOrientadorVocacional:
		return []string{t.Usuarios, t.Interacciones, t.DatosAcademicos, t.DatosSocioeconomicos}
	case ModePsicologo:
		return []string{t.Usuarios, t.Interacciones, t.DatosAcademicos, t.DatosEmocionales, t.DatosSocioeconomicos}
	}
	return nil
}

// SystemPromptFragment returns the persona instructions for this mode.
func (c *Context) SystemPromptFragment() string {
	switch c.Modo {
	case ModeGeneral:
		return promptGeneral
	case ModeServicios:
		return promptServicios
	case ModeEstadisticas:
		return promptEstadisticas
	case ModeRecetas:
		return promptRecetas
	case ModeMentorAcademico:
		return promptMentorAcademico
	case ModeOrientadorVocacional:
		return promptOrientadorVocacional
	case ModePsicologo:
		return promptPsicologo
	}
	return ""
}

// BuildContextData loads the user, their recent conversation summaries, and
// the mode-specific records. The user must exist; store.ErrNotFound is
// propagated so callers can answer 404.
func (c *Context) BuildContextData(repos *repo.Repositories, lim Limits, correo string, now time.Time) (*ContextData, error) {
	usuario, err := repos.Users.GetByEmail(correo)
	if err != nil {
		return nil, fmt.Errorf("cargando usuario: %w", err)
	}
	memoria, err := repos.Interactions.RecentByUser(correo, lim.Memoria)
	if err != nil {
		return nil, fmt.Errorf("cargando memoria: %w", err)
	}

	data := &ContextData{Usuario: usuario, Memoria: memoria}

	switch c.Modo {
	case ModeGeneral, ModeRecetas:
		if data.Recetas, err = repos.Recetas.ByUser(correo); err != nil {
			return nil, fmt.Errorf("cargando recetas: %w", err)
		}
		if data.HistorialReciente, err = repos.Interactions.InWindow(correo, now.Add(-recentActivityWindow)); err != nil {
			return nil, fmt.Errorf("cargando historial: %w", err)
		}
	case ModeServicios:
		if data.Servicios, err = repos.Servicios.List(lim.Servicios); err != nil {
			return nil, fmt.Errorf("cargando servicios: %w", err)
		}
	case ModeEstadisticas:
		historial, err := repos.Interactions.InWindow(correo, now.Add(-statsWindow))
		if err != nil {
			return nil, fmt.Errorf("cargando historial: %w", err)
		}
		data.Estadisticas = aggregateMetrics(historial)
		data.TotalRegistros = len(historial)
	case ModeMentorAcademico:
		if data.Academicos, err = academicProfile(repos, correo); err != nil {
			return nil, err
		}
		if data.Tareas, err = repos.Tareas.ByUser(correo, lim.Tareas); err != nil {
			return nil, fmt.Errorf("cargando tareas: %w", err)
		}
	case ModeOrientadorVocacional:
		if data.Academicos, err = academicProfile(repos, correo); err != nil {
			return nil, err
		}
		if data.Socioeconomicos, err = socioeconomicProfile(repos, correo); err != nil {
			return nil, err
		}
	case ModePsicologo:
		if data.Academicos, err = academicProfile(repos, correo); err != nil {
			return nil, err
		}
		if data.Emocionales, err = emotionalProfile(repos, correo); err != nil {
			return nil, err
		}
		if data.Socioeconomicos, err = socioeconomicProfile(repos, correo); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func academicProfile(repos *repo.Repositories, correo string) (*repo.DatosAcademicos, error) {
	d, err := repos.Academic.ForUser(correo)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cargando datos académicos: %w", err)
	}
	return &d, nil
}

func emotionalProfile(repos *repo.Repositories, correo string) (*repo.DatosEmocionales, error) {
	d, err := repos.Emotional.ForUser(correo)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cargando datos emocionales: %w", err)
	}
	return &d, nil
}

func socioeconomicProfile(repos *repo.Repositories, correo string) (*repo.DatosSocioeconomicos, error) {
	d, err := repos.Socioeconomic.ForUser(correo)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cargando datos socioeconómicos: %w", err)
	}
	return &d, nil
}

// RenderContextSection formats the mode-specific data block of the prompt.
// Every branch falls back to an explicit "no data" sentence; the result is
// never empty.
func (c *Context) RenderContextSection(data *ContextData) string {
	switch c.Modo {
	case ModeGeneral:
		return renderGeneral(data)
	case ModeServicios:
		return renderServicios(data.Servicios)
	case ModeEstadisticas:
		return renderEstadisticas(data.Estadisticas, data.TotalRegistros)
	case ModeRecetas:
		return renderRecetas(data.Recetas)
	case ModeMentorAcademico:
		return renderMentorAcademico(data)
	case ModeOrientadorVocacional:
		return renderOrientadorVocacional(data)
	case ModePsicologo:
		return renderPsicologo(data)
	}
	return "No hay datos de contexto disponibles."
}

func renderGeneral(data *ContextData) string {
	recetasTexto := "No hay recetas registradas."
	if len(data.Recetas) > 0 {
		var lines []string
		for idx, receta := range data.Recetas {
			if idx == 3 {
				break
			}
			institucion := receta.Institucion
			if institucion == "" {
				institucion = "Desconocida"
			}
			var productos []string
			for _, med := range receta.Medicamentos {
				if len(productos) == 3 {
					break
				}
				productos = append(productos, med.Producto)
			}
			lines = append(lines, fmt.Sprintf("  %d. %s: %s", idx+1, institucion, strings.Join(productos, ", ")))
		}
		recetasTexto = strings.Join(lines, "\n")
	}

	historialTexto := "No hay registros recientes de actividad."
	if len(data.HistorialReciente) > 0 {
		var lines []string
		for idx, registro := range data.HistorialReciente {
			if idx == 3 {
				break
			}
			fecha := registro.Fecha
			if len(fecha) > 10 {
				fecha = fecha[:10]
			}
			lines = append(lines, fmt.Sprintf("  • %s: %s pasos, %sh sueño, FC: %s",
				fecha,
				metricOr(registro.Metricas, "pasos", "0"),
				metricOr(registro.Metricas, "horas_sueno", "0"),
				metricOr(registro.Metricas, "ritmo_cardiaco", "N/A")))
		}
		historialTexto = strings.Join(lines, "\n")
	}

	return fmt.Sprintf("RECETAS ACTIVAS:\n%s\n\nACTIVIDAD RECIENTE:\n%s", recetasTexto, historialTexto)
}

func renderServicios(servicios []repo.Servicio) string {
	if len(servicios) == 0 {
		return "No hay servicios disponibles actualmente."
	}

	// Group by category, preserving first-seen order.
	var orden []string
	porCategoria := make(map[string][]repo.Servicio)
	for _, s := range servicios {
		cat := s.Categoria
		if cat == "" {
			cat = "otros"
		}
		if _, seen := porCategoria[cat]; !seen {
			orden = append(orden, cat)
		}
		porCategoria[cat] = append(porCategoria[cat], s)
	}

	var lines []string
	for _, cat := range orden {
		lines = append(lines, "", strings.ToUpper(cat)+":")
		for idx, s := range porCategoria[cat] {
			if idx == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("  • %s: %s", s.Nombre, truncate(s.Descripcion, 100)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderEstadisticas(stats map[string]MetricStats, total int) string {
	if len(stats) == 0 {
		return "No hay suficientes datos para generar estadísticas."
	}

	var sb strings.Builder
	sb.WriteString("ESTADÍSTICAS DEL ÚLTIMO MES:\n")

	if s, ok := stats["pasos"]; ok {
		sb.WriteString("\nActividad Física:\n")
		fmt.Fprintf(&sb, "  • Promedio de pasos diarios: %.0f\n", s.Promedio)
		fmt.Fprintf(&sb, "  • Máximo de pasos en un día: %.0f\n", s.Maximo)
		fmt.Fprintf(&sb, "  • Mínimo de pasos en un día: %.0f\n", s.Minimo)
	}
	if s, ok := stats["horas_sueno"]; ok {
		sb.WriteString("\nSueño:\n")
		fmt.Fprintf(&sb, "  • Promedio de horas de sueño: %.1fh\n", s.Promedio)
		fmt.Fprintf(&sb, "  • Mejor noche: %.1fh\n", s.Maximo)
		fmt.Fprintf(&sb, "  • Peor noche: %.1fh\n", s.Minimo)
	}
	if s, ok := stats["ritmo_cardiaco"]; ok {
		sb.WriteString("\nRitmo Cardíaco:\n")
		fmt.Fprintf(&sb, "  • Promedio: %.0f bpm\n", s.Promedio)
	}
	fmt.Fprintf(&sb, "\nRegistros totales: %d días", total)
	return sb.String()
}

func renderRecetas(recetas []repo.Receta) string {
	if len(recetas) == 0 {
		return "No hay recetas registradas en el sistema."
	}

	var lines []string
	for idx, receta := range recetas {
		institucion := receta.Institucion
		if institucion == "" {
			institucion = "Desconocida"
		}
		lines = append(lines, fmt.Sprintf("\nRECETA #%d - %s", idx+1, institucion))
		if receta.Paciente != "" {
			lines = append(lines, "Paciente: "+receta.Paciente)
		}
		for _, med := range receta.Medicamentos {
			dosis := "No especificada"
			if med.Dosis != "" {
				dosis = med.Dosis.String()
			}
			frecuencia := med.Frecuencia
			if frecuencia == "" {
				frecuencia = "No especificada"
			}
			duracion := med.Duracion
			if duracion == "" {
				duracion = "No especificada"
			}
			lines = append(lines, fmt.Sprintf("  • %s: %s, %s, por %s", med.Producto, dosis, frecuencia, duracion))
		}
	}
	return strings.Join(lines, "\n")
}

func renderMentorAcademico(data *ContextData) string {
	var lines []string

	if d := data.Academicos; d != nil {
		lines = append(lines, "=== DATOS ACADÉMICOS ===")
		lines = append(lines, "Carrera: "+orDefault(d.Carrera, "No especificada"))
		lines = append(lines, fmt.Sprintf("Ciclo actual: %d", d.CicloActual))
		lines = append(lines, "Estado de matrícula: "+orDefault(d.EstadoMatricula, "N/A"))
		lines = append(lines, fmt.Sprintf("Créditos aprobados: %d", d.CreditosAprobados))
		lines = append(lines, fmt.Sprintf("Créditos desaprobados: %d", d.CreditosReprobados))
		lines = append(lines, "Promedio ponderado: "+fnum(d.PromedioPonderado, 2))
		lines = append(lines, "Avance de malla: "+fnum(d.AvanceMalla, 1)+"%")
		lines = append(lines, "Asistencia promedio: "+fnum(d.AsistenciaPromedio, 1)+"%")
		if len(d.CursosReprobados) > 0 {
			lines = append(lines, "Cursos reprobados: "+strings.Join(d.CursosReprobados, ", "))
		}
		if len(d.HistorialRetirados) > 0 {
			lines = append(lines, fmt.Sprintf("Cursos retirados: %d", len(d.HistorialRetirados)))
		}
	} else {
		lines = append(lines, "No hay datos académicos disponibles.")
	}

	lines = append(lines, "")

	if len(data.Tareas) > 0 {
		lines = append(lines, fmt.Sprintf("=== TAREAS PENDIENTES (%d) ===", len(data.Tareas)))
		for idx, tarea := range data.Tareas {
			if idx == 5 {
				lines = append(lines, fmt.Sprintf("... y %d tareas más", len(data.Tareas)-5))
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s", idx+1, truncate(tarea.Texto, 100)))
		}
	} else {
		lines = append(lines, "=== TAREAS PENDIENTES ===", "No hay tareas registradas.")
	}

	return strings.Join(lines, "\n")
}

func renderOrientadorVocacional(data *ContextData) string {
	var lines []string

	if d := data.Academicos; d != nil {
		lines = append(lines, "=== PERFIL ACADÉMICO ===")
		lines = append(lines, "Carrera elegida: "+orDefault(d.Carrera, "No especificada"))
		lines = append(lines, fmt.Sprintf("Ciclo actual: %d", d.CicloActual))
		lines = append(lines, "Avance en la malla: "+fnum(d.AvanceMalla, 1)+"%")
		lines = append(lines, "Promedio ponderado: "+fnum(d.PromedioPonderado, 2))
		lines = append(lines, "Estado: "+orDefault(d.EstadoMatricula, "N/A"))
		if n := len(d.CursosReprobados); n > 0 {
			lines = append(lines, fmt.Sprintf("Cursos con dificultades: %d", n))
		}
		if n := len(d.HistorialRetirados); n > 0 {
			lines = append(lines, fmt.Sprintf("Retiros de cursos: %d", n))
		}
	} else {
		lines = append(lines, "No hay datos académicos disponibles.")
	}

	lines = append(lines, "", "=== CONTEXTO SOCIOECONÓMICO ===")
	if d := data.Socioeconomicos; d != nil {
		lines = append(lines, "Tipo de financiamiento: "+orDefault(d.TipoFinanciamiento, "N/A"))
		lines = append(lines, "Situación laboral: "+orDefault(d.SituacionLaboral, "N/A"))
		if d.IngresoEstimado != "" {
			lines = append(lines, "Ingreso mensual estimado: "+fnum(d.IngresoEstimado, 2))
		}
		if d.DependenciaEconomica != nil {
			lines = append(lines, "Dependencia económica: "+siNo(*d.DependenciaEconomica))
		}
	} else {
		lines = append(lines, "No hay datos socioeconómicos disponibles.")
	}

	return strings.Join(lines, "\n")
}

func renderPsicologo(data *ContextData) string {
	var lines []string

	lines = append(lines, "=== PERFIL EMOCIONAL Y CONDUCTUAL ===")
	if d := data.Emocionales; d != nil {
		lines = append(lines, "Frecuencia de acceso a plataforma: "+orDefault(d.FrecuenciaAccesoPlataforma, "N/A"))
		lines = append(lines, fmt.Sprintf("Horas de estudio estimadas (semanal): %d", d.HorasEstudioEstimadas))
		lines = append(lines, "Uso de servicios de tutoría: "+siNo(d.UsoServiciosTutoria))
		lines = append(lines, "Uso de servicios de psicología: "+siNo(d.UsoServiciosPsicologia))
		if d.ActividadesExtracurriculares != nil {
			act := "No participa"
			if *d.ActividadesExtracurriculares {
				act = "Sí participa"
			}
			lines = append(lines, "Actividades extracurriculares: "+act)
		}
	} else {
		lines = append(lines, "No hay datos emocionales disponibles.")
	}

	lines = append(lines, "")

	if d := data.Academicos; d != nil {
		lines = append(lines, "=== CONTEXTO ACADÉMICO (Factores de Estrés) ===")
		lines = append(lines, "Carrera: "+orDefault(d.Carrera, "N/A"))
		lines = append(lines, fmt.Sprintf("Ciclo actual: %d", d.CicloActual))
		lines = append(lines, "Promedio: "+fnum(d.PromedioPonderado, 2))
		lines = append(lines, "Avance de malla: "+fnum(d.AvanceMalla, 1)+"%")
		lines = append(lines, "Asistencia: "+fnum(d.AsistenciaPromedio, 1)+"%")
		if n := len(d.CursosReprobados); n > 0 {
			lines = append(lines, fmt.Sprintf("⚠️ Cursos reprobados: %d", n))
		}
		if d.CreditosReprobados > 0 {
			lines = append(lines, fmt.Sprintf("⚠️ Créditos desaprobados: %d", d.CreditosReprobados))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "=== FACTORES SOCIOECONÓMICOS ===")
	if d := data.Socioeconomicos; d != nil {
		lines = append(lines, "Situación laboral: "+orDefault(d.SituacionLaboral, "N/A"))
		lines = append(lines, "Tipo de financiamiento: "+orDefault(d.TipoFinanciamiento, "N/A"))
		if d.DependenciaEconomica != nil {
			lines = append(lines, "Dependencia económica: "+siNo(*d.DependenciaEconomica))
		}
		if d.SituacionLaboral == "TRABAJA_Y_ESTUDIA" {
			lines = append(lines, "⚠️ El estudiante trabaja y estudia simultáneamente")
		}
	} else {
		lines = append(lines, "No hay datos socioeconómicos disponibles.")
	}

	return strings.Join(lines, "\n")
}

func metricOr(m map[string]json.Number, name, fallback string) string {
	if v, ok := m[name]; ok && v != "" {
		return v.String()
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// fnum renders a json.Number with fixed decimals, falling back to the raw
// text when it is not a parseable float.
func fnum(n json.Number, prec int) string {
	if n == "" {
		return "0"
	}
	v, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
