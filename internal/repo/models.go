package repo

import (
	"encoding/json"
	"time"
)

// User is the account record keyed by email. Autorizacion is the
// data-collection consent flag gated by the consult handlers.
type User struct {
	Correo       string `json:"correo"`
	Nombre       string `json:"nombre,omitempty"`
	Sexo         string `json:"sexo,omitempty"`
	Role         string `json:"role,omitempty"`
	Autorizacion bool   `json:"autorizacion"`
}

// Interaction is one persisted exchange summary, optionally carrying a
// detected intent and a sparse bag of extracted numeric metrics (steps,
// sleep hours, heart rate). Metrics stay as json.Number so values written by
// ingestion round-trip without drift.
type Interaction struct {
	ID        string                 `json:"id"`
	Correo    string                 `json:"correo"`
	Fecha     string                 `json:"fecha"`
	Resumen   string                 `json:"resumen,omitempty"`
	Intencion string                 `json:"intencion,omitempty"`
	Metricas  map[string]json.Number `json:"metricas,omitempty"`
}

// Time parses the record timestamp; zero time when malformed or absent.
func (i Interaction) Time() time.Time {
	t, err := time.Parse(time.RFC3339, i.Fecha)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Medicamento is one medication entry inside a prescription.
type Medicamento struct {
	Producto   string      `json:"producto"`
	Dosis      json.Number `json:"dosis,omitempty"`
	Frecuencia string      `json:"frecuencia,omitempty"`
	Duracion   string      `json:"duracion,omitempty"`
}

// Receta is a prescription owned by a user.
type Receta struct {
	ID           string        `json:"id"`
	Correo       string        `json:"correo"`
	Paciente     string        `json:"paciente,omitempty"`
	Institucion  string        `json:"institucion,omitempty"`
	Medicamentos []Medicamento `json:"medicamentos,omitempty"`
}

// Tarea is a pending assignment owned by a user.
type Tarea struct {
	ID     string `json:"id"`
	Correo string `json:"correo"`
	Texto  string `json:"texto"`
	Fecha  string `json:"fecha,omitempty"`
}

// Servicio is one catalog entry of available support services.
type Servicio struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Categoria   string `json:"categoria,omitempty"`
	Horario     string `json:"horario,omitempty"`
}

// DatosAcademicos is the academic profile of a student.
type DatosAcademicos struct {
	Correo              string      `json:"correo"`
	Carrera             string      `json:"carrera,omitempty"`
	CicloActual         int         `json:"ciclo_actual,omitempty"`
	EstadoMatricula     string      `json:"estado_matricula,omitempty"`
	CreditosAprobados   int         `json:"creditos_aprobados,omitempty"`
	CreditosReprobados  int         `json:"creditos_desaprobados,omitempty"`
	PromedioPonderado   json.Number `json:"promedio_ponderado,omitempty"`
	AvanceMalla         json.Number `json:"avance_malla,omitempty"`
	AsistenciaPromedio  json.Number `json:"asistencia_promedio,omitempty"`
	CursosReprobados    []string    `json:"cursos_reprobados,omitempty"`
	HistorialRetirados  []string    `json:"historial_retirados,omitempty"`
}

// DatosEmocionales is the behavioral/emotional profile of a student.
type DatosEmocionales struct {
	Correo                       string `json:"correo"`
	FrecuenciaAccesoPlataforma   string `json:"frecuencia_acceso_plataforma,omitempty"`
	HorasEstudioEstimadas        int    `json:"horas_estudio_estimadas,omitempty"`
	UsoServiciosTutoria          bool   `json:"uso_servicios_tutoria,omitempty"`
	UsoServiciosPsicologia       bool   `json:"uso_servicios_psicologia,omitempty"`
	ActividadesExtracurriculares *bool  `json:"actividades_extracurriculares,omitempty"`
}

// DatosSocioeconomicos is the socioeconomic profile of a student.
type DatosSocioeconomicos struct {
	Correo               string      `json:"correo"`
	TipoFinanciamiento   string      `json:"tipo_financiamiento,omitempty"`
	SituacionLaboral     string      `json:"situacion_laboral,omitempty"`
	IngresoEstimado      json.Number `json:"ingreso_estimado,omitempty"`
	DependenciaEconomica *bool       `json:"dependencia_economica,omitempty"`
}

// Tables binds the logical table names used by the repositories. Values come
// from configuration; defaults mirror the provisioned store.
type Tables struct {
	Usuarios             string
	Interacciones        string
	Recetas              string
	Servicios            string
	Tareas               string
	DatosAcademicos      string
	DatosEmocionales     string
	DatosSocioeconomicos string
}
