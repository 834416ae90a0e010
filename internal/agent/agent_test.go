package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tecsup/agente/internal/llm"
	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

type completerFunc func(ctx context.Context, msgs []llm.Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	return f(ctx, msgs)
}

func fixedCompleter(reply string) completerFunc {
	return func(context.Context, []llm.Message) (string, error) { return reply, nil }
}

func failingCompleter(err error) completerFunc {
	return func(context.Context, []llm.Message) (string, error) { return "", err }
}

func openTestRepos(t *testing.T) *repo.Repositories {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return repo.New(s, repo.Tables{
		Usuarios:             "usuarios",
		Interacciones:        "interacciones",
		Recetas:              "recetas",
		Servicios:            "servicios",
		Tareas:               "tareas",
		DatosAcademicos:      "datos_academicos",
		DatosEmocionales:     "datos_emocionales",
		DatosSocioeconomicos: "datos_socioeconomicos",
	})
}

func testService(repos *repo.Repositories, c llm.Completer) *Service {
	svc := NewService(repos, c, Limits{Memoria: 10, Servicios: 20, Tareas: 20}, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestResolveAllCatalogModes(t *testing.T) {
	for producto, modes := range productModes {
		for _, m := range modes {
			first, err := Resolve(producto, string(m))
			if err != nil {
				t.Fatalf("Resolve(%s, %s): %v", producto, m, err)
			}
			second, err := Resolve(producto, string(m))
			if err != nil {
				t.Fatalf("second Resolve(%s, %s): %v", producto, m, err)
			}
			if *first != *second {
				t.Errorf("Resolve(%s, %s) not stable: %+v vs %+v", producto, m, first, second)
			}
			if first.SystemPromptFragment() == "" {
				t.Errorf("mode %s has no system prompt", m)
			}
		}
	}
}

func TestResolveUnknownMode(t *testing.T) {
	_, err := Resolve(ProductAcademico, "Nutricionista")
	var unknownErr *UnknownModeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("err = %v, want *UnknownModeError", err)
	}
	for _, m := range []string{"MentorAcademico", "OrientadorVocacional", "Psicologo"} {
		if !strings.Contains(err.Error(), m) {
			t.Errorf("error message %q does not list mode %s", err.Error(), m)
		}
	}
}

func TestResolveCrossProductMode(t *testing.T) {
	// A salud mode is not valid for academico and vice versa.
	if _, err := Resolve(ProductAcademico, "Recetas"); err == nil {
		t.Error("Resolve(academico, Recetas) succeeded, want error")
	}
	if _, err := Resolve(ProductSalud, "Psicologo"); err == nil {
		t.Error("Resolve(salud, Psicologo) succeeded, want error")
	}
}

func TestRequiredTablesCoverAllModes(t *testing.T) {
	tables := repo.Tables{
		Usuarios: "u", Interacciones: "i", Recetas: "r",
		Servicios: "s", Tareas: "t", DatosAcademicos: "da",
		DatosEmocionales: "de", DatosSocioeconomicos: "ds",
	}
	for _, modes := range productModes {
		for _, m := range modes {
			c := &Context{Modo: m}
			got := c.RequiredTables(tables)
			if len(got) == 0 {
				t.Errorf("mode %s reports no required tables", m)
			}
			if got[0] != "u" {
				t.Errorf("mode %s: first table = %q, want usuarios", m, got[0])
			}
		}
	}
}

func TestRenderContextSectionNeverEmpty(t *testing.T) {
	empty := &ContextData{}
	for _, modes := range productModes {
		for _, m := range modes {
			c := &Context{Modo: m}
			if got := c.RenderContextSection(empty); strings.TrimSpace(got) == "" {
				t.Errorf("mode %s renders empty section for empty data", m)
			}
		}
	}
}

func TestRenderEstadisticasNoData(t *testing.T) {
	c := &Context{Producto: ProductSalud, Modo: ModeEstadisticas}
	got := c.RenderContextSection(&ContextData{})
	if got != "No hay suficientes datos para generar estadísticas." {
		t.Errorf("got %q", got)
	}
}

func metricsRecord(fecha time.Time, metricas map[string]json.Number) repo.Interaction {
	return repo.Interaction{
		Fecha:    fecha.UTC().Format(time.RFC3339),
		Metricas: metricas,
	}
}

func TestAggregateMetrics(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	records := []repo.Interaction{
		metricsRecord(base, map[string]json.Number{"pasos": "100"}),
		metricsRecord(base.AddDate(0, 0, 1), map[string]json.Number{"pasos": "200"}),
		metricsRecord(base.AddDate(0, 0, 2), map[string]json.Number{"pasos": "300"}),
	}

	stats := aggregateMetrics(records)

	pasos, ok := stats["pasos"]
	if !ok {
		t.Fatal("pasos missing from aggregates")
	}
	if pasos.Promedio != 200 || pasos.Maximo != 300 || pasos.Minimo != 100 || pasos.Muestras != 3 {
		t.Errorf("pasos = %+v, want mean 200 max 300 min 100 over 3 samples", pasos)
	}
	if _, ok := stats["horas_sueno"]; ok {
		t.Error("horas_sueno present despite zero samples")
	}
	if _, ok := stats["ritmo_cardiaco"]; ok {
		t.Error("ritmo_cardiaco present despite zero samples")
	}
}

func TestAggregateMetricsSparse(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	records := []repo.Interaction{
		metricsRecord(base, map[string]json.Number{"pasos": "5000", "horas_sueno": "7.5"}),
		metricsRecord(base.AddDate(0, 0, 1), map[string]json.Number{"horas_sueno": "6.5"}),
	}

	stats := aggregateMetrics(records)

	if got := stats["pasos"].Muestras; got != 1 {
		t.Errorf("pasos samples = %d, want 1", got)
	}
	sueno := stats["horas_sueno"]
	if sueno.Promedio != 7 || sueno.Muestras != 2 {
		t.Errorf("horas_sueno = %+v, want mean 7 over 2 samples", sueno)
	}
}

func seedUser(t *testing.T, repos *repo.Repositories, autorizado bool) {
	t.Helper()
	err := repos.Users.Put(repo.User{
		Correo:       "ana@example.com",
		Nombre:       "Ana",
		Sexo:         "F",
		Autorizacion: autorizado,
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
}

func TestConsultSuccessPersistsInteraction(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)
	svc := testService(repos, fixedCompleter("Claro, puedo ayudarte con eso."))

	res, err := svc.Consult(context.Background(), ProductAcademico, "MentorAcademico", "ana@example.com", "¿Cómo organizo mi semana de estudio?")
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if res.Respuesta != "Claro, puedo ayudarte con eso." {
		t.Errorf("respuesta = %q", res.Respuesta)
	}
	if res.Contexto != ModeMentorAcademico {
		t.Errorf("contexto = %s", res.Contexto)
	}
	if !res.ResumenGuardado {
		t.Error("resumen not persisted")
	}

	saved, err := repos.Interactions.RecentByUser("ana@example.com", 10)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("persisted %d interactions, want 1", len(saved))
	}
	if saved[0].Intencion != "MentorAcademico" {
		t.Errorf("intencion = %q", saved[0].Intencion)
	}
}

func TestConsultUnknownUser(t *testing.T) {
	repos := openTestRepos(t)
	svc := testService(repos, fixedCompleter("hola"))

	_, err := svc.Consult(context.Background(), ProductSalud, "General", "nadie@example.com", "hola")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Nothing may be written for an unknown user.
	saved, err := repos.Interactions.RecentByUser("nadie@example.com", 10)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("persisted %d interactions for unknown user", len(saved))
	}
}

func TestConsultRequiresAuthorization(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, false)
	svc := testService(repos, fixedCompleter("hola"))

	_, err := svc.Consult(context.Background(), ProductSalud, "General", "ana@example.com", "hola")
	if !errors.Is(err, ErrAutorizacionRequerida) {
		t.Fatalf("err = %v, want ErrAutorizacionRequerida", err)
	}
}

func TestConsultUnknownModePropagates(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)
	svc := testService(repos, fixedCompleter("hola"))

	_, err := svc.Consult(context.Background(), ProductSalud, "Horoscopo", "ana@example.com", "hola")
	var unknownErr *UnknownModeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("err = %v, want *UnknownModeError", err)
	}
}

func TestConsultProviderFailureFallsBack(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)
	svc := testService(repos, failingCompleter(fmt.Errorf("quota exceeded")))

	res, err := svc.Consult(context.Background(), ProductAcademico, "Psicologo", "ana@example.com", "Me siento abrumado por los exámenes")
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if res.Respuesta != FallbackRespuesta {
		t.Errorf("respuesta = %q, want fallback sentence", res.Respuesta)
	}
	// The summary falls back to the template and is still persisted.
	if !strings.Contains(res.Resumen, "🧠") || !strings.Contains(res.Resumen, "Me siento abrumado") {
		t.Errorf("resumen = %q, want templated fallback", res.Resumen)
	}
	if !res.ResumenGuardado {
		t.Error("fallback summary not persisted")
	}
}

func TestConsultSystemPromptCarriesContext(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)
	if _, err := repos.Servicios.Put(repo.Servicio{Nombre: "Taller de yoga", Categoria: "bienestar", Descripcion: "Sesiones semanales"}); err != nil {
		t.Fatalf("seeding servicio: %v", err)
	}

	var systemSeen string
	c := completerFunc(func(_ context.Context, msgs []llm.Message) (string, error) {
		if len(msgs) > 0 && msgs[0].Role == llm.RoleSystem {
			systemSeen = msgs[0].Content
		}
		return "ok", nil
	})
	svc := testService(repos, c)

	if _, err := svc.Consult(context.Background(), ProductSalud, "Servicios", "ana@example.com", "¿Qué talleres hay?"); err != nil {
		t.Fatalf("Consult: %v", err)
	}

	for _, want := range []string{
		"--- INFORMACIÓN DEL USUARIO ---",
		"--- MEMORIA DE CONVERSACIONES ANTERIORES ---",
		"--- DATOS DEL CONTEXTO ACTUAL ---",
		"Nombre: Ana",
		"Taller de yoga",
	} {
		if !strings.Contains(systemSeen, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestSummarizeTrimsAndCaps(t *testing.T) {
	repos := openTestRepos(t)
	long := strings.Repeat("resumen muy largo ", 30)
	svc := testService(repos, fixedCompleter("  "+long+"\ncon salto  "))

	got := svc.Summarize(context.Background(), "pregunta", "respuesta", ModeGeneral)
	if strings.Contains(got, "\n") {
		t.Error("summary contains newline")
	}
	if n := len([]rune(got)); n > 250 {
		t.Errorf("summary length = %d runes, want <= 250", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated summary %q lacks ellipsis", got)
	}
}

func TestBuildContextDataEstadisticasWindow(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	// One record inside the 30-day window, one outside.
	for _, in := range []repo.Interaction{
		metricsRecord(now.AddDate(0, 0, -5), map[string]json.Number{"pasos": "8000"}),
		metricsRecord(now.AddDate(0, 0, -45), map[string]json.Number{"pasos": "100"}),
	} {
		in.Correo = "ana@example.com"
		if _, err := repos.Interactions.Append(in); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	c := &Context{Producto: ProductSalud, Modo: ModeEstadisticas}
	data, err := c.BuildContextData(repos, Limits{Memoria: 10}, "ana@example.com", now)
	if err != nil {
		t.Fatalf("BuildContextData: %v", err)
	}
	if data.TotalRegistros != 1 {
		t.Errorf("TotalRegistros = %d, want 1 (old record outside window)", data.TotalRegistros)
	}
	if got := data.Estadisticas["pasos"].Promedio; got != 8000 {
		t.Errorf("pasos mean = %v, want 8000", got)
	}
}

func TestBuildContextDataPsicologoMissingProfiles(t *testing.T) {
	repos := openTestRepos(t)
	seedUser(t, repos, true)

	c := &Context{Producto: ProductAcademico, Modo: ModePsicologo}
	data, err := c.BuildContextData(repos, Limits{Memoria: 10}, "ana@example.com", time.Now())
	if err != nil {
		t.Fatalf("BuildContextData: %v", err)
	}
	if data.Academicos != nil || data.Emocionales != nil || data.Socioeconomicos != nil {
		t.Error("expected nil profiles for user without records")
	}

	rendered := c.RenderContextSection(data)
	for _, want := range []string{
		"No hay datos emocionales disponibles.",
		"No hay datos socioeconómicos disponibles.",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered section missing %q", want)
		}
	}
}
