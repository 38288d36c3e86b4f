package httpadapter

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kirillkom/training-portal/internal/config"
	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
	"github.com/kirillkom/training-portal/internal/observability/metrics"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").
	Funcs(template.FuncMap{"pathEscape": url.PathEscape}).
	ParseFS(templateFS, "templates/page.html"))

const (
	accessLogFilename    = "access_log.xlsx"
	accessLogContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxFormBytes         = 64 << 10
)

type Router struct {
	portal            ports.PortalService
	metrics           *metrics.PortalMetrics
	logger            *slog.Logger
	apiRateLimitRPS   float64
	apiRateLimitBurst int
}

// NewRouter wires the portal routes. metrics and logger may be nil.
func NewRouter(
	cfg config.Config,
	portal ports.PortalService,
	portalMetrics *metrics.PortalMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		portal:            portal,
		metrics:           portalMetrics,
		logger:            logger,
		apiRateLimitRPS:   cfg.APIRateLimitRPS,
		apiRateLimitBurst: cfg.APIRateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	submit := func(h http.HandlerFunc) http.Handler {
		return rateLimitMiddleware(h, rt.apiRateLimitRPS, rt.apiRateLimitBurst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /{$}", rt.page)
	mux.Handle("POST /{$}", submit(rt.submitForm))
	mux.HandleFunc("GET /materials/{name}", rt.downloadMaterial)
	mux.HandleFunc("GET /admin/access-log", rt.downloadAccessLog)
	mux.HandleFunc("GET /v1/materials", rt.listMaterials)
	mux.Handle("POST /v1/access", submit(rt.submitAccess))
	mux.HandleFunc("GET /v1/access-log", rt.getAccessLog)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type pageData struct {
	View        *domain.PageView
	Form        domain.Submission
	Columns     []string
	NoMaterials string
	NoAccessLog string
}

func (rt *Router) page(w http.ResponseWriter, r *http.Request) {
	view, err := rt.portal.Page(r.Context())
	if err != nil {
		rt.writePageError(w, r, err)
		return
	}
	rt.renderPage(w, r, view, domain.Submission{})
}

func (rt *Router) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	submission := domain.Submission{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Material: r.PostFormValue("material"),
	}

	view, err := rt.portal.Submit(r.Context(), submission)
	if err != nil {
		rt.writePageError(w, r, err)
		return
	}
	rt.renderPage(w, r, view, submission)
}

func (rt *Router) renderPage(w http.ResponseWriter, r *http.Request, view *domain.PageView, form domain.Submission) {
	data := pageData{
		View:        view,
		Form:        form,
		Columns:     domain.AccessLogColumns,
		NoMaterials: domain.MessageNoMaterials,
		NoAccessLog: domain.MessageNoAccessLog,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		rt.logger.Error("page_render_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func (rt *Router) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("page_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (rt *Router) downloadMaterial(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rc, item, err := rt.portal.OpenMaterial(r.Context(), name)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.recordDownload("material", status)
		if status == http.StatusNotFound {
			http.Error(w, domain.MessageFileNotFound, status)
			return
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(item.Name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(item.Size, 10))
	writeAttachment(w, item.Name, rc)
	rt.recordDownload("material", http.StatusOK)
}

func (rt *Router) downloadAccessLog(w http.ResponseWriter, r *http.Request) {
	rc, err := rt.portal.OpenAccessLog(r.Context())
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.recordDownload("access_log", status)
		if status == http.StatusNotFound {
			http.Error(w, domain.MessageNoAccessLog, status)
			return
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", accessLogContentType)
	writeAttachment(w, accessLogFilename, rc)
	rt.recordDownload("access_log", http.StatusOK)
}

func writeAttachment(w http.ResponseWriter, filename string, body io.Reader) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (rt *Router) recordDownload(kind string, status int) {
	if rt.metrics == nil {
		return
	}
	label := "ok"
	switch {
	case status == http.StatusNotFound:
		label = "not_found"
	case status >= 400:
		label = "error"
	}
	rt.metrics.RecordDownload(kind, label)
}

func (rt *Router) listMaterials(w http.ResponseWriter, r *http.Request) {
	items, err := rt.portal.Materials(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": items})
}

func (rt *Router) submitAccess(w http.ResponseWriter, r *http.Request) {
	var req domain.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Material) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "material is required"})
		return
	}

	view, err := rt.portal.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if view.Outcome.State == domain.StateInvalid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, view.Outcome)
}

func (rt *Router) getAccessLog(w http.ResponseWriter, r *http.Request) {
	log, err := rt.portal.AccessLog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if log.Records == nil {
		log.Records = []domain.AccessRecord{}
	}
	writeJSON(w, http.StatusOK, log)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
