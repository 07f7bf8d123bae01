package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/report"
)

// maxFormBytes bounds the POST body.
const maxFormBytes = 64 << 10

// pageData holds all data passed to the page template.
type pageData struct {
	Fields          form.Fields
	DefaultDecimals int
	Result          string
	Error           string
}

// Handler serves the form page.
type Handler struct {
	svc  *calc.Service
	tmpl *template.Template
}

// New parses the page template and returns the handler.
func New(svc *calc.Service) (*Handler, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("web: parsing page template: %w", err)
	}
	return &Handler{svc: svc, tmpl: tmpl}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, pageData{DefaultDecimals: h.svc.DefaultDecimals()})
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := pageData{
		Fields:          form.FromValues(r.PostForm),
		DefaultDecimals: h.svc.DefaultDecimals(),
	}

	rep, err := h.svc.ComputeFields(data.Fields)
	if err != nil {
		data.Error = err.Error()
		h.render(w, data)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, rep); err != nil {
		slog.Error("web: render report", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Result = buf.String()
	h.render(w, data)
}

func (h *Handler) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		slog.Error("web: failed to render template", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
