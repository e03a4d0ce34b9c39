package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lanegraph/pkg/buildinfo"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

var (
	errNotFound         = errs.New(errs.ErrCodeNotFound, "no such route")
	errMethodNotAllowed = errs.New(errs.ErrCodeUnsupported, "method not allowed")
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatTXT:  "text/plain; charset=utf-8",
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := buildinfo.Fields()
	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h, err := decodeHistory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), h, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := lgio.MarshalLayout(view)
	if err != nil {
		writeError(w, r, pipeline.Classify(err))
		return
	}

	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h, err := decodeHistory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), h, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	setCacheHeader(w, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// decodeHistory reads the request body as a dataset. The format follows the
// Content-Type header and defaults to JSON.
func decodeHistory(r *http.Request) (pipeline.History, error) {
	format := lgio.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return pipeline.History{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "bad content type")
		}
		switch mt {
		case "application/json", "text/json":
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = lgio.FormatYAML
		case "application/toml":
			format = lgio.FormatTOML
		default:
			return pipeline.History{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported content type %q", mt)
		}
	}

	ds, err := lgio.ReadDataset(r.Body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.History{}, tooLarge
		}
		return pipeline.History{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode dataset")
	}
	return pipeline.DatasetHistory(ds)
}

// layoutOptions starts from the server defaults and applies the query.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Formats = nil
	opts.Frontiers = q["frontier"]

	if v := q.Get("dep_order"); v != "" {
		opts.DepOrder = v
	}
	if v := q.Get("max_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "max_rows must be a non-negative integer")
		}
		opts.MaxRows = n
	}
	if v := q.Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "strict must be a boolean")
		}
		opts.Strict = b
	}
	return opts, nil
}

// renderOptions extends [Server.layoutOptions] with the render parameters.
// Exactly one format is rendered per request.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		return opts, err
	}
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
		if len(s.defaults.Formats) > 0 {
			format = s.defaults.Formats[0]
		}
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("cell_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "cell_size must be a positive number")
		}
		opts.CellSize = f
	}
	for name, dst := range map[string]*bool{
		"detailed":    &opts.Detailed,
		"interactive": &opts.Interactive,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errs.New(errs.ErrCodeInvalidInput, "%s must be a boolean", name)
			}
			*dst = b
		}
	}
	if v := q.Get("labels"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "labels must be a boolean")
		}
		opts.NoLabels = !b
	}
	return opts, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

// writeError writes err as an error body. Request bodies over the limit are
// answered with 413, everything else by error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	body := errorBody{
		Code:      errs.GetCode(err),
		Message:   errs.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	}
	var coded *errs.Error
	if errors.As(err, &coded) && coded.Cause != nil {
		body.Detail = coded.Cause.Error()
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		body.Code = errs.ErrCodeInvalidInput
		body.Message = "request body too large"
	case errors.Is(err, errMethodNotAllowed):
		status = http.StatusMethodNotAllowed
	case body.Code == "":
		body.Code = errs.ErrCodeInternal
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
