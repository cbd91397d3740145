package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matzehuels/lanparty/pkg/buildinfo"
	"github.com/matzehuels/lanparty/pkg/cache"
	"github.com/matzehuels/lanparty/pkg/clique"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	lpio "github.com/matzehuels/lanparty/pkg/io"
	"github.com/matzehuels/lanparty/pkg/pipeline"
	"github.com/matzehuels/lanparty/pkg/render"
	"github.com/matzehuels/lanparty/pkg/render/nodelink"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:   "image/svg+xml",
	pipeline.FormatPNG:   "image/png",
	pipeline.FormatPDF:   "application/pdf",
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatEdges: "text/plain; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ropts := pipeline.RenderOptions{
		Format:    q.Get("format"),
		Highlight: true,
	}
	if ropts.Format == "" {
		ropts.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(ropts.Format); err != nil {
		writeError(w, err)
		return
	}
	engine, err := nodelink.ParseEngine(q.Get("engine"))
	if err != nil {
		writeError(w, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "invalid engine"))
		return
	}
	ropts.Engine = engine
	if ropts.Detailed, err = boolParam(q.Get("detailed"), false); err != nil {
		writeError(w, err)
		return
	}
	if ropts.Highlight, err = boolParam(q.Get("highlight"), true); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.analyze(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.runner.Render(r.Context(), res, ropts)
	if err != nil {
		if errors.Is(err, render.ErrNoConverter) {
			err = lperrors.Wrap(lperrors.ErrCodeUnsupported, err, "format %s is not available on this server", ropts.Format)
		}
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[ropts.Format])
	w.Header().Set("X-Run-ID", res.Report.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// analyze reads the request body and runs the pipeline, sharing the run with
// identical concurrent requests. The shared run is detached from the request
// context so one client disconnecting does not fail the others.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*pipeline.Result, error) {
	opts, err := s.options(r)
	if err != nil {
		return nil, err
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody())
	lines, err := lpio.ReadLines(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge{limit: tooLarge.Limit}
		}
		return nil, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "cannot read body")
	}

	key := fmt.Sprintf("%s:%+v", cache.HashLines(lines), opts.ReportKeyOpts())
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.runner.Execute(context.WithoutCancel(r.Context()), lines, opts)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*pipeline.Result)
	if shared {
		s.logger.Debug("shared analysis", "run_id", res.Report.RunID, "request_id", RequestID(r.Context()))
	}
	return res, nil
}

// options builds the pipeline options from the server defaults and the query.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	q := r.URL.Query()

	if q.Has("prefix") {
		opts.Prefix = q.Get("prefix")
	}
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = clique.Strategy(v)
	}
	all, err := boolParam(q.Get("all"), opts.All)
	if err != nil {
		return opts, err
	}
	opts.All = all
	if v := q.Get("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, lperrors.New(lperrors.ErrCodeInvalidInput, "workers: %q is not a number", v)
		}
		opts.Workers = n
	}
	opts.Refresh = false
	return opts, opts.ValidateAndSetDefaults()
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, lperrors.New(lperrors.ErrCodeInvalidInput, "%q is not a boolean", v)
	}
	return b, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errBodyTooLarge is reported as 413 rather than through the error codes.
type errBodyTooLarge struct{ limit int64 }

func (e errBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge errBodyTooLarge
	if errors.As(err, &tooLarge) {
		writeErrorCode(w, http.StatusRequestEntityTooLarge, string(lperrors.ErrCodeInvalidInput), tooLarge.Error())
		return
	}
	code := lperrors.GetCode(err)
	if code == "" {
		code = lperrors.ErrCodeInternal
	}
	writeErrorCode(w, lperrors.HTTPStatus(err), string(code), lperrors.UserMessage(err))
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
