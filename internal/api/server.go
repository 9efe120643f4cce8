package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rapaflow/internal/config"
	"rapaflow/internal/experiments"
	"rapaflow/internal/model"
	"rapaflow/internal/sbml"
	"rapaflow/internal/storage"
	"rapaflow/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg      config.Config
	db       *storage.DB
	runRepo  *storage.RunRepo
	pkRepo   *storage.PKRepo
	registry *experiments.Registry
	temporal tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	reg, err := experiments.NewRegistry()
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:      cfg,
		db:       db,
		runRepo:  storage.NewRunRepo(db),
		pkRepo:   storage.NewPKRepo(db),
		registry: reg,
		temporal: tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/model", s.handleModel)
	mux.HandleFunc("/model/sbml", s.handleModelSBML)
	mux.HandleFunc("/experiments", s.handleExperiments)
	mux.HandleFunc("/experiments/", s.handleExperimentScoped)
	mux.HandleFunc("/groups", s.handleGroups)
	mux.HandleFunc("/batches", s.handleBatches)
	mux.HandleFunc("/batches/", s.handleBatchScoped)
	mux.HandleFunc("/runs/", s.handleRunScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	def, err := model.Body()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           def.ID,
		"name":         def.Name,
		"compartments": len(def.Compartments),
		"species":      len(def.Species),
		"parameters":   len(def.Parameters),
		"reactions":    len(def.Reactions),
		"observables":  len(def.Observables),
	})
}

func (s *Server) handleModelSBML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	def, err := model.Body()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	data, err := sbml.Export(def, s.cfg.SBMLLevel, s.cfg.SBMLVersion)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiments": s.registry.ExperimentIDs()})
}

func (s *Server) handleExperimentScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/experiments/"), "/")
	if id == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	exp, err := s.registry.Experiment(id)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	simulations := make([]string, 0, len(exp.Simulations))
	for name := range exp.Simulations {
		simulations = append(simulations, name)
	}
	scans := make([]string, 0, len(exp.Scans))
	scanParameters := map[string]map[string]string{}
	for name, scan := range exp.Scans {
		scans = append(scans, name)
		for _, dim := range scan.Dimensions {
			info := map[string]string{"parameter": dim.Parameter, "unit": dim.Values.Unit}
			if d, ok := experiments.Variables[dim.Parameter]; ok {
				info["label"] = d.Label
			}
			scanParameters[name] = info
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":              exp.ID,
		"name":            exp.Name,
		"simulations":     simulations,
		"scans":           scans,
		"scan_parameters": scanParameters,
		"pk_scans":        exp.PKScans,
		"colors":          exp.Colors,
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	groups := map[string][]string{}
	for _, name := range s.registry.GroupNames() {
		ids, err := s.registry.Group(name)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		groups[name] = ids
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Group         string `json:"group"`
		MaxConcurrent int    `json:"max_concurrent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Group = strings.TrimSpace(req.Group)
	if req.Group == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("group is required"))
		return
	}
	if _, err := s.registry.Group(req.Group); err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}

	batchID := uuid.NewString()
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "batch-" + batchID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.BatchRunWorkflow, workflows.BatchRunInput{
		BatchID:       batchID,
		Group:         req.Group,
		MaxConcurrent: defaultConcurrent(req.MaxConcurrent, s.cfg.MaxConcurrentRuns),
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"batch_id": batchID, "workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

func (s *Server) handleBatchScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/batches/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	batchID := parts[0]
	switch parts[1] {
	case "progress":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		var prog workflows.BatchProgress
		resp, err := s.temporal.QueryWorkflow(r.Context(), "batch-"+batchID, "", workflows.QueryGetBatchProgress)
		if err != nil {
			// Fallback to DB-derived progress when no active workflow query is available.
			runs, rErr := s.runRepo.ListRunsByBatch(r.Context(), batchID)
			if rErr != nil {
				writeErr(w, http.StatusInternalServerError, rErr)
				return
			}
			perExperiment := map[string]string{}
			done, failed := 0, 0
			for _, run := range runs {
				perExperiment[run.ExperimentID] = run.Status
				switch run.Status {
				case "completed":
					done++
				case "failed":
					done++
					failed++
				}
			}
			writeJSON(w, http.StatusOK, workflows.BatchProgress{
				BatchID:       batchID,
				Total:         len(runs),
				Done:          done,
				Failed:        failed,
				PerExperiment: perExperiment,
			})
			return
		}
		if err := resp.Get(&prog); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, prog)
	case "runs":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		runs, err := s.runRepo.ListRunsByBatch(r.Context(), batchID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleRunScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	runID := parts[0]
	if len(parts) == 1 {
		run, err := s.runRepo.GetRun(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}
	switch parts[1] {
	case "status":
		var status workflows.ExperimentStatus
		resp, err := s.temporal.QueryWorkflow(r.Context(), runID, "", workflows.QueryGetExperimentStatus)
		if err != nil {
			// Closed workflows reject queries; fall back to the execution status.
			desc, dErr := s.temporal.DescribeWorkflowExecution(r.Context(), runID, "")
			if dErr != nil {
				writeErr(w, http.StatusNotFound, dErr)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"run_id":          runID,
				"workflow_status": enumspb.WorkflowExecutionStatus_name[int32(desc.WorkflowExecutionInfo.Status)],
			})
			return
		}
		if err := resp.Get(&status); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	case "pk":
		results, err := s.pkRepo.ListResultsByRun(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pk_results": results, "display": experiments.PKMetrics})
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func defaultConcurrent(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "RF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "RF-DB-5001",
				Message: "Database schema is not initialized. Start the worker once or run EnsureSchema.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "RF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "RF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "RF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "RF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "RF-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "RF-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "group is required"):
			msg = "Experiment group is required."
		case strings.Contains(low, "unknown experiment group"):
			msg = "Unknown experiment group."
		case strings.Contains(low, "unknown experiment"):
			msg = "Unknown experiment."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
