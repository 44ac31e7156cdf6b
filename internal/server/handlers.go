package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/abm-insights/internal/db"
	"github.com/jonathan/abm-insights/internal/pipeline"
	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore"
)

// maxFetchedRecords caps the raw vector-store listing on the fetch endpoint.
const maxFetchedRecords = 100

// ReportRequest is the request body for POST /reports.
type ReportRequest struct {
	Company string `json:"company" validate:"required"`
	Domain  string `json:"domain" validate:"required"`
	Notify  bool   `json:"notify"`
}

// ReportDetail is the response for GET /reports/{id}.
type ReportDetail struct {
	RunID          string               `json:"run_id"`
	Company        string               `json:"company"`
	Domain         string               `json:"domain"`
	Status         string               `json:"status"`
	Insights       types.Insights       `json:"insights"`
	ScrapedData    types.CompanyProfile `json:"scraped_data"`
	CitationsCount int                  `json:"external_citation_count"`
	Records        []vectorstore.Record `json:"records"`
}

// handleCreateReport validates the request and executes one synchronous run.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			vErr := &ErrValidation{Field: verrs[0].Field(), Message: "failed on '" + verrs[0].Tag() + "'"}
			s.errorResponse(w, HTTPStatus(vErr), vErr.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.runner.CreateReport(r.Context(), req.Company, req.Domain, req.Notify)
	if err != nil {
		log.Printf("Report run failed: %v", err)
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			s.jsonResponse(w, HTTPStatus(err), map[string]string{
				"error":  "report generation failed",
				"run_id": runErr.RunID.String(),
			})
			return
		}
		s.errorResponse(w, HTTPStatus(err), "report generation failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleGetReport returns a run's stored result plus its raw vector-store
// records.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		log.Printf("Failed to get run %s: %v", runID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch run")
		return
	}
	if run == nil {
		nf := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	detail := ReportDetail{
		RunID:   run.ID.String(),
		Company: run.Company,
		Domain:  run.Domain,
		Status:  run.Status,
		Records: []vectorstore.Record{},
	}
	if run.Result != nil {
		detail.Insights = run.Result.Insights
		detail.ScrapedData = run.Result.ScrapedData
		detail.CitationsCount = run.Result.CitationsCount
	}

	records, err := s.records.List(r.Context(), runID, maxFetchedRecords)
	if err != nil {
		log.Printf("Failed to list records for run %s: %v", runID, err)
	} else if records != nil {
		detail.Records = records
	}

	s.jsonResponse(w, http.StatusOK, detail)
}

// handleListReports returns recent runs, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}
