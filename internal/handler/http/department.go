package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/handler/http/response"
	departmentservice "github.com/stafftrack/wfm-backend-go/internal/service/department"
)

type DepartmentHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpdateTiming(w http.ResponseWriter, r *http.Request)
}

type departmentHandlerImpl struct {
	departmentService *departmentservice.DepartmentServiceImpl
}

func NewDepartmentHandler(departmentService *departmentservice.DepartmentServiceImpl) DepartmentHandler {
	return &departmentHandlerImpl{
		departmentService: departmentService,
	}
}

// Get implements DepartmentHandler.
func (h *departmentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.departmentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements DepartmentHandler.
func (h *departmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.departmentService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateTiming implements DepartmentHandler.
func (h *departmentHandlerImpl) UpdateTiming(w http.ResponseWriter, r *http.Request) {
	var req department.UpdateTimingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.DepartmentID = chi.URLParam(r, "id")

	result, err := h.departmentService.UpdateTiming(r.Context(), req.DepartmentID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department timing updated", result)
}
