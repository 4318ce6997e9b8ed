package http

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/handler/http/middleware"
	"github.com/stafftrack/wfm-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	StartOvertime(w http.ResponseWriter, r *http.Request)
	EndOvertime(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// parseEvidenceForm reads the multipart body used by all four evidence
// operations: a JSON 'data' field plus a 'photo' file.
func parseEvidenceForm(w http.ResponseWriter, r *http.Request, dst interface{}) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return nil, nil, false
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return nil, nil, false
	}

	if err := json.Unmarshal([]byte(dataJSON), dst); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return nil, nil, false
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Proof photo is required", nil)
			return nil, nil, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return nil, nil, false
	}

	return file, fileHeader, true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest

	file, fileHeader, ok := parseEvidenceForm(w, r, &req)
	if !ok {
		return
	}
	defer file.Close()

	req.EmployeeID = middleware.EmployeeID(r)
	req.File = file
	req.FileHeader = fileHeader

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest

	file, fileHeader, ok := parseEvidenceForm(w, r, &req)
	if !ok {
		return
	}
	defer file.Close()

	req.EmployeeID = middleware.EmployeeID(r)
	req.File = file
	req.FileHeader = fileHeader

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", result)
}

// StartOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartOvertime(w http.ResponseWriter, r *http.Request) {
	var req attendance.StartOvertimeRequest

	file, fileHeader, ok := parseEvidenceForm(w, r, &req)
	if !ok {
		return
	}
	defer file.Close()

	req.EmployeeID = middleware.EmployeeID(r)
	req.File = file
	req.FileHeader = fileHeader

	result, err := h.attendanceService.StartOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime session started", result)
}

// EndOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndOvertime(w http.ResponseWriter, r *http.Request) {
	var req attendance.EndOvertimeRequest

	file, fileHeader, ok := parseEvidenceForm(w, r, &req)
	if !ok {
		return
	}
	defer file.Close()

	req.EmployeeID = middleware.EmployeeID(r)
	req.File = file
	req.FileHeader = fileHeader

	result, err := h.attendanceService.EndOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime session completed", result)
}

func parseAttendanceFilter(r *http.Request) attendance.Filter {
	q := r.URL.Query()

	filter := attendance.Filter{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
	}
	if from := q.Get("from"); from != "" {
		filter.From = &from
	}
	if to := q.Get("to"); to != "" {
		filter.To = &to
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	return filter
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	filter := parseAttendanceFilter(r)
	filter.EmployeeID = middleware.EmployeeID(r)

	result, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListAttendance(r.Context(), parseAttendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}
