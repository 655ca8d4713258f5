package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/forms"
	"caseflow/internal/httputil"
)

// FormHandler maps and validates extracted form data
type FormHandler struct {
	logger *slog.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(logger *slog.Logger) *FormHandler {
	return &FormHandler{logger: logger}
}

type formInfo struct {
	Type        forms.FormType `json:"type"`
	Description string         `json:"description"`
}

// ListForms returns the supported form types
// GET /api/forms
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	supported := []forms.FormType{
		forms.FormB101, forms.FormB106I, forms.FormB106J, forms.FormB107, forms.FormB122A,
	}
	infos := make([]formInfo, 0, len(supported))
	for _, ft := range supported {
		infos = append(infos, formInfo{Type: ft, Description: ft.Description()})
	}

	httputil.RespondJSON(w, http.StatusOK, infos)
}

type mapFormRequest struct {
	Fields map[string]string `json:"fields"`
}

type mapFormResponse struct {
	Mapping    *forms.MappingResult    `json:"mapping"`
	Validation *forms.ValidationResult `json:"validation"`
}

// MapForm maps a raw extracted field bag onto a form's canonical fields and
// validates the result. Validation findings are part of the response body,
// never an HTTP error: a form full of problems still maps successfully.
// POST /api/forms/{type}/map
func (h *FormHandler) MapForm(w http.ResponseWriter, r *http.Request) {
	rawType, ok := pathID(w, r, "type")
	if !ok {
		return
	}

	formType, err := forms.ParseFormType(rawType)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req mapFormRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	mapping, err := forms.MapFields(formType, req.Fields)
	if err != nil {
		handleError(w, err)
		return
	}

	validation, err := forms.Validate(formType, mapping.MappedFields)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, mapFormResponse{
		Mapping:    mapping,
		Validation: validation,
	})
}
