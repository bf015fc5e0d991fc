package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/service"
)

// CategoryHandler handles category API requests.
type CategoryHandler struct {
	categoryService service.CategoryService
	validator       *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler with the given dependencies.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	categories, err := h.categoryService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryResponse(category))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string][]CategoryResponse{"categories": out})
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	category, err := h.categoryService.Create(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCategoryResponse(category))
}
