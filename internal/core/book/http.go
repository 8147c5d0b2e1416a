package book

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookwormhq/bookworm/internal/platform/config"
	"github.com/bookwormhq/bookworm/internal/platform/middleware"
	requestutil "github.com/bookwormhq/bookworm/internal/platform/request"
	"github.com/bookwormhq/bookworm/internal/platform/respond"
	"github.com/bookwormhq/bookworm/internal/platform/sec"
	"github.com/bookwormhq/bookworm/pkg/convert"
	"github.com/bookwormhq/bookworm/pkg/pagination"
)

type Handler struct {
	service *Service
	policy  config.Policy
}

func NewHandler(service *Service, policy config.Policy) *Handler {
	return &Handler{service: service, policy: policy}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public catalog browsing
	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)
	router.Get("/{id}/availability", handler.checkAvailability)

	// Librarian and up
	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleLibrarian))

		staffRoute.Get("/low-stock", handler.listLowStock)
		staffRoute.Post("/", handler.registerBook)
		staffRoute.Patch("/{id}", handler.updateBook)

		// Admin strict only
		staffRoute.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteBook)
	})
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:    request.URL.Query().Get("q"),
		Language: request.URL.Query().Get("language"),
		Type:     request.URL.Query().Get("type"),
		Status:   request.URL.Query().Get("status"),
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// listLowStock reports catalog entries at or below the restock threshold.
// The policy default can be overridden per request via ?threshold=N.
func (handler *Handler) listLowStock(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	threshold := convert.ToIntD(request.URL.Query().Get("threshold"), handler.policy.LowStockThreshold)

	books, err := handler.service.ListLowStock(request.Context(), threshold, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"threshold": threshold,
		"books":     books,
	})
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	b, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, b)
}

func (handler *Handler) checkAvailability(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	requested := 1
	if raw := request.URL.Query().Get("quantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respond.Error(writer, request, requestutil.InvalidParam("quantity"))
			return
		}
		requested = parsed
	}

	canBorrow, err := handler.service.CanBorrow(request.Context(), bookID, requested)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"book_id":    bookID,
		"quantity":   requested,
		"can_borrow": canBorrow,
	})
}

func (handler *Handler) registerBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	registered, err := handler.service.Register(request.Context(), input, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, registered)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateBook(request.Context(), bookID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	if err := handler.service.DeleteBook(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
