package loan

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/middleware"
	requestutil "github.com/bookwormhq/bookworm/internal/platform/request"
	"github.com/bookwormhq/bookworm/internal/platform/respond"
	"github.com/bookwormhq/bookworm/internal/platform/sec"
	"github.com/bookwormhq/bookworm/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Every loan route requires an authenticated member.
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.borrow)
	router.Get("/", handler.listLoans)
	router.Get("/{id}", handler.getLoan)
	router.Post("/{id}/return", handler.returnLoan)
	router.Post("/{id}/extend", handler.extendLoan)
	router.Post("/{id}/cancel", handler.cancelLoan)

	// Staff reporting
	router.With(middleware.RequireRole(sec.RoleLibrarian)).Get("/overdue", handler.listOverdue)
}

type borrowRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type extendRequest struct {
	Days int `json:"days"`
}

func (handler *Handler) borrow(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input borrowRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Borrow(request.Context(), input.BookID, claims.UserID, input.Quantity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) listLoans(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		UserID: claims.UserID,
		BookID: request.URL.Query().Get("book_id"),
		Status: request.URL.Query().Get("status"),
	}

	// Staff may inspect any member's loans.
	if sec.UserRole(claims.Role).AtLeast(sec.RoleLibrarian) {
		if target := request.URL.Query().Get("user_id"); target != "" {
			filter.UserID = target
		}
	}

	loans, total, err := handler.service.ListLoans(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, loans, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getLoan(writer http.ResponseWriter, request *http.Request) {
	l, err := handler.authorizedLoan(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, l)
}

func (handler *Handler) returnLoan(writer http.ResponseWriter, request *http.Request) {
	l, err := handler.authorizedLoan(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	returned, err := handler.service.Return(request.Context(), l.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, returned)
}

func (handler *Handler) extendLoan(writer http.ResponseWriter, request *http.Request) {
	l, err := handler.authorizedLoan(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input extendRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	extended, err := handler.service.Extend(request.Context(), l.ID, input.Days)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, extended)
}

func (handler *Handler) cancelLoan(writer http.ResponseWriter, request *http.Request) {
	l, err := handler.authorizedLoan(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cancelled, err := handler.service.Cancel(request.Context(), l.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cancelled)
}

func (handler *Handler) listOverdue(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	overdue, total, err := handler.service.ListOverdue(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, overdue, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// authorizedLoan loads the requested loan and checks that the caller owns
// it or is staff.
func (handler *Handler) authorizedLoan(request *http.Request) (*Loan, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return nil, err
	}

	l, err := handler.service.GetLoan(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		return nil, err
	}

	if l.UserID != claims.UserID && !sec.UserRole(claims.Role).AtLeast(sec.RoleLibrarian) {
		return nil, apperr.Forbidden("You can only manage your own loans").
			WithCode(CodeLoanForbidden)
	}

	return l, nil
}
