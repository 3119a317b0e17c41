package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/middleware"
	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
	"github.com/gymfit/api-server-go/services"
	"github.com/gymfit/api-server-go/shared/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200

	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// APIServer manages all API routes and handlers
type APIServer struct {
	accessService     *services.AccessService
	membershipService *services.MembershipService
	authService       *services.AuthService
	classService      *services.ClassService
	paymentService    *services.PaymentService
	configService     *services.ConfigService
	adminService      *services.AdminService
}

// NewAPIServer creates a new API server instance
func NewAPIServer(db *gorm.DB, authService *services.AuthService) *APIServer {
	return &APIServer{
		accessService:     services.NewAccessService(db),
		membershipService: services.NewMembershipService(db),
		authService:       authService,
		classService:      services.NewClassService(db),
		paymentService:    services.NewPaymentService(db),
		configService:     services.NewConfigService(db),
		adminService:      services.NewAdminService(db),
	}
}

// SetupRoutes configures all API routes
func (s *APIServer) SetupRoutes(mux *http.ServeMux) {
	protect := utils.PanicRecoveryMiddleware
	loginLimiter := middleware.RateLimitMiddleware(loginRateLimit, loginRateWindow)

	// Access evaluation routes. GET is the primary shape; POST is kept for
	// readers that submit a JSON body.
	mux.Handle("/check_access", protect(http.HandlerFunc(s.handleCheckAccessPost)))
	mux.Handle("/check_access/", protect(http.HandlerFunc(s.handleCheckAccess)))

	// Authentication routes
	mux.Handle("/auth/login", loginLimiter(protect(http.HandlerFunc(s.handleLogin))))

	// Membership routes
	mux.Handle("/memberships", protect(http.HandlerFunc(s.handleMemberships)))
	mux.Handle("/memberships/", protect(http.HandlerFunc(s.handleMembershipByID)))

	// Class routes
	mux.Handle("/classes", protect(http.HandlerFunc(s.handleClasses)))
	mux.Handle("/classes/", protect(http.HandlerFunc(s.handleClassByID)))

	// Payment routes
	mux.Handle("/payments", protect(http.HandlerFunc(s.handlePayments)))
	mux.Handle("/payments/", protect(http.HandlerFunc(s.handlePaymentByID)))

	// Config routes
	mux.Handle("/config", protect(http.HandlerFunc(s.handleConfig)))
	mux.Handle("/config/", protect(http.HandlerFunc(s.handleConfigByKey)))

	// Admin dashboard routes
	mux.Handle("/admin/metrics", protect(http.HandlerFunc(s.handleAdminMetrics)))
	mux.Handle("/admin/recent-activity", protect(http.HandlerFunc(s.handleRecentActivity)))
}

// respondError maps service errors onto HTTP responses
func respondError(w http.ResponseWriter, err error) {
	if apiErr := apperrors.GetAPIError(err); apiErr != nil {
		if apiErr.InternalErr != nil {
			slog.Error("Request failed", "code", apiErr.Code, "error", apiErr.InternalErr)
		}
		utils.RespondWithJSON(w, apiErr.HTTPStatus, apiErr)
		return
	}

	slog.Error("Request failed with unexpected error", "error", err)
	status, message := apperrors.StatusOf(err)
	utils.RespondWithError(w, status, message)
}

// Access evaluation handlers

func (s *APIServer) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	cardID := utils.ExtractIDFromPathString(r.URL.Path)
	s.evaluateAndRespond(w, r, cardID)
}

func (s *APIServer) handleCheckAccessPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CheckAccessRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.evaluateAndRespond(w, r, req.CardID)
}

// evaluateAndRespond runs one admission check. Unknown cards answer 404 but
// still carry a full decision body so readers can display the reason.
func (s *APIServer) evaluateAndRespond(w http.ResponseWriter, r *http.Request, cardID string) {
	decision, err := s.accessService.EvaluateAccess(r.Context(), cardID)
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if decision.Reason == services.ReasonNotFound {
		status = http.StatusNotFound
	}
	utils.RespondWithJSON(w, status, decision)
}

// Authentication handlers

func (s *APIServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := s.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, token)
}

// Membership handlers

func (s *APIServer) handleMemberships(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, offset, err := utils.ParsePagination(r, defaultPageLimit, maxPageLimit)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		params := models.ListMembershipsParams{Limit: limit, Offset: offset}
		if tier := r.URL.Query().Get("membership_tier"); tier != "" {
			params.MembershipTier = &tier
		}
		if raw := r.URL.Query().Get("active"); raw != "" {
			active := raw == "true"
			params.Active = &active
		}

		memberships, total, err := s.membershipService.ListMemberships(r.Context(), params)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
			"items": memberships,
			"count": len(memberships),
			"total": total,
		})
	case http.MethodPost:
		var req models.CreateMembershipRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		membership, err := s.membershipService.CreateMembership(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusCreated, membership)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *APIServer) handleMembershipByID(w http.ResponseWriter, r *http.Request) {
	cardID := utils.ExtractIDFromPathString(r.URL.Path)
	if cardID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		membership, err := s.membershipService.GetMembership(r.Context(), cardID)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, membership)
	case http.MethodPut:
		var req models.UpdateMembershipRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		membership, err := s.membershipService.UpdateMembership(r.Context(), cardID, req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, membership)
	case http.MethodDelete:
		if err := s.membershipService.DeleteMembership(r.Context(), cardID); err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Class handlers

func (s *APIServer) handleClasses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		classes, err := s.classService.ListClasses(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, utils.CreateCollectionResponse(classes, len(classes)))
	case http.MethodPost:
		var req models.CreateClassRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		class, err := s.classService.CreateClass(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusCreated, class)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *APIServer) handleClassByID(w http.ResponseWriter, r *http.Request) {
	classID := utils.ExtractIDFromPathString(r.URL.Path)
	if classID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "class_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		class, err := s.classService.GetClass(r.Context(), classID)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, class)
	case http.MethodPut:
		var req models.UpdateClassRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		class, err := s.classService.UpdateClass(r.Context(), classID, req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, class)
	case http.MethodDelete:
		if err := s.classService.DeleteClass(r.Context(), classID); err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Payment handlers

func (s *APIServer) handlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		params := models.ListPaymentsParams{}
		if cardID := r.URL.Query().Get("card_id"); cardID != "" {
			params.CardID = &cardID
		}
		if status := r.URL.Query().Get("status"); status != "" {
			params.Status = &status
		}

		payments, err := s.paymentService.ListPayments(r.Context(), params)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, utils.CreateCollectionResponse(payments, len(payments)))
	case http.MethodPost:
		var req models.CreatePaymentRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		payment, err := s.paymentService.CreatePayment(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusCreated, payment)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *APIServer) handlePaymentByID(w http.ResponseWriter, r *http.Request) {
	paymentID := utils.ExtractIDFromPathString(r.URL.Path)
	if paymentID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "payment_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		payment, err := s.paymentService.GetPayment(r.Context(), paymentID)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, payment)
	case http.MethodPut:
		var req models.UpdatePaymentRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		payment, err := s.paymentService.UpdatePayment(r.Context(), paymentID, req)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, payment)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Config handlers

func (s *APIServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entries, err := s.configService.ListConfig(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, utils.CreateCollectionResponse(entries, len(entries)))
}

func (s *APIServer) handleConfigByKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/config/")
	key = strings.TrimSuffix(key, "/")
	if key == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "config key is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := s.configService.GetConfig(r.Context(), key)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, entry)
	case http.MethodPut:
		var req models.SetConfigRequest
		if err := utils.ParseJSONRequest(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		entry, err := s.configService.SetConfig(r.Context(), key, req.Value)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, entry)
	case http.MethodDelete:
		if err := s.configService.DeleteConfig(r.Context(), key); err != nil {
			respondError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Admin dashboard handlers

func (s *APIServer) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summary, err := s.adminService.GetMetrics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, summary)
}

func (s *APIServer) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, _, err := utils.ParsePagination(r, 20, 100)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		limit = parsed
	}

	activity, err := s.adminService.GetRecentActivity(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, utils.CreateCollectionResponse(activity, len(activity)))
}
