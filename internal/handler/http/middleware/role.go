package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/handler/http/response"
)

func roleFromContext(r *http.Request) (employee.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", false
	}
	return employee.Role(roleStr), true
}

// RequireTeamLead admits team leads and above.
func RequireTeamLead(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || (role != employee.RoleTeamLead && role != employee.RoleHR && role != employee.RoleAdmin) {
			response.Forbidden(w, employee.ErrTeamLeadRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHR admits HR and admins.
func RequireHR(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || (role != employee.RoleHR && role != employee.RoleAdmin) {
			response.Forbidden(w, employee.ErrHRAccessRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits admins only.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || role != employee.RoleAdmin {
			response.Forbidden(w, employee.ErrAdminAccessRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
