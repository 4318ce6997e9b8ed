package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity collaborator and
// exposes the jwtauth instance the router middleware needs. Token issuance
// itself lives outside this system; claims carry employee_id, department_id
// and role.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateServiceToken(employeeID, departmentID, role string, ttl time.Duration) (string, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateServiceToken mints a short-lived access token. Used by tooling and
// tests; production tokens come from the identity service with the same
// claim shape.
func (j *JWTService) GenerateServiceToken(employeeID, departmentID, role string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"employee_id":   employeeID,
		"department_id": departmentID,
		"role":          role,
		"type":          "access",
		"exp":           time.Now().Add(ttl).Unix(),
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, err
}
