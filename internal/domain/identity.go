package domain

import "fmt"

// Identity is the user identity returned by the auth service for a valid token.
// It lives for one request and is never mutated after the auth gate creates it.
type Identity struct {
	Subject string
	Role    string
	Claims  map[string]any
}

var (
	subjectKeys = []string{"id", "userId", "user_id", "sub", "_id"}
	nestedKeys  = []string{"user", "data"}
)

// IdentityFromClaims builds an Identity from the JSON object returned by the
// auth service. Objects nested under "user" or "data" take precedence over
// the top level.
func IdentityFromClaims(body map[string]any) *Identity {
	claims := body
	for _, key := range nestedKeys {
		if nested, ok := body[key].(map[string]any); ok {
			claims = nested
			break
		}
	}

	id := &Identity{Claims: claims}
	for _, key := range subjectKeys {
		if v, ok := claims[key]; ok && v != nil {
			id.Subject = stringify(v)
			break
		}
	}

	if role, ok := claims["role"].(string); ok {
		id.Role = role
	} else if roles, ok := claims["roles"].([]any); ok && len(roles) > 0 {
		id.Role = stringify(roles[0])
	}

	return id
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids are integral
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
