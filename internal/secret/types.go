package secret

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrStore wraps every failure talking to the secret store.
	ErrStore = errors.New("secret store")
	// ErrNotFound is returned when the named secret does not exist.
	ErrNotFound = errors.New("secret not found")
	// ErrMalformed is returned when a stored payload lacks required fields.
	ErrMalformed = errors.New("malformed database secret")
)

// DatabaseSecret is the JSON credential record kept for one database account.
type DatabaseSecret struct {
	ClusterIdentifier string
	Engine            string
	Host              string
	Password          string
	Port              int
	Username          string

	// extra holds fields this package does not know about, re-emitted by Encode.
	extra map[string]json.RawMessage
	// seen records optional keys present in the decoded payload, even when empty.
	seen map[string]bool
}

const (
	fieldCluster  = "dbClusterIdentifier"
	fieldEngine   = "engine"
	fieldHost     = "host"
	fieldPassword = "password"
	fieldPort     = "port"
	fieldUsername = "username"
)

// Decode parses a stored secret string. host, username and password are required.
func Decode(data []byte) (DatabaseSecret, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return DatabaseSecret{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return DatabaseSecret{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	var s DatabaseSecret
	fields := map[string]*string{
		fieldCluster:  &s.ClusterIdentifier,
		fieldEngine:   &s.Engine,
		fieldHost:     &s.Host,
		fieldPassword: &s.Password,
		fieldUsername: &s.Username,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return DatabaseSecret{}, fmt.Errorf("%w: field %q: %v", ErrMalformed, key, err)
		}
		if key == fieldCluster || key == fieldEngine {
			if s.seen == nil {
				s.seen = map[string]bool{}
			}
			s.seen[key] = true
		}
		delete(raw, key)
	}
	if v, ok := raw[fieldPort]; ok {
		if err := json.Unmarshal(v, &s.Port); err != nil {
			return DatabaseSecret{}, fmt.Errorf("%w: field %q: %v", ErrMalformed, fieldPort, err)
		}
		if s.Port <= 0 {
			return DatabaseSecret{}, fmt.Errorf("%w: port must be positive, got %d", ErrMalformed, s.Port)
		}
		delete(raw, fieldPort)
	}

	for key, val := range map[string]string{fieldHost: s.Host, fieldUsername: s.Username, fieldPassword: s.Password} {
		if val == "" {
			return DatabaseSecret{}, fmt.Errorf("%w: missing %q", ErrMalformed, key)
		}
	}

	if len(raw) > 0 {
		s.extra = raw
	}
	return s, nil
}

// Encode renders the secret back to JSON, including any unknown fields read by Decode.
// Optional keys Decode saw are written back even when empty.
func (s DatabaseSecret) Encode() ([]byte, error) {
	out := make(map[string]any, len(s.extra)+6)
	for k, v := range s.extra {
		out[k] = v
	}
	if s.ClusterIdentifier != "" || s.seen[fieldCluster] {
		out[fieldCluster] = s.ClusterIdentifier
	}
	if s.Engine != "" || s.seen[fieldEngine] {
		out[fieldEngine] = s.Engine
	}
	if s.Port != 0 {
		out[fieldPort] = s.Port
	}
	out[fieldHost] = s.Host
	out[fieldPassword] = s.Password
	out[fieldUsername] = s.Username
	return json.Marshal(out)
}

// Extra returns the raw value of a field Decode did not recognise.
func (s DatabaseSecret) Extra(key string) (json.RawMessage, bool) {
	v, ok := s.extra[key]
	return v, ok
}

// String never includes the password.
func (s DatabaseSecret) String() string {
	return fmt.Sprintf("%s@%s:%d (%s)", s.Username, s.Host, s.Port, s.Engine)
}

// GoString keeps %#v from leaking the password.
func (s DatabaseSecret) GoString() string {
	return "secret.DatabaseSecret{" + s.String() + "}"
}
