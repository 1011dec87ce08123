package challenge

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Service Formatting
// =============================================================================

// ErrUnknownServiceType is returned when a service type is neither a builtin
// nor declared in custom_service_types.
var ErrUnknownServiceType = errors.New("unknown service type")

// builtinServiceTypes are always available. Custom types extend the set and
// may override a builtin template, but can never remove it.
var builtinServiceTypes = []ServiceType{
	{Type: "website", UserDisplay: "{url}"},
	{Type: "tcp", UserDisplay: "nc {host} {port}"},
}

// FormatUserService renders the connection string shown to a player for one
// service. Substitution is literal {name} replacement; placeholders without a
// supplied value are left verbatim. Callers are responsible for supplying the
// right context (host+port for tcp, url for website).
func FormatUserService(cfg *Config, serviceType string, subs map[string]string) (string, error) {
	tmpl, ok := lookupServiceTemplate(cfg, serviceType)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownServiceType, serviceType)
	}

	for name, value := range subs {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl, nil
}

func lookupServiceTemplate(cfg *Config, serviceType string) (string, bool) {
	// Custom types first so they can override the builtins.
	for _, st := range cfg.CustomServiceTypes {
		if st.Type == serviceType {
			return st.UserDisplay, true
		}
	}
	for _, st := range builtinServiceTypes {
		if st.Type == serviceType {
			return st.UserDisplay, true
		}
	}
	return "", false
}
