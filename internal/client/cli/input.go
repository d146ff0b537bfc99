package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/server/services"
	"google.golang.org/grpc/status"
)

// expiresKey is the reserved upload metadata key holding a relative
// expiry such as "24h".
const expiresKey = "expires_in"

// parseMetadata turns name=value pairs into upload metadata. The reserved
// expires_in pair is returned separately as an absolute expiry.
func parseMetadata(pairs []string, now time.Time) (map[string]any, *time.Time, error) {
	var (
		meta    map[string]any
		expires *time.Time
	)

	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("metadata %q: expected name=value", p)
		}

		if name == expiresKey {
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return nil, nil, fmt.Errorf("metadata %q: expected a positive duration", p)
			}
			at := now.Add(d).UTC()
			expires = &at
			continue
		}

		if meta == nil {
			meta = make(map[string]any)
		}
		meta[name] = value
	}

	return meta, expires, nil
}

// parseTarget reads a share target: "id:<id>" names a principal id, a value
// with '@' an email, anything else a username.
func parseTarget(s string) services.PrincipalRef {
	switch {
	case strings.HasPrefix(s, "id:"):
		return services.PrincipalRef{ID: strings.TrimPrefix(s, "id:")}
	case strings.Contains(s, "@"):
		return services.PrincipalRef{Email: s}
	default:
		return services.PrincipalRef{Username: s}
	}
}

// describe renders a gRPC error as "Code: message".
func describe(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", st.Code(), st.Message())
}

// CommandArgs drops the config flags and their values from args and returns
// what remains: the command and its arguments.
func CommandArgs(args []string) []string {
	valued := map[string]bool{"-a": true, "-timeout": true, "-c": true, "-config": true}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return args[i:]
		}
		if name, _, hasValue := strings.Cut(arg, "="); hasValue || !valued[name] {
			continue
		}
		i++
	}
	return nil
}
