package session

import (
	"net/url"
	"strings"
	"unicode"
)

// Decision is the outcome of a route check
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Pending  bool   `json:"pending,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Gate decides which routes a session may enter
type Gate struct {
	LoginPath   string
	DefaultPath string
	// PublicPrefixes are reachable without a session
	PublicPrefixes []string
}

// NewGate creates a gate with the given login and default routes
func NewGate(loginPath, defaultPath string, public ...string) Gate {
	return Gate{LoginPath: loginPath, DefaultPath: defaultPath, PublicPrefixes: public}
}

// Decide checks path against the session state. Unauthenticated users are
// sent to the login route with the intended destination in "from";
// authenticated users are sent away from the login route.
func (g Gate) Decide(path string, st State) Decision {
	if st.IsLoading {
		return Decision{Pending: true}
	}
	if path == g.LoginPath {
		if st.IsAuthenticated {
			return Decision{Redirect: g.DefaultPath}
		}
		return Decision{Allowed: true}
	}
	if g.isPublic(path) || st.IsAuthenticated {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: g.LoginRedirect(path)}
}

// LoginRedirect returns the login route remembering path as the destination
func (g Gate) LoginRedirect(path string) string {
	if path == "" || path == g.LoginPath {
		return g.LoginPath
	}
	return g.LoginPath + "?" + url.Values{"from": {path}}.Encode()
}

// AfterLogin returns where to go after a successful login. Only local
// paths are honored so "from" cannot redirect off-site.
func (g Gate) AfterLogin(from string) string {
	u, ok := localPath(from)
	if !ok || u.Path == g.LoginPath {
		return g.DefaultPath
	}
	return from
}

// localPath parses p and reports whether it stays on this origin. Browsers
// read a backslash as a slash and strip tabs and newlines, so "/\host" and
// "/\t/host" are rejected along with anything carrying a scheme or host.
func localPath(p string) (*url.URL, bool) {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return nil, false
	}
	if strings.ContainsFunc(p, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return nil, false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return nil, false
	}
	return u, true
}

func (g Gate) isPublic(path string) bool {
	for _, p := range g.PublicPrefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
