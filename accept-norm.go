package acceptnorm

import (
	"crypto/tls"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"

	"github.com/always-cache/accept-norm/rfc9110"

	"github.com/rs/zerolog"
)

type Config struct {
	// URL of the origin server.
	// Origins with paths are not supported.
	OriginURL url.URL
	// Hostname to use for HTTP requests and TLS negotiation.
	// Use if needed if e.g. the origin URL is just an IP address.
	OriginHost string
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// Rules select the normalization mode and preference list per request.
	// Requests matching no rule are forwarded with their Accept header
	// untouched.
	Rules Rules
}

// AcceptNorm rewrites the Accept header of incoming requests to a
// normalized form before they reach the origin. Sitting in front of a
// cache, this collapses equivalent Accept headers into one cache key.
type AcceptNorm struct {
	rules        Rules
	log          zerolog.Logger
	reverseproxy httputil.ReverseProxy
	negotiators  sync.Pool
}

// New initializes the accept-norm instance.
// The returned handler proxies to the configured origin; use Middleware
// instead to embed the normalization in an existing handler chain (in
// which case no origin needs to be configured).
func New(config Config) *AcceptNorm {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	a := &AcceptNorm{
		rules: config.Rules,
		log: logger.With().
			Str("origin", config.OriginURL.String()).
			Logger(),
	}
	// each in-flight request gets its own scratch state
	a.negotiators.New = func() any {
		return new(rfc9110.Negotiator)
	}

	host := config.OriginURL.Host
	hostHeader := host
	transport := http.DefaultTransport
	if config.OriginHost != "" {
		hostHeader = config.OriginHost
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				ServerName: config.OriginHost,
			},
		}
	}

	a.reverseproxy = httputil.ReverseProxy{
		Director:  createDirector(config.OriginURL.Scheme, host, hostHeader),
		Transport: transport,
	}

	return a
}

// ServeHTTP implements the http.Handler interface.
// It normalizes the Accept header and proxies the request to the origin.
func (a *AcceptNorm) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := a.normalize(r)
	w.Header().Add("Accept-Norm", result)
	w.Header().Add("Vary", "Accept")
	a.reverseproxy.ServeHTTP(w, r)
}

// Middleware returns a handler that normalizes the Accept header before
// calling next. Use this to embed accept-norm into an in-process handler
// chain instead of running it as a proxy.
func (a *AcceptNorm) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := a.normalize(r)
		w.Header().Add("Accept-Norm", result)
		w.Header().Add("Vary", "Accept")
		next.ServeHTTP(w, r)
	})
}

// normalize rewrites the request's Accept header according to the first
// matching rule and returns the result for the Accept-Norm header.
func (a *AcceptNorm) normalize(r *http.Request) string {
	rule := a.rules.find(r)
	if rule == nil {
		a.logRequest(r, "bypass", "")
		return "bypass"
	}

	neg := a.negotiators.Get().(*rfc9110.Negotiator)
	defer func() {
		neg.Reset()
		a.negotiators.Put(neg)
	}()

	accept := r.Header.Get("Accept")
	normalized := rule.apply(neg, accept)
	if normalized == "" {
		r.Header.Del("Accept")
	} else {
		r.Header.Set("Accept", normalized)
	}

	result := "mode=" + rule.mode()
	a.logRequest(r, result, accept)
	return result
}

func (a *AcceptNorm) logRequest(r *http.Request, result, originalAccept string) {
	a.log.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("sourceIp", getRequestSourceIp(r)).
		Str("result", result).
		Str("accept", originalAccept).
		Str("normalized", r.Header.Get("Accept")).
		Msg("Forwarding request to origin")
}

func createDirector(scheme, host, hostHeader string) func(req *http.Request) {
	return func(req *http.Request) {
		req.URL.Scheme = scheme
		req.URL.Host = host
		if hostHeader != "" {
			req.Host = hostHeader
		}
	}
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	ip := ipAndPort[:portSepIdx]
	return ip
}
