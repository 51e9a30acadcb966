// Package clientip resolves the originating client address of an HTTP
// request when relayd runs behind reverse proxies.
//
// A Resolver checks its trusted headers in order and falls back to the TCP
// peer address. X-Forwarded-For style lists yield their first valid entry.
// Addresses are normalized with net/netip, so "::ffff:192.0.2.1" and
// "192.0.2.1" produce the same rate limit key.
//
// Only trust headers your proxy sets. relayd reads the list from
// CLIENTIP_TRUSTED_HEADERS; GetIP and Middleware use DefaultHeaders, which
// suit deployments behind Cloudflare or the DigitalOcean App Platform.
//
//	res := clientip.NewResolver("X-Forwarded-For")
//	r.Use(res.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		ip := clientip.GetIPFromContext(r.Context())
//		...
//	}
//
// LoggerExtractor plugs the stored address into pkg/logger as "client_ip".
package clientip
