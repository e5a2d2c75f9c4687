package internaldefs

import mormotauth "github.com/restforge/mormotauth"

// CounterDef describes one exported counter.
type CounterDef struct {
	ID   mormotauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events the dispatcher dropped.
// It lives outside CounterDefs because it is not a MetricID.
const AuditDroppedName = "mormotauth_audit_dropped_total"

// AuditDroppedHelp documents AuditDroppedName.
const AuditDroppedHelp = "Audit events dropped by the dispatcher."

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{mormotauth.MetricNonceFetch, "mormotauth_nonce_fetch_total", "Login challenges fetched from the Auth endpoint."},
	{mormotauth.MetricLoginSuccess, "mormotauth_login_success_total", "Completed handshakes."},
	{mormotauth.MetricLoginRejected, "mormotauth_login_rejected_total", "Handshakes declined by the server."},
	{mormotauth.MetricSessionResumed, "mormotauth_session_resumed_total", "Sessions restored from the cache."},
	{mormotauth.MetricSessionInvalidated, "mormotauth_session_invalidated_total", "Sessions dropped by Invalidate."},
	{mormotauth.MetricPathsSigned, "mormotauth_paths_signed_total", "Request paths signed."},
	{mormotauth.MetricRequests, "mormotauth_requests_total", "Signed requests dispatched."},
	{mormotauth.MetricNetworkErrors, "mormotauth_network_errors_total", "Transport failures."},
	{mormotauth.MetricProtocolErrors, "mormotauth_protocol_errors_total", "Malformed Auth responses."},
}
