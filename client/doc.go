/*
General-purpose client engine for the Lattice JSON/HTTP platform API.

[APIClient] wraps an [http.Client] and turns an [APIRequest] into a single HTTP
exchange: it builds the URL (host, path, encoded query), attaches the standard
headers and credentials, optionally attaches a per-request DPoP proof (see the
sibling dpop package), sends the request body as JSON when present, and
interprets the response status per the strategies selected on the request. The
client holds no mutable state after construction and is safe for concurrent use
across goroutines; each call owns exactly one [Exchange], which is always
released before the call returns.

Non-2xx handling is policy-driven. [NotFoundHandling] selects what a 404 means
for the call (error, no value, parse the body anyway, or a synthesized success
acknowledgement), and [ClientErrorHandling] does the same for other 4xx
statuses. The zero values of both are the strict defaults: any non-2xx status
becomes an [*APIError]. 5xx statuses always become an [*APIError] regardless of
strategy. Synthesized placeholder values exist only for the [Acknowledgement]
response shape; for any other response type a lenient strategy yields "no
value".

All fatal outcomes are normalized into [*APIError], carrying the best available
status code (0 when the request never got a status), status message, response
body, response headers, and the underlying cause ([APIError.Unwrap]). Lenient
outcomes never construct an APIError.

The engine performs no automatic retries and no connection pooling decisions of
its own; callers wanting retry semantics can hand the client an [http.Client]
from the robusthttp package.
*/
package client
