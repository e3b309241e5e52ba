// Package httpclient sends HTTP requests described by method, scheme, host,
// port and path segments, and turns every failed exchange into a single
// *TransportError.
//
// # Quick Start
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("billing"),
//	    httpclient.WithDefaultHeader("Accept", "application/json"),
//	    httpclient.WithLogger(logger),
//	)
//
//	// Start the exchange; Send never blocks on I/O.
//	call := client.Send(ctx, http.MethodGet, "https", "api.example.com",
//	    httpclient.Path("accounts", accountID, "invoices"),
//	    httpclient.Timeout(2*time.Second),
//	)
//
//	// Wait for the outcome.
//	resp, err := call.Wait(ctx)
//
// Do combines both steps.
//
// # URLs
//
// Each path segment is escaped on its own with url.PathEscape, so segments
// containing "/" or spaces survive the round trip:
//
//	httpclient.BuildURL("http", "::1", "8080", "with spaces ", "and/with/slashes")
//	// http://[::1]:8080/with%20spaces%20/and%2Fwith%2Fslashes
//
// # Headers
//
// A Client owns a default header set that is merged into every request when
// it is dispatched. Request headers replace defaults of the same
// case-insensitive name. Fork gives a per-request copy of the client whose
// defaults can be changed without touching the original.
//
// # Failures
//
// A non-2xx response fails with its status code and reason phrase. When the
// server sends a code without a reason and net/http knows none, the reason is
// "Unknown". An exchange that produced no response at all (timeout,
// connection refused, DNS or TLS failure) fails with code 599 and reason
// "API Timeout"; ErrorType tells the causes apart.
//
//	var terr *httpclient.TransportError
//	if errors.As(err, &terr) {
//	    log.Warn().Int("code", terr.Code).Str("reason", terr.Reason).Send()
//	}
//
// # Observability
//
// Every round trip gets an OpenTelemetry client span and is measured with:
//   - http.client.request.duration (histogram)
//   - http.client.active_requests (up-down counter)
//   - http.client.request.error (counter, by error.type)
//   - http.client.request.body.size and http.client.response.body.size
//
// WithNetworkTrace adds DNS, connect, TLS and time-to-first-byte events and
// histograms. Trace context is injected with the configured propagators
// (W3C TraceContext and Baggage by default).
//
// # Testing
//
// MockTransport answers requests from stubs and records them:
//
//	mock := httpclient.NewMockTransport().StubResponse(http.StatusOK, `{}`)
//	client := httpclient.New(httpclient.WithMockTransport(mock))
package httpclient
