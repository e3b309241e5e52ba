// Package upstream makes HTTP requests from inside a server handler and
// turns their failures into replies the server can send.
//
// A Caller wraps an *httpclient.Client. MakeRequest sends the request,
// waits for the outcome and, on failure:
//
//   - logs "<METHOD> <URL> resulted in <code> <reason>" at error level for
//     4xx and at warn level for 5xx and for requests that got no response;
//   - counts the failure when Metrics are configured;
//   - hands the failure to an ErrorHandler whose result is returned.
//
// The default handler returns TranslateError(err), an *httpserver.HTTPError
// that httpserver.Handle and the framework adapters write as the response.
// A request that got no response (599) is replied to with 503 "API Timeout".
//
//	caller := upstream.New(client, upstream.WithLogger(logger))
//
//	h := httpserver.Handle(logger, func(w http.ResponseWriter, r *http.Request) error {
//	    resp, err := caller.ForRequest(r).MakeRequest(r.Context(),
//	        http.MethodGet, "https", "inventory.internal",
//	        httpclient.Path("items", r.PathValue("sku")),
//	    )
//	    if err != nil {
//	        return err // 4xx/5xx/503 reach the client with the upstream reason
//	    }
//	    _, err = w.Write(resp.Body())
//	    return err
//	})
package upstream
