/*
Package patman declares typed HTTP API endpoints once and derives call
functions from them.

An Endpoint describes how to build a request from arguments of type A: the
method, and a path, headers, query parameters and payload that are each
static or computed from the arguments. A Service names a base URL and
default headers. Binding the two yields a CallFunc that resolves the
endpoint, performs the request and checks the response body against the
endpoint schema.

	type LoremArgs struct {
	    Type  string
	    Paras *int
	}

	lorem := patman.NewEndpoint[LoremArgs, []string]("GET", "/").
	    WithParamsFunc(func(ctx context.Context, a LoremArgs) (patman.Params, error) {
	        return patman.Params{}.Add("type", a.Type).Add("paras", a.Paras), nil
	    })

	bacon, _ := patman.NewService("https://baconipsum.com/api", nil)
	call := patman.NewCallFunc(bacon, lorem)
	res, err := call(ctx, LoremArgs{Type: "all-meat"})

Query parameters with a nil value are left out and slices repeat their key
(k=a&k=b). Endpoint headers override service headers of the same name.

Errors are either a *TransportError (network failure or non-2xx status) or
a *ValidationError (body does not match the schema). Both are returned
unmodified; Recovery helpers such as OnNotFound turn selected errors into
fallback values.

Each call draws an id from the client's Counter. When the client's logger
has debug enabled, the call logs request and response details under the
name "{id}.{random suffix}" with Authorization values redacted.

Combine binds a set of endpoints to a set of services at once.
*/
package patman
