// Package httpclient builds and executes the benchmark requests.
//
// A [RequestBuilder] turns the configured method, headers and JSON payload into
// a fresh *http.Request for one endpoint. An [Executor] dispatches one attempt,
// measures it and classifies the result into a [metrics.Outcome]:
//
//	client := httpclient.NewClient(httpclient.RequestTimeout)
//	builder, err := httpclient.NewRequestBuilder(cfg, cfg.Docker)
//	if err != nil {
//		return err
//	}
//	exec := httpclient.NewExecutor(client, builder)
//	outcome := exec.Execute(ctx)
//
// Execute never returns an error. Transport failures are reported through the
// outcome's ErrorKind using the priority timeout, connection, request,
// unexpected. Any response, whatever its status, is a received response.
package httpclient
