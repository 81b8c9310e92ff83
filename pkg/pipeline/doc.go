// Package pipeline drives a providers.Adapter end to end.
//
// A Run validates the normalized request, consults the adapter's cache
// hooks, sends exactly one HTTP request and decodes the answer either into
// materialized generations or into a lazy Stream of fragments:
//
//	p := pipeline.New(pipeline.Options{Metrics: collector, Tracer: tracer})
//
//	res, err := p.Run(ctx, adapter, &providers.RequestOptions{
//	    Prompt: "Hello!",
//	    Stream: true,
//	}, providers.RequestMeta{UserIdentifier: "user-42"})
//	if err != nil {
//	    return err
//	}
//	defer res.Stream.Close()
//
//	for frag, err := range res.Stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(frag.Text)
//	}
//
// Complete is the shorthand that drains either form into one string per
// generation slot.
//
// # Streams
//
// Server-sent event bodies are read line by line. Blank lines, comments and
// event/id/retry fields are skipped; the data prefix is stripped. A stream
// ends at the adapter's sentinel line or at its structural end marker. A
// connection that drops before either is a TransportError wrapping
// providers.ErrStreamTruncated.
//
// # Caching
//
// Results are stored only after a successful batch response or a fully
// drained stream. Cache backend errors are logged and the run proceeds as if
// there were no cache.
//
// # Errors
//
// Failures surface as providers.ValidationError, TransportError,
// ProviderError or DecodeError. Nothing is retried.
package pipeline
