// Package logging configures structured logging with credential redaction.
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, nil)
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRequestID(ctx, uuid.NewString())
//	logger.InfoContext(ctx, "completion requested",
//	    "api_key", key, // logged as "sk-a***"
//	)
//
// Records logged through the *Context methods carry the request_id and
// provider stored in the context.
//
// # Redaction
//
// Redaction is on unless telemetry.logging.redact_keys is false:
//
//   - values under keys such as api_key or authorization keep a
//     four character prefix
//   - sk-... keys anywhere in a string value become sk-***
//   - Bearer tokens become Bearer ***
package logging
